package main

import env "github.com/xyproto/env/v2"

// TapeSize is the guest memory size, per spec.md §3. Overridable for
// benchmarking with larger tapes; no invariant depends on the default
// value itself.
var TapeSize = env.IntOr("BFJIT_TAPE_SIZE", 30_000)

// InlineThreshold is the inline-vs-defer policy's tuning knob (spec.md
// §4.4, §9): loop bodies with more optimized IR nodes than this are
// deferred; smaller ones are inlined ahead of time.
var InlineThreshold = env.IntOr("BFJIT_INLINE_THRESHOLD", 22)

// verboseFromEnv lets BFJIT_VERBOSE=1 turn on opcode tracing without
// passing -v, matching the teacher's package-level VerboseMode flag
// (emit.go, add.go, call.go) that every emission primitive checks.
var verboseFromEnv = env.BoolOr("BFJIT_VERBOSE", false)

func init() {
	if verboseFromEnv {
		VerboseMode = true
	}
}
