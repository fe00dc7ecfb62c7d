package main

import (
	"fmt"
	"os"
)

// CodeBuffer is a growing byte buffer that the code generator appends
// opcode bytes to. Mirrors the teacher's BufferWrapper: every write is
// traced to stderr in hex when VerboseMode is set.
type CodeBuffer struct {
	bytes []byte
}

func (cb *CodeBuffer) Write(b byte) {
	cb.bytes = append(cb.bytes, b)
	if VerboseMode {
		fmt.Fprintf(os.Stderr, " %02x", b)
	}
}

func (cb *CodeBuffer) WriteBytes(bs ...byte) {
	for _, b := range bs {
		cb.Write(b)
	}
}

// WriteU32 appends a little-endian 32-bit value (used for rel32 jump and
// call displacements).
func (cb *CodeBuffer) WriteU32(v uint32) {
	cb.WriteBytes(byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// WriteU64 appends a little-endian 64-bit value (used for immediate
// pointer loads).
func (cb *CodeBuffer) WriteU64(v uint64) {
	cb.WriteBytes(
		byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
		byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56),
	)
}

func (cb *CodeBuffer) Len() int { return len(cb.bytes) }

func (cb *CodeBuffer) Bytes() []byte { return cb.bytes }

// Append copies another buffer's bytes to the end of this one. Used to
// splice a fully-compiled sub-body (e.g. a loop's bytes) into its caller.
func (cb *CodeBuffer) Append(other []byte) {
	if VerboseMode {
		fmt.Fprintf(os.Stderr, " <%d bytes>", len(other))
	}
	cb.bytes = append(cb.bytes, other...)
}

// VerboseMode traces every emitted opcode byte to stderr, exactly like
// the teacher's package-level flag of the same name in emit.go/add.go.
// Set from BFJIT_VERBOSE (config.go) or the -v flag (main.go).
var VerboseMode bool
