package main

import (
	"fmt"
	"runtime"
	"runtime/cgo"
	"unsafe"
)

// PromiseID indexes into a JITTarget's promise table.
type PromiseID uint64

type promiseState int

const (
	promiseDeferred promiseState = iota
	promiseCompiled
)

// promise is one entry in the promise table: a loop body not yet
// compiled, or the fragment it was compiled into. Transitions at most
// once, Deferred -> Compiled on the loop's first entry, never back.
type promise struct {
	state promiseState
	body  Program
	frag  *JITTarget
}

// JITTarget is a compiled program or loop fragment: an executable
// region plus the promise table of loops deferred during its own
// compilation. Fragments form a tree mirroring the deferred-loop
// structure; the top-level target and every fragment share this type.
type JITTarget struct {
	region   *execRegion
	promises []*promise
}

// NewJITTarget compiles the top-level program. Returns an error — never
// a panic — on an unsupported architecture or executable-memory
// failure, so the driver can fall back to the interpreter.
func NewJITTarget(prog Program) (*JITTarget, error) {
	if runtime.GOARCH != "amd64" {
		return nil, fmt.Errorf("unsupported JIT architecture %q", runtime.GOARCH)
	}
	return newTarget(prog)
}

func newTarget(prog Program) (*JITTarget, error) {
	target := &JITTarget{}

	body := target.shallowCompile(prog)

	var full CodeBuffer
	emitWrapper(&full, body)

	region, err := newExecRegion(full.Bytes())
	if err != nil {
		return nil, err
	}
	target.region = region

	return target, nil
}

// shallowCompile emits bytes for one body: every leaf node compiles
// directly, and every Loop node is inlined or deferred per the
// threshold in config.go.
func (t *JITTarget) shallowCompile(prog Program) []byte {
	var cb CodeBuffer

	for _, node := range prog {
		switch node.Kind {
		case KindIncr:
			emitIncr(&cb, byte(node.Count))
		case KindDecr:
			emitDecr(&cb, byte(node.Count))
		case KindNext:
			emitNext(&cb, uint64(node.Count))
		case KindPrev:
			emitPrev(&cb, uint64(node.Count))
		case KindPrint:
			emitPrint(&cb)
		case KindRead:
			emitRead(&cb)
		case KindLoop:
			if len(node.Body) > InlineThreshold {
				id := t.deferLoop(node.Body)
				emitJitLoop(&cb, id)
			} else {
				inner := t.shallowCompile(node.Body)
				emitAotLoop(&cb, inner)
			}
		}
	}

	return cb.Bytes()
}

func (t *JITTarget) deferLoop(body Program) PromiseID {
	t.promises = append(t.promises, &promise{state: promiseDeferred, body: body})
	return PromiseID(len(t.promises) - 1)
}

// Exec invokes the compiled entry point with the given tape pointer and
// returns the (possibly updated) tape pointer. The self-pointer crosses
// the cgo boundary as a runtime/cgo.Handle rather than a raw
// unsafe.Pointer(t): *JITTarget holds Go pointers of its own (region,
// promises), and cgocheck rejects a Go pointer argument whose pointee
// itself contains Go pointers. The handle is valid only for the
// duration of this call — bfjit_go_callback resolves it but never
// deletes it.
func (t *JITTarget) Exec(tapePtr uintptr) uintptr {
	handle := cgo.NewHandle(t)
	defer handle.Delete()
	return invokeJIT(t.region.Bytes(), tapePtr, uintptr(handle), callbackTrampoline())
}

// callback is the host side of jit_loop: on first entry it compiles the
// deferred body into a fragment, runs it once, and replaces the promise
// entry; on every later entry it just runs the already-compiled
// fragment. Called once per full execution of the loop body (the
// surrounding while-nonzero test lives in the emitted code).
func (t *JITTarget) callback(id PromiseID, tapePtr uintptr) uintptr {
	p := t.promises[id]

	switch p.state {
	case promiseDeferred:
		frag, err := newTarget(p.body)
		if err != nil {
			// Construction succeeded once already for the enclosing
			// target (same architecture, same allocator); a failure
			// here means the host is out of resources mid-run, which
			// spec.md §4.4/§7 leaves undefined for the guest's sake.
			panic(fmt.Sprintf("bfjit: deferred compilation failed: %v", err))
		}
		updated := frag.Exec(tapePtr)
		p.state = promiseCompiled
		p.frag = frag
		p.body = nil
		return updated
	case promiseCompiled:
		return p.frag.Exec(tapePtr)
	default:
		panic("bfjit: unreachable promise state")
	}
}

// Release unmaps this target's executable region and every fragment
// transitively owned through its promise table.
func (t *JITTarget) Release() {
	if t.region != nil {
		t.region.Release()
	}
	for _, p := range t.promises {
		if p.frag != nil {
			p.frag.Release()
		}
	}
}

// Run allocates the tape, executes the program to completion, and
// releases the target's executable memory.
func (t *JITTarget) Run() {
	defer t.Release()
	tape := make([]byte, TapeSize)
	t.Exec(uintptr(unsafe.Pointer(&tape[0])))
	// The tape is only ever referenced through the uintptr handed across
	// the cgo boundary, which is invisible to the garbage collector;
	// keep it alive until Exec has returned.
	runtime.KeepAlive(tape)
}
