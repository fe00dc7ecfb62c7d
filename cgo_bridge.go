package main

/*
#include <stdint.h>

typedef uintptr_t (*bfjit_entry_fn)(uintptr_t tape_ptr, uintptr_t self, void *callback);

// bfjit_invoke calls into JIT-compiled code following the System V
// AMD64 calling convention the wrapper prologue/epilogue (codegen_amd64.go)
// was written against: three word-sized arguments in, one uintptr
// out, all via plain C function-pointer invocation so the C compiler
// handles ABI and stack-alignment details rather than Go's own
// (register-based) calling convention, which does not match System V.
// self is a runtime/cgo.Handle value, not a raw pointer — see
// invokeJIT's doc comment.
static uintptr_t bfjit_invoke(void *code, uintptr_t tape_ptr, uintptr_t self, void *callback) {
    bfjit_entry_fn fn = (bfjit_entry_fn)code;
    return fn(tape_ptr, self, callback);
}

extern uintptr_t bfjit_go_callback(uintptr_t self, uint64_t promise_id, uintptr_t tape_ptr);

// bfjit_callback_trampoline is the address emitted jit_loop code calls.
// It has exactly the C signature emitJitLoop's call site assumes and
// forwards straight into the exported Go function.
static uintptr_t bfjit_callback_trampoline(uintptr_t self, uint64_t promise_id, uintptr_t tape_ptr) {
    return bfjit_go_callback(self, promise_id, tape_ptr);
}

static void *bfjit_callback_trampoline_addr(void) {
    return (void *)bfjit_callback_trampoline;
}
*/
import "C"
import (
	"runtime/cgo"
	"unsafe"
)

// invokeJIT executes code (a finalized, mmap'd region) with the given
// tape pointer, self-handle and callback address. self must be a
// uintptr(cgo.Handle) rather than unsafe.Pointer(target): *JITTarget
// contains Go pointers of its own, and cgocheck rejects a Go-pointer
// argument whose pointee holds further Go pointers. A cgo.Handle is an
// opaque integer token with no such restriction.
func invokeJIT(code []byte, tapePtr uintptr, self uintptr, callback unsafe.Pointer) uintptr {
	return uintptr(C.bfjit_invoke(unsafe.Pointer(&code[0]), C.uintptr_t(tapePtr), C.uintptr_t(self), callback))
}

// callbackTrampoline returns the C-ABI address passed to every wrapper
// invocation as the callback argument.
func callbackTrampoline() unsafe.Pointer {
	return C.bfjit_callback_trampoline_addr()
}

//export bfjit_go_callback
func bfjit_go_callback(self C.uintptr_t, promiseID C.uint64_t, tapePtr C.uintptr_t) C.uintptr_t {
	target := cgo.Handle(self).Value().(*JITTarget)
	updated := target.callback(PromiseID(promiseID), uintptr(tapePtr))
	return C.uintptr_t(updated)
}
