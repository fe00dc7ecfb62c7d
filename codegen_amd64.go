package main

// x86-64 code generator: one primitive per IR leaf, plus the composite
// loop and wrapper emitters. r12 holds the tape pointer for the entire
// run; r13 holds the self-handle (a runtime/cgo.Handle value identifying
// the owning *JITTarget, not a raw pointer — see cgo_bridge.go); r14
// holds the callback trampoline address. All three are callee-saved in
// System V AMD64, so a plain SYSCALL (used for Print/Read) never
// disturbs them, and the wrapper prologue/epilogue save/restore them
// around any nested CALL.

// emitIncr appends ADD byte [r12], n. r12's encoding (4 mod 8, shared
// with rsp) forces a SIB byte even with no index, hence the trailing
// 0x24.
func emitIncr(cb *CodeBuffer, n byte) {
	cb.WriteBytes(0x41, 0x80, 0x04, 0x24, n)
}

// emitDecr appends SUB byte [r12], n.
func emitDecr(cb *CodeBuffer, n byte) {
	cb.WriteBytes(0x41, 0x80, 0x2C, 0x24, n)
}

// emitNext appends code advancing the tape pointer by k cells. k is
// loaded into a scratch register (r11) first rather than encoded as an
// immediate operand to ADD, since Next/Prev counts wrap at the full
// machine word and an imm32 ADD would silently truncate large counts.
func emitNext(cb *CodeBuffer, k uint64) {
	cb.movImm64(regR11, k)
	cb.addRegReg(regR12, regR11)
}

// emitPrev appends code retreating the tape pointer by k cells.
func emitPrev(cb *CodeBuffer, k uint64) {
	cb.movImm64(regR11, k)
	cb.subRegReg(regR12, regR11)
}

// emitPrint appends a write(2) syscall of the single byte at [r12] to
// fd 1. Grounded on the teacher's own print_syscall.go, which emits a
// write syscall directly from JIT'd code rather than calling back into
// a host function pointer for I/O — see DESIGN.md.
func emitPrint(cb *CodeBuffer) {
	cb.movImm64(regRAX, 1) // sys_write
	cb.movImm64(regRDI, 1) // fd 1 (stdout)
	cb.movRegReg(regRSI, regR12)
	cb.movImm64(regRDX, 1)
	cb.syscall()
}

// emitRead appends a read(2) syscall of one byte from fd 0 directly
// into [r12]. On EOF (read returns 0), the cell is set to 0xFF — the
// engine's chosen EOF sentinel, matching the original's getchar()
// returning -1 truncated to a byte.
func emitRead(cb *CodeBuffer) {
	cb.movImm64(regRAX, 0) // sys_read
	cb.movImm64(regRDI, 0) // fd 0 (stdin)
	cb.movRegReg(regRSI, regR12)
	cb.movImm64(regRDX, 1)
	cb.syscall()
	cb.testRegReg(regRAX)
	cb.jgRel8(5) // skip the EOF-sentinel write when a byte was read
	cb.WriteBytes(0x41, 0xC6, 0x04, 0x24, 0xFF)
}

// emitWhileLoop wraps already-emitted body bytes in a "while byte at
// [r12] != 0" loop: a head test, a conditional jump past the body, the
// body itself, and an unconditional jump back to the head. Used by both
// emitAotLoop (inlined loops) and emitJitLoop (deferred loops) — the
// only difference between the two is what the body bytes do.
func emitWhileLoop(cb *CodeBuffer, body []byte) {
	const headLen = 5 // cmp byte [r12], 0
	const jeLen = 6   // je rel32
	const jmpLen = 5  // jmp rel32
	total := headLen + jeLen + len(body) + jmpLen

	cb.WriteBytes(0x41, 0x80, 0x3C, 0x24, 0x00) // cmp byte [r12], 0
	cb.WriteBytes(0x0F, 0x84)                   // je rel32
	cb.WriteU32(uint32(int32(len(body) + jmpLen)))
	cb.Append(body)
	cb.Write(0xE9) // jmp rel32
	cb.WriteU32(uint32(int32(-total)))
}

// emitAotLoop inlines an already shallow-compiled loop body.
func emitAotLoop(cb *CodeBuffer, body []byte) {
	emitWhileLoop(cb, body)
}

// emitJitLoop emits a call back into the host for every iteration of a
// deferred loop's condition check. The call site brackets itself with
// sub/add rsp,8 to present a 16-byte-aligned stack to the System V
// callee, independent of nesting depth — see SPEC_FULL.md §4.2.
func emitJitLoop(cb *CodeBuffer, id PromiseID) {
	var call CodeBuffer
	call.movRegReg(regRDI, regR13) // self handle
	call.movImm64(regRSI, uint64(id))
	call.movRegReg(regRDX, regR12) // tape pointer
	call.subRspImm8(8)
	call.callReg(regR14)
	call.addRspImm8(8)
	call.movRegReg(regR12, regRAX) // adopt the updated tape pointer
	emitWhileLoop(cb, call.Bytes())
}

// emitWrapper brackets body bytes with the prologue/epilogue shared by
// every top-level target and every fragment: establish r12/r13/r14 from
// the incoming (tapePtr, selfHandle, callback) arguments, run body,
// return the (possibly updated) tape pointer in rax.
func emitWrapper(cb *CodeBuffer, body []byte) {
	cb.pushReg(regRBP)
	cb.movRegReg(regRBP, regRSP)
	cb.pushReg(regR12)
	cb.pushReg(regR13)
	cb.pushReg(regR14)

	cb.movRegReg(regR12, regRDI) // tape pointer
	cb.movRegReg(regR13, regRSI) // self
	cb.movRegReg(regR14, regRDX) // callback

	cb.Append(body)

	cb.movRegReg(regRAX, regR12)
	cb.popReg(regR14)
	cb.popReg(regR13)
	cb.popReg(regR12)
	cb.popReg(regRBP)
	cb.ret()
}
