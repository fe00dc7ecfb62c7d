package main

import "os"

// Interpreter is a tree-walker over a Program. It exists purely as the
// JIT's fallback path; its I/O semantics (one byte at a time, 0xFF on
// EOF) are authoritative and mirrored by the JIT's emitPrint/emitRead.
type Interpreter struct {
	tape []byte
	ptr  int
}

// NewInterpreter allocates a tape of TapeSize bytes.
func NewInterpreter() *Interpreter {
	return &Interpreter{tape: make([]byte, TapeSize)}
}

// Run executes prog to completion.
func (in *Interpreter) Run(prog Program) {
	in.exec(prog)
}

func (in *Interpreter) exec(prog Program) {
	for _, node := range prog {
		switch node.Kind {
		case KindIncr:
			in.tape[in.ptr] += byte(node.Count)
		case KindDecr:
			in.tape[in.ptr] -= byte(node.Count)
		case KindNext:
			in.ptr += int(node.Count)
		case KindPrev:
			in.ptr -= int(node.Count)
		case KindPrint:
			os.Stdout.Write(in.tape[in.ptr : in.ptr+1])
		case KindRead:
			in.tape[in.ptr] = readByte()
		case KindLoop:
			for in.tape[in.ptr] != 0 {
				in.exec(node.Body)
			}
		}
	}
}

// readByte reads one byte from stdin, returning the 0xFF sentinel on
// EOF — see SPEC_FULL.md §9 ("EOF handling").
func readByte() byte {
	var buf [1]byte
	n, err := os.Stdin.Read(buf[:])
	if n == 0 || err != nil {
		return 0xFF
	}
	return buf[0]
}
