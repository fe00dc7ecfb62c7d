package main

import "fmt"

// Kind tags the variant of a Node in the intermediate representation.
type Kind int

const (
	KindIncr Kind = iota
	KindDecr
	KindNext
	KindPrev
	KindPrint
	KindRead
	KindLoop
)

func (k Kind) String() string {
	switch k {
	case KindIncr:
		return "Incr"
	case KindDecr:
		return "Decr"
	case KindNext:
		return "Next"
	case KindPrev:
		return "Prev"
	case KindPrint:
		return "Print"
	case KindRead:
		return "Read"
	case KindLoop:
		return "Loop"
	default:
		return "Unknown"
	}
}

// Node is one instruction in the optimized IR. Incr/Decr carry an 8-bit
// wrapping count, Next/Prev a machine-word count, Loop a body. Print and
// Read carry no payload.
type Node struct {
	Kind  Kind
	Count uint // used by Incr, Decr (low 8 bits significant), Next, Prev
	Body  Program
}

// Program is an ordered sequence of IR nodes.
type Program []Node

// Size returns the number of nodes in the program, counting nested loop
// bodies recursively. The inline-vs-defer policy in jit_target.go does
// not use it: it compares a loop body's direct length, len(node.Body).
func (p Program) Size() int {
	n := 0
	for _, node := range p {
		n++
		if node.Kind == KindLoop {
			n += node.Body.Size()
		}
	}
	return n
}

// Dump renders the program in the textual form printed by `bfjit --debug`.
func (p Program) Dump() string {
	var buf []byte
	buf = p.dumpInto(buf, 0)
	return string(buf)
}

func (p Program) dumpInto(buf []byte, depth int) []byte {
	indent := func(b []byte) []byte {
		for i := 0; i < depth; i++ {
			b = append(b, ' ', ' ')
		}
		return b
	}
	for _, node := range p {
		buf = indent(buf)
		switch node.Kind {
		case KindIncr, KindDecr, KindNext, KindPrev:
			buf = append(buf, fmt.Sprintf("%s(%d)\n", node.Kind, node.Count)...)
		case KindPrint, KindRead:
			buf = append(buf, fmt.Sprintf("%s\n", node.Kind)...)
		case KindLoop:
			buf = append(buf, "Loop\n"...)
			buf = node.Body.dumpInto(buf, depth+1)
		}
	}
	return buf
}
