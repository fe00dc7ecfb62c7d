package main

import (
	"bytes"
	"io"
	"os"
	"testing"
)

// withCapturedStdout redirects os.Stdout to a pipe for the duration of
// f and returns everything written to it. Sufficient for the
// interpreter, which writes through the os.Stdout variable; the JIT's
// direct syscall writes need real fd-level redirection — see
// end_to_end_test.go.
func withCapturedStdout(t *testing.T, f func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	old := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = old }()

	f()

	w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read captured stdout: %v", err)
	}
	return string(out)
}

func withStdin(t *testing.T, input string, f func()) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	old := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = old }()

	go func() {
		w.Write([]byte(input))
		w.Close()
	}()

	f()
}

const helloWorldSource = `
++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>.
<-.<.+++.------.--------.>>+.>++.
`

func TestInterpreterHelloWorld(t *testing.T) {
	prog, err := Parse([]byte(helloWorldSource))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	out := withCapturedStdout(t, func() {
		NewInterpreter().Run(prog)
	})

	if out != "Hello World!\n" {
		t.Fatalf("got %q, want %q", out, "Hello World!\n")
	}
}

func TestInterpreterEcho(t *testing.T) {
	// EOF reads as 0xFF, so the loop adds 1 after each read and stops
	// when that brings the cell to 0; ",[.,]" would never stop.
	prog, err := Parse([]byte(",+[-.,+]"))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var out string
	withStdin(t, "abc", func() {
		out = withCapturedStdout(t, func() {
			NewInterpreter().Run(prog)
		})
	})

	if out != "abc" {
		t.Fatalf("got %q, want %q", out, "abc")
	}
}

func TestInterpreterEOFSentinel(t *testing.T) {
	// ",." reads one byte (immediate EOF on empty stdin) and prints it;
	// spec.md §6/§9 fixes the sentinel at 0xFF.
	prog, err := Parse([]byte(",."))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var out string
	withStdin(t, "", func() {
		out = withCapturedStdout(t, func() {
			NewInterpreter().Run(prog)
		})
	})

	if !bytes.Equal([]byte(out), []byte{0xFF}) {
		t.Fatalf("got %v, want [0xFF]", []byte(out))
	}
}
