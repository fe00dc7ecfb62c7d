package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/xyproto/bfjit/internal/engine"
)

const usage = `bfjit

Usage:
  bfjit [--int] <program>
  bfjit (-d | --debug) <program>
  bfjit (-h | --help)

Options:
  -h --help     Show this screen.
  -d --debug    Display the intermediate representation and exit.
  --int         Use the interpreter instead of the JIT compiler.
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("bfjit", flag.ContinueOnError)
	fs.SetOutput(io.Discard) // we print our own usage/errors

	interpFlag := fs.Bool("int", false, "use the interpreter instead of the JIT compiler")
	debugFlag := fs.Bool("d", false, "display the intermediate representation and exit")
	debugLongFlag := fs.Bool("debug", false, "display the intermediate representation and exit")
	helpFlag := fs.Bool("h", false, "show usage")
	helpLongFlag := fs.Bool("help", false, "show usage")
	verboseFlag := fs.Bool("v", false, "trace emitted opcode bytes to stderr")

	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, usage)
		return 1
	}

	if *helpFlag || *helpLongFlag {
		fmt.Print(usage)
		return 0
	}

	if *verboseFlag {
		VerboseMode = true
	}

	if fs.NArg() != 1 {
		fmt.Fprint(os.Stderr, usage)
		return 1
	}
	path := fs.Arg(0)

	source, err := readProgram(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error occurred while loading program: %v\n", err)
		return 1
	}

	prog, err := Parse(source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error occurred while parsing program: %v\n", err)
		return 1
	}

	if *debugFlag || *debugLongFlag {
		fmt.Print(prog.Dump())
		return 0
	}

	runProgram(prog, *interpFlag)
	return 0
}

// readProgram loads a BrainFuck program's source, reading from stdin
// when path is "-".
func readProgram(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// runProgram picks the interpreter or the JIT (falling back to the
// interpreter on construction failure) and runs prog to completion.
func runProgram(prog Program, forceInterpreter bool) {
	if !forceInterpreter {
		host := engine.Host()
		if host.SupportsJIT() {
			target, err := NewJITTarget(prog)
			if err == nil {
				target.Run()
				return
			}
			fmt.Fprintf(os.Stderr, "Error occurred while compiling program: %v\n", err)
			fmt.Fprintln(os.Stderr, "Falling back to interpreter")
		} else {
			fmt.Fprintf(os.Stderr, "JIT unsupported on %s, falling back to interpreter\n", host)
		}
	}

	NewInterpreter().Run(prog)
}
