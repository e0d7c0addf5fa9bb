// Package repl implements the contract-only REPL driver specified by
// spec.md §4.5: read a line, dispatch to the lexer/parser/assembler, append
// the resulting bytes to a live VM, and single-step it exactly once.
//
// The REPL owns none of the lexer/parser/assembler/VM semantics themselves;
// it is the thin control loop spec.md §1 describes as an "external
// collaborator" consuming their contracts.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/cartoon-raccoon/verdigris/assembler"
	"github.com/cartoon-raccoon/verdigris/lexer"
	"github.com/cartoon-raccoon/verdigris/parser"
	"github.com/cartoon-raccoon/verdigris/vm"
)

// REPL holds the live VM a stream of assembly lines is appended to, and the
// I/O it reads lines from / writes output to (spec.md §6 "REPL surface").
type REPL struct {
	VM     *vm.VM
	Prompt string

	out io.Writer
	in  *bufio.Scanner

	// Exit is called when a dot-command or a halting instruction ends the
	// session (spec.md §4.5: ".quit" or Hlt terminates the process with
	// exit 0). Overridable so callers other than main() can drive a REPL
	// without the process actually exiting.
	Exit func(code int)
}

// New creates a REPL over r/w, with an initially empty program.
func New(r io.Reader, w io.Writer, prompt string) *REPL {
	return &REPL{
		VM:     vm.New(nil),
		Prompt: prompt,
		out:    w,
		in:     bufio.NewScanner(r),
		Exit:   func(int) {},
	}
}

func (r *REPL) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.out, format, args...)
}

// Run drives the prompt loop until the input is exhausted, a ".quit"
// command is issued, or an instruction halts the VM. It never returns an
// error: parser/VM errors are printed to stderr-equivalent output and the
// loop continues (spec.md §7 "the REPL always keeps the VM alive after an
// error").
func (r *REPL) Run(errOut io.Writer) {
	for {
		r.printf("%s", r.Prompt)
		if !r.in.Scan() {
			return
		}
		line := r.in.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if done := r.HandleLine(line, errOut); done {
			return
		}
	}
}

// HandleLine processes a single line: a dot-command, or one instruction to
// assemble and single-step. It returns true when the session should end
// (".quit" or a halting instruction), having already invoked r.Exit.
func (r *REPL) HandleLine(line string, errOut io.Writer) bool {
	trimmed := strings.TrimSpace(strings.ToLower(line))

	if strings.HasPrefix(trimmed, ".") {
		return r.handleCommand(trimmed)
	}

	bytes, err := assembleLine(trimmed)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return false
	}

	r.VM.AddBytes(bytes)
	halted, err := r.VM.RunOnce()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return false
	}
	if halted {
		r.Exit(0)
		return true
	}
	return false
}

// assembleLine lexes, parses, and assembles a single line of assembly into
// its encoded bytes.
func assembleLine(line string) ([]byte, error) {
	toks, err := lexer.New(line).All()
	if err != nil {
		return nil, err
	}
	items, err := parser.New(toks).Parse()
	if err != nil {
		return nil, err
	}
	program, _, err := assembler.Assemble(items)
	if err != nil {
		return nil, err
	}
	return program, nil
}

// handleCommand dispatches a dot-command to a VM state-inspection method
// (spec.md §4.5, §6 "REPL surface"). Dispatch is by exact match on the whole
// trimmed, lowercased line, so a command followed by extra words is unknown.
func (r *REPL) handleCommand(cmd string) bool {
	switch cmd {
	case ".info":
		r.printf("pc: %d\nstate: %s\nflag: %t\nremainder: %d\nheap: %d bytes\nprogram: %d bytes\n",
			r.VM.PC(), r.VM.State(), r.VM.Flag(), r.VM.Remainder(), r.VM.HeapSize(), len(r.VM.Program()))
		return false

	case ".registers":
		r.printf("%s", r.VM.DumpRegisters())
		return false

	case ".program":
		r.printf("%s", r.VM.DumpProgram())
		return false

	case ".help":
		r.printf("%s", helpText)
		return false

	case ".quit":
		r.Exit(0)
		return true

	default:
		r.printf("unknown command %q (try .help)\n", cmd)
		return false
	}
}

const helpText = `Dot-commands:
  .info        show pc, state, flag, remainder, heap and program size
  .registers   dump all 32 registers
  .program     dump the raw program bytes loaded so far
  .quit        exit the REPL
  .help        show this message

Anything else is assembled as a single instruction, appended to the running
program, and single-stepped.
`
