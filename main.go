// Command verdigris assembles and runs Verdigris VM assembly, or drops into
// an interactive REPL over a live VM.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cartoon-raccoon/verdigris/assembler"
	"github.com/cartoon-raccoon/verdigris/config"
	"github.com/cartoon-raccoon/verdigris/lexer"
	"github.com/cartoon-raccoon/verdigris/parser"
	"github.com/cartoon-raccoon/verdigris/repl"
	"github.com/cartoon-raccoon/verdigris/vm"
)

// Version is overridable at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		replMode    = flag.Bool("repl", false, "Start the interactive REPL instead of assembling a file")
		dumpOnly    = flag.Bool("dump", false, "Assemble the file, print the bytecode, and exit without running it")
		configPath  = flag.String("config", "", "Path to a TOML configuration file (default: platform config dir)")
		entry       = flag.String("entry", "", "Entry point: a label name, or a decimal/0x-prefixed offset (default: config default_entry)")
		maxCycles   = flag.Uint64("max-cycles", 0, "Maximum steps before aborting (0 = unbounded)")
		verbose     = flag.Bool("verbose", false, "Verbose output")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("verdigris %s\n", Version)
		os.Exit(0)
	}
	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *replMode || flag.NArg() == 0 {
		runREPL(cfg)
		return
	}

	asmFile := flag.Arg(0)
	source, err := os.ReadFile(asmFile) // #nosec G304 -- user-specified assembly source path
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot read %s: %v\n", asmFile, err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("assembling %s\n", asmFile)
	}

	program, symtab, err := assembleSource(string(source))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", asmFile, err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("assembled %d bytes\n", len(program))
	}

	if *dumpOnly {
		dumpBytecode(os.Stdout, program)
		os.Exit(0)
	}

	machine := vm.New(program)
	machine.MaxHeapBytes = cfg.Execution.MaxHeapBytes
	machine.ReserveStack(uint32(cfg.Execution.StackSize))

	entryExpr := *entry
	if entryExpr == "" {
		entryExpr = cfg.Execution.DefaultEntry
	}
	pc, err := resolveEntry(entryExpr, symtab)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", asmFile, err)
		os.Exit(1)
	}
	machine.SetPC(pc)

	limit := *maxCycles
	if limit == 0 && cfg.Execution.EnableTrace {
		// Tracing implies a developer is iterating on a program that may
		// not halt yet; still run unbounded, just note it.
		if *verbose {
			fmt.Println("execution trace requested (no dedicated trace sink defined for this toolchain yet)")
		}
	}

	if err := runWithCycleLimit(machine, limit); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", asmFile, err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

// assembleSource runs the full lexer -> parser -> assembler pipeline over a
// complete source string (spec.md §1 "text -> tokens -> parsed items ->
// (symbol table, byte program)").
func assembleSource(source string) ([]byte, *assembler.SymbolTable, error) {
	toks, err := lexer.New(source).All()
	if err != nil {
		return nil, nil, err
	}
	items, err := parser.New(toks).Parse()
	if err != nil {
		return nil, nil, err
	}
	return assembler.Assemble(items)
}

// resolveEntry resolves the -entry flag/config value to a starting pc: a
// bare label name looked up in the symbol table, or a decimal/0x-prefixed
// numeric offset. Empty resolves to 0, the VM's natural starting pc.
func resolveEntry(expr string, symtab *assembler.SymbolTable) (uint32, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, nil
	}
	if n, ok := parseOffset(expr); ok {
		return n, nil
	}
	sym, ok := symtab.Lookup(expr)
	if !ok {
		return 0, fmt.Errorf("entry point %q is neither a numeric offset nor a defined label", expr)
	}
	return sym.Offset, nil
}

func parseOffset(expr string) (uint32, bool) {
	if strings.HasPrefix(expr, "0x") || strings.HasPrefix(expr, "0X") {
		n, err := strconv.ParseUint(expr[2:], 16, 32)
		if err != nil {
			return 0, false
		}
		return uint32(n), true
	}
	n, err := strconv.ParseUint(expr, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

// runWithCycleLimit drives the VM to completion, interposing a step counter
// around RunOnce so an embedder gets bounded execution even though the VM
// itself has no notion of a cycle limit (spec.md §5).
func runWithCycleLimit(machine *vm.VM, limit uint64) error {
	var cycles uint64
	for {
		halted, err := machine.RunOnce()
		if err != nil {
			return err
		}
		if halted {
			return nil
		}
		cycles++
		if limit != 0 && cycles >= limit {
			return fmt.Errorf("aborted after %d cycles (max-cycles limit reached)", cycles)
		}
	}
}

func dumpBytecode(w *os.File, program []byte) {
	fmt.Fprintf(w, "%d bytes\n", len(program))
	for i := 0; i < len(program); i += 16 {
		end := i + 16
		if end > len(program) {
			end = len(program)
		}
		fmt.Fprintf(w, "%04x  ", i)
		for _, b := range program[i:end] {
			fmt.Fprintf(w, "%02x ", b)
		}
		fmt.Fprintln(w)
	}
}

func runREPL(cfg *config.Config) {
	r := repl.New(os.Stdin, os.Stdout, cfg.REPL.Prompt)
	r.VM.MaxHeapBytes = cfg.Execution.MaxHeapBytes
	r.VM.ReserveStack(uint32(cfg.Execution.StackSize))
	r.Exit = os.Exit
	r.Run(os.Stderr)
}

func printHelp() {
	fmt.Printf(`verdigris %s

Usage: verdigris [options] <assembly-file>
       verdigris -repl

Options:
  -help              Show this help message
  -version           Show version information
  -repl              Start the interactive REPL (default if no file given)
  -dump              Assemble the file, print the bytecode, and exit
  -config FILE       Path to a TOML configuration file
  -entry EXPR        Entry point: a label name, or a decimal/0x offset
  -max-cycles N      Abort after N VM steps (0 = unbounded)
  -verbose           Enable verbose output

Examples:
  verdigris program.vasm
  verdigris -dump program.vasm
  verdigris -entry main program.vasm
  verdigris -repl

REPL dot-commands:
  .info  .registers  .program  .quit  .help
`, Version)
}
