// Package clicmd implements the loxvm command-line tool: flag parsing,
// environment-driven configuration, and the REPL/file-execution entry
// points, in the style of the teacher's internal/maincmd package.
package clicmd

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/loxlang/loxvm/lang/compiler"
	"github.com/loxlang/loxvm/lang/object"
	"github.com/loxlang/loxvm/lang/vm"
)

const binName = "loxvm"

// Exit codes per spec.md §6.
const (
	ExitOK            = mainer.ExitCode(0)
	ExitUsage         = mainer.ExitCode(64)
	ExitCompileError  = mainer.ExitCode(65)
	ExitRuntimeError  = mainer.ExitCode(70)
	ExitFileReadError = mainer.ExitCode(74)
)

var shortUsage = fmt.Sprintf(`
usage: %s [<option>...] [<path>]
Run '%[1]s --help' for details.
`, binName)

var longUsage = fmt.Sprintf(`usage: %s [<option>...] [<path>]
       %[1]s -h|--help
       %[1]s -v|--version

With a <path> argument, compiles and runs the script at that path. With no
arguments, starts an interactive REPL reading one line at a time from
standard input.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       --disassemble             Print disassembled bytecode for each
                                 compiled chunk to standard error before
                                 running it.
`, binName)

// Cmd is the loxvm command, parsed from argv by mainer.Parser the same
// way the teacher's maincmd.Cmd is.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help        bool `flag:"h,help"`
	Version     bool `flag:"v,version"`
	Disassemble bool `flag:"disassemble"`

	args []string
}

func (c *Cmd) SetArgs(args []string) { c.args = args }
func (c *Cmd) SetFlags(map[string]bool) {}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) > 1 {
		return fmt.Errorf("at most one script path may be given")
	}
	return nil
}

// Main parses args and dispatches to the REPL or file runner, returning
// the process exit code spec.md §6 specifies.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{EnvVars: false, EnvPrefix: binName + "_"}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return ExitUsage
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return ExitOK
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return ExitOK
	}

	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid configuration: %s\n", err)
		return ExitUsage
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)

	if len(c.args) == 1 {
		return c.runFile(ctx, stdio, cfg, c.args[0])
	}
	return c.repl(ctx, stdio, cfg)
}

func (c *Cmd) newVM(cfg Config) *vm.VM {
	hp := object.NewHeap()
	hp.Stress = cfg.GCStress
	if cfg.GCGrowFactor > 0 {
		hp.GrowFactor = cfg.GCGrowFactor
	}
	m := vm.New(hp)
	m.MaxSteps = cfg.MaxSteps
	return m
}

// runFile implements the `loxvm <path>` form: compile-and-run a whole
// file, per spec.md §6, translating compile/runtime failures into the
// matching exit code.
func (c *Cmd) runFile(_ context.Context, stdio mainer.Stdio, cfg Config, path string) mainer.ExitCode {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "can't read file '%s': %s\n", path, err)
		return ExitFileReadError
	}

	m := c.newVM(cfg)
	m.Stdout = stdio.Stdout

	if c.Disassemble {
		c.printDisassembly(stdio, source)
	}

	result, err := m.Interpret(source)
	return c.exitCodeFor(stdio, result, err)
}

func (c *Cmd) printDisassembly(stdio mainer.Stdio, source []byte) {
	hp := object.NewHeap()
	fn, err := compiler.Compile(hp, source)
	if err != nil {
		return
	}
	var dump func(fn *object.Function, name string)
	dump = func(fn *object.Function, name string) {
		fmt.Fprint(stdio.Stderr, compiler.Disassemble(fn.Chunk, name))
		for _, k := range fn.Chunk.Constants {
			if inner, ok := k.(*object.Function); ok {
				dump(inner, inner.String())
			}
		}
	}
	dump(fn, "script")
}

func (c *Cmd) exitCodeFor(stdio mainer.Stdio, result vm.InterpretResult, err error) mainer.ExitCode {
	switch result {
	case vm.CompileError:
		fmt.Fprintln(stdio.Stderr, err)
		return ExitCompileError
	case vm.RuntimeErr:
		fmt.Fprintln(stdio.Stderr, err)
		return ExitRuntimeError
	default:
		return ExitOK
	}
}

// repl implements the no-argument interactive mode: read one line at a
// time from stdin, compile and run it in a VM whose globals persist
// across lines, per spec.md §6.
func (c *Cmd) repl(_ context.Context, stdio mainer.Stdio, cfg Config) mainer.ExitCode {
	m := c.newVM(cfg)
	m.Stdout = stdio.Stdout

	scanner := bufio.NewScanner(stdio.Stdin)
	fmt.Fprint(stdio.Stdout, "> ")
	for scanner.Scan() {
		line := scanner.Text()
		if result, err := m.Interpret([]byte(line)); err != nil {
			c.exitCodeFor(stdio, result, err)
		}
		fmt.Fprint(stdio.Stdout, "> ")
	}
	return ExitOK
}
