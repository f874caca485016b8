// Command tryrustc compiles a single source file to either plain C or a
// textual LLVM module, running the full pipeline: lex, parse, lower to
// IR, optimize, emit.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/acd1034/tryrustc/internal/codegen/cemit"
	"github.com/acd1034/tryrustc/internal/codegen/llvmemit"
	"github.com/acd1034/tryrustc/internal/diag"
	"github.com/acd1034/tryrustc/internal/irgen"
	"github.com/acd1034/tryrustc/internal/parser"
	"github.com/acd1034/tryrustc/internal/passes"
	"github.com/fatih/color"
)

const usage = `usage: tryrustc [-ll | -ir1] [-o<path>] <input-path>

  <input-path>  source file to compile, or "-" for stdin
  -ll           emit a textual LLVM module
  -ir1          emit C source via the custom IR back end (default)
  -o<path>      write output to <path>, or "-" for stdout (default)
  --help        print this message and exit
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	backend := "ir1"
	outPath := "-"
	var inputPath string

	for _, arg := range args {
		switch {
		case arg == "--help":
			fmt.Fprint(os.Stdout, usage)
			return 0
		case arg == "-ll":
			backend = "ll"
		case arg == "-ir1":
			backend = "ir1"
		case strings.HasPrefix(arg, "-o"):
			outPath = arg[len("-o"):]
		case strings.HasPrefix(arg, "-") && arg != "-":
			fmt.Fprintf(os.Stderr, "tryrustc: unknown flag %q\n\n%s", arg, usage)
			return 1
		default:
			inputPath = arg
		}
	}

	if inputPath == "" {
		fmt.Fprint(os.Stderr, usage)
		return 1
	}

	src, filename, err := readInput(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tryrustc: %v\n", err)
		return 1
	}

	items, err := parser.Parse(filename, src)
	if err != nil {
		diag.Report(err)
		return 1
	}

	mod, err := irgen.Lower(filename, items)
	if err != nil {
		diag.Report(err)
		return 1
	}

	pipeline := passes.NewPipeline(&passes.ConstantFoldingPass{}, &passes.DeadCodeEliminationPass{})
	pipeline.Run(mod)

	var out string
	if backend == "ll" {
		out = llvmemit.Emit(mod)
	} else {
		out = cemit.Emit(mod)
	}

	if err := writeOutput(outPath, out); err != nil {
		fmt.Fprintf(os.Stderr, "tryrustc: %v\n", err)
		return 1
	}

	color.New(color.FgGreen).Fprintln(os.Stderr, "compilation successful")
	return 0
}

func readInput(path string) (src, filename string, err error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(b), "<stdin>", nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(b), path, nil
}

func writeOutput(path, content string) error {
	if path == "-" {
		_, err := fmt.Fprint(os.Stdout, content)
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}
