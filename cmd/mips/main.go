// mips - the combined assembler+linker CLI described by this project's
// external-interface contract:
//
//	mips <out> <src1> [src2 ...]           assemble + link, entry = _start
//	mips -c <src1> [src2 ...]              assemble each srcN -> srcN.o, no link
//	mips -e. <out> <src1> [src2 ...]       link, entry = TextBase
//	mips -e <sym> <out> <src1> [src2 ...]  link, entry = address of <sym>
//
// Argument shape here is positional and flag-like at once (a flag may
// appear before a plain output path), which doesn't fit flag.FlagSet
// cleanly, so argv is classified directly instead.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pclava/mipsasm/internal/assemble"
	"github.com/pclava/mipsasm/internal/link"
	"github.com/pclava/mipsasm/internal/objfile"
	"github.com/pclava/mipsasm/internal/preprocess"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage:\n")
	fmt.Fprintf(os.Stderr, "  mips <out> <src1> [src2 ...]\n")
	fmt.Fprintf(os.Stderr, "  mips -c <src1> [src2 ...]\n")
	fmt.Fprintf(os.Stderr, "  mips -e. <out> <src1> [src2 ...]\n")
	fmt.Fprintf(os.Stderr, "  mips -e <sym> <out> <src1> [src2 ...]\n")
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 1
	}

	switch args[0] {
	case "-c":
		return runAssembleOnly(args[1:])
	case "-e.":
		return runLink(args[1:], "")
	case "-e":
		if len(args) < 2 {
			usage()
			return 1
		}
		return runLink(args[2:], args[1])
	default:
		return runAssembleAndLink(args)
	}
}

// runAssembleOnly implements `mips -c src1 [src2 ...]`.
func runAssembleOnly(srcs []string) int {
	if len(srcs) == 0 {
		usage()
		return 1
	}
	for _, src := range srcs {
		result, rc := assembleFile(src)
		if rc != 0 {
			return rc
		}
		out := strings.TrimSuffix(src, ".s") + ".o"
		if err := writeObject(out, result); err != nil {
			fmt.Fprintf(os.Stderr, "mips: %v\n", err)
			return 3
		}
	}
	return 0
}

// runAssembleAndLink implements `mips out src1 [src2 ...]`, entry=_start.
func runAssembleAndLink(args []string) int {
	if len(args) < 2 {
		usage()
		return 1
	}
	out, srcs := args[0], args[1:]
	return assembleThenLink(srcs, out, "_start")
}

// runLink implements the two link-only forms, assembling every source
// first (both share the same pipeline as the combined form, just with
// a possibly-empty entry symbol).
func runLink(args []string, entrySymbol string) int {
	if len(args) < 2 {
		usage()
		return 1
	}
	out, srcs := args[0], args[1:]
	return assembleThenLink(srcs, out, entrySymbol)
}

func assembleThenLink(srcs []string, out, entrySymbol string) int {
	if len(srcs) == 0 {
		usage()
		return 1
	}

	tmpDir, err := os.MkdirTemp("", "mips-link-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "mips: %v\n", err)
		return 1
	}
	defer os.RemoveAll(tmpDir)

	var objPaths []string
	for i, src := range srcs {
		result, rc := assembleFile(src)
		if rc != 0 {
			return rc
		}
		objPath := fmt.Sprintf("%s/%d.o", tmpDir, i)
		if err := writeObject(objPath, result); err != nil {
			fmt.Fprintf(os.Stderr, "mips: %v\n", err)
			return 3
		}
		objPaths = append(objPaths, objPath)
	}

	ld := link.New(false)
	for _, p := range objPaths {
		if err := ld.AddObject(p); err != nil {
			fmt.Fprintf(os.Stderr, "mips: %v\n", err)
			return 4
		}
	}
	code, data, entry, err := ld.Link(entrySymbol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mips: %v\n", err)
		return 4
	}
	if err := objfile.WriteExecutable(out, code, data, entry); err != nil {
		fmt.Fprintf(os.Stderr, "mips: %v\n", err)
		return 4
	}
	return 0
}

// assembleFile runs preprocess then both assembler passes, returning
// the exit code the CLI contract assigns to each failure point (2 for
// preprocessor, 3 for assembler).
func assembleFile(src string) (*assemble.Result, int) {
	f, err := os.Open(src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mips: %v\n", err)
		return nil, 1
	}
	defer f.Close()

	buf, err := preprocess.Run(f, src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mips: could not preprocess %s: %v\n", src, err)
		return nil, 2
	}

	result, err := assemble.File(buf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mips: could not assemble %s: %v\n", src, err)
		return nil, 3
	}
	return result, 0
}

func writeObject(path string, result *assemble.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return objfile.WriteObject(f, result.Text, result.Data, result.Relocs, result.Symbols.All())
}
