// asm-only - assembles each source file into its own relocatable object
// file (sourceN.o), without linking. This is the `asm -c` form; the
// combined assemble+link CLI contract lives in cmd/mips.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pclava/mipsasm/internal/assemble"
	"github.com/pclava/mipsasm/internal/debugdump"
	"github.com/pclava/mipsasm/internal/objfile"
)

func main() {
	args := os.Args[1:]
	dump := false
	if len(args) > 0 && args[0] == "-d" {
		dump = true
		args = args[1:]
	}

	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "usage: asm [-d] <src1> [src2 ...]\n")
		os.Exit(1)
	}

	for _, src := range args {
		if err := assembleOne(src, dump); err != nil {
			fmt.Fprintf(os.Stderr, "asm: %v\n", err)
			os.Exit(1)
		}
	}
}

func assembleOne(src string, dump bool) error {
	result, err := assemble.SourceFile(src)
	if err != nil {
		return err
	}

	out := strings.TrimSuffix(src, ".s") + ".o"
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := objfile.WriteObject(f, result.Text, result.Data, result.Relocs, result.Symbols.All()); err != nil {
		return err
	}

	fmt.Printf("%s -> %s\n", src, out)

	if dump {
		fmt.Fprintf(os.Stderr, "-- symbols: %s --\n", src)
		debugdump.Symbols(os.Stderr, result.Symbols)
		fmt.Fprintf(os.Stderr, "-- relocations: %s --\n", src)
		debugdump.Relocations(os.Stderr, result.Relocs, result.Symbols)
	}
	return nil
}
