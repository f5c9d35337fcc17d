// link - standalone linker entry point: combines object files into a
// final executable image.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pclava/mipsasm/internal/link"
	"github.com/pclava/mipsasm/internal/objfile"
)

func main() {
	output := flag.String("o", "a.out", "output file")
	entry := flag.String("e", "_start", "entry symbol (empty for TextBase)")
	verbose := flag.Bool("v", false, "verbose output")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] file1.o file2.o ...\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	ld := link.New(*verbose)
	for _, path := range flag.Args() {
		if err := ld.AddObject(path); err != nil {
			fmt.Fprintf(os.Stderr, "link: %v\n", err)
			os.Exit(1)
		}
	}

	code, data, entryAddr, err := ld.Link(*entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "link: %v\n", err)
		os.Exit(1)
	}

	if err := objfile.WriteExecutable(*output, code, data, entryAddr); err != nil {
		fmt.Fprintf(os.Stderr, "link: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Link successful: %s\n", *output)
	fmt.Printf("Code: %d bytes, Data: %d bytes, Entry: 0x%08x\n", len(code), len(data), entryAddr)
}
