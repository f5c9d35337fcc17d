// Package assemble orchestrates the two-pass assembler: pass 1
// builds the symbol table, instruction IR, and data segment; pass 2
// encodes instructions into 32-bit words and resolves (or defers via
// relocation) every symbolic reference.
package assemble

import (
	"os"

	"github.com/pclava/mipsasm/internal/asmerr"
	"github.com/pclava/mipsasm/internal/data"
	"github.com/pclava/mipsasm/internal/ir"
	"github.com/pclava/mipsasm/internal/line"
	"github.com/pclava/mipsasm/internal/preprocess"
	"github.com/pclava/mipsasm/internal/reloc"
	"github.com/pclava/mipsasm/internal/symtab"
)

// Result is everything needed to serialize one object file.
type Result struct {
	Text    []byte
	Data    []byte
	Relocs  []reloc.Entry
	Symbols *symtab.Table
}

// File runs both passes over an already-preprocessed line buffer.
func File(buf *line.Buffer) (*Result, error) {
	p1, err := Pass1(buf)
	if err != nil {
		return nil, err
	}

	p2, err := Pass2(p1.Instructions, p1.Symbols)
	if err != nil {
		return nil, err
	}

	dataBytes, dataRelocs, err := resolveData(p1.DataItems)
	if err != nil {
		return nil, err
	}

	relocs := append(p2.Relocs, dataRelocs...)

	return &Result{
		Text:    p2.Text,
		Data:    dataBytes,
		Relocs:  relocs,
		Symbols: p1.Symbols,
	}, nil
}

// SourceFile preprocesses path and runs both passes over it, the
// pipeline a single `asm -c` invocation performs per input.
func SourceFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, asmerr.Wrap(asmerr.FileIO, path, err)
	}
	defer f.Close()

	buf, err := preprocess.Run(f, path)
	if err != nil {
		return nil, asmerr.Wrap(asmerr.FileIO, path, err)
	}

	return File(buf)
}

// resolveData serializes the data segment. A .word referencing a symbol
// always becomes a zero placeholder plus an R_32 relocation, even when
// the symbol is defined in this same file: resolution for data words is
// deferred to the linker uniformly (see spec end-to-end scenario 5).
func resolveData(items []ir.Datum) ([]byte, []reloc.Entry, error) {
	var relocs []reloc.Entry
	offset := uint32(0)
	for _, d := range items {
		if d.Kind == ir.DatumSymRef {
			relocs = append(relocs, reloc.Entry{
				Segment:      symtab.DATA,
				TargetOffset: offset,
				Kind:         reloc.R_32,
				Dependency:   d.SymName,
			})
		}
		offset += d.SizeBytes
	}
	return data.Serialize(items), relocs, nil
}
