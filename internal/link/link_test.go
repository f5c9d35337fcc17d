package link

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/pclava/mipsasm/internal/objfile"
	"github.com/pclava/mipsasm/internal/reloc"
	"github.com/pclava/mipsasm/internal/symtab"
)

func word(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func writeFixtureObject(t *testing.T, path string, text, data []byte, relocs []reloc.Entry, symbols []symtab.Symbol) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()
	if err := objfile.WriteObject(f, text, data, relocs, symbols); err != nil {
		t.Fatalf("WriteObject: %v", err)
	}
}

// TestTwoFileLink reproduces the two-file link scenario: file A defines
// a GLOBAL "foo" (jr $ra); file B references it through an R_26
// relocation in a jal instruction.
func TestTwoFileLink(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.o")
	bPath := filepath.Join(dir, "b.o")

	writeFixtureObject(t, aPath, word(0x03E00008), nil, nil,
		[]symtab.Symbol{{Name: "foo", Offset: 0, Segment: symtab.TEXT, Binding: symtab.GLOBAL}})

	writeFixtureObject(t, bPath, word(0x0C000000), nil,
		[]reloc.Entry{{Segment: symtab.TEXT, TargetOffset: 0, Kind: reloc.R_26, Dependency: "foo"}},
		[]symtab.Symbol{{Name: "foo", Offset: 0, Segment: symtab.UNDEF, Binding: symtab.GLOBAL}})

	ld := New(false)
	if err := ld.AddObject(aPath); err != nil {
		t.Fatalf("AddObject(a): %v", err)
	}
	if err := ld.AddObject(bPath); err != nil {
		t.Fatalf("AddObject(b): %v", err)
	}

	code, _, entry, err := ld.Link("")
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if entry != 0x00400000 {
		t.Errorf("entry = %#08x, want TextBase", entry)
	}
	if len(code) != 8 {
		t.Fatalf("expected 8 bytes of merged text, got %d", len(code))
	}
	gotA := binary.LittleEndian.Uint32(code[0:4])
	gotB := binary.LittleEndian.Uint32(code[4:8])
	if gotA != 0x03E00008 {
		t.Errorf("file A word = %#08x, want %#08x", gotA, 0x03E00008)
	}
	if gotB != 0x0C100000 {
		t.Errorf("file B word = %#08x, want %#08x", gotB, 0x0C100000)
	}
}

func TestDuplicateGlobalSymbolIsAnError(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.o")
	bPath := filepath.Join(dir, "b.o")

	sym := []symtab.Symbol{{Name: "foo", Offset: 0, Segment: symtab.TEXT, Binding: symtab.GLOBAL}}
	writeFixtureObject(t, aPath, word(0), nil, nil, sym)
	writeFixtureObject(t, bPath, word(0), nil, nil, sym)

	ld := New(false)
	_ = ld.AddObject(aPath)
	_ = ld.AddObject(bPath)

	if _, _, _, err := ld.Link(""); err == nil {
		t.Fatalf("expected a Duplicate error for foo defined GLOBAL in two files")
	}
}

func TestUndefinedGlobalSymbolIsAnError(t *testing.T) {
	dir := t.TempDir()
	bPath := filepath.Join(dir, "b.o")

	writeFixtureObject(t, bPath, word(0x0C000000), nil,
		[]reloc.Entry{{Segment: symtab.TEXT, TargetOffset: 0, Kind: reloc.R_26, Dependency: "foo"}},
		[]symtab.Symbol{{Name: "foo", Offset: 0, Segment: symtab.UNDEF, Binding: symtab.GLOBAL}})

	ld := New(false)
	_ = ld.AddObject(bPath)

	if _, _, _, err := ld.Link(""); err == nil {
		t.Fatalf("expected an error for an unresolved reference to foo")
	}
}

func TestLayoutAssignsRunningOffsets(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.o")
	bPath := filepath.Join(dir, "b.o")

	writeFixtureObject(t, aPath, append(word(0), word(0)...), []byte{1, 2, 3, 4}, nil, nil)
	writeFixtureObject(t, bPath, word(0), nil, nil, nil)

	ld := New(false)
	_ = ld.AddObject(aPath)
	_ = ld.AddObject(bPath)
	ld.layout()

	if ld.objects[0].textOffset != 0 || ld.objects[0].dataOffset != 0 {
		t.Errorf("object A offsets = %+v", ld.objects[0])
	}
	if ld.objects[1].textOffset != 8 || ld.objects[1].dataOffset != 4 {
		t.Errorf("object B offsets = %+v, want textOffset=8 dataOffset=4", ld.objects[1])
	}
}

func TestEntryResolvesNamedSymbol(t *testing.T) {
	dir := t.TempDir()
	aPath := filepath.Join(dir, "a.o")
	writeFixtureObject(t, aPath, word(0), nil, nil,
		[]symtab.Symbol{{Name: "main", Offset: 0, Segment: symtab.TEXT, Binding: symtab.GLOBAL}})

	ld := New(false)
	_ = ld.AddObject(aPath)
	_, _, entry, err := ld.Link("main")
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if entry != 0x00400000 {
		t.Errorf("entry = %#08x, want TextBase (main is at offset 0)", entry)
	}
}
