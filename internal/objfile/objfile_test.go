package objfile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pclava/mipsasm/internal/reloc"
	"github.com/pclava/mipsasm/internal/symtab"
)

func TestWriteReadObjectRoundTrip(t *testing.T) {
	text := []byte{0x20, 0x40, 0x2A, 0x01}
	data := []byte{1, 2, 3, 4}
	relocs := []reloc.Entry{
		{Segment: symtab.DATA, TargetOffset: 0, Kind: reloc.R_32, Dependency: "target"},
	}
	symbols := []symtab.Symbol{
		{Name: "main", Offset: 0, Segment: symtab.TEXT, Binding: symtab.GLOBAL},
	}

	var buf bytes.Buffer
	if err := WriteObject(&buf, text, data, relocs, symbols); err != nil {
		t.Fatalf("WriteObject: %v", err)
	}

	obj, err := ReadObject(&buf)
	if err != nil {
		t.Fatalf("ReadObject: %v", err)
	}
	if obj.Header.TextSize != 4 || obj.Header.DataSize != 4 || obj.Header.Entry != 0 {
		t.Errorf("got header %+v", obj.Header)
	}
	if !bytes.Equal(obj.Text, text) || !bytes.Equal(obj.Data, data) {
		t.Errorf("text/data did not round-trip: text=%v data=%v", obj.Text, obj.Data)
	}
	if len(obj.Relocs) != 1 || obj.Relocs[0].Name != "target" || obj.Relocs[0].Kind != uint32(reloc.R_32) {
		t.Errorf("got relocs %+v", obj.Relocs)
	}
	if len(obj.Symbols) != 1 || obj.Symbols[0].Name != "main" || obj.Symbols[0].Segment != uint32(symtab.TEXT) {
		t.Errorf("got symbols %+v", obj.Symbols)
	}
}

func TestReadObjectFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.o")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := WriteObject(f, []byte{0, 0, 0, 0}, nil, nil, nil); err != nil {
		t.Fatalf("WriteObject: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	obj, err := ReadObjectFile(path)
	if err != nil {
		t.Fatalf("ReadObjectFile: %v", err)
	}
	if obj.Header.TextSize != 4 || obj.Header.DataSize != 0 {
		t.Errorf("got header %+v", obj.Header)
	}
	if len(obj.Relocs) != 0 || len(obj.Symbols) != 0 {
		t.Errorf("expected empty tables, got relocs=%v symbols=%v", obj.Relocs, obj.Symbols)
	}
}

func TestReadObjectRejectsUnalignedTextSize(t *testing.T) {
	hdr := make([]byte, HeaderSize)
	hdr[0] = 3 // text size 3, not a multiple of 4
	if _, err := ReadObject(bytes.NewReader(hdr)); err == nil {
		t.Errorf("expected an error for a text size that isn't a multiple of 4")
	}
}

func TestWriteExecutablePopulatesEntry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.out")
	if err := WriteExecutable(path, []byte{1, 2, 3, 4}, []byte{5, 6}, 0x00400000); err != nil {
		t.Fatalf("WriteExecutable: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := append([]byte{4, 0, 0, 0, 2, 0, 0, 0, 0, 0, 0x40, 0x00}, []byte{1, 2, 3, 4, 5, 6}...)
	if !bytes.Equal(raw, want) {
		t.Errorf("got %v, want %v", raw, want)
	}
}
