// Package objfile implements the object-file and executable codec: the
// deterministic, little-endian serialization described in the header
// layout below, following the encoding/binary approach of this
// project's linker stage but with its own fixed layout.
package objfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/pclava/mipsasm/internal/asmerr"
	"github.com/pclava/mipsasm/internal/reloc"
	"github.com/pclava/mipsasm/internal/symtab"
)

// HeaderSize is the fixed 12-byte object/executable header:
// text_size_bytes, data_size_bytes, entry (all little-endian u32).
const HeaderSize = 12

// NameFieldSize is the fixed width of a NUL-padded name field in the
// relocation and symbol tables.
const NameFieldSize = 32

// Header is the common {text_size, data_size, entry} triple. In object
// files entry is always written as 0; the linker populates it for the
// executable.
type Header struct {
	TextSize uint32
	DataSize uint32
	Entry    uint32
}

// Reloc is the on-disk relocation record.
type Reloc struct {
	Segment      uint32
	TargetOffset uint32
	Kind         uint32
	Name         string
}

// SymbolRec is the on-disk symbol record. Note the field order differs
// from the relocation record's: name first here.
type SymbolRec struct {
	Name    string
	Offset  uint32
	Binding uint32
	Segment uint32
}

// Object is a fully decoded object file.
type Object struct {
	Header  Header
	Text    []byte
	Data    []byte
	Relocs  []Reloc
	Symbols []SymbolRec
}

func writeName(w io.Writer, name string) error {
	buf := make([]byte, NameFieldSize)
	copy(buf, name)
	_, err := w.Write(buf)
	return err
}

func readName(r io.Reader) (string, error) {
	buf := make([]byte, NameFieldSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	end := 0
	for end < len(buf) && buf[end] != 0 {
		end++
	}
	return string(buf[:end]), nil
}

// WriteObject serializes an object file to w: header, text, data,
// reloc table, symbol table. entry is always 0 for object files.
func WriteObject(w io.Writer, text, data []byte, relocs []reloc.Entry, symbols []symtab.Symbol) error {
	hdr := Header{TextSize: uint32(len(text)), DataSize: uint32(len(data)), Entry: 0}
	if err := writeHeader(w, hdr); err != nil {
		return err
	}
	if _, err := w.Write(text); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(relocs))); err != nil {
		return err
	}
	for _, r := range relocs {
		if err := binary.Write(w, binary.LittleEndian, uint32(r.Segment)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, r.TargetOffset); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(r.Kind)); err != nil {
			return err
		}
		if err := writeName(w, r.Dependency); err != nil {
			return err
		}
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(symbols))); err != nil {
		return err
	}
	for _, s := range symbols {
		if err := writeName(w, s.Name); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, s.Offset); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(s.Binding)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(s.Segment)); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(w io.Writer, h Header) error {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.TextSize)
	binary.LittleEndian.PutUint32(buf[4:8], h.DataSize)
	binary.LittleEndian.PutUint32(buf[8:12], h.Entry)
	_, err := w.Write(buf)
	return err
}

// ReadObject parses a complete object file from r.
func ReadObject(r io.Reader) (*Object, error) {
	hdrBuf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, hdrBuf); err != nil {
		return nil, asmerr.Wrap(asmerr.FileIO, "", fmt.Errorf("reading header: %w", err))
	}
	hdr := Header{
		TextSize: binary.LittleEndian.Uint32(hdrBuf[0:4]),
		DataSize: binary.LittleEndian.Uint32(hdrBuf[4:8]),
		Entry:    binary.LittleEndian.Uint32(hdrBuf[8:12]),
	}
	if hdr.TextSize%4 != 0 {
		return nil, asmerr.New(asmerr.SizeError, "", "text size not a multiple of 4")
	}

	text := make([]byte, hdr.TextSize)
	if _, err := io.ReadFull(r, text); err != nil {
		return nil, asmerr.Wrap(asmerr.FileIO, "", fmt.Errorf("reading text: %w", err))
	}
	data := make([]byte, hdr.DataSize)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, asmerr.Wrap(asmerr.FileIO, "", fmt.Errorf("reading data: %w", err))
	}

	var relocCount uint32
	if err := binary.Read(r, binary.LittleEndian, &relocCount); err != nil {
		return nil, asmerr.Wrap(asmerr.FileIO, "", fmt.Errorf("reading reloc count: %w", err))
	}
	relocs := make([]Reloc, relocCount)
	for i := range relocs {
		var seg, off, kind uint32
		if err := binary.Read(r, binary.LittleEndian, &seg); err != nil {
			return nil, asmerr.Wrap(asmerr.FileIO, "", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &off); err != nil {
			return nil, asmerr.Wrap(asmerr.FileIO, "", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &kind); err != nil {
			return nil, asmerr.Wrap(asmerr.FileIO, "", err)
		}
		name, err := readName(r)
		if err != nil {
			return nil, asmerr.Wrap(asmerr.FileIO, "", err)
		}
		relocs[i] = Reloc{Segment: seg, TargetOffset: off, Kind: kind, Name: name}
	}

	var symCount uint32
	if err := binary.Read(r, binary.LittleEndian, &symCount); err != nil {
		return nil, asmerr.Wrap(asmerr.FileIO, "", fmt.Errorf("reading symbol count: %w", err))
	}
	symbols := make([]SymbolRec, symCount)
	for i := range symbols {
		name, err := readName(r)
		if err != nil {
			return nil, asmerr.Wrap(asmerr.FileIO, "", err)
		}
		var off, binding, seg uint32
		if err := binary.Read(r, binary.LittleEndian, &off); err != nil {
			return nil, asmerr.Wrap(asmerr.FileIO, "", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &binding); err != nil {
			return nil, asmerr.Wrap(asmerr.FileIO, "", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &seg); err != nil {
			return nil, asmerr.Wrap(asmerr.FileIO, "", err)
		}
		symbols[i] = SymbolRec{Name: name, Offset: off, Binding: binding, Segment: seg}
	}

	return &Object{Header: hdr, Text: text, Data: data, Relocs: relocs, Symbols: symbols}, nil
}

// ReadObjectFile opens and fully parses path.
func ReadObjectFile(path string) (*Object, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, asmerr.Wrap(asmerr.FileIO, path, err)
	}
	defer f.Close()
	return ReadObject(f)
}

// WriteExecutable writes the final linked image: header with a
// populated entry field, then text, then data. No relocation or symbol
// tables (equivalently, both counts are zero, so we omit them).
func WriteExecutable(path string, text, data []byte, entry uint32) error {
	f, err := os.Create(path)
	if err != nil {
		return asmerr.Wrap(asmerr.FileIO, path, err)
	}
	defer f.Close()

	if err := writeHeader(f, Header{TextSize: uint32(len(text)), DataSize: uint32(len(data)), Entry: entry}); err != nil {
		return asmerr.Wrap(asmerr.FileIO, path, err)
	}
	if _, err := f.Write(text); err != nil {
		return asmerr.Wrap(asmerr.FileIO, path, err)
	}
	if _, err := f.Write(data); err != nil {
		return asmerr.Wrap(asmerr.FileIO, path, err)
	}
	return nil
}
