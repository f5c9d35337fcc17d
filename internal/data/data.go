// Package data implements the data-segment builder: parsing
// .word/.half/.byte/.ascii/.asciiz/.space/.align directives into a
// sequence of Datum items with a running byte offset, correct padding
// and alignment.
package data

import (
	"strings"

	"github.com/pclava/mipsasm/internal/asmerr"
	"github.com/pclava/mipsasm/internal/ir"
	"github.com/pclava/mipsasm/internal/token"
)

// Builder accumulates Datum entries and tracks the current byte offset
// within the data segment.
type Builder struct {
	items  []ir.Datum
	offset uint32
}

func New() *Builder { return &Builder{} }

func (b *Builder) Offset() uint32   { return b.offset }
func (b *Builder) Items() []ir.Datum { return b.items }

func (b *Builder) emit(d ir.Datum) {
	b.items = append(b.items, d)
	b.offset += d.SizeBytes
}

// pad inserts an explicit Space datum to bring the offset up to the next
// multiple of align (align must be a power of two).
func (b *Builder) pad(align uint32, src ir.SourceLine) {
	rem := b.offset % align
	if rem == 0 {
		return
	}
	n := align - rem
	b.emit(ir.Datum{Kind: ir.DatumSpace, SpaceBytes: n, SizeBytes: n, SourceLine: src})
}

// Byte appends one .byte value; must fit in [-128, 127].
func (b *Builder) Byte(v int32, src ir.SourceLine) error {
	if v < -128 || v > 127 {
		return asmerr.AtLine(asmerr.SizeError, src.File, src.Num, src.Text, "")
	}
	b.emit(ir.Datum{Kind: ir.DatumByte, Byte: int8(v), SizeBytes: 1, SourceLine: src})
	return nil
}

// Half appends one .half value, little-endian, 2-byte aligned.
func (b *Builder) Half(v int32, src ir.SourceLine) error {
	if v < -32768 || v > 65535 {
		return asmerr.AtLine(asmerr.SizeError, src.File, src.Num, src.Text, "")
	}
	b.pad(2, src)
	b.emit(ir.Datum{Kind: ir.DatumHalf, Half: int16(v), SizeBytes: 2, SourceLine: src})
	return nil
}

// Word appends one .word numeric value, little-endian, 4-byte aligned.
func (b *Builder) Word(v int32, src ir.SourceLine) error {
	b.pad(4, src)
	b.emit(ir.Datum{Kind: ir.DatumWord, Word: v, SizeBytes: 4, SourceLine: src})
	return nil
}

// WordSymbol appends a zero placeholder .word whose value is an
// unresolved symbol reference; pass 2 turns it into an R_32 relocation.
func (b *Builder) WordSymbol(name string, src ir.SourceLine) error {
	b.pad(4, src)
	b.emit(ir.Datum{Kind: ir.DatumSymRef, SymName: name, SizeBytes: 4, SourceLine: src})
	return nil
}

// Ascii appends raw string bytes (escapes already processed), no
// trailing NUL.
func (b *Builder) Ascii(raw []byte, src ir.SourceLine) {
	b.emit(ir.Datum{Kind: ir.DatumString, Bytes: raw, SizeBytes: uint32(len(raw)), SourceLine: src})
}

// Asciiz is Ascii plus a trailing NUL byte.
func (b *Builder) Asciiz(raw []byte, src ir.SourceLine) {
	b.emit(ir.Datum{Kind: ir.DatumString, Bytes: raw, NullTerminate: true, SizeBytes: uint32(len(raw) + 1), SourceLine: src})
}

// Space appends N zero bytes; N must be > 0.
func (b *Builder) Space(n uint32, src ir.SourceLine) error {
	if n == 0 {
		return asmerr.AtLine(asmerr.InvalidArgs, src.File, src.Num, src.Text, "")
	}
	b.emit(ir.Datum{Kind: ir.DatumSpace, SpaceBytes: n, SizeBytes: n, SourceLine: src})
	return nil
}

// Align pads to a 2^k boundary, k in {0,1,2,3}.
func (b *Builder) Align(k int, src ir.SourceLine) error {
	if k < 0 || k > 3 {
		return asmerr.AtLine(asmerr.InvalidArgs, src.File, src.Num, src.Text, "")
	}
	b.pad(uint32(1)<<uint(k), src)
	return nil
}

// ParseOperands splits a comma-separated operand list into trimmed
// tokens, as used by .byte/.half/.word's `v[, v...]` form.
func ParseOperands(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseStringLiteral strips the surrounding quotes from a `"..."` token
// and decodes its escapes.
func ParseStringLiteral(tok string) ([]byte, error) {
	if len(tok) < 2 || tok[0] != '"' || tok[len(tok)-1] != '"' {
		return nil, asmerr.New(asmerr.InvalidArg, "", tok)
	}
	return token.DecodeString(tok[1 : len(tok)-1])
}

// Serialize lays out items sequentially into a byte slice, exactly as
// the data builder's offsets predict.
func Serialize(items []ir.Datum) []byte {
	out := make([]byte, 0, 64)
	for _, d := range items {
		switch d.Kind {
		case ir.DatumByte:
			out = append(out, byte(d.Byte))
		case ir.DatumHalf:
			u := uint16(d.Half)
			out = append(out, byte(u), byte(u>>8))
		case ir.DatumWord, ir.DatumSymRef:
			u := uint32(d.Word)
			out = append(out, byte(u), byte(u>>8), byte(u>>16), byte(u>>24))
		case ir.DatumString:
			out = append(out, d.Bytes...)
			if d.NullTerminate {
				out = append(out, 0)
			}
		case ir.DatumSpace:
			out = append(out, make([]byte, d.SpaceBytes)...)
		}
	}
	return out
}
