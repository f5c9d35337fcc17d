package data

import (
	"testing"

	"github.com/pclava/mipsasm/internal/ir"
)

var noSrc = ir.SourceLine{File: "test.s", Num: 1, Text: ""}

func TestByteRangeChecked(t *testing.T) {
	b := New()
	if err := b.Byte(127, noSrc); err != nil {
		t.Fatalf("Byte(127): %v", err)
	}
	if err := b.Byte(-128, noSrc); err != nil {
		t.Fatalf("Byte(-128): %v", err)
	}
	if err := b.Byte(128, noSrc); err == nil {
		t.Errorf("Byte(128) should be out of range")
	}
}

func TestHalfAligns(t *testing.T) {
	b := New()
	_ = b.Byte(1, noSrc)
	if err := b.Half(0x1234, noSrc); err != nil {
		t.Fatalf("Half: %v", err)
	}
	got := Serialize(b.Items())
	want := []byte{1, 0, 0x34, 0x12}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("byte %d: got %#02x want %#02x", i, got[i], want[i])
		}
	}
}

func TestWordAligns(t *testing.T) {
	b := New()
	_ = b.Byte(1, noSrc)
	if err := b.Word(1, noSrc); err != nil {
		t.Fatalf("Word: %v", err)
	}
	if b.Offset() != 8 {
		t.Errorf("expected offset 8 after 1-byte value + 3 pad + 4-byte word, got %d", b.Offset())
	}
}

func TestAlignNoopWhenAlreadyAligned(t *testing.T) {
	b := New()
	if err := b.Align(3, noSrc); err != nil {
		t.Fatalf("Align: %v", err)
	}
	if b.Offset() != 0 {
		t.Errorf("expected no padding at offset 0, got %d", b.Offset())
	}
}

func TestAlignPadsToBoundary(t *testing.T) {
	b := New()
	_ = b.Byte(1, noSrc)
	if err := b.Align(2, noSrc); err != nil {
		t.Fatalf("Align: %v", err)
	}
	if b.Offset() != 4 {
		t.Errorf("expected offset 4 after aligning to 2^2, got %d", b.Offset())
	}
}

func TestAsciizEmptyIsOneNUL(t *testing.T) {
	b := New()
	b.Asciiz(nil, noSrc)
	got := Serialize(b.Items())
	if len(got) != 1 || got[0] != 0 {
		t.Errorf("got %v, want a single NUL byte", got)
	}
}

func TestAsciiEmptyIsZeroBytes(t *testing.T) {
	b := New()
	b.Ascii(nil, noSrc)
	if len(Serialize(b.Items())) != 0 {
		t.Errorf("expected zero bytes for an empty .ascii")
	}
}

func TestSpaceRejectsZero(t *testing.T) {
	b := New()
	if err := b.Space(0, noSrc); err == nil {
		t.Errorf("Space(0) should be rejected")
	}
}

func TestWordSymbolEmitsPlaceholder(t *testing.T) {
	b := New()
	if err := b.WordSymbol("target", noSrc); err != nil {
		t.Fatalf("WordSymbol: %v", err)
	}
	got := Serialize(b.Items())
	want := []byte{0, 0, 0, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want zero placeholder", got)
		}
	}
}
