package token

import (
	"testing"

	"github.com/pclava/mipsasm/internal/ir"
)

func TestParseRegister(t *testing.T) {
	tests := []struct {
		tok  string
		want uint8
		ok   bool
	}{
		{"$zero", 0, true},
		{"$ra", 31, true},
		{"$t0", 8, true},
		{"$0", 0, true},
		{"$31", 31, true},
		{"$32", 0, false},
		{"t0", 0, false},
	}
	for _, tc := range tests {
		got, ok := ParseRegister(tc.tok)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("ParseRegister(%q) = (%d, %v), want (%d, %v)", tc.tok, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseImmediateInteger(t *testing.T) {
	tests := []struct {
		tok  string
		want int32
	}{
		{"42", 42},
		{"-7", -7},
		{"0x1A", 0x1A},
		{"0b101", 5},
		{"010", 8},
	}
	for _, tc := range tests {
		imm, err := ParseImmediate(tc.tok)
		if err != nil {
			t.Fatalf("ParseImmediate(%q): %v", tc.tok, err)
		}
		if imm.Kind != ir.ImmInteger || imm.IntValue != tc.want {
			t.Errorf("ParseImmediate(%q) = %+v, want IntValue=%d", tc.tok, imm, tc.want)
		}
	}
}

func TestParseImmediateSymbol(t *testing.T) {
	imm, err := ParseImmediate("loop_top")
	if err != nil {
		t.Fatalf("ParseImmediate: %v", err)
	}
	if imm.Kind != ir.ImmSymbol || imm.Symbol != "loop_top" || imm.Modifier != ir.ModNone {
		t.Errorf("got %+v", imm)
	}
}

func TestParseImmediateCharLiteral(t *testing.T) {
	imm, err := ParseImmediate(`"a"`)
	if err != nil {
		t.Fatalf("ParseImmediate: %v", err)
	}
	if imm.Kind != ir.ImmInteger || imm.IntValue != int32('a') {
		t.Errorf("got %+v", imm)
	}
}

func TestParseImmediateBaseOffsetReclassified(t *testing.T) {
	imm, err := ParseImmediate("4($sp)")
	if err != nil {
		t.Fatalf("ParseImmediate: %v", err)
	}
	if imm.Kind != ir.ImmBaseOffset {
		t.Fatalf("expected ImmBaseOffset, got %+v", imm)
	}
	offset, reg, err := ParseBaseOffset(imm.BaseOffsetText)
	if err != nil {
		t.Fatalf("ParseBaseOffset: %v", err)
	}
	if offset != 4 || reg != 29 {
		t.Errorf("got offset=%d reg=%d, want offset=4 reg=29 ($sp)", offset, reg)
	}
}

func TestParseBaseOffsetNoImmediate(t *testing.T) {
	offset, reg, err := ParseBaseOffset("($t2)")
	if err != nil {
		t.Fatalf("ParseBaseOffset: %v", err)
	}
	if offset != 0 || reg != 10 {
		t.Errorf("got offset=%d reg=%d", offset, reg)
	}
}

func TestDecodeEscape(t *testing.T) {
	tests := []struct {
		in       string
		consumed int
		want     byte
	}{
		{`\n`, 2, '\n'},
		{`\t`, 2, '\t'},
		{`\\`, 2, '\\'},
		{`\101`, 4, 'A'},
		{`\x41`, 4, 'A'},
	}
	for _, tc := range tests {
		n, ch, err := DecodeEscape(tc.in)
		if err != nil {
			t.Fatalf("DecodeEscape(%q): %v", tc.in, err)
		}
		if n != tc.consumed || ch != tc.want {
			t.Errorf("DecodeEscape(%q) = (%d, %q), want (%d, %q)", tc.in, n, ch, tc.consumed, tc.want)
		}
	}
}

func TestParseImmediateSymbolTooLong(t *testing.T) {
	name := ""
	for i := 0; i < 32; i++ {
		name += "x"
	}
	if _, err := ParseImmediate(name); err == nil {
		t.Fatalf("expected InvalidSymbol for name longer than 31 chars")
	}
}
