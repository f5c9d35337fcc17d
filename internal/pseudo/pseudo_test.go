package pseudo

import (
	"testing"

	"github.com/pclava/mipsasm/internal/ir"
)

var noLine = ir.SourceLine{File: "test.s", Num: 1, Text: ""}

func TestExpandLISmallFitsOneInstruction(t *testing.T) {
	in := ir.Instruction{
		Mnemonic:  "li",
		Registers: [3]uint8{8, ir.NoReg, ir.NoReg},
		Immediate: ir.Immediate{Kind: ir.ImmInteger, IntValue: 42},
		Line:      noLine,
	}
	out, err := Expand(in)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(out) != 1 || out[0].Mnemonic != "addiu" {
		t.Fatalf("got %+v", out)
	}
	if out[0].Registers != [3]uint8{8, Zero, ir.NoReg} {
		t.Errorf("got registers %+v", out[0].Registers)
	}
}

func TestExpandLILargeSplitsHiLo(t *testing.T) {
	in := ir.Instruction{
		Mnemonic:  "li",
		Registers: [3]uint8{8, ir.NoReg, ir.NoReg},
		Immediate: ir.Immediate{Kind: ir.ImmInteger, IntValue: 0x12345678},
		Line:      noLine,
	}
	out, err := Expand(in)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(out) != 2 || out[0].Mnemonic != "lui" || out[1].Mnemonic != "ori" {
		t.Fatalf("got %+v", out)
	}
	if out[0].Registers[0] != At || out[1].Registers[1] != At {
		t.Errorf("expected $at as scratch register, got %+v", out)
	}
	if out[0].Immediate.IntValue != 0x1234 || out[1].Immediate.IntValue != 0x5678 {
		t.Errorf("got hi=%#x lo=%#x", out[0].Immediate.IntValue, out[1].Immediate.IntValue)
	}
}

func TestExpandLASplitsHiLo(t *testing.T) {
	in := ir.Instruction{
		Mnemonic:  "la",
		Registers: [3]uint8{8, ir.NoReg, ir.NoReg},
		Immediate: ir.Immediate{Kind: ir.ImmSymbol, Symbol: "buf"},
		Line:      noLine,
	}
	out, err := Expand(in)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected lui+ori pair, got %+v", out)
	}
	if out[0].Immediate.Modifier != ir.ModHi || out[1].Immediate.Modifier != ir.ModLo {
		t.Errorf("got modifiers %v, %v", out[0].Immediate.Modifier, out[1].Immediate.Modifier)
	}
	if out[0].Immediate.Symbol != "buf" || out[1].Immediate.Symbol != "buf" {
		t.Errorf("expected both halves to reference %q", "buf")
	}
}

func TestExpandMove(t *testing.T) {
	in := ir.Instruction{
		Mnemonic:  "move",
		Registers: [3]uint8{8, 9, ir.NoReg},
		Immediate: ir.Immediate{Kind: ir.ImmNone},
		Line:      noLine,
	}
	out, err := Expand(in)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(out) != 1 || out[0].Mnemonic != "addu" {
		t.Fatalf("got %+v", out)
	}
	if out[0].Registers != [3]uint8{8, Zero, 9} {
		t.Errorf("got registers %+v, want {rd=8, rs=zero, rt=9}", out[0].Registers)
	}
}

func TestExpandCompareBranches(t *testing.T) {
	tests := []struct {
		mnemonic   string
		sltLHS     uint8
		sltRHS     uint8
		branchOp   string
	}{
		{"blt", 8, 9, "bne"},
		{"bgt", 9, 8, "bne"},
		{"ble", 9, 8, "beq"},
		{"bge", 8, 9, "beq"},
	}
	for _, tc := range tests {
		in := ir.Instruction{
			Mnemonic:  tc.mnemonic,
			Registers: [3]uint8{8, 9, ir.NoReg},
			Immediate: ir.Immediate{Kind: ir.ImmSymbol, Symbol: "target"},
			Line:      noLine,
		}
		out, err := Expand(in)
		if err != nil {
			t.Fatalf("Expand(%s): %v", tc.mnemonic, err)
		}
		if len(out) != 2 || out[0].Mnemonic != "slt" || out[1].Mnemonic != tc.branchOp {
			t.Fatalf("Expand(%s) got %+v", tc.mnemonic, out)
		}
		if out[0].Registers != [3]uint8{At, tc.sltLHS, tc.sltRHS} {
			t.Errorf("Expand(%s) slt operands = %+v, want {at, %d, %d}", tc.mnemonic, out[0].Registers, tc.sltLHS, tc.sltRHS)
		}
		if out[1].Registers[0] != At || out[1].Registers[1] != Zero {
			t.Errorf("Expand(%s) branch operands = %+v", tc.mnemonic, out[1].Registers)
		}
		if out[1].Immediate.Symbol != "target" {
			t.Errorf("Expand(%s) branch target = %q, want %q", tc.mnemonic, out[1].Immediate.Symbol, "target")
		}
	}
}

func TestExpandUnknownMnemonic(t *testing.T) {
	in := ir.Instruction{Mnemonic: "frobnicate", Line: noLine}
	if _, err := Expand(in); err == nil {
		t.Errorf("expected an error for an unsupported pseudo mnemonic")
	}
}
