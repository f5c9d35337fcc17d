package isa

import "testing"

func TestLookupKnownMnemonics(t *testing.T) {
	tests := []struct {
		mnemonic string
		opcode   uint32
		funct    uint32
		format   Format
	}{
		{"add", 0x00, 0x20, R},
		{"jr", 0x00, 0x08, R},
		{"nop", 0x00, 0x00, R},
		{"beq", 0x04, 0, I},
		{"addiu", 0x09, 0, I},
		{"lui", 0x0f, 0, I},
		{"lw", 0x23, 0, I},
		{"j", 0x02, 0, J},
		{"jal", 0x03, 0, J},
	}
	for _, tc := range tests {
		d, ok := Lookup(tc.mnemonic)
		if !ok {
			t.Fatalf("Lookup(%q): not found", tc.mnemonic)
		}
		if d.Opcode != tc.opcode || d.Funct != tc.funct || d.Format != tc.format {
			t.Errorf("Lookup(%q) = %+v, want opcode=%#x funct=%#x format=%v", tc.mnemonic, d, tc.opcode, tc.funct, tc.format)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, ok := Lookup("li"); ok {
		t.Fatalf("li is a pseudo-instruction, Lookup should not resolve it")
	}
	if _, ok := Lookup("frobnicate"); ok {
		t.Fatalf("expected unknown mnemonic to miss")
	}
}

func TestPseudosDisjointFromTable(t *testing.T) {
	for name := range Pseudos {
		if _, ok := table[name]; ok {
			t.Errorf("%q present in both Pseudos and the direct table", name)
		}
	}
}

func TestOpcodeClassifiers(t *testing.T) {
	if !IsBranchOpcode(0x04) || !IsBranchOpcode(0x05) {
		t.Errorf("beq/bne should classify as branch opcodes")
	}
	if IsBranchOpcode(0x09) {
		t.Errorf("addiu should not classify as a branch opcode")
	}
	if !IsArithmeticOpcode(0x09) || !IsArithmeticOpcode(0x0f) {
		t.Errorf("addiu/lui should classify as arithmetic opcodes")
	}
	if !IsMemoryOpcode(0x23) || !IsMemoryOpcode(0x2b) {
		t.Errorf("lw/sw should classify as memory opcodes")
	}
	if IsMemoryOpcode(0x0f) {
		t.Errorf("lui should not classify as a memory opcode")
	}
}
