// Package isa holds the static descriptor table for the supported MIPS
// instruction subset: mnemonic, opcode/funct, format, and the positional
// register-slot order each encoder needs to remap source-order operands
// into (rs, rt, rd).
package isa

// Format is one of the three 32-bit MIPS instruction encodings.
type Format int

const (
	R Format = iota
	I
	J
)

// Desc is one entry of the instruction descriptor table. RegisterOrder[i]
// gives the canonical slot (0=rs, 1=rt, 2=rd; -1=unused) that source
// register slot i maps to.
type Desc struct {
	Mnemonic     string
	Opcode       uint32
	Funct        uint32 // only meaningful for R-type; 0 otherwise
	Format       Format
	RegisterOrder [3]int
}

// table is grouped by format, mirroring the original instruction table's
// R/I/J sections, then merged into one lookup map in init.
var rType = []Desc{
	{"add", 0x00, 0x20, R, [3]int{2, 0, 1}},
	{"addu", 0x00, 0x21, R, [3]int{2, 0, 1}},
	{"and", 0x00, 0x24, R, [3]int{2, 0, 1}},
	{"jr", 0x00, 0x08, R, [3]int{0, -1, -1}},
	{"nor", 0x00, 0x27, R, [3]int{2, 0, 1}},
	{"or", 0x00, 0x25, R, [3]int{2, 0, 1}},
	{"slt", 0x00, 0x2a, R, [3]int{2, 0, 1}},
	{"sltu", 0x00, 0x2b, R, [3]int{2, 0, 1}},
	{"sll", 0x00, 0x00, R, [3]int{2, 1, -1}},
	{"srl", 0x00, 0x02, R, [3]int{2, 1, -1}},
	{"sub", 0x00, 0x22, R, [3]int{2, 0, 1}},
	{"subu", 0x00, 0x23, R, [3]int{2, 0, 1}},
	{"div", 0x00, 0x1a, R, [3]int{0, 1, -1}},
	{"divu", 0x00, 0x1b, R, [3]int{0, 1, -1}},
	{"mfhi", 0x00, 0x10, R, [3]int{2, -1, -1}},
	{"mflo", 0x00, 0x12, R, [3]int{2, -1, -1}},
	{"mult", 0x00, 0x18, R, [3]int{0, 1, -1}},
	{"multu", 0x00, 0x19, R, [3]int{0, 1, -1}},
	{"sra", 0x00, 0x03, R, [3]int{2, 1, -1}},
	{"syscall", 0x00, 0x0c, R, [3]int{-1, -1, -1}},
	{"nop", 0x00, 0x00, R, [3]int{-1, -1, -1}},
}

var iType = []Desc{
	// Conditional branches
	{"beq", 0x04, 0, I, [3]int{0, 1, -1}},
	{"bne", 0x05, 0, I, [3]int{0, 1, -1}},

	// Traditional i-type: rt = f(rs)
	{"addi", 0x08, 0, I, [3]int{1, 0, -1}},
	{"addiu", 0x09, 0, I, [3]int{1, 0, -1}},
	{"slti", 0x0a, 0, I, [3]int{1, 0, -1}},
	{"sltiu", 0x0b, 0, I, [3]int{1, 0, -1}},
	{"andi", 0x0c, 0, I, [3]int{1, 0, -1}},
	{"ori", 0x0d, 0, I, [3]int{1, 0, -1}},
	{"lui", 0x0f, 0, I, [3]int{1, -1, -1}},

	// Memory instructions
	{"lw", 0x23, 0, I, [3]int{1, -1, -1}},
	{"sb", 0x28, 0, I, [3]int{1, -1, -1}},
	{"sh", 0x29, 0, I, [3]int{1, -1, -1}},
	{"sw", 0x2b, 0, I, [3]int{1, -1, -1}},
}

var jType = []Desc{
	{"j", 0x02, 0, J, [3]int{-1, -1, -1}},
	{"jal", 0x03, 0, J, [3]int{-1, -1, -1}},
}

var table map[string]Desc

func init() {
	table = make(map[string]Desc, len(rType)+len(iType)+len(jType))
	for _, groups := range [][]Desc{rType, iType, jType} {
		for _, d := range groups {
			table[d.Mnemonic] = d
		}
	}
}

// Lookup returns the descriptor for mnemonic, or ok=false if unknown.
func Lookup(mnemonic string) (Desc, bool) {
	d, ok := table[mnemonic]
	return d, ok
}

// Pseudos lists the mnemonics handled by internal/pseudo rather than
// encoded directly; Lookup does not know about them.
var Pseudos = map[string]bool{
	"li": true, "la": true, "move": true,
	"blt": true, "bgt": true, "ble": true, "bge": true,
}

// IsBranchOpcode reports whether opcode is a conditional-branch I-type
// (beq/bne), which takes a Symbol immediate resolved PC-relative.
func IsBranchOpcode(opcode uint32) bool { return opcode == 0x04 || opcode == 0x05 }

// IsArithmeticOpcode reports the "traditional" rt=f(rs) I-type range.
func IsArithmeticOpcode(opcode uint32) bool { return opcode >= 0x08 && opcode <= 0x0f }

// IsMemoryOpcode reports the load/store I-type range.
func IsMemoryOpcode(opcode uint32) bool { return opcode >= 0x23 && opcode <= 0x2b }
