// Package pseudo implements the pseudo-instruction expander:
// li/la/move/blt/bgt/ble/bge lowered to one or two real instructions,
// using $at (register 1) as scratch.
package pseudo

import (
	"github.com/pclava/mipsasm/internal/asmerr"
	"github.com/pclava/mipsasm/internal/ir"
)

// At is the reserved scratch register used by every expansion.
const At uint8 = 1

// Zero is register $zero.
const Zero uint8 = 0

// Expand lowers one pseudo-instruction into its real equivalents,
// returning the instructions in emission order. Fails with UnknownToken
// if the mnemonic is unsupported and InvalidArgs if the operand shape
// doesn't match.
func Expand(in ir.Instruction) ([]ir.Instruction, error) {
	switch in.Mnemonic {
	case "li":
		return expandLI(in)
	case "la":
		return expandLA(in)
	case "move":
		return expandMove(in)
	case "blt":
		return expandCompareBranch(in, "slt", in.Registers[0], in.Registers[1], "bne")
	case "bgt":
		return expandCompareBranch(in, "slt", in.Registers[1], in.Registers[0], "bne")
	case "ble":
		return expandCompareBranch(in, "slt", in.Registers[1], in.Registers[0], "beq")
	case "bge":
		return expandCompareBranch(in, "slt", in.Registers[0], in.Registers[1], "beq")
	default:
		return nil, asmerr.AtLine(asmerr.UnknownToken, in.Line.File, in.Line.Num, in.Line.Text, in.Mnemonic)
	}
}

func argErr(in ir.Instruction) error {
	return asmerr.AtLine(asmerr.InvalidArgs, in.Line.File, in.Line.Num, in.Line.Text, in.Mnemonic)
}

func expandLI(in ir.Instruction) ([]ir.Instruction, error) {
	if in.Registers[1] != ir.NoReg || in.Registers[2] != ir.NoReg || in.Immediate.Kind != ir.ImmInteger {
		return nil, argErr(in)
	}
	r := in.Registers[0]
	v := in.Immediate.IntValue

	if v >= -32768 && v <= 32767 {
		return []ir.Instruction{{
			Mnemonic:  "addiu",
			Registers: [3]uint8{r, Zero, ir.NoReg},
			Immediate: ir.Immediate{Kind: ir.ImmInteger, IntValue: v},
			Line:      in.Line,
		}}, nil
	}

	hi := v >> 16
	lo := v & 0xFFFF
	return []ir.Instruction{
		{
			Mnemonic:  "lui",
			Registers: [3]uint8{At, ir.NoReg, ir.NoReg},
			Immediate: ir.Immediate{Kind: ir.ImmInteger, IntValue: hi},
			Line:      in.Line,
		},
		{
			Mnemonic:  "ori",
			Registers: [3]uint8{r, At, ir.NoReg},
			Immediate: ir.Immediate{Kind: ir.ImmInteger, IntValue: lo},
			Line:      in.Line,
		},
	}, nil
}

func expandLA(in ir.Instruction) ([]ir.Instruction, error) {
	if in.Registers[1] != ir.NoReg || in.Registers[2] != ir.NoReg || in.Immediate.Kind != ir.ImmSymbol {
		return nil, argErr(in)
	}
	r := in.Registers[0]
	name := in.Immediate.Symbol

	return []ir.Instruction{
		{
			Mnemonic:  "lui",
			Registers: [3]uint8{At, ir.NoReg, ir.NoReg},
			Immediate: ir.Immediate{Kind: ir.ImmSymbol, Symbol: name, Modifier: ir.ModHi},
			Line:      in.Line,
		},
		{
			Mnemonic:  "ori",
			Registers: [3]uint8{r, At, ir.NoReg},
			Immediate: ir.Immediate{Kind: ir.ImmSymbol, Symbol: name, Modifier: ir.ModLo},
			Line:      in.Line,
		},
	}, nil
}

func expandMove(in ir.Instruction) ([]ir.Instruction, error) {
	if in.Registers[2] != ir.NoReg || in.Immediate.Kind != ir.ImmNone {
		return nil, argErr(in)
	}
	return []ir.Instruction{{
		Mnemonic:  "addu",
		Registers: [3]uint8{in.Registers[0], Zero, in.Registers[1]},
		Immediate: in.Immediate,
		Line:      in.Line,
	}}, nil
}

// expandCompareBranch builds the slt-then-branch pair shared by
// blt/bgt/ble/bge: `slt $at, lhs, rhs`; `<branchOp> $at, $zero, L`.
func expandCompareBranch(in ir.Instruction, sltOp string, lhs, rhs uint8, branchOp string) ([]ir.Instruction, error) {
	if in.Registers[2] != ir.NoReg || in.Immediate.Kind != ir.ImmSymbol {
		return nil, argErr(in)
	}
	return []ir.Instruction{
		{
			Mnemonic:  sltOp,
			Registers: [3]uint8{At, lhs, rhs},
			Immediate: ir.Immediate{Kind: ir.ImmNone},
			Line:      in.Line,
		},
		{
			Mnemonic:  branchOp,
			Registers: [3]uint8{At, Zero, ir.NoReg},
			Immediate: in.Immediate,
			Line:      in.Line,
		},
	}, nil
}
