package assemble

import (
	"strings"

	"github.com/pclava/mipsasm/internal/asmerr"
	"github.com/pclava/mipsasm/internal/ir"
	"github.com/pclava/mipsasm/internal/token"
)

// splitOperands splits a comma-separated operand list, trimming
// whitespace around each.
func splitOperands(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
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

// parseInstruction builds the IR for one instruction or pseudo-
// instruction line: mnemonic plus positional register/immediate
// operands, in source order.
func parseInstruction(mnemonic, operandText string, src ir.SourceLine) (ir.Instruction, error) {
	operands := splitOperands(operandText)

	regs := [3]uint8{ir.NoReg, ir.NoReg, ir.NoReg}
	imm := ir.Immediate{Kind: ir.ImmNone}
	haveImm := false
	regIdx := 0

	for _, op := range operands {
		if strings.HasPrefix(op, "$") {
			r, ok := token.ParseRegister(op)
			if !ok {
				return ir.Instruction{}, asmerr.AtLine(asmerr.InvalidArg, src.File, src.Num, src.Text, op)
			}
			if regIdx >= 3 {
				return ir.Instruction{}, asmerr.AtLine(asmerr.InvalidArgs, src.File, src.Num, src.Text, mnemonic)
			}
			regs[regIdx] = r
			regIdx++
			continue
		}
		if haveImm {
			return ir.Instruction{}, asmerr.AtLine(asmerr.InvalidArgs, src.File, src.Num, src.Text, mnemonic)
		}
		parsed, err := token.ParseImmediate(op)
		if err != nil {
			return ir.Instruction{}, err
		}
		imm = parsed
		haveImm = true
	}

	return ir.Instruction{Mnemonic: mnemonic, Registers: regs, Immediate: imm, Line: src}, nil
}
