package assemble

import (
	"github.com/pclava/mipsasm/internal/addr"
	"github.com/pclava/mipsasm/internal/asmerr"
	"github.com/pclava/mipsasm/internal/ir"
	"github.com/pclava/mipsasm/internal/isa"
	"github.com/pclava/mipsasm/internal/reloc"
	"github.com/pclava/mipsasm/internal/symtab"
	"github.com/pclava/mipsasm/internal/token"
)

// segBase returns the base address a symbol's raw per-file offset is
// measured from, for the purpose of computing an address-dependent
// encoding (jump targets, %hi/%lo) before this file has been linked.
// Every object file is assembled as if it alone occupied its segment
// starting at that segment's base. A locally resolved reference emits no
// relocation, so the linker leaves its encoded address unchanged when
// this file is placed after another one.
func segBase(seg symtab.Segment) uint32 {
	if seg == symtab.DATA {
		return addr.DataBase
	}
	return addr.TextBase
}

// Pass2Result is the encoded text image plus the relocations pass 2
// discovered.
type Pass2Result struct {
	Text   []byte
	Relocs []reloc.Entry
}

// Pass2 encodes each instruction in order into its 32-bit word, looking
// up unresolved symbols in syms and emitting a relocation whenever a
// referenced symbol is not locally defined in this file.
func Pass2(instrs []ir.Instruction, syms *symtab.Table) (*Pass2Result, error) {
	text := make([]byte, 4*len(instrs))
	var relocs []reloc.Entry

	for i, in := range instrs {
		offset := uint32(i * 4)
		desc, ok := isa.Lookup(in.Mnemonic)
		if !ok {
			return nil, asmerr.AtLine(asmerr.UnknownToken, in.Line.File, in.Line.Num, in.Line.Text, in.Mnemonic)
		}

		var word uint32
		var rel *reloc.Entry
		var err error

		switch desc.Format {
		case isa.R:
			word, err = encodeR(in, desc)
		case isa.I:
			word, rel, err = encodeI(in, desc, syms, offset)
		case isa.J:
			word, rel, err = encodeJ(in, desc, syms, offset)
		}
		if err != nil {
			return nil, err
		}
		if rel != nil {
			relocs = append(relocs, *rel)
		}
		putWord(text, offset, word)
	}

	return &Pass2Result{Text: text, Relocs: relocs}, nil
}

func putWord(buf []byte, offset uint32, word uint32) {
	buf[offset] = byte(word)
	buf[offset+1] = byte(word >> 8)
	buf[offset+2] = byte(word >> 16)
	buf[offset+3] = byte(word >> 24)
}

func argsErr(in ir.Instruction) error {
	return asmerr.AtLine(asmerr.InvalidArgs, in.Line.File, in.Line.Num, in.Line.Text, in.Mnemonic)
}

// remapRegisters places in's positional operand registers into their
// canonical (rs, rt, rd) slots per order; order[i]==-1 means that
// source slot must be absent (NoReg).
func remapRegisters(in [3]uint8, order [3]int) ([3]uint32, error) {
	var out [3]uint32
	for i := 0; i < 3; i++ {
		o := order[i]
		r := in[i]
		if o == -1 {
			if r == ir.NoReg {
				continue
			}
			return out, errBadArgs
		}
		if r == ir.NoReg {
			return out, errBadArgs
		}
		out[o] = uint32(r)
	}
	return out, nil
}

var errBadArgs = asmerr.New(asmerr.InvalidArgs, "", "")

func encodeR(in ir.Instruction, desc isa.Desc) (uint32, error) {
	regs, err := remapRegisters(in.Registers, desc.RegisterOrder)
	if err != nil {
		return 0, argsErr(in)
	}

	var shamt uint32
	switch in.Immediate.Kind {
	case ir.ImmNone:
		shamt = 0
	case ir.ImmInteger:
		shamt = uint32(((in.Immediate.IntValue%32)+32) % 32)
	case ir.ImmSymbol:
		return 0, asmerr.AtLine(asmerr.InvalidArg, in.Line.File, in.Line.Num, in.Line.Text, in.Immediate.Symbol)
	}

	if regs[0] > 31 || regs[1] > 31 || regs[2] > 31 || shamt > 31 || desc.Funct > 63 {
		return 0, argsErr(in)
	}

	return desc.Opcode<<26 | regs[0]<<21 | regs[1]<<16 | regs[2]<<11 | shamt<<6 | desc.Funct, nil
}

func encodeI(in ir.Instruction, desc isa.Desc, syms *symtab.Table, currentOffset uint32) (uint32, *reloc.Entry, error) {
	regs, err := remapRegisters(in.Registers, desc.RegisterOrder)
	if err != nil {
		return 0, nil, argsErr(in)
	}

	switch {
	case isa.IsBranchOpcode(desc.Opcode):
		return encodeBranch(in, desc, regs, syms, currentOffset)
	case isa.IsArithmeticOpcode(desc.Opcode):
		return encodeArithmetic(in, desc, regs, syms, currentOffset)
	case isa.IsMemoryOpcode(desc.Opcode):
		return encodeMemory(in, desc, regs)
	default:
		return 0, nil, argsErr(in)
	}
}

func encodeBranch(in ir.Instruction, desc isa.Desc, regs [3]uint32, syms *symtab.Table, currentOffset uint32) (uint32, *reloc.Entry, error) {
	if in.Immediate.Kind != ir.ImmSymbol {
		return 0, nil, argsErr(in)
	}
	name := in.Immediate.Symbol

	if sym, ok := syms.Lookup(name); ok && sym.Segment != symtab.UNDEF {
		dist := (int32(sym.Offset)-int32(currentOffset))>>2 - 1
		if dist < -32768 || dist > 32767 {
			return 0, nil, asmerr.AtLine(asmerr.SizeError, in.Line.File, in.Line.Num, in.Line.Text, name)
		}
		imm := uint32(uint16(int16(dist)))
		return desc.Opcode<<26 | regs[0]<<21 | regs[1]<<16 | imm, nil, nil
	}

	word := desc.Opcode<<26 | regs[0]<<21 | regs[1]<<16
	rel := &reloc.Entry{Segment: symtab.TEXT, TargetOffset: currentOffset, Kind: reloc.R_PC16, Dependency: name}
	return word, rel, nil
}

func encodeArithmetic(in ir.Instruction, desc isa.Desc, regs [3]uint32, syms *symtab.Table, currentOffset uint32) (uint32, *reloc.Entry, error) {
	if in.Immediate.Kind == ir.ImmNone {
		return 0, nil, argsErr(in)
	}

	if in.Immediate.Kind == ir.ImmInteger {
		v := uint32(in.Immediate.IntValue)
		if (v&0xFFFF8000) != 0xFFFF8000 && (v&0xFFFF0000) != 0 {
			return 0, nil, asmerr.AtLine(asmerr.SizeError, in.Line.File, in.Line.Num, in.Line.Text, "")
		}
		imm := uint32(uint16(int16(v)))
		return desc.Opcode<<26 | regs[0]<<21 | regs[1]<<16 | imm, nil, nil
	}

	// ImmSymbol: must carry Hi or Lo.
	if in.Immediate.Modifier == ir.ModNone {
		return 0, nil, asmerr.AtLine(asmerr.InvalidArg, in.Line.File, in.Line.Num, in.Line.Text, in.Immediate.Symbol)
	}
	name := in.Immediate.Symbol

	if sym, ok := syms.Lookup(name); ok && sym.Segment != symtab.UNDEF {
		address := segBase(sym.Segment) + sym.Offset
		var imm uint32
		if in.Immediate.Modifier == ir.ModHi {
			imm = address >> 16
		} else {
			imm = address & 0xFFFF
		}
		return desc.Opcode<<26 | regs[0]<<21 | regs[1]<<16 | (imm & 0xFFFF), nil, nil
	}

	kind := reloc.R_LO16
	if in.Immediate.Modifier == ir.ModHi {
		kind = reloc.R_HI16
	}
	word := desc.Opcode<<26 | regs[0]<<21 | regs[1]<<16
	rel := &reloc.Entry{Segment: symtab.TEXT, TargetOffset: currentOffset, Kind: kind, Dependency: name}
	return word, rel, nil
}

func encodeMemory(in ir.Instruction, desc isa.Desc, regs [3]uint32) (uint32, *reloc.Entry, error) {
	if in.Immediate.Kind != ir.ImmBaseOffset {
		return 0, nil, argsErr(in)
	}
	offset, rs, err := token.ParseBaseOffset(in.Immediate.BaseOffsetText)
	if err != nil {
		return 0, nil, err
	}

	return desc.Opcode<<26 | uint32(rs)<<21 | regs[1]<<16 | uint32(uint16(offset)), nil, nil
}

func encodeJ(in ir.Instruction, desc isa.Desc, syms *symtab.Table, currentOffset uint32) (uint32, *reloc.Entry, error) {
	if in.Registers[0] != ir.NoReg {
		return 0, nil, argsErr(in)
	}
	if in.Immediate.Kind != ir.ImmSymbol {
		return 0, nil, argsErr(in)
	}
	name := in.Immediate.Symbol

	if sym, ok := syms.Lookup(name); ok && sym.Segment != symtab.UNDEF {
		address := segBase(sym.Segment) + sym.Offset
		here := addr.TextBase + currentOffset
		if (address & 0xF0000000) != (here & 0xF0000000) {
			return 0, nil, asmerr.AtLine(asmerr.InvalidArgs, in.Line.File, in.Line.Num, in.Line.Text, "jump target out of range")
		}
		imm := (address >> 2) & 0x03FFFFFF
		return desc.Opcode<<26 | imm, nil, nil
	}

	rel := &reloc.Entry{Segment: symtab.TEXT, TargetOffset: currentOffset, Kind: reloc.R_26, Dependency: name}
	return desc.Opcode << 26, rel, nil
}
