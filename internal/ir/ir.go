// Package ir holds the intermediate-representation types pass 1 builds
// and pass 2 consumes: instructions, data directives, and the tagged
// Immediate value every operand parses into.
package ir

// Modifier selects which half of a resolved symbol an Immediate refers
// to, for the %hi/%lo forms used by la and the I-type arithmetic
// encoder.
type Modifier int

const (
	ModNone Modifier = iota
	ModHi
	ModLo
)

// ImmKind tags the variant an Immediate carries.
type ImmKind int

const (
	ImmNone ImmKind = iota
	ImmInteger
	ImmSymbol
	ImmBaseOffset
)

// Immediate is the tagged value every non-register instruction operand
// parses into. Exactly one field group is meaningful per Kind.
type Immediate struct {
	Kind ImmKind

	IntValue int32 // ImmInteger

	Symbol   string   // ImmSymbol
	Modifier Modifier // ImmSymbol only

	// ImmBaseOffset, raw form `imm(reg)`; internal/token.ParseBaseOffset
	// resolves this into an offset/register pair at encode time.
	BaseOffsetText string
}

// NoReg is the sentinel meaning "register slot unused" in an
// Instruction's Registers array, matching the source format's 255.
const NoReg = 255

// Instruction is the IR built in pass 1 for one real (already-expanded)
// machine instruction. Registers are positional in source operand order;
// the isa.Desc.RegisterOrder for Mnemonic later remaps them to (rs, rt, rd).
type Instruction struct {
	Mnemonic  string
	Registers [3]uint8
	Immediate Immediate
	Line      SourceLine
}

// SourceLine is a lightweight back-reference to the originating Line,
// carried through expansion for diagnostics.
type SourceLine struct {
	File string
	Num  int
	Text string
}

// DatumKind tags the variant a Datum carries.
type DatumKind int

const (
	DatumWord DatumKind = iota
	DatumHalf
	DatumByte
	DatumString
	DatumSpace
	DatumSymRef
)

// Datum is one entry in the data segment builder's output list. Every
// datum records its own SizeBytes and SourceLine so that serialization
// is a simple sequential write and diagnostics stay precise.
type Datum struct {
	Kind DatumKind

	Word int32 // DatumWord (non-symbolic)
	Half int16 // DatumHalf
	Byte int8  // DatumByte

	Bytes         []byte // DatumString
	NullTerminate bool   // DatumString (.asciiz)

	SpaceBytes uint32 // DatumSpace

	SymName string // DatumSymRef, value resolved by linker via R_32

	SizeBytes  uint32
	SourceLine SourceLine
}
