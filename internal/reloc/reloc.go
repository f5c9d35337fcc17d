// Package reloc defines the relocation entry pass 2 produces: each one
// records where a fixup is needed and what symbol it depends on, to be
// resolved and patched later by the linker.
package reloc

import "github.com/pclava/mipsasm/internal/symtab"

// Kind is one of the five relocation kinds the linker knows how to
// patch.
type Kind uint32

const (
	R_32 Kind = iota
	R_26
	R_PC16
	R_HI16
	R_LO16
)

func (k Kind) String() string {
	switch k {
	case R_32:
		return "R_32"
	case R_26:
		return "R_26"
	case R_PC16:
		return "R_PC16"
	case R_HI16:
		return "R_HI16"
	case R_LO16:
		return "R_LO16"
	default:
		return "R_UNKNOWN"
	}
}

// Entry is one relocation: where (segment + byte offset within it),
// what kind of patch, and against which symbol name. Pass 2 and the
// linker pass these around as a plain ordered []Entry rather than a
// dedicated table type, since nothing needs lookup by key.
type Entry struct {
	Segment      symtab.Segment
	TargetOffset uint32
	Kind         Kind
	Dependency   string
}
