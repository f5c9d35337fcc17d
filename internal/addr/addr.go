// Package addr defines the fixed memory-layout constants shared by the
// assembler and linker.
package addr

const (
	// TextBase is the load address of the first byte of the linked
	// text segment.
	TextBase uint32 = 0x00400000
	// DataBase is the load address of the first byte of the linked
	// data segment.
	DataBase uint32 = 0x10010000
)
