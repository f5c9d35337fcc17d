// Package link implements the static linker: multi-file address
// assignment, global symbol resolution, relocation application with
// segment/range checks, and construction of the executable image.
// Objects are loaded by AddObject; Link then runs layout, builds the
// global symbol table, resolves and patches relocations, and returns the
// image, which callers write with objfile.WriteExecutable.
package link

import (
	"encoding/binary"
	"fmt"

	"github.com/pclava/mipsasm/internal/addr"
	"github.com/pclava/mipsasm/internal/asmerr"
	"github.com/pclava/mipsasm/internal/objfile"
	"github.com/pclava/mipsasm/internal/reloc"
	"github.com/pclava/mipsasm/internal/symtab"
)

// StartObjectName is the conventional runtime-startup object the linker
// additionally loads, placed after all user-supplied files, whenever
// the requested entry symbol is the literal name "_start".
const StartObjectName = "_start.o"

// loadedObject pairs a parsed object file with the offsets layout
// assigns it within the merged text/data segments.
type loadedObject struct {
	path       string
	obj        *objfile.Object
	textOffset uint32
	dataOffset uint32
	byName     map[string]objfile.SymbolRec
}

// Linker accumulates object files and links them into a final image.
type Linker struct {
	objects []*loadedObject
	global  map[string]uint32 // name -> absolute address
	verbose bool
}

func New(verbose bool) *Linker {
	return &Linker{global: make(map[string]uint32), verbose: verbose}
}

// AddObject loads and appends one object file by path.
func (l *Linker) AddObject(path string) error {
	obj, err := objfile.ReadObjectFile(path)
	if err != nil {
		return err
	}
	byName := make(map[string]objfile.SymbolRec, len(obj.Symbols))
	for _, s := range obj.Symbols {
		byName[s.Name] = s
	}
	l.objects = append(l.objects, &loadedObject{path: path, obj: obj, byName: byName})
	return nil
}

// Link loads the optional startup object, then runs layout, global-table
// construction, and resolve-and-patch, and returns the merged code/data
// images and the resolved entry address.
// entrySymbol == "" means "link with entry = TextBase"; entrySymbol ==
// "_start" additionally loads StartObjectName after all user files.
func (l *Linker) Link(entrySymbol string) (code, data []byte, entry uint32, err error) {
	if entrySymbol == "_start" {
		if l.verbose {
			fmt.Printf("loading startup object %s\n", StartObjectName)
		}
		if err := l.AddObject(StartObjectName); err != nil {
			return nil, nil, 0, err
		}
	}

	l.layout()

	if err := l.buildGlobalTable(); err != nil {
		return nil, nil, 0, err
	}

	code, data, err = l.relocate()
	if err != nil {
		return nil, nil, 0, err
	}

	entry, err = l.resolveEntry(entrySymbol)
	if err != nil {
		return nil, nil, 0, err
	}

	return code, data, entry, nil
}

// layout assigns each object a running text_offset/data_offset, the sum
// of every preceding object's respective segment size.
func (l *Linker) layout() {
	var textOff, dataOff uint32
	for _, o := range l.objects {
		o.textOffset = textOff
		o.dataOffset = dataOff
		textOff += o.obj.Header.TextSize
		dataOff += o.obj.Header.DataSize
	}
}

func segBase(seg uint32) uint32 {
	if seg == uint32(symtab.DATA) {
		return addr.DataBase
	}
	return addr.TextBase
}

// buildGlobalTable inserts every GLOBAL, defined (non-UNDEF) symbol from
// every object into the global table, keyed by name; a name appearing
// GLOBAL+defined in two objects is a Duplicate.
func (l *Linker) buildGlobalTable() error {
	for _, o := range l.objects {
		for _, s := range o.obj.Symbols {
			if s.Binding != uint32(symtab.GLOBAL) || s.Segment == uint32(symtab.UNDEF) {
				continue
			}
			fileOffset := o.textOffset
			if s.Segment == uint32(symtab.DATA) {
				fileOffset = o.dataOffset
			}
			final := segBase(s.Segment) + fileOffset + s.Offset
			if _, exists := l.global[s.Name]; exists {
				return asmerr.New(asmerr.Duplicate, o.path, s.Name)
			}
			l.global[s.Name] = final
			if l.verbose {
				fmt.Printf("global %s = 0x%08x\n", s.Name, final)
			}
		}
	}
	return nil
}

// relocate merges every object's text/data into single buffers and
// applies every relocation in place.
func (l *Linker) relocate() ([]byte, []byte, error) {
	var totalText, totalData uint32
	for _, o := range l.objects {
		totalText += o.obj.Header.TextSize
		totalData += o.obj.Header.DataSize
	}
	code := make([]byte, totalText)
	data := make([]byte, totalData)
	for _, o := range l.objects {
		copy(code[o.textOffset:], o.obj.Text)
		copy(data[o.dataOffset:], o.obj.Data)
	}

	for _, o := range l.objects {
		for _, r := range o.obj.Relocs {
			final, err := l.resolveDependency(o, r.Name)
			if err != nil {
				return nil, nil, err
			}
			if err := l.patch(code, data, o, r, final); err != nil {
				return nil, nil, err
			}
		}
	}

	return code, data, nil
}

// resolveDependency finds the final absolute address for a relocation's
// dependency symbol: locally defined symbols resolve directly; UNDEF
// symbols must be GLOBAL and present in the global table.
func (l *Linker) resolveDependency(o *loadedObject, name string) (uint32, error) {
	sym, ok := o.byName[name]
	if !ok {
		return 0, asmerr.New(asmerr.UnknownToken, o.path, name)
	}
	if sym.Segment != uint32(symtab.UNDEF) {
		fileOffset := o.textOffset
		if sym.Segment == uint32(symtab.DATA) {
			fileOffset = o.dataOffset
		}
		return segBase(sym.Segment) + fileOffset + sym.Offset, nil
	}
	if sym.Binding != uint32(symtab.GLOBAL) {
		return 0, asmerr.New(asmerr.UnknownToken, o.path, name)
	}
	addrVal, ok := l.global[name]
	if !ok {
		if name == "main" {
			return 0, asmerr.New(asmerr.UnknownToken, o.path, "undefined reference to main")
		}
		return 0, asmerr.New(asmerr.UnknownToken, o.path, "symbol undefined: "+name)
	}
	return addrVal, nil
}

// patch applies one relocation's patch rule. instrAddr is computed as
// TextBase + file_text_offset + target_offset.
func (l *Linker) patch(code, data []byte, o *loadedObject, r objfile.Reloc, final uint32) error {
	switch reloc.Kind(r.Kind) {
	case reloc.R_32:
		if r.Segment != uint32(symtab.DATA) {
			return asmerr.New(asmerr.InvalidArgs, o.path, "R_32 outside DATA")
		}
		off := o.dataOffset + r.TargetOffset
		if off+4 > uint32(len(data)) {
			return asmerr.New(asmerr.SizeError, o.path, r.Name)
		}
		binary.LittleEndian.PutUint32(data[off:off+4], final)
		return nil

	case reloc.R_26:
		if r.Segment != uint32(symtab.TEXT) {
			return asmerr.New(asmerr.InvalidArgs, o.path, "R_26 outside TEXT")
		}
		instrAddr := addr.TextBase + o.textOffset + r.TargetOffset
		if (instrAddr & 0xF0000000) != (final & 0xF0000000) {
			return asmerr.New(asmerr.SizeError, o.path, "jump target out of range: "+r.Name)
		}
		wordIdx := (o.textOffset + r.TargetOffset) / 4
		orWord(code, wordIdx, (final&0x0FFFFFFF)>>2)
		return nil

	case reloc.R_PC16:
		if r.Segment != uint32(symtab.TEXT) {
			return asmerr.New(asmerr.InvalidArgs, o.path, "R_PC16 outside TEXT")
		}
		instrAddr := addr.TextBase + o.textOffset + r.TargetOffset
		dist := (int32(final) - int32(instrAddr+4)) / 4
		if dist < -32768 || dist > 32767 {
			return asmerr.New(asmerr.SizeError, o.path, "branch target out of range: "+r.Name)
		}
		wordIdx := (o.textOffset + r.TargetOffset) / 4
		orWord(code, wordIdx, uint32(uint16(int16(dist))))
		return nil

	case reloc.R_HI16:
		if r.Segment != uint32(symtab.TEXT) {
			return asmerr.New(asmerr.InvalidArgs, o.path, "R_HI16 outside TEXT")
		}
		wordIdx := (o.textOffset + r.TargetOffset) / 4
		orWord(code, wordIdx, (final>>16)&0xFFFF)
		return nil

	case reloc.R_LO16:
		if r.Segment != uint32(symtab.TEXT) {
			return asmerr.New(asmerr.InvalidArgs, o.path, "R_LO16 outside TEXT")
		}
		wordIdx := (o.textOffset + r.TargetOffset) / 4
		orWord(code, wordIdx, final&0xFFFF)
		return nil

	default:
		return asmerr.New(asmerr.UnknownToken, o.path, "unknown relocation kind")
	}
}

func orWord(code []byte, wordIdx uint32, bits uint32) {
	off := wordIdx * 4
	w := binary.LittleEndian.Uint32(code[off : off+4])
	w |= bits
	binary.LittleEndian.PutUint32(code[off:off+4], w)
}

func (l *Linker) resolveEntry(entrySymbol string) (uint32, error) {
	if entrySymbol == "" {
		return addr.TextBase, nil
	}
	a, ok := l.global[entrySymbol]
	if !ok {
		return 0, asmerr.New(asmerr.UnknownToken, "", "entry symbol undefined: "+entrySymbol)
	}
	return a, nil
}
