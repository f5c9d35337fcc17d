// Package symtab implements the per-object symbol table: a djb2-hashed,
// open-addressed map from symbol name to {offset, segment, binding}, supporting
// the UNDEF -> defined upgrade forward references require.
package symtab

import "github.com/pclava/mipsasm/internal/asmerr"

type Segment int

const (
	TEXT Segment = iota
	DATA
	UNDEF
)

func (s Segment) String() string {
	switch s {
	case TEXT:
		return "TEXT"
	case DATA:
		return "DATA"
	default:
		return "UNDEF"
	}
}

type Binding int

const (
	LOCAL Binding = iota
	GLOBAL
)

func (b Binding) String() string {
	if b == GLOBAL {
		return "GLOBAL"
	}
	return "LOCAL"
}

// MaxNameLen is the longest symbol name (excluding NUL) the object format
// can carry in its 32-byte, NUL-padded name field.
const MaxNameLen = 31

// DefaultSize is the bucket count used when capacity isn't specified.
// 256 buckets comfortably covers a single translation unit's symbols.
const DefaultSize = 256

type Symbol struct {
	Name    string
	Offset  uint32
	Segment Segment
	Binding Binding
}

type entry struct {
	sym       Symbol
	inUse     bool
	tombstone bool
}

// Table is an open-addressed (linear probing) symbol table. A table from
// New grows by doubling rather than failing outright; SymbolTableFull is
// returned only by a table built with NewSized, which has a hard ceiling.
type Table struct {
	buckets []entry
	count   int
	maxSize int // 0 = unbounded (grows); >0 = hard ceiling
}

func New() *Table {
	return &Table{buckets: make([]entry, DefaultSize)}
}

// NewSized builds a table with a hard capacity ceiling; inserts beyond
// it fail with SymbolTableFull instead of growing.
func NewSized(capacity int) *Table {
	size := capacity
	if size < 1 {
		size = 1
	}
	return &Table{buckets: make([]entry, size), maxSize: capacity}
}

func hashKey(name string, size int) int {
	var hash uint64 = 5381
	for i := 0; i < len(name); i++ {
		hash = hash*33 + uint64(name[i])
	}
	return int(hash % uint64(size))
}

func (t *Table) grow() {
	old := t.buckets
	t.buckets = make([]entry, len(old)*2)
	t.count = 0
	for _, e := range old {
		if e.inUse && !e.tombstone {
			_ = t.insertRaw(e.sym)
		}
	}
}

func (t *Table) insertRaw(sym Symbol) bool {
	size := len(t.buckets)
	idx := hashKey(sym.Name, size)
	for i := 0; i < size; i++ {
		probe := (idx + i) % size
		if !t.buckets[probe].inUse || t.buckets[probe].tombstone {
			t.buckets[probe] = entry{sym: sym, inUse: true}
			t.count++
			return true
		}
	}
	return false
}

// Insert adds name with the given offset/segment/binding. If a same-name
// entry already exists and is UNDEF, its offset/segment are upgraded in
// place (binding is widened to GLOBAL if either side asked for it) and
// this counts as success, not a Duplicate.
func (t *Table) Insert(name string, offset uint32, segment Segment, binding Binding) error {
	if len(name) > MaxNameLen {
		return asmerr.New(asmerr.InvalidSymbol, "", name)
	}
	if existing, ok := t.lookupIndex(name); ok {
		e := &t.buckets[existing]
		if e.sym.Segment == UNDEF && segment != UNDEF {
			e.sym.Offset = offset
			e.sym.Segment = segment
			if binding == GLOBAL {
				e.sym.Binding = GLOBAL
			}
			return nil
		}
		return asmerr.New(asmerr.Duplicate, "", name)
	}

	if t.maxSize > 0 && t.count >= t.maxSize {
		return asmerr.New(asmerr.SymbolTableFull, "", name)
	}
	if !t.insertRaw(Symbol{Name: name, Offset: offset, Segment: segment, Binding: binding}) {
		if t.maxSize > 0 {
			return asmerr.New(asmerr.SymbolTableFull, "", name)
		}
		t.grow()
		if !t.insertRaw(Symbol{Name: name, Offset: offset, Segment: segment, Binding: binding}) {
			return asmerr.New(asmerr.SymbolTableFull, "", name)
		}
	}
	return nil
}

// MarkGlobal upgrades an existing symbol's binding to GLOBAL, or creates
// a fresh UNDEF GLOBAL entry if name is absent (the `.globl` directive).
func (t *Table) MarkGlobal(name string) error {
	if idx, ok := t.lookupIndex(name); ok {
		t.buckets[idx].sym.Binding = GLOBAL
		return nil
	}
	return t.Insert(name, 0, UNDEF, GLOBAL)
}

func (t *Table) lookupIndex(name string) (int, bool) {
	size := len(t.buckets)
	idx := hashKey(name, size)
	for i := 0; i < size; i++ {
		probe := (idx + i) % size
		b := &t.buckets[probe]
		if !b.inUse {
			return 0, false
		}
		if !b.tombstone && b.sym.Name == name {
			return probe, true
		}
	}
	return 0, false
}

// Lookup returns the stored symbol by name; ok is false if absent.
func (t *Table) Lookup(name string) (Symbol, bool) {
	idx, ok := t.lookupIndex(name)
	if !ok {
		return Symbol{}, false
	}
	return t.buckets[idx].sym, true
}

// Remove deletes name, used only when reconciling a `.globl X` with a
// later local definition of X under a different entry. The slot stays
// inUse (only tombstoned): clearing inUse would terminate the linear
// probe early for any other key whose chain passed through this slot.
func (t *Table) Remove(name string) {
	if idx, ok := t.lookupIndex(name); ok {
		t.buckets[idx].tombstone = true
		t.count--
	}
}

// All returns every live symbol, for object-file serialization. Order is
// not significant to any consumer; callers that need determinism sort
// by name.
func (t *Table) All() []Symbol {
	out := make([]Symbol, 0, t.count)
	for _, e := range t.buckets {
		if e.inUse && !e.tombstone {
			out = append(out, e.sym)
		}
	}
	return out
}

func (t *Table) Len() int { return t.count }
