// Package debugdump implements the pretty-printed, human-readable debug
// dumps named as out-of-core scope: symbol tables and relocation
// tables. Exact string formats are not part of the
// contract; only that a dump exists and is readable. This is the one
// place asmerr.Note is used, since these are informational annotations,
// never part of the assembler/linker's own fatal-error path.
package debugdump

import (
	"fmt"
	"io"
	"sort"

	"github.com/pclava/mipsasm/internal/asmerr"
	"github.com/pclava/mipsasm/internal/reloc"
	"github.com/pclava/mipsasm/internal/symtab"
)

// Symbols writes one line per symbol, sorted by name for determinism.
func Symbols(w io.Writer, t *symtab.Table) {
	syms := t.All()
	sort.Slice(syms, func(i, j int) bool { return syms[i].Name < syms[j].Name })
	for _, s := range syms {
		if s.Segment == symtab.UNDEF {
			fmt.Fprintf(w, "%s: undefined, binding %s\n", s.Name, s.Binding)
			continue
		}
		fmt.Fprintf(w, "%s: .%s + %d, binding %s\n", s.Name, segmentWord(s.Segment), s.Offset, s.Binding)
	}
}

func segmentWord(s symtab.Segment) string {
	if s == symtab.DATA {
		return "data"
	}
	return "text"
}

// Relocations writes one line per relocation entry, in pass-2 emission
// order, annotating any entry that targets a symbol not yet resolvable
// in the given table with an informational Note rather than an error.
func Relocations(w io.Writer, relocs []reloc.Entry, syms *symtab.Table) {
	for _, e := range relocs {
		fmt.Fprintf(w, "%s %s+%d -> %s\n", e.Kind, segWord(e.Segment), e.TargetOffset, e.Dependency)
		if sym, ok := syms.Lookup(e.Dependency); !ok || sym.Segment == symtab.UNDEF {
			note := asmerr.Note{Subject: e.Dependency, Message: fmt.Sprintf("%s relocation against UNDEF symbol", e.Kind)}
			fmt.Fprintf(w, "  note: %s\n", note)
		}
	}
}

func segWord(s symtab.Segment) string {
	if s == symtab.DATA {
		return "DATA"
	}
	return "TEXT"
}
