// Package macro implements user `.macro name %a %b ... / .end_macro`
// definitions and textual expansion at call sites with positional
// substitution.
package macro

import (
	"strings"

	"github.com/pclava/mipsasm/internal/asmerr"
	"github.com/pclava/mipsasm/internal/line"
)

// MaxFormals bounds the number of formal parameters a macro may declare.
const MaxFormals = 32

// MaxActualLen bounds the length of a single actual argument.
const MaxActualLen = 31

// Definition holds one macro's formals and body lines, stored verbatim
// (substitution happens per call site, not at definition time).
type Definition struct {
	Name    string
	Formals []string // without the leading '%'
	Body    []line.Line
}

// Table maps macro name to its Definition.
type Table struct {
	defs map[string]*Definition
}

func New() *Table {
	return &Table{defs: make(map[string]*Definition)}
}

// Define registers a new macro. A repeated name is Duplicate.
func (t *Table) Define(name string, formals []string, body []line.Line) error {
	if len(formals) > MaxFormals {
		return asmerr.New(asmerr.InvalidArgs, "", name)
	}
	if _, exists := t.defs[name]; exists {
		return asmerr.New(asmerr.Duplicate, "", name)
	}
	t.defs[name] = &Definition{Name: name, Formals: formals, Body: body}
	return nil
}

// Lookup returns the macro named name, or ok=false if undefined.
func (t *Table) Lookup(name string) (*Definition, bool) {
	d, ok := t.defs[name]
	return d, ok
}

// Expand substitutes actuals into def's body, returning the expanded
// lines ready for splicing into the line buffer immediately after the
// invocation. Every whitespace-delimited token matching a formal
// `%argK` token is replaced by the corresponding actual; tokens that
// don't match pass through unchanged.
func Expand(def *Definition, actuals []string, callFile string, callLine int) ([]line.Line, error) {
	for _, a := range actuals {
		if len(a) > MaxActualLen {
			return nil, asmerr.New(asmerr.InvalidSymbol, callFile, a)
		}
	}
	subst := make(map[string]string, len(def.Formals))
	for i, formal := range def.Formals {
		if i < len(actuals) {
			subst["%"+formal] = actuals[i]
		}
	}

	out := make([]line.Line, 0, len(def.Body))
	for _, bodyLine := range def.Body {
		out = append(out, line.Line{
			File: callFile,
			Num:  callLine,
			Text: substituteTokens(bodyLine.Text, subst),
		})
	}
	return out, nil
}

func substituteTokens(text string, subst map[string]string) string {
	fields := strings.Fields(text)
	for i, f := range fields {
		// Strip a trailing comma so `%a,` still matches the formal.
		suffix := ""
		core := f
		if strings.HasSuffix(core, ",") {
			core = core[:len(core)-1]
			suffix = ","
		}
		if repl, ok := subst[core]; ok {
			fields[i] = repl + suffix
		}
	}
	return strings.Join(fields, " ")
}
