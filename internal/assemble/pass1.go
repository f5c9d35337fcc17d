package assemble

import (
	"strconv"
	"strings"

	"github.com/pclava/mipsasm/internal/asmerr"
	"github.com/pclava/mipsasm/internal/data"
	"github.com/pclava/mipsasm/internal/ir"
	"github.com/pclava/mipsasm/internal/isa"
	"github.com/pclava/mipsasm/internal/line"
	"github.com/pclava/mipsasm/internal/macro"
	"github.com/pclava/mipsasm/internal/pseudo"
	"github.com/pclava/mipsasm/internal/symtab"
)

// Pass1Result holds everything pass 1 collects: the symbol table, the
// flat list of real (pseudo-expanded) instructions in emission order,
// and the data segment's item list.
type Pass1Result struct {
	Symbols      *symtab.Table
	Instructions []ir.Instruction
	DataItems    []ir.Datum
}

// Pass1 walks buf in order, switching between TEXT/DATA segments,
// defining labels, expanding macros and pseudo-instructions in place,
// and building the instruction IR list and data segment.
func Pass1(buf *line.Buffer) (*Pass1Result, error) {
	syms := symtab.New()
	macros := macro.New()
	dataBuilder := data.New()

	segment := symtab.TEXT
	textCursor := uint32(0)
	var instrs []ir.Instruction

	w := buf.Walk()
	for {
		l, _, ok := w.Next()
		if !ok {
			break
		}
		fields := strings.Fields(l.Text)
		if len(fields) == 0 {
			continue
		}

		i := 0
		for i < len(fields) && strings.HasSuffix(fields[i], ":") {
			name := strings.TrimSuffix(fields[i], ":")
			if name == "" || len(name) > symtab.MaxNameLen || !isValidSymbolName(name) {
				return nil, asmerr.AtLine(asmerr.InvalidSymbol, l.File, l.Num, l.Text, name)
			}
			var off uint32
			if segment == symtab.TEXT {
				off = textCursor
			} else {
				off = dataBuilder.Offset()
			}
			if err := syms.Insert(name, off, segment, symtab.LOCAL); err != nil {
				return nil, withLine(err, l)
			}
			i++
		}
		remaining := fields[i:]
		if len(remaining) == 0 {
			continue
		}

		directive := remaining[0]
		rest := strings.Join(remaining[1:], " ")
		src := ir.SourceLine{File: l.File, Num: l.Num, Text: l.Text}

		switch directive {
		case ".text":
			segment = symtab.TEXT
		case ".data":
			segment = symtab.DATA
		case ".globl":
			name := strings.TrimSpace(rest)
			if err := syms.MarkGlobal(name); err != nil {
				return nil, withLine(err, l)
			}
		case ".macro":
			def, err := readMacroDef(w, rest, l)
			if err != nil {
				return nil, err
			}
			if err := macros.Define(def.Name, def.Formals, def.Body); err != nil {
				return nil, withLine(err, l)
			}
		case ".byte", ".half", ".word", ".ascii", ".asciiz", ".space", ".align":
			if err := handleDataDirective(dataBuilder, directive, rest, src); err != nil {
				return nil, err
			}
		default:
			if def, ok := macros.Lookup(directive); ok {
				actuals := splitOperands(rest)
				expanded, err := macro.Expand(def, actuals, l.File, l.Num)
				if err != nil {
					return nil, withLine(err, l)
				}
				w.InsertHere(expanded...)
				continue
			}

			inst, err := parseInstruction(directive, rest, src)
			if err != nil {
				return nil, err
			}

			if isa.Pseudos[directive] {
				expanded, err := pseudo.Expand(inst)
				if err != nil {
					return nil, err
				}
				instrs = append(instrs, expanded...)
				textCursor += 4 * uint32(len(expanded))
				continue
			}

			if _, ok := isa.Lookup(directive); !ok {
				return nil, asmerr.AtLine(asmerr.UnknownToken, l.File, l.Num, l.Text, directive)
			}
			instrs = append(instrs, inst)
			textCursor += 4
		}
	}

	return &Pass1Result{Symbols: syms, Instructions: instrs, DataItems: dataBuilder.Items()}, nil
}

func withLine(err error, l line.Line) error {
	if ae, ok := err.(*asmerr.Error); ok && ae.Line == 0 {
		ae.File = l.File
		ae.Line = l.Num
		ae.LineText = l.Text
		return ae
	}
	return err
}

func isValidSymbolName(name string) bool {
	for i := 0; i < len(name); i++ {
		c := name[i]
		alnum := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
		if !alnum {
			return false
		}
	}
	return true
}

// readMacroDef consumes lines from w (starting right after the .macro
// header line) through .end_macro, building the Definition.
func readMacroDef(w *line.Walker, header string, headerLine line.Line) (*macro.Definition, error) {
	fields := strings.Fields(header)
	if len(fields) == 0 {
		return nil, asmerr.AtLine(asmerr.InvalidArgs, headerLine.File, headerLine.Num, headerLine.Text, ".macro")
	}
	name := fields[0]
	formals := make([]string, 0, len(fields)-1)
	for _, f := range fields[1:] {
		if !strings.HasPrefix(f, "%") {
			return nil, asmerr.AtLine(asmerr.InvalidArgs, headerLine.File, headerLine.Num, headerLine.Text, f)
		}
		formals = append(formals, f[1:])
	}

	var body []line.Line
	for {
		l, _, ok := w.Next()
		if !ok {
			return nil, asmerr.AtLine(asmerr.InvalidArgs, headerLine.File, headerLine.Num, headerLine.Text, ".end_macro")
		}
		if strings.TrimSpace(l.Text) == ".end_macro" {
			break
		}
		body = append(body, l)
	}

	return &macro.Definition{Name: name, Formals: formals, Body: body}, nil
}

func handleDataDirective(b *data.Builder, directive, rest string, src ir.SourceLine) error {
	switch directive {
	case ".byte":
		for _, tok := range data.ParseOperands(rest) {
			v, err := strconv.ParseInt(tok, 0, 32)
			if err != nil {
				return asmerr.AtLine(asmerr.InvalidArg, src.File, src.Num, src.Text, tok)
			}
			if err := b.Byte(int32(v), src); err != nil {
				return err
			}
		}
	case ".half":
		for _, tok := range data.ParseOperands(rest) {
			v, err := strconv.ParseInt(tok, 0, 32)
			if err != nil {
				return asmerr.AtLine(asmerr.InvalidArg, src.File, src.Num, src.Text, tok)
			}
			if err := b.Half(int32(v), src); err != nil {
				return err
			}
		}
	case ".word":
		for _, tok := range data.ParseOperands(rest) {
			if v, err := strconv.ParseInt(tok, 0, 64); err == nil {
				if err := b.Word(int32(v), src); err != nil {
					return err
				}
				continue
			}
			if !isValidSymbolName(tok) {
				return asmerr.AtLine(asmerr.InvalidArg, src.File, src.Num, src.Text, tok)
			}
			if err := b.WordSymbol(tok, src); err != nil {
				return err
			}
		}
	case ".ascii":
		raw, err := data.ParseStringLiteral(strings.TrimSpace(rest))
		if err != nil {
			return asmerr.AtLine(asmerr.InvalidArg, src.File, src.Num, src.Text, rest)
		}
		b.Ascii(raw, src)
	case ".asciiz":
		raw, err := data.ParseStringLiteral(strings.TrimSpace(rest))
		if err != nil {
			return asmerr.AtLine(asmerr.InvalidArg, src.File, src.Num, src.Text, rest)
		}
		b.Asciiz(raw, src)
	case ".space":
		n, err := strconv.ParseUint(strings.TrimSpace(rest), 0, 32)
		if err != nil {
			return asmerr.AtLine(asmerr.InvalidArg, src.File, src.Num, src.Text, rest)
		}
		if err := b.Space(uint32(n), src); err != nil {
			return err
		}
	case ".align":
		k, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return asmerr.AtLine(asmerr.InvalidArg, src.File, src.Num, src.Text, rest)
		}
		if err := b.Align(k, src); err != nil {
			return err
		}
	}
	return nil
}
