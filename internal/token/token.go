// Package token implements the lexical primitives: immediate, register
// and base-offset parsing, and escape-sequence decoding. These are the
// leaf operations every later pass builds on. Splitting a line into
// operands is done by the callers (internal/assemble, internal/data).
package token

import (
	"strconv"
	"strings"

	"github.com/pclava/mipsasm/internal/asmerr"
	"github.com/pclava/mipsasm/internal/ir"
)

// regNames is the ABI register name table, index -> name.
var regNames = [32]string{
	"zero", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
}

var regByName map[string]uint8

func init() {
	regByName = make(map[string]uint8, len(regNames))
	for i, n := range regNames {
		regByName[n] = uint8(i)
	}
}

// ParseRegister accepts a token of the form "$name" or "$N" (0<=N<=31)
// and returns its register index, or ok=false if unrecognized.
func ParseRegister(tok string) (uint8, bool) {
	if len(tok) < 2 || tok[0] != '$' {
		return 0, false
	}
	name := tok[1:]
	if r, ok := regByName[name]; ok {
		return r, true
	}
	if n, err := strconv.Atoi(name); err == nil && n >= 0 && n <= 31 {
		return uint8(n), true
	}
	return 0, false
}

// DecodeEscape decodes the escape sequence starting at s[0] == '\\' and
// returns the number of bytes of s consumed (including the backslash)
// and the decoded byte. Supports the standard C set plus \ooo (octal,
// 1-3 digits) and \xHH/\XHH (hex, 1-2 digits).
func DecodeEscape(s string) (consumed int, ch byte, err error) {
	if len(s) < 2 || s[0] != '\\' {
		return 0, 0, asmerr.New(asmerr.InvalidArg, "", s)
	}
	switch s[1] {
	case 'a':
		return 2, '\a', nil
	case 'b':
		return 2, '\b', nil
	case 'f':
		return 2, '\f', nil
	case 'n':
		return 2, '\n', nil
	case 'r':
		return 2, '\r', nil
	case 't':
		return 2, '\t', nil
	case 'v':
		return 2, '\v', nil
	case '\\':
		return 2, '\\', nil
	case '"':
		return 2, '"', nil
	case '\'':
		return 2, '\'', nil
	case 'x', 'X':
		i := 2
		for i < len(s) && i < 4 && isHexDigit(s[i]) {
			i++
		}
		if i == 2 {
			return 0, 0, asmerr.New(asmerr.InvalidArg, "", s)
		}
		v, _ := strconv.ParseInt(s[2:i], 16, 32)
		if v > 255 {
			return 0, 0, asmerr.New(asmerr.SizeError, "", s)
		}
		return i, byte(v), nil
	default:
		if isOctalDigit(s[1]) {
			i := 1
			for i < len(s) && i < 4 && isOctalDigit(s[i]) {
				i++
			}
			v, _ := strconv.ParseInt(s[1:i], 8, 32)
			if v > 255 {
				return 0, 0, asmerr.New(asmerr.SizeError, "", s)
			}
			return i, byte(v), nil
		}
	}
	return 0, 0, asmerr.New(asmerr.InvalidArg, "", s)
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isOctalDigit(c byte) bool { return c >= '0' && c <= '7' }

// DecodeString decodes a quoted string body (without the surrounding
// quotes), processing escapes, and returns the raw bytes.
func DecodeString(body string) ([]byte, error) {
	out := make([]byte, 0, len(body))
	for i := 0; i < len(body); {
		if body[i] == '\\' {
			n, ch, err := DecodeEscape(body[i:])
			if err != nil {
				return nil, err
			}
			out = append(out, ch)
			i += n
			continue
		}
		out = append(out, body[i])
		i++
	}
	return out, nil
}

// ParseImmediate classifies and parses a single operand token into an
// ir.Immediate, following the recognition order: character literal,
// then integer (with base inference and BaseOffset reclassification),
// then bare symbol.
func ParseImmediate(tok string) (ir.Immediate, error) {
	if tok == "" {
		return ir.Immediate{Kind: ir.ImmNone}, nil
	}

	if tok[0] == '"' {
		return parseCharLiteral(tok)
	}

	if tok[0] == '%' {
		return parseSymbolModifier(tok)
	}

	if isDigitOrMinus(tok[0]) {
		return parseIntegerOrBaseOffset(tok)
	}

	if strings.ContainsRune(tok, '(') {
		return ir.Immediate{Kind: ir.ImmBaseOffset, BaseOffsetText: tok}, nil
	}

	if len(tok) > 31 {
		return ir.Immediate{}, asmerr.New(asmerr.InvalidSymbol, "", tok)
	}
	return ir.Immediate{Kind: ir.ImmSymbol, Symbol: tok, Modifier: ir.ModNone}, nil
}

func isDigitOrMinus(c byte) bool { return (c >= '0' && c <= '9') || c == '-' }

func parseCharLiteral(tok string) (ir.Immediate, error) {
	if len(tok) < 3 || tok[len(tok)-1] != '"' {
		return ir.Immediate{}, asmerr.New(asmerr.InvalidArg, "", tok)
	}
	body := tok[1 : len(tok)-1]
	if len(body) == 1 {
		return ir.Immediate{Kind: ir.ImmInteger, IntValue: int32(body[0])}, nil
	}
	if len(body) >= 2 && body[0] == '\\' {
		_, ch, err := DecodeEscape(body)
		if err != nil {
			return ir.Immediate{}, err
		}
		return ir.Immediate{Kind: ir.ImmInteger, IntValue: int32(ch)}, nil
	}
	return ir.Immediate{}, asmerr.New(asmerr.InvalidArg, "", tok)
}

// parseSymbolModifier handles %hi(label) / %lo(label) operands written
// in source. la's pseudo-expansion does not go through here: it sets the
// Hi/Lo modifiers on its IR directly.
func parseSymbolModifier(tok string) (ir.Immediate, error) {
	open := strings.IndexByte(tok, '(')
	if open < 0 || tok[len(tok)-1] != ')' {
		return ir.Immediate{}, asmerr.New(asmerr.InvalidArg, "", tok)
	}
	kind := tok[1:open]
	name := tok[open+1 : len(tok)-1]
	var mod ir.Modifier
	switch kind {
	case "hi":
		mod = ir.ModHi
	case "lo":
		mod = ir.ModLo
	default:
		return ir.Immediate{}, asmerr.New(asmerr.InvalidArg, "", tok)
	}
	if len(name) > 31 {
		return ir.Immediate{}, asmerr.New(asmerr.InvalidSymbol, "", name)
	}
	return ir.Immediate{Kind: ir.ImmSymbol, Symbol: name, Modifier: mod}, nil
}

func parseIntegerOrBaseOffset(tok string) (ir.Immediate, error) {
	// Split off an optional `(reg)` suffix before parsing the numeric
	// prefix, reclassifying the whole token as BaseOffset.
	if paren := strings.IndexByte(tok, '('); paren >= 0 {
		return ir.Immediate{Kind: ir.ImmBaseOffset, BaseOffsetText: tok}, nil
	}

	neg := false
	s := tok
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	if s == "" {
		return ir.Immediate{}, asmerr.New(asmerr.InvalidArg, "", tok)
	}

	base := 10
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		base = 16
		s = s[2:]
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		base = 2
		s = s[2:]
	case len(s) > 1 && s[0] == '0':
		base = 8
		s = s[1:]
	}

	v, err := strconv.ParseInt(s, base, 64)
	if err != nil {
		return ir.Immediate{}, asmerr.New(asmerr.InvalidArg, "", tok)
	}
	if neg {
		v = -v
	}
	if v < -(1<<31) || v > (1<<32-1) {
		return ir.Immediate{}, asmerr.New(asmerr.SizeError, "", tok)
	}
	return ir.Immediate{Kind: ir.ImmInteger, IntValue: int32(v)}, nil
}

// ParseBaseOffset parses a raw `[imm](reg)` token into a signed 16-bit
// offset and a register index.
func ParseBaseOffset(text string) (offset int16, reg uint8, err error) {
	open := strings.IndexByte(text, '(')
	closeIdx := strings.LastIndexByte(text, ')')
	if open < 0 || closeIdx < open {
		return 0, 0, asmerr.New(asmerr.InvalidArg, "", text)
	}
	immText := text[:open]
	regText := text[open+1 : closeIdx]

	var v int64
	if immText == "" {
		v = 0
	} else {
		imm, perr := parseIntegerOrBaseOffset(immText)
		if perr != nil || imm.Kind != ir.ImmInteger {
			return 0, 0, asmerr.New(asmerr.InvalidArg, "", text)
		}
		v = int64(imm.IntValue)
	}
	if v < -32768 || v > 32767 {
		return 0, 0, asmerr.New(asmerr.SizeError, "", text)
	}

	r, ok := ParseRegister(regText)
	if !ok {
		return 0, 0, asmerr.New(asmerr.InvalidArg, "", text)
	}
	return int16(v), r, nil
}
