// Package preprocess implements the lexical preprocessor contract from
// the external-interface spec: comment stripping, whitespace collapsing
// (respecting quoted strings), and the label-splice rule, reading the
// source the way asm/assembler.go scans input with bufio.Scanner.
package preprocess

import (
	"bufio"
	"io"
	"strings"

	"github.com/pclava/mipsasm/internal/line"
)

// Run reads r line by line, strips `#...EOL` comments, collapses
// whitespace runs outside quoted strings, and splices a trailing
// `label:` onto the following non-blank line. filename is recorded on
// every produced Line for diagnostics.
func Run(r io.Reader, filename string) (*line.Buffer, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	buf := line.New()
	rawNum := 0

	var pendingLabel string
	var pendingLabelLineNum int

	for scanner.Scan() {
		rawNum++
		cleaned := stripAndCollapse(scanner.Text())
		if cleaned == "" {
			continue
		}

		if pendingLabel != "" {
			buf.Append(line.Line{File: filename, Num: pendingLabelLineNum, Text: pendingLabel + " " + cleaned})
			pendingLabel = ""
			continue
		}

		if endsWithLabel(cleaned) {
			pendingLabel = cleaned
			pendingLabelLineNum = rawNum
			continue
		}

		buf.Append(line.Line{File: filename, Num: rawNum, Text: cleaned})
	}
	if pendingLabel != "" {
		// A trailing label with nothing to splice onto stands alone.
		buf.Append(line.Line{File: filename, Num: pendingLabelLineNum, Text: pendingLabel})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return buf, nil
}

// endsWithLabel reports whether the cleaned line's last meaningful
// token ends with ':' (a label definition with nothing else on the
// line), triggering the splice rule.
func endsWithLabel(s string) bool {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return false
	}
	return strings.HasSuffix(fields[len(fields)-1], ":")
}

// stripAndCollapse strips a `#...EOL` comment (unless inside a quoted
// string) and collapses runs of whitespace outside quoted strings,
// leaving `\"` as a non-terminating escape within a string.
func stripAndCollapse(raw string) string {
	var out strings.Builder
	inString := false
	lastWasSpace := false

	for i := 0; i < len(raw); i++ {
		c := raw[i]

		if !inString && c == '#' {
			break
		}

		if c == '"' {
			inString = !inString
			out.WriteByte(c)
			lastWasSpace = false
			continue
		}

		if inString && c == '\\' && i+1 < len(raw) {
			out.WriteByte(c)
			out.WriteByte(raw[i+1])
			i++
			lastWasSpace = false
			continue
		}

		if !inString && (c == ' ' || c == '\t') {
			if lastWasSpace {
				continue
			}
			out.WriteByte(' ')
			lastWasSpace = true
			continue
		}

		out.WriteByte(c)
		lastWasSpace = false
	}

	return strings.TrimSpace(out.String())
}
