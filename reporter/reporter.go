// Package reporter maps a *errs.Spanned diagnostic (or a parser
// *SyntaxError) back to its source
// text and formats the hygienic multi-line block from spec.md §4.H: a
// location line, a caret-underlined excerpt, and a one-line
// explanation, with optional ANSI colour gated on a terminal probe.
package reporter

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/tremor-rt/tremor/errs"
	"github.com/tremor-rt/tremor/parser"
)

const (
	colorRed   = "\x1b[31m"
	colorBold  = "\x1b[1m"
	colorReset = "\x1b[0m"
)

// Format renders err as the hygienic diagnostic block. source is the
// full text of the file the error's span points into; it may be empty
// if the source is unavailable, in which case the excerpt/caret lines
// are omitted and only the location and explanation survive.
func Format(err error, source string, colorize bool) string {
	var b strings.Builder

	sp, ok := err.(*errs.Spanned)
	if se, isSyntax := err.(*parser.SyntaxError); isSyntax {
		sp, ok = &errs.Spanned{Err: se, File: se.Span.File, Line: se.Span.Line, Col: se.Span.Col}, true
	}
	if !ok {
		if colorize {
			b.WriteString(colorRed)
		}
		b.WriteString("Error: ")
		if colorize {
			b.WriteString(colorReset)
		}
		b.WriteString(err.Error())
		return b.String()
	}

	loc := fmt.Sprintf("Error in %s:%d:%d", sp.File, sp.Line, sp.Col)
	if colorize {
		b.WriteString(colorBold)
		b.WriteString(colorRed)
	}
	b.WriteString(loc)
	if colorize {
		b.WriteString(colorReset)
	}
	b.WriteByte('\n')

	if line, ok := sourceLine(source, sp.Line); ok {
		b.WriteString(line)
		b.WriteByte('\n')
		b.WriteString(caretLine(line, sp.Col, colorize))
		b.WriteByte('\n')
	}

	b.WriteString(sp.Err.Error())
	return b.String()
}

func sourceLine(source string, lineNo int) (string, bool) {
	if source == "" || lineNo < 1 {
		return "", false
	}
	lines := strings.Split(source, "\n")
	if lineNo > len(lines) {
		return "", false
	}
	return lines[lineNo-1], true
}

// caretLine builds a line of spaces with a single `^` under column col
// (1-indexed, counted in codepoints to match the lexer's span
// convention).
func caretLine(line string, col int, colorize bool) string {
	runes := []rune(line)
	pad := col - 1
	if pad < 0 {
		pad = 0
	}
	if pad > len(runes) {
		pad = len(runes)
	}
	var b strings.Builder
	for i := 0; i < pad; i++ {
		if runes[i] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	if colorize {
		b.WriteString(colorRed)
	}
	b.WriteByte('^')
	if colorize {
		b.WriteString(colorReset)
	}
	return b.String()
}

// IsColorTerminal probes fd (conventionally os.Stderr.Fd()) for TTY
// capability. The teacher pack carries no mattn/go-isatty-style
// helper; x/term.IsTerminal covers the same probe and is already a
// transitive of the x/crypto/x/sys stack this module depends on
// (see DESIGN.md).
func IsColorTerminal(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// ParseLocation parses a "file:line:col" triple as produced by Format,
// used by tests to assert on the exact location line scenario-4 of
// spec.md §8 requires.
func ParseLocation(s string) (file string, line, col int, ok bool) {
	const prefix = "Error in "
	if !strings.HasPrefix(s, prefix) {
		return "", 0, 0, false
	}
	rest := s[len(prefix):]
	nl := strings.IndexByte(rest, '\n')
	if nl >= 0 {
		rest = rest[:nl]
	}
	idx := strings.LastIndexByte(rest, ':')
	if idx < 0 {
		return "", 0, 0, false
	}
	colStr := rest[idx+1:]
	rest = rest[:idx]
	idx2 := strings.LastIndexByte(rest, ':')
	if idx2 < 0 {
		return "", 0, 0, false
	}
	lineStr := rest[idx2+1:]
	file = rest[:idx2]
	l, err := strconv.Atoi(lineStr)
	if err != nil {
		return "", 0, 0, false
	}
	c, err := strconv.Atoi(colStr)
	if err != nil {
		return "", 0, 0, false
	}
	return file, l, c, true
}
