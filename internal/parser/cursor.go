package parser

import "strings"

// SplitLines splits extracted text into lines, dropping NUL bytes and
// carriage returns left behind by PDF extraction.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\x00", "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// Cursor is a forward reader over the lines of a document.
type Cursor struct {
	lines []string
	pos   int
}

// NewCursor returns a cursor positioned at the first line.
func NewCursor(lines []string) *Cursor {
	return &Cursor{lines: lines}
}

// Next returns the current line and advances.
func (c *Cursor) Next() (string, bool) {
	if c.pos >= len(c.lines) {
		return "", false
	}
	line := c.lines[c.pos]
	c.pos++
	return line, true
}

// Peek returns the current line without advancing.
func (c *Cursor) Peek() (string, bool) {
	if c.pos >= len(c.lines) {
		return "", false
	}
	return c.lines[c.pos], true
}

// Pos returns the index of the current line.
func (c *Cursor) Pos() int { return c.pos }

// Seek moves the cursor to pos, clamped to the document.
func (c *Cursor) Seek(pos int) {
	switch {
	case pos < 0:
		c.pos = 0
	case pos > len(c.lines):
		c.pos = len(c.lines)
	default:
		c.pos = pos
	}
}

// Len returns the total number of lines.
func (c *Cursor) Len() int { return len(c.lines) }

// Remaining returns the number of lines not yet consumed.
func (c *Cursor) Remaining() int { return len(c.lines) - c.pos }

// Preview returns up to n lines starting at the beginning of the document.
func (c *Cursor) Preview(n int) []string {
	if n > len(c.lines) {
		n = len(c.lines)
	}
	return c.lines[:n]
}

// SkipUntil advances until match accepts a line. When include is true the
// matching line is consumed as well. If no line matches the cursor is left
// where it started and false is returned.
func (c *Cursor) SkipUntil(match func(string) bool, include bool) bool {
	start := c.pos
	for i := c.pos; i < len(c.lines); i++ {
		if match(c.lines[i]) {
			c.pos = i
			if include {
				c.pos++
			}
			return true
		}
	}
	c.pos = start
	return false
}
