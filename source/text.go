// Package source holds the immutable text buffer a parse reads from.
package source

import (
	"fmt"
	"os"
	"sort"
)

// Position represents a location in source code.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span represents a range in source code.
type Span struct {
	Start Position
	End   Position
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%d:%d", s.Start, s.End.Line, s.End.Column)
}

// Text is a read-only source buffer addressed by byte offsets.
// Line and column numbers are 1-based; columns count bytes, not runes.
type Text struct {
	name  string
	data  []byte
	lines []int // byte offset of the first byte of each line
}

// New creates a Text over data. The buffer is not copied and must not be
// modified afterwards.
func New(name string, data []byte) *Text {
	t := &Text{
		name:  name,
		data:  data,
		lines: []int{0},
	}
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '\n':
			t.lines = append(t.lines, i+1)
		case '\r':
			if i+1 < len(data) && data[i+1] == '\n' {
				i++
			}
			t.lines = append(t.lines, i+1)
		}
	}
	return t
}

// FromString creates a Text from a string.
func FromString(name, s string) *Text {
	return New(name, []byte(s))
}

// ReadFile loads a file into a Text named after its path.
func ReadFile(path string) (*Text, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	return New(path, data), nil
}

func (t *Text) Name() string { return t.name }

// Len returns the size of the buffer in bytes.
func (t *Text) Len() int { return len(t.data) }

// Bytes returns the underlying buffer. Callers must not modify it.
func (t *Text) Bytes() []byte { return t.data }

// Slice returns the text between two offsets, clamped to the buffer.
func (t *Text) Slice(start, end int) string {
	start = t.clamp(start)
	end = t.clamp(end)
	if end < start {
		return ""
	}
	return string(t.data[start:end])
}

// Position converts a byte offset into a Position.
func (t *Text) Position(offset int) Position {
	offset = t.clamp(offset)
	line := sort.Search(len(t.lines), func(i int) bool { return t.lines[i] > offset }) - 1
	return Position{
		Filename: t.name,
		Offset:   offset,
		Line:     line + 1,
		Column:   offset - t.lines[line] + 1,
	}
}

// Offset converts a 1-based line and column into a byte offset.
func (t *Text) Offset(line, column int) int {
	if line < 1 {
		return 0
	}
	if line > len(t.lines) {
		return len(t.data)
	}
	return t.clamp(t.lines[line-1] + column - 1)
}

// Span returns the span between two offsets.
func (t *Text) Span(start, end int) Span {
	return Span{Start: t.Position(start), End: t.Position(end)}
}

func (t *Text) clamp(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(t.data) {
		return len(t.data)
	}
	return offset
}
