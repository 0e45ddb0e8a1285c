package source

import (
	"testing"
)

func TestTextPosition(t *testing.T) {
	text := FromString("a.txt", "ab\ncd\r\nef\rg")

	tests := []struct {
		offset int
		line   int
		column int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{2, 1, 3},
		{3, 2, 1},
		{4, 2, 2},
		{7, 3, 1},
		{10, 4, 1},
		{11, 4, 2},
		{99, 4, 2},
		{-5, 1, 1},
	}

	for _, tt := range tests {
		pos := text.Position(tt.offset)
		if pos.Line != tt.line || pos.Column != tt.column {
			t.Errorf("Position(%d) = %d:%d, want %d:%d", tt.offset, pos.Line, pos.Column, tt.line, tt.column)
		}
		if pos.Filename != "a.txt" {
			t.Errorf("Position(%d).Filename = %q", tt.offset, pos.Filename)
		}
	}
}

func TestTextOffsetRoundTrip(t *testing.T) {
	text := FromString("", "one\ntwo\nthree")
	for offset := 0; offset <= text.Len(); offset++ {
		pos := text.Position(offset)
		if got := text.Offset(pos.Line, pos.Column); got != offset {
			t.Errorf("Offset(%d, %d) = %d, want %d", pos.Line, pos.Column, got, offset)
		}
	}
	if got := text.Offset(10, 1); got != text.Len() {
		t.Errorf("Offset past last line = %d, want %d", got, text.Len())
	}
}

func TestTextSlice(t *testing.T) {
	text := FromString("", "hello world")
	if got := text.Slice(6, 11); got != "world" {
		t.Errorf("Slice(6, 11) = %q", got)
	}
	if got := text.Slice(8, 3); got != "" {
		t.Errorf("Slice with end before start = %q", got)
	}
	if got := text.Slice(-1, 100); got != "hello world" {
		t.Errorf("Slice clamped = %q", got)
	}
}

func TestPositionString(t *testing.T) {
	if got := (Position{Line: 3, Column: 4}).String(); got != "3:4" {
		t.Errorf("got %q", got)
	}
	if got := (Position{Filename: "x.g", Line: 3, Column: 4}).String(); got != "x.g:3:4" {
		t.Errorf("got %q", got)
	}
}
