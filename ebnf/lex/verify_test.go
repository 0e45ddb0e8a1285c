package lex

import (
	"strings"
	"testing"
)

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		grammar string
		start   string
		wantErr string
	}{
		{
			name:    "unused trivia is fine",
			grammar: `s = Identifier . Identifier = "a" … "z" . WhiteSpace = " " .`,
			start:   "s",
		},
		{
			name:    "unused production is fine",
			grammar: `s = "x" . t = "y" .`,
			start:   "s",
		},
		{
			name:    "token references production",
			grammar: `s = T . T = "a" u . u = "b" .`,
			start:   "s",
			wantErr: "reference to non-lexical production u",
		},
		{
			name:    "undefined reference",
			grammar: `s = t .`,
			start:   "s",
			wantErr: "missing production t",
		},
		{
			name:    "no start",
			grammar: `s = "x" .`,
			start:   "file",
			wantErr: "no start production file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ParseGrammar("test.ebnf", strings.NewReader(tt.grammar))
			if err != nil {
				t.Fatalf("ParseGrammar() error = %v", err)
			}
			err = Verify(g, tt.start)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Verify() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Verify() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestErrorsNil(t *testing.T) {
	if got := Errors(nil); got != nil {
		t.Errorf("Errors(nil) = %v, want nil", got)
	}
}
