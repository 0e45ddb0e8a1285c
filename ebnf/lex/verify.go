package lex

import (
	"errors"
	"reflect"
	"strings"

	"golang.org/x/exp/ebnf"
)

const unreachable = " is unreachable"

// Verify checks g with ebnf.Verify from start, keeping only the errors that
// would break a parse. Productions unreachable from start are allowed:
// trivia such as WhiteSpace is matched by the lexer alone, and a grammar may
// be parsed from any of its productions.
func Verify(g ebnf.Grammar, start string) error {
	var errs []error
	for _, err := range Errors(ebnf.Verify(g, start)) {
		if strings.HasSuffix(err.Error(), unreachable) {
			continue
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Errors flattens the error lists returned by the ebnf package.
func Errors(err error) []error {
	if err == nil {
		return nil
	}
	v := reflect.ValueOf(err)
	if v.Kind() != reflect.Slice {
		return []error{err}
	}
	out := make([]error, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		if e, ok := v.Index(i).Interface().(error); ok {
			out = append(out, e)
		}
	}
	return out
}
