// Package format renders trees, tokens and diagnostics for people and tools.
package format

import (
	"errors"
	"fmt"
	"io"

	"github.com/dhamidi/smartcst/cst"
	"github.com/dhamidi/smartcst/positioned"
)

var ErrUnknownFormat = errors.New("unknown format")

// Encoder writes values of type T to an output stream.
type Encoder[T any] interface {
	Encode(v T) error
}

// Names lists the formats accepted by CST and Positioned.
var Names = []string{"json", "tree"}

// CST returns the encoder for full trees called name.
func CST(name string, w io.Writer) (Encoder[*cst.Node], error) {
	switch name {
	case "json":
		return NewJSONEncoder(w), nil
	case "tree":
		return NewTreeEncoder(w), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Positioned returns the encoder for positioned trees called name.
func Positioned(name string, w io.Writer) (Encoder[*positioned.Node], error) {
	switch name {
	case "json":
		return NewPositionedJSONEncoder(w), nil
	case "tree":
		return NewPositionedTreeEncoder(w), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}
