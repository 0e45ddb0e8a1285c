package smart

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/goccy/go-yaml"
)

// ErrEnvValidation is returned when a parser environment is inconsistent.
var ErrEnvValidation = errors.New("parser environment validation failed")

// DefaultMaxDepth bounds grammar recursion when no limit is configured.
const DefaultMaxDepth = 512

// Env is the read-only configuration a parse runs under.
// It is validated before the parse begins; nothing during the parse checks
// it again.
type Env struct {
	// Start is the production a parse begins with.
	Start string `yaml:"start"`
	// SkipKinds lists token kinds treated as trivia and attached to the
	// following token.
	SkipKinds []string `yaml:"skip_kinds"`
	// Recover wraps unparsable trailing input in an error construction
	// instead of failing the parse.
	Recover bool `yaml:"recover"`
	// MaxDepth limits how deeply productions may nest.
	MaxDepth int `yaml:"max_depth"`
}

// DefaultEnv returns the environment used when no configuration is given.
func DefaultEnv() *Env {
	return &Env{
		SkipKinds: []string{"WhiteSpace", "Comment"},
		MaxDepth:  DefaultMaxDepth,
	}
}

// LoadEnv reads a YAML configuration file. Fields absent from the file keep
// their defaults. Unknown fields are rejected.
func LoadEnv(path string) (*Env, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseEnv(data)
}

// ParseEnv decodes a YAML configuration document.
func ParseEnv(data []byte) (*Env, error) {
	env := DefaultEnv()
	if err := yaml.UnmarshalWithOptions(data, env, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if env.MaxDepth == 0 {
		env.MaxDepth = DefaultMaxDepth
	}
	return env, nil
}

// Validate checks the environment for errors a parse could not recover from.
func (e *Env) Validate() error {
	if e.Start == "" {
		return fmt.Errorf("%w: start production is required", ErrEnvValidation)
	}
	if e.MaxDepth < 1 {
		return fmt.Errorf("%w: max_depth must be positive, got %d", ErrEnvValidation, e.MaxDepth)
	}
	for _, kind := range e.SkipKinds {
		if kind == "" {
			return fmt.Errorf("%w: empty skip kind", ErrEnvValidation)
		}
	}
	return nil
}

// Skips reports whether tokens of kind are trivia.
func (e *Env) Skips(kind string) bool {
	return slices.Contains(e.SkipKinds, kind)
}

// With returns a copy of e with the start production replaced.
func (e *Env) With(start string) *Env {
	c := *e
	c.SkipKinds = slices.Clone(e.SkipKinds)
	c.Start = start
	return &c
}
