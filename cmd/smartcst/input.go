package main

import (
	"fmt"
	"io"

	"github.com/dhamidi/smartcst/ebnf/lex"
	"github.com/dhamidi/smartcst/smart"
	"github.com/dhamidi/smartcst/source"
	"github.com/spf13/cobra"
	"golang.org/x/exp/ebnf"
)

// envFlags are the flags shared by every command that parses input.
type envFlags struct {
	config  string
	start   string
	recover bool
}

func (f *envFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "YAML parse configuration")
	cmd.Flags().StringVarP(&f.start, "start", "s", "", "start production (overrides the configuration)")
	cmd.Flags().BoolVar(&f.recover, "recover", false, "wrap unparsable input in an error node instead of failing")
}

// load returns the defaults, or the config file when one was given.
func (f *envFlags) load() (*smart.Env, error) {
	if f.config == "" {
		return smart.DefaultEnv(), nil
	}
	return smart.LoadEnv(f.config)
}

// env builds the parse configuration: defaults, then the config file, then
// flags the user set explicitly.
func (f *envFlags) env(cmd *cobra.Command) (*smart.Env, error) {
	env, err := f.load()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("start") {
		env.Start = f.start
	}
	if cmd.Flags().Changed("recover") {
		env.Recover = f.recover
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	return env, nil
}

// loadGrammar loads and verifies the grammar at path from start.
func loadGrammar(path, start string) (ebnf.Grammar, error) {
	g, err := lex.LoadGrammar(path)
	if err != nil {
		return nil, err
	}
	if err := lex.Verify(g, start); err != nil {
		return nil, fmt.Errorf("verify grammar: %w", err)
	}
	return g, nil
}

// readSource reads the file at path, or standard input for "-".
func readSource(cmd *cobra.Command, path string) (*source.Text, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return source.New("<stdin>", data), nil
	}
	return source.ReadFile(path)
}
