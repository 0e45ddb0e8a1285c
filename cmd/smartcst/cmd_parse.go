package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/smartcst/cst"
	"github.com/dhamidi/smartcst/ebnf/parse"
	"github.com/dhamidi/smartcst/format"
	"github.com/dhamidi/smartcst/positioned"
	"github.com/dhamidi/smartcst/smart"
	"github.com/dhamidi/smartcst/source"
	"github.com/dhamidi/smartcst/validate"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/exp/ebnf"
)

var errInvalid = errors.New("input does not match the grammar")

var backends = []string{"cst", "positioned", "validate"}

func newParseCmd() *cobra.Command {
	var flags envFlags
	var backend string
	var outputFormat string
	var showStats bool

	cmd := &cobra.Command{
		Use:   "parse <grammar> <file>",
		Short: "Parse a file with a grammar and dump the result",
		Long: "Parse a file with a grammar and dump the result.\n\n" +
			"Backends: " + strings.Join(backends, ", ") + ". Use - as file to read standard input.",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := flags.env(cmd)
			if err != nil {
				return err
			}
			g, err := loadGrammar(args[0], env.Start)
			if err != nil {
				return err
			}
			text, err := readSource(cmd, args[1])
			if err != nil {
				return err
			}

			var stats parse.Stats
			switch backend {
			case "cst":
				stats, err = parseCST(cmd, g, env, text, outputFormat)
			case "positioned":
				stats, err = parsePositioned(cmd, g, env, text, outputFormat)
			case "validate":
				stats, err = parseValidate(cmd, g, env, text)
			default:
				return fmt.Errorf("unknown backend: %s", backend)
			}

			if showStats {
				printStats(cmd.ErrOrStderr(), stats)
			}
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&backend, "backend", "b", "cst", "tree backend: "+strings.Join(backends, ", "))
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "tree", "output format: "+strings.Join(format.Names, ", "))
	cmd.Flags().BoolVar(&showStats, "stats", false, "print parser statistics to stderr")

	return cmd
}

// run parses text with one backend and returns what the parser did, even
// when the parse fails.
func run[R any, S smart.State[S, R]](g ebnf.Grammar, cons smart.Constructors[R], env *smart.Env, text *source.Text) (R, S, parse.Stats, error) {
	var root R
	var state S
	p, err := parse.New[R, S](g, cons, env, text)
	if err != nil {
		return root, state, parse.Stats{}, err
	}
	root, err = p.Parse()
	return root, p.State(), p.Stats(), err
}

func parseCST(cmd *cobra.Command, g ebnf.Grammar, env *smart.Env, text *source.Text, name string) (parse.Stats, error) {
	enc, err := format.CST(name, cmd.OutOrStdout())
	if err != nil {
		return parse.Stats{}, err
	}

	root, diags, stats, err := run[*cst.Node, cst.Diagnostics](g, cst.NewConstructors(text), env, text)
	if err != nil {
		return stats, err
	}
	if err := enc.Encode(root); err != nil {
		return stats, fmt.Errorf("encode: %w", err)
	}

	if diags.Len() > 0 {
		if err := format.NewDiagnosticEncoder(cmd.ErrOrStderr()).Encode(diags.All()); err != nil {
			return stats, err
		}
		return stats, fmt.Errorf("%w: %d errors", errInvalid, diags.Len())
	}
	return stats, nil
}

func parsePositioned(cmd *cobra.Command, g ebnf.Grammar, env *smart.Env, text *source.Text, name string) (parse.Stats, error) {
	enc, err := format.Positioned(name, cmd.OutOrStdout())
	if err != nil {
		return parse.Stats{}, err
	}

	root, _, stats, err := run[*positioned.Node, positioned.State](g, positioned.Constructors{}, env, text)
	if err != nil {
		return stats, err
	}
	if err := enc.Encode(root); err != nil {
		return stats, fmt.Errorf("encode: %w", err)
	}
	return stats, nil
}

func parseValidate(cmd *cobra.Command, g ebnf.Grammar, env *smart.Env, text *source.Text) (parse.Stats, error) {
	_, flag, stats, err := run[validate.Mark, validate.Flag](g, validate.Constructors{}, env, text)
	if err != nil {
		return stats, err
	}

	if flag.Failed {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.RedString("invalid"), text.Name())
		return stats, errInvalid
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d constructions, %d missing\n",
		color.GreenString("valid"), text.Name(), flag.Constructions, flag.Missing)
	return stats, nil
}

func printStats(w io.Writer, s parse.Stats) {
	fmt.Fprintf(w, "tokens:        %d\n", s.Tokens)
	fmt.Fprintf(w, "constructions: %d\n", s.Constructions)
	fmt.Fprintf(w, "speculations:  %d\n", s.Speculations)
	fmt.Fprintf(w, "rewinds:       %d\n", s.Rewinds)
	fmt.Fprintf(w, "memo hits:     %d\n", s.MemoHits)
	fmt.Fprintf(w, "max depth:     %d\n", s.MaxDepth)
}
