package main

import (
	"github.com/dhamidi/smartcst/ebnf/lex"
	"github.com/dhamidi/smartcst/format"
	"github.com/spf13/cobra"
)

func newTokensCmd() *cobra.Command {
	var flags envFlags
	var trivia bool

	cmd := &cobra.Command{
		Use:          "tokens <grammar> <file>",
		Short:        "Dump the tokens the grammar's lexer finds in a file",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := flags.load()
			if err != nil {
				return err
			}
			g, err := lex.LoadGrammar(args[0])
			if err != nil {
				return err
			}
			text, err := readSource(cmd, args[1])
			if err != nil {
				return err
			}

			tokens, err := lex.Tokenize(g, text, env.SkipKinds)
			if err != nil {
				return err
			}

			enc := format.NewTokenEncoder(cmd.OutOrStdout(), text)
			enc.Trivia = trivia
			return enc.Encode(tokens)
		},
	}

	cmd.Flags().StringVarP(&flags.config, "config", "c", "", "YAML parse configuration")
	cmd.Flags().BoolVar(&trivia, "trivia", false, "also list skipped trivia tokens")

	return cmd
}
