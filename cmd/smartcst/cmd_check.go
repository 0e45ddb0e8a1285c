package main

import (
	"fmt"
	"os"

	"github.com/dhamidi/smartcst/ebnf/lex"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/exp/ebnf"
)

func newCheckCmd() *cobra.Command {
	var startProduction string

	cmd := &cobra.Command{
		Use:           "check <grammar>",
		Short:         "Parse and verify an EBNF grammar file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]

			f, err := os.Open(filename)
			if err != nil {
				err = fmt.Errorf("open file: %w", err)
				printErrors(cmd, err)
				return err
			}
			defer f.Close()

			grammar, err := ebnf.Parse(filename, f)
			if err != nil {
				printErrors(cmd, err)
				return err
			}

			if startProduction != "" {
				if err := lex.Verify(grammar, startProduction); err != nil {
					printErrors(cmd, err)
					return err
				}
			}

			tokens := 0
			for name := range grammar {
				if lex.IsLexical(name) {
					tokens++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d productions, %d tokens\n",
				color.GreenString("ok"), filename, len(grammar)-tokens, tokens)
			return nil
		},
	}

	cmd.Flags().StringVarP(&startProduction, "start", "s", "", "start production for verification (if empty, only checks syntax)")

	return cmd
}

func printErrors(cmd *cobra.Command, err error) {
	for _, e := range lex.Errors(err) {
		fmt.Fprintln(cmd.ErrOrStderr(), e)
	}
}
