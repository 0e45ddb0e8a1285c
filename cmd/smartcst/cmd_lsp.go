package main

import (
	"github.com/dhamidi/smartcst/lsp"
	"github.com/spf13/cobra"
)

func newLSPCmd() *cobra.Command {
	var flags envFlags

	cmd := &cobra.Command{
		Use:   "lsp <grammar>",
		Short: "Start a Language Server Protocol server for a grammar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := flags.env(cmd)
			if err != nil {
				return err
			}
			g, err := loadGrammar(args[0], env.Start)
			if err != nil {
				return err
			}
			server := lsp.NewServer(g, env, version)
			return server.RunStdio()
		},
	}

	flags.register(cmd)

	return cmd
}
