package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhamidi/smartcst/cst"
	"github.com/dhamidi/smartcst/format"
	"github.com/dhamidi/smartcst/smart"
	"github.com/dhamidi/smartcst/source"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"golang.org/x/exp/ebnf"
	"golang.org/x/term"
)

func newReplCmd() *cobra.Command {
	var flags envFlags

	cmd := &cobra.Command{
		Use:   "repl <grammar>",
		Short: "Parse lines interactively and print their trees",
		Long: "Parse lines interactively and print their trees.\n\n" +
			"Each line is parsed on its own from the start production. When standard\n" +
			"input is not a terminal, lines are read from it without prompting.",
		Args:         cobra.ExactArgs(1),
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

			r := &repl{grammar: g, env: env, out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}
			if cmd.InOrStdin() == os.Stdin && term.IsTerminal(int(os.Stdin.Fd())) {
				return r.interactive(env.Start + "> ")
			}
			return r.script(cmd.InOrStdin())
		},
	}

	flags.register(cmd)

	return cmd
}

type repl struct {
	grammar ebnf.Grammar
	env     *smart.Env
	out     io.Writer
	errOut  io.Writer
	n       int
}

// eval parses one input and prints its tree, or the reason it failed.
// It reports whether the input parsed cleanly.
func (r *repl) eval(input string) bool {
	r.n++
	text := source.FromString(fmt.Sprintf("<%d>", r.n), input)

	root, diags, err := cst.Parse(r.grammar, r.env, text)
	if err != nil {
		fmt.Fprintln(r.errOut, err)
		return false
	}
	if err := format.NewTreeEncoder(r.out).Encode(root); err != nil {
		fmt.Fprintln(r.errOut, err)
		return false
	}
	if len(diags) > 0 {
		if err := format.NewDiagnosticEncoder(r.errOut).Encode(diags); err != nil {
			fmt.Fprintln(r.errOut, err)
		}
		return false
	}
	return true
}

func (r *repl) script(rd io.Reader) error {
	failed := 0
	scanner := bufio.NewScanner(rd)
	for scanner.Scan() {
		input := scanner.Text()
		if strings.TrimSpace(input) == "" {
			continue
		}
		if !r.eval(input) {
			failed++
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d lines", errInvalid, failed, r.n)
	}
	return nil
}

func (r *repl) interactive(prompt string) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := historyFile()
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
	}

	for {
		input, err := line.Prompt(prompt)
		if err == liner.ErrPromptAborted {
			fmt.Fprintln(r.errOut)
			continue
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		line.AppendHistory(input)
		r.eval(input)
	}

	if historyPath != "" {
		if f, err := os.Create(historyPath); err == nil {
			defer f.Close()
			_, _ = line.WriteHistory(f)
		}
	}
	return nil
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".smartcst_history")
}
