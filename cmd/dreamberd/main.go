/*
File    : dreamberd/cmd/dreamberd/main.go

The CLI entry point: two subcommands, `run <path>` (execute a file,
discard its result) and `repl [path]` (optionally pre-execute a file, then
hand the persistent environment to the interactive loop). Exit code 0 on
success, 1 on any surfaced lex/parse/eval error in `run` mode.
*/
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dreamberd-go/dreamberd/eval"
	"github.com/dreamberd-go/dreamberd/parser"
	"github.com/dreamberd-go/dreamberd/repl"
	"github.com/dreamberd-go/dreamberd/state"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "dreamberd",
		Short: "A tree-walking interpreter for the DreamBerd core language",
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(replCmd())

	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <path>",
		Short: "Execute a source file and discard its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFile(args[0], os.Stdout)
		},
	}
}

func replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl [path]",
		Short: "Start the interactive DreamBerd REPL",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := state.NewRoot()
			if len(args) == 1 {
				if err := evalFile(args[0], env, os.Stdout); err != nil {
					color.New(color.FgRed).Fprintln(os.Stderr, err)
				}
			}
			repl.New(version).Start(os.Stdout, env)
			return nil
		},
	}
}

// runFile reads path, wraps its contents in `{...}` so the whole file
// parses as one block, and evaluates it once against a fresh environment.
func runFile(path string, w *os.File) error {
	return evalFile(path, state.NewRoot(), w)
}

func evalFile(path string, env *state.State, w *os.File) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	syn, err := parser.Parse("{" + string(src) + "}")
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	evaluator := eval.New(w)
	if _, err := evaluator.Eval(syn, env); err != nil {
		return fmt.Errorf("evaluating %s: %w", path, err)
	}
	return nil
}
