/*
File    : dreamberd/repl/repl.go

Package repl implements the interactive line-editor loop: each input line
is evaluated as if it were the body of an anonymous block `{line}`,
sharing one persistent state.State across prompts, and only results that
aren't undefined are echoed. chzyer/readline supplies history and cursor
movement; fatih/color distinguishes results from errors.
*/
package repl

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/dreamberd-go/dreamberd/eval"
	"github.com/dreamberd-go/dreamberd/parser"
	"github.com/dreamberd-go/dreamberd/state"
)

var (
	blueColor   = color.New(color.FgBlue)
	yellowColor = color.New(color.FgYellow)
	redColor    = color.New(color.FgRed)
	greenColor  = color.New(color.FgGreen)
	cyanColor   = color.New(color.FgCyan)
)

// Repl is a configured interactive session: banner text plus the prompt
// string readline displays.
type Repl struct {
	Banner  string
	Version string
	Prompt  string
}

// New returns a Repl with the project's standard banner and prompt.
func New(version string) *Repl {
	return &Repl{
		Banner:  "🥧 DreamBerd 🥧",
		Version: version,
		Prompt:  "db> ",
	}
}

func (r *Repl) printBanner(w io.Writer) {
	line := strings.Repeat("-", 40)
	blueColor.Fprintln(w, line)
	greenColor.Fprintln(w, r.Banner)
	blueColor.Fprintln(w, line)
	yellowColor.Fprintln(w, "Version: "+r.Version)
	cyanColor.Fprintln(w, "Type DreamBerd and press enter. Type '.exit' to quit.")
	blueColor.Fprintln(w, line)
}

// Start runs the read-eval-print loop against env, which the caller may
// have already pre-populated (the `repl [path]` subcommand pre-executes a
// file against env before handing it here).
func (r *Repl) Start(w io.Writer, env *state.State) {
	r.printBanner(w)

	rl, err := readline.New(r.Prompt)
	if err != nil {
		fmt.Fprintf(w, "readline: %v\n", err)
		return
	}
	defer rl.Close()

	evaluator := eval.New(w)

	for {
		line, err := rl.Readline()
		if err != nil {
			fmt.Fprintln(w, "Good bye!")
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == ".exit" {
			fmt.Fprintln(w, "Good bye!")
			return
		}
		rl.SaveHistory(line)

		r.evalLine(w, line, evaluator, env)
	}
}

// evalLine parses and evaluates one REPL line as the body of an anonymous
// block sharing env, printing the result in yellow unless it is undefined,
// or the error in red.
func (r *Repl) evalLine(w io.Writer, line string, evaluator *eval.Evaluator, env *state.State) {
	defer func() {
		if rec := recover(); rec != nil {
			redColor.Fprintf(w, "runtime error: %v\n", rec)
		}
	}()

	syn, err := parser.Parse("{" + line + "}")
	if err != nil {
		redColor.Fprintln(w, err)
		return
	}

	ptr, err := evaluator.Eval(syn, env)
	if err != nil {
		redColor.Fprintln(w, err)
		return
	}

	v := ptr.Peek()
	if v.IsUndefined() {
		return
	}
	yellowColor.Fprintln(w, v.ToDisplayString())
}
