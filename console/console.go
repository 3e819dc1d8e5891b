/*
Copyright (C) 2026  SpinelDB Contributors

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/spineldb/spineldb/dispatch"
)

const (
	newPrompt = "\033[32m>\033[0m "
	errPrompt = "\033[31m(error)\033[0m "
)

// Run starts a local admin REPL against the given dispatcher/exec context,
// directly grounded on the teacher's main.go `scm.Repl()` call and
// scm/prompt.go's readline loop: same `readline.NewEx` config, same
// history file, interrupt, and EOF handling — the body swaps Scheme
// read/eval/serialize for splitting a line into RESP args and running them
// through the command dispatcher.
func Run(d *dispatch.Dispatcher, ctx *dispatch.ExecContext) error {
	l, err := readline.NewEx(&readline.Config{
		Prompt:            newPrompt,
		HistoryFile:       ".spineldb-history.tmp",
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return err
	}
	defer l.Close()
	l.CaptureExitSignal()

	for {
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		args := splitArgs(line)
		if len(args) == 0 {
			continue
		}

		func() {
			defer func() {
				if r := recover(); r != nil {
					fmt.Println(errPrompt, r)
				}
			}()
			v, err := d.Execute(ctx, args)
			if err != nil {
				fmt.Println(errPrompt, err)
				return
			}
			fmt.Println(v.String())
		}()
	}
}

// splitArgs is a minimal whitespace/quote-aware tokenizer for interactive
// use; the real client-facing parser is resp.Reader (inline-command mode),
// which this deliberately does not duplicate — this console only needs to
// turn a typed line into argv, not parse wire traffic.
func splitArgs(line string) []string {
	var args []string
	var cur strings.Builder
	inQuote := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == ' ' && !inQuote:
			if cur.Len() > 0 {
				args = append(args, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		args = append(args, cur.String())
	}
	return args
}
