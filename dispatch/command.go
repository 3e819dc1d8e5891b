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
package dispatch

import (
	"strings"

	"github.com/spineldb/spineldb/resp"
)

// Flags describe a command's effect on the keyspace for lock ordering,
// propagation, and cluster slot checks, per spec.md §4.1's "commands are
// tagged with a key-set extraction rule" requirement.
type Flags uint32

const (
	FlagWrite Flags = 1 << iota
	FlagReadOnly
	FlagAdmin     // CONFIG, CLUSTER, SHUTDOWN, etc: no key-set, no slot check
	FlagNoScript  // must not be called from EVAL
	FlagBlocking  // may suspend the caller (BLPOP, WAIT, XREAD BLOCK)
	FlagPubSub    // SUBSCRIBE family
	FlagFast      // O(1)/cheap
	FlagLoading   // allowed while RDB/AOF load is in progress
)

// KeySpec describes how to find a command's keys among its arguments, the
// generalization of the teacher's per-builtin Params declarations
// (storage/transaction.go's scm.Declaration) to a lock/slot-oriented table
// instead of a type-checking one.
type KeySpec struct {
	FirstKey int // 1-based index of the first key argument, 0 = no keys
	LastKey  int // 1-based index of the last key argument; negative counts from the end
	Step     int // stride between successive keys
}

// Command is the static descriptor for one command name.
type Command struct {
	Name     string
	Arity    int // negative = minimum arity (variadic)
	Flags    Flags
	Keys     KeySpec
	Handler  HandlerFunc
}

// HandlerFunc executes one command against the already-locked shards named
// by its ExtractKeys result. ctx carries the connection/session state; args
// excludes the command name itself.
type HandlerFunc func(ctx *ExecContext, args []string) (resp.Value, error)

// Registry is the process-wide command table, keyed by upper-cased name.
type Registry struct {
	commands map[string]*Command
}

func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]*Command)}
}

func (r *Registry) Register(c *Command) {
	r.commands[strings.ToUpper(c.Name)] = c
}

func (r *Registry) Lookup(name string) (*Command, bool) {
	c, ok := r.commands[strings.ToUpper(name)]
	return c, ok
}

// ExtractKeys returns the key arguments for a command invocation, per its
// KeySpec. args excludes the command name (args[0] is the first argument).
func (c *Command) ExtractKeys(args []string) []string {
	spec := c.Keys
	if spec.FirstKey == 0 {
		return nil
	}
	first := spec.FirstKey - 1
	if first < 0 || first >= len(args) {
		return nil
	}
	last := spec.LastKey
	if last < 0 {
		last = len(args) + last
	} else {
		last = last - 1
	}
	if last >= len(args) {
		last = len(args) - 1
	}
	step := spec.Step
	if step < 1 {
		step = 1
	}
	var keys []string
	for i := first; i <= last; i += step {
		keys = append(keys, args[i])
	}
	return keys
}
