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
	"github.com/spineldb/spineldb/logx"
	"github.com/spineldb/spineldb/metrics"
	"github.com/spineldb/spineldb/resp"
	"github.com/spineldb/spineldb/storage"
)

// Dispatcher owns the command table and executes one command at a time per
// connection, acquiring every shard the command's keys hash to in a
// deterministic order before running the handler. Grounded on the teacher's
// TxContext.commitACID (storage/transaction.go), which sorts touched shards
// by UUID string before locking to guarantee a fixed global order across
// concurrent commits — this dispatcher applies the same discipline to every
// single-command execution, not just transaction commit.
type Dispatcher struct {
	registry *Registry
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// lockedShards acquires every distinct shard touched by keys, in ascending
// order of the shard's position within the database, then returns an unlock
// function the caller must defer immediately.
func lockedShards(db *storage.Database, keys []string, write bool) (func(), []*storage.Shard) {
	seen := make(map[*storage.Shard]struct{})
	for _, k := range keys {
		seen[db.ShardFor(k)] = struct{}{}
	}
	shards := make([]*storage.Shard, 0, len(seen))
	for i := 0; i < db.NumShards() && len(shards) < len(seen); i++ {
		if s := db.ShardAt(i); s != nil {
			if _, ok := seen[s]; ok {
				shards = append(shards, s)
			}
		}
	}
	return shardUnlocker(shards, write), shards
}

func shardUnlocker(shards []*storage.Shard, write bool) func() {
	locked := make([]*storage.Shard, 0, len(shards))
	for _, s := range shards {
		if write {
			s.Lock()
		} else {
			s.RLock()
		}
		locked = append(locked, s)
	}
	return func() {
		for i := len(locked) - 1; i >= 0; i-- {
			if write {
				locked[i].Unlock()
			} else {
				locked[i].RUnlock()
			}
		}
	}
}

// Execute runs one already-parsed command line end to end: lookup, arity
// check, ACL check, cluster slot check, deterministic shard locking,
// handler invocation, event publication, and lock release on every return
// path (including a panic, which is recovered and reported as an ERR reply
// rather than crashing the connection, matching the teacher's top-level
// recover() around query execution).
func (d *Dispatcher) Execute(ctx *ExecContext, args []string) (v resp.Value, err error) {
	if len(args) == 0 {
		return resp.Value{}, NewError(KindErr, "empty command")
	}
	name := args[0]
	cmd, ok := d.registry.Lookup(name)
	if !ok {
		return resp.Value{}, NewError(KindErr, "unknown command '%s'", name)
	}
	if cmd.Arity >= 0 && len(args) != cmd.Arity {
		return resp.Value{}, NewError(KindErr, "wrong number of arguments for '%s' command", name)
	}
	if cmd.Arity < 0 && len(args) < -cmd.Arity {
		return resp.Value{}, NewError(KindErr, "wrong number of arguments for '%s' command", name)
	}

	keys := cmd.ExtractKeys(args[1:])

	if cmd.Flags&FlagAdmin == 0 {
		if ctx.ACL != nil {
			if aerr := ctx.ACL.Check(ctx.Conn.User, cmd, keys); aerr != nil {
				return resp.Value{}, aerr
			}
		}
		if ctx.Cluster != nil && len(keys) > 0 {
			if cerr := ctx.Cluster.CheckSlots(keys); cerr != nil {
				return resp.Value{}, cerr
			}
		}
	}

	write := cmd.Flags&FlagWrite != 0
	defer func() {
		if r := recover(); r != nil {
			logx.Error("command panic", "command", name, "panic", r)
			err = NewError(KindErr, "internal error executing '%s'", name)
		}
	}()

	if len(keys) > 0 {
		unlock, _ := lockedShards(ctx.DB, keys, write)
		defer unlock()
	}

	metrics.Default.Commands.Inc()
	result, herr := cmd.Handler(ctx, args[1:])
	if herr != nil {
		metrics.Default.Errors.Inc()
		return resp.Value{}, herr
	}
	if write {
		metrics.Default.Writes.Inc()
		if ctx.Events != nil {
			ctx.Events.Publish(ctx.DB.Index, args)
		}
	}
	return result, nil
}
