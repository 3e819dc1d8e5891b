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
package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/spineldb/spineldb/dispatch"
	"github.com/spineldb/spineldb/resp"
	"github.com/spineldb/spineldb/storage"
)

// registerBuiltins populates the command table with the generic-keyspace
// and string commands, the slice of spec.md §4.2 that needs no collaborator
// beyond storage.Database. Every other command family (list, hash, set,
// sorted set, stream, JSON, bloom, HLL, cache, cluster, ACL, admin, script,
// replication) is registered by its own register*Commands function in the
// commands_*.go files alongside this one. This is
// the floor every command set builds on, grounded on the teacher's
// per-builtin Declaration table (storage/transaction.go), one entry per
// name with an arity and a handler closure.
func registerBuiltins(r *dispatch.Registry) {
	r.Register(&dispatch.Command{Name: "GET", Arity: 2, Flags: dispatch.FlagReadOnly | dispatch.FlagFast, Keys: dispatch.KeySpec{FirstKey: 1, LastKey: 1, Step: 1}, Handler: cmdGet})
	r.Register(&dispatch.Command{Name: "SET", Arity: -3, Flags: dispatch.FlagWrite, Keys: dispatch.KeySpec{FirstKey: 1, LastKey: 1, Step: 1}, Handler: cmdSet})
	r.Register(&dispatch.Command{Name: "DEL", Arity: -2, Flags: dispatch.FlagWrite, Keys: dispatch.KeySpec{FirstKey: 1, LastKey: -1, Step: 1}, Handler: cmdDel})
	r.Register(&dispatch.Command{Name: "EXISTS", Arity: -2, Flags: dispatch.FlagReadOnly | dispatch.FlagFast, Keys: dispatch.KeySpec{FirstKey: 1, LastKey: -1, Step: 1}, Handler: cmdExists})
	r.Register(&dispatch.Command{Name: "TYPE", Arity: 2, Flags: dispatch.FlagReadOnly | dispatch.FlagFast, Keys: dispatch.KeySpec{FirstKey: 1, LastKey: 1, Step: 1}, Handler: cmdType})
	r.Register(&dispatch.Command{Name: "EXPIRE", Arity: 3, Flags: dispatch.FlagWrite | dispatch.FlagFast, Keys: dispatch.KeySpec{FirstKey: 1, LastKey: 1, Step: 1}, Handler: cmdExpire})
	r.Register(&dispatch.Command{Name: "PEXPIRE", Arity: 3, Flags: dispatch.FlagWrite | dispatch.FlagFast, Keys: dispatch.KeySpec{FirstKey: 1, LastKey: 1, Step: 1}, Handler: cmdPExpire})
	r.Register(&dispatch.Command{Name: "TTL", Arity: 2, Flags: dispatch.FlagReadOnly | dispatch.FlagFast, Keys: dispatch.KeySpec{FirstKey: 1, LastKey: 1, Step: 1}, Handler: cmdTTL})
	r.Register(&dispatch.Command{Name: "PTTL", Arity: 2, Flags: dispatch.FlagReadOnly | dispatch.FlagFast, Keys: dispatch.KeySpec{FirstKey: 1, LastKey: 1, Step: 1}, Handler: cmdPTTL})
	r.Register(&dispatch.Command{Name: "PERSIST", Arity: 2, Flags: dispatch.FlagWrite | dispatch.FlagFast, Keys: dispatch.KeySpec{FirstKey: 1, LastKey: 1, Step: 1}, Handler: cmdPersist})
	r.Register(&dispatch.Command{Name: "INCR", Arity: 2, Flags: dispatch.FlagWrite | dispatch.FlagFast, Keys: dispatch.KeySpec{FirstKey: 1, LastKey: 1, Step: 1}, Handler: cmdIncr})
	r.Register(&dispatch.Command{Name: "DECR", Arity: 2, Flags: dispatch.FlagWrite | dispatch.FlagFast, Keys: dispatch.KeySpec{FirstKey: 1, LastKey: 1, Step: 1}, Handler: cmdDecr})
	r.Register(&dispatch.Command{Name: "INCRBY", Arity: 3, Flags: dispatch.FlagWrite | dispatch.FlagFast, Keys: dispatch.KeySpec{FirstKey: 1, LastKey: 1, Step: 1}, Handler: cmdIncrBy})
	r.Register(&dispatch.Command{Name: "APPEND", Arity: 3, Flags: dispatch.FlagWrite, Keys: dispatch.KeySpec{FirstKey: 1, LastKey: 1, Step: 1}, Handler: cmdAppend})
	r.Register(&dispatch.Command{Name: "STRLEN", Arity: 2, Flags: dispatch.FlagReadOnly | dispatch.FlagFast, Keys: dispatch.KeySpec{FirstKey: 1, LastKey: 1, Step: 1}, Handler: cmdStrlen})
	r.Register(&dispatch.Command{Name: "DBSIZE", Arity: 1, Flags: dispatch.FlagReadOnly | dispatch.FlagAdmin, Handler: cmdDBSize})
	r.Register(&dispatch.Command{Name: "FLUSHDB", Arity: 1, Flags: dispatch.FlagWrite | dispatch.FlagAdmin, Handler: cmdFlushDB})
	r.Register(&dispatch.Command{Name: "FLUSHALL", Arity: 1, Flags: dispatch.FlagWrite | dispatch.FlagAdmin, Handler: cmdFlushAll})
}

func nowMs() int64 { return time.Now().UnixMilli() }

// lookupLive returns db's entry for key, applying spec.md §4.3's lazy
// expiration: an entry past its ExpireAtMs is deleted on the spot and
// treated as absent, rather than handed back to the caller. Handlers call
// this instead of Database.GetLocked directly so every read/write command
// observes the same "expired means gone" rule the active sweeper enforces
// asynchronously.
func lookupLive(db *storage.Database, key string) *storage.KeyEntry {
	e := db.GetLocked(key)
	if e == nil {
		return nil
	}
	if e.IsExpiredAt(nowMs()) {
		db.DeleteLocked(key)
		return nil
	}
	return e
}

func wrongTypeUnless(e *storage.KeyEntry, kind storage.Kind) error {
	if e != nil && e.Value != nil && e.Value.Kind != kind {
		return dispatch.WrongType()
	}
	return nil
}

func cmdGet(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	e := lookupLive(ctx.DB, args[0])
	if e == nil {
		return resp.NullBulk(), nil
	}
	if err := wrongTypeUnless(e, storage.KindString); err != nil {
		return resp.Value{}, err
	}
	return resp.Bulk(string(e.Value.Str)), nil
}

func cmdSet(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	key, val := args[0], args[1]
	var expireAtMs int64
	for i := 2; i < len(args); i++ {
		switch strings.ToUpper(args[i]) {
		case "EX":
			if i+1 >= len(args) {
				return resp.Value{}, dispatch.NewError(dispatch.KindErr, "syntax error")
			}
			secs, err := strconv.ParseInt(args[i+1], 10, 64)
			if err != nil {
				return resp.Value{}, dispatch.NewError(dispatch.KindErr, "value is not an integer or out of range")
			}
			expireAtMs = nowMs() + secs*1000
			i++
		case "PX":
			if i+1 >= len(args) {
				return resp.Value{}, dispatch.NewError(dispatch.KindErr, "syntax error")
			}
			ms, err := strconv.ParseInt(args[i+1], 10, 64)
			if err != nil {
				return resp.Value{}, dispatch.NewError(dispatch.KindErr, "value is not an integer or out of range")
			}
			expireAtMs = nowMs() + ms
			i++
		case "NX":
			if lookupLive(ctx.DB, key) != nil {
				return resp.NullBulk(), nil
			}
		case "XX":
			if lookupLive(ctx.DB, key) == nil {
				return resp.NullBulk(), nil
			}
		default:
			return resp.Value{}, dispatch.NewError(dispatch.KindErr, "syntax error")
		}
	}
	entry := &storage.KeyEntry{
		Key:        []byte(key),
		Value:      &storage.Value{Kind: storage.KindString, Str: []byte(val)},
		ExpireAtMs: expireAtMs,
	}
	if old := ctx.DB.GetLocked(key); old != nil {
		entry.Version = old.Version + 1
	}
	ctx.DB.SetLocked(entry)
	return resp.OK(), nil
}

func cmdDel(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	var n int64
	for _, k := range args {
		if ctx.DB.DeleteLocked(k) {
			n++
		}
	}
	return resp.Integer(n), nil
}

func cmdExists(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	var n int64
	for _, k := range args {
		if lookupLive(ctx.DB, k) != nil {
			n++
		}
	}
	return resp.Integer(n), nil
}

func cmdType(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	e := lookupLive(ctx.DB, args[0])
	if e == nil {
		return resp.SimpleString("none"), nil
	}
	return resp.SimpleString(e.Value.Kind.String()), nil
}

func setExpireAt(ctx *dispatch.ExecContext, key string, expireAtMs int64) bool {
	e := lookupLive(ctx.DB, key)
	if e == nil {
		return false
	}
	e.ExpireAtMs = expireAtMs
	ctx.DB.SetLocked(e)
	return true
}

func cmdExpire(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	secs, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "value is not an integer or out of range")
	}
	if setExpireAt(ctx, args[0], nowMs()+secs*1000) {
		return resp.Integer(1), nil
	}
	return resp.Integer(0), nil
}

func cmdPExpire(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	ms, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "value is not an integer or out of range")
	}
	if setExpireAt(ctx, args[0], nowMs()+ms) {
		return resp.Integer(1), nil
	}
	return resp.Integer(0), nil
}

func cmdTTL(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	e := lookupLive(ctx.DB, args[0])
	if e == nil {
		return resp.Integer(-2), nil
	}
	if !e.HasExpiration() {
		return resp.Integer(-1), nil
	}
	remaining := (e.ExpireAtMs - nowMs()) / 1000
	if remaining < 0 {
		remaining = 0
	}
	return resp.Integer(remaining), nil
}

func cmdPTTL(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	e := lookupLive(ctx.DB, args[0])
	if e == nil {
		return resp.Integer(-2), nil
	}
	if !e.HasExpiration() {
		return resp.Integer(-1), nil
	}
	remaining := e.ExpireAtMs - nowMs()
	if remaining < 0 {
		remaining = 0
	}
	return resp.Integer(remaining), nil
}

func cmdPersist(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	e := lookupLive(ctx.DB, args[0])
	if e == nil || !e.HasExpiration() {
		return resp.Integer(0), nil
	}
	e.ExpireAtMs = 0
	ctx.DB.SetLocked(e)
	return resp.Integer(1), nil
}

func cmdIncrBy(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	delta, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "value is not an integer or out of range")
	}
	return incrByLocked(ctx, args[0], delta)
}

func cmdIncr(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	return incrByLocked(ctx, args[0], 1)
}

func cmdDecr(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	return incrByLocked(ctx, args[0], -1)
}

func incrByLocked(ctx *dispatch.ExecContext, key string, delta int64) (resp.Value, error) {
	e := lookupLive(ctx.DB, key)
	if err := wrongTypeUnless(e, storage.KindString); err != nil {
		return resp.Value{}, err
	}
	var cur int64
	if e != nil {
		n, err := strconv.ParseInt(string(e.Value.Str), 10, 64)
		if err != nil {
			return resp.Value{}, dispatch.NewError(dispatch.KindErr, "value is not an integer or out of range")
		}
		cur = n
	}
	next := cur + delta
	entry := &storage.KeyEntry{Key: []byte(key), Value: &storage.Value{Kind: storage.KindString, Str: []byte(strconv.FormatInt(next, 10))}}
	if e != nil {
		entry.ExpireAtMs = e.ExpireAtMs
		entry.Version = e.Version + 1
	}
	ctx.DB.SetLocked(entry)
	return resp.Integer(next), nil
}

func cmdAppend(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	key, suffix := args[0], args[1]
	e := lookupLive(ctx.DB, key)
	if err := wrongTypeUnless(e, storage.KindString); err != nil {
		return resp.Value{}, err
	}
	var next []byte
	if e != nil {
		next = append(append([]byte{}, e.Value.Str...), suffix...)
	} else {
		next = []byte(suffix)
	}
	entry := &storage.KeyEntry{Key: []byte(key), Value: &storage.Value{Kind: storage.KindString, Str: next}}
	if e != nil {
		entry.ExpireAtMs = e.ExpireAtMs
		entry.Version = e.Version + 1
	}
	ctx.DB.SetLocked(entry)
	return resp.Integer(int64(len(next))), nil
}

func cmdStrlen(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	e := lookupLive(ctx.DB, args[0])
	if e == nil {
		return resp.Integer(0), nil
	}
	if err := wrongTypeUnless(e, storage.KindString); err != nil {
		return resp.Value{}, err
	}
	return resp.Integer(int64(len(e.Value.Str))), nil
}

func cmdDBSize(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	return resp.Integer(int64(ctx.DB.Len())), nil
}

func cmdFlushDB(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	ctx.DB.Flush()
	return resp.OK(), nil
}

func cmdFlushAll(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	ctx.Registry.FlushAll()
	return resp.OK(), nil
}
