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

	"github.com/spineldb/spineldb/dispatch"
	"github.com/spineldb/spineldb/resp"
	"github.com/spineldb/spineldb/storage"
)

// registerListCommands wires spec.md §4.2's list family to storage.ListContainer.
func registerListCommands(r *dispatch.Registry) {
	one := dispatch.KeySpec{FirstKey: 1, LastKey: 1, Step: 1}
	r.Register(&dispatch.Command{Name: "LPUSH", Arity: -3, Flags: dispatch.FlagWrite, Keys: one, Handler: cmdLPush})
	r.Register(&dispatch.Command{Name: "RPUSH", Arity: -3, Flags: dispatch.FlagWrite, Keys: one, Handler: cmdRPush})
	r.Register(&dispatch.Command{Name: "LPOP", Arity: -2, Flags: dispatch.FlagWrite | dispatch.FlagFast, Keys: one, Handler: cmdLPop})
	r.Register(&dispatch.Command{Name: "RPOP", Arity: -2, Flags: dispatch.FlagWrite | dispatch.FlagFast, Keys: one, Handler: cmdRPop})
	r.Register(&dispatch.Command{Name: "LLEN", Arity: 2, Flags: dispatch.FlagReadOnly | dispatch.FlagFast, Keys: one, Handler: cmdLLen})
	r.Register(&dispatch.Command{Name: "LRANGE", Arity: 4, Flags: dispatch.FlagReadOnly, Keys: one, Handler: cmdLRange})
	r.Register(&dispatch.Command{Name: "LINDEX", Arity: 3, Flags: dispatch.FlagReadOnly, Keys: one, Handler: cmdLIndex})
	r.Register(&dispatch.Command{Name: "LSET", Arity: 4, Flags: dispatch.FlagWrite, Keys: one, Handler: cmdLSet})
	r.Register(&dispatch.Command{Name: "LTRIM", Arity: 4, Flags: dispatch.FlagWrite, Keys: one, Handler: cmdLTrim})
	r.Register(&dispatch.Command{Name: "LREM", Arity: 4, Flags: dispatch.FlagWrite, Keys: one, Handler: cmdLRem})
}

// listEntry returns key's live entry as a list, or nil if the key is absent.
// A non-list key already holding a value yields WrongType.
func listEntry(ctx *dispatch.ExecContext, key string) (*storage.KeyEntry, *storage.ListContainer, error) {
	e := lookupLive(ctx.DB, key)
	if e == nil {
		return nil, nil, nil
	}
	if err := wrongTypeUnless(e, storage.KindList); err != nil {
		return nil, nil, err
	}
	return e, e.Value.List, nil
}

func ensureListEntry(ctx *dispatch.ExecContext, key string) (*storage.KeyEntry, *storage.ListContainer, error) {
	e, l, err := listEntry(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	if e == nil {
		e = &storage.KeyEntry{Key: []byte(key), Value: storage.NewListValue()}
		l = e.Value.List
	}
	return e, l, nil
}

func cmdLPush(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	e, l, err := ensureListEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	vals := make([][]byte, len(args)-1)
	for i, a := range args[1:] {
		vals[i] = []byte(a)
	}
	n := l.PushLeft(vals...)
	e.Version++
	ctx.DB.SetLocked(e)
	return resp.Integer(int64(n)), nil
}

func cmdRPush(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	e, l, err := ensureListEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	vals := make([][]byte, len(args)-1)
	for i, a := range args[1:] {
		vals[i] = []byte(a)
	}
	n := l.PushRight(vals...)
	e.Version++
	ctx.DB.SetLocked(e)
	return resp.Integer(int64(n)), nil
}

func popCount(args []string) (int, error) {
	if len(args) < 2 {
		return 1, nil
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 0 {
		return 0, dispatch.NewError(dispatch.KindErr, "value is out of range, must be positive")
	}
	return n, nil
}

func cmdLPop(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	e, l, err := listEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	if e == nil || l.Len() == 0 {
		return resp.NullBulk(), nil
	}
	n, err := popCount(args)
	if err != nil {
		return resp.Value{}, err
	}
	popped := l.PopLeft(n)
	saveOrDeleteList(ctx, e, l)
	return popReply(args, popped), nil
}

func cmdRPop(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	e, l, err := listEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	if e == nil || l.Len() == 0 {
		return resp.NullBulk(), nil
	}
	n, err := popCount(args)
	if err != nil {
		return resp.Value{}, err
	}
	popped := l.PopRight(n)
	saveOrDeleteList(ctx, e, l)
	return popReply(args, popped), nil
}

// popReply returns a single bulk string for the bare LPOP/RPOP form and an
// array for the COUNT form, matching Redis's overload of the reply shape.
func popReply(args []string, popped [][]byte) resp.Value {
	if len(args) < 2 {
		if len(popped) == 0 {
			return resp.NullBulk()
		}
		return resp.BulkFromBytes(popped[0])
	}
	elems := make([]resp.Value, len(popped))
	for i, v := range popped {
		elems[i] = resp.BulkFromBytes(v)
	}
	return resp.ArraySlice(elems)
}

func saveOrDeleteList(ctx *dispatch.ExecContext, e *storage.KeyEntry, l *storage.ListContainer) {
	if l.Len() == 0 {
		ctx.DB.DeleteLocked(string(e.Key))
		return
	}
	e.Version++
	ctx.DB.SetLocked(e)
}

func cmdLLen(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	_, l, err := listEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	if l == nil {
		return resp.Integer(0), nil
	}
	return resp.Integer(int64(l.Len())), nil
}

func parseIdx(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, dispatch.NewError(dispatch.KindErr, "value is not an integer or out of range")
	}
	return n, nil
}

func cmdLRange(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	_, l, err := listEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	if l == nil {
		return resp.ArraySlice(nil), nil
	}
	start, err := parseIdx(args[1])
	if err != nil {
		return resp.Value{}, err
	}
	stop, err := parseIdx(args[2])
	if err != nil {
		return resp.Value{}, err
	}
	items := l.Range(start, stop)
	elems := make([]resp.Value, len(items))
	for i, v := range items {
		elems[i] = resp.BulkFromBytes(v)
	}
	return resp.ArraySlice(elems), nil
}

func cmdLIndex(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	_, l, err := listEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	if l == nil {
		return resp.NullBulk(), nil
	}
	idx, err := parseIdx(args[1])
	if err != nil {
		return resp.Value{}, err
	}
	v, ok := l.Index(idx)
	if !ok {
		return resp.NullBulk(), nil
	}
	return resp.BulkFromBytes(v), nil
}

func cmdLSet(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	e, l, err := listEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	if e == nil {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "no such key")
	}
	idx, err := parseIdx(args[1])
	if err != nil {
		return resp.Value{}, err
	}
	if !l.Set(idx, []byte(args[2])) {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "index out of range")
	}
	e.Version++
	ctx.DB.SetLocked(e)
	return resp.OK(), nil
}

func cmdLTrim(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	e, l, err := listEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	if e == nil {
		return resp.OK(), nil
	}
	start, err := parseIdx(args[1])
	if err != nil {
		return resp.Value{}, err
	}
	stop, err := parseIdx(args[2])
	if err != nil {
		return resp.Value{}, err
	}
	l.Trim(start, stop)
	saveOrDeleteList(ctx, e, l)
	return resp.OK(), nil
}

func cmdLRem(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	e, l, err := listEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	if e == nil {
		return resp.Integer(0), nil
	}
	count, err := parseIdx(args[1])
	if err != nil {
		return resp.Value{}, err
	}
	removed := l.Remove([]byte(args[2]), count)
	saveOrDeleteList(ctx, e, l)
	return resp.Integer(int64(removed)), nil
}
