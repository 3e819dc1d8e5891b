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

// registerHashCommands wires spec.md §4.2's hash family to storage.HashContainer.
func registerHashCommands(r *dispatch.Registry) {
	one := dispatch.KeySpec{FirstKey: 1, LastKey: 1, Step: 1}
	r.Register(&dispatch.Command{Name: "HSET", Arity: -4, Flags: dispatch.FlagWrite, Keys: one, Handler: cmdHSet})
	r.Register(&dispatch.Command{Name: "HGET", Arity: 3, Flags: dispatch.FlagReadOnly | dispatch.FlagFast, Keys: one, Handler: cmdHGet})
	r.Register(&dispatch.Command{Name: "HDEL", Arity: -3, Flags: dispatch.FlagWrite, Keys: one, Handler: cmdHDel})
	r.Register(&dispatch.Command{Name: "HEXISTS", Arity: 3, Flags: dispatch.FlagReadOnly | dispatch.FlagFast, Keys: one, Handler: cmdHExists})
	r.Register(&dispatch.Command{Name: "HLEN", Arity: 2, Flags: dispatch.FlagReadOnly | dispatch.FlagFast, Keys: one, Handler: cmdHLen})
	r.Register(&dispatch.Command{Name: "HGETALL", Arity: 2, Flags: dispatch.FlagReadOnly, Keys: one, Handler: cmdHGetAll})
	r.Register(&dispatch.Command{Name: "HKEYS", Arity: 2, Flags: dispatch.FlagReadOnly, Keys: one, Handler: cmdHKeys})
	r.Register(&dispatch.Command{Name: "HVALS", Arity: 2, Flags: dispatch.FlagReadOnly, Keys: one, Handler: cmdHVals})
	r.Register(&dispatch.Command{Name: "HINCRBY", Arity: 4, Flags: dispatch.FlagWrite | dispatch.FlagFast, Keys: one, Handler: cmdHIncrBy})
	r.Register(&dispatch.Command{Name: "HSCAN", Arity: -3, Flags: dispatch.FlagReadOnly, Keys: one, Handler: cmdHScan})
}

func hashEntry(ctx *dispatch.ExecContext, key string) (*storage.KeyEntry, *storage.HashContainer, error) {
	e := lookupLive(ctx.DB, key)
	if e == nil {
		return nil, nil, nil
	}
	if err := wrongTypeUnless(e, storage.KindHash); err != nil {
		return nil, nil, err
	}
	return e, e.Value.Hash, nil
}

func ensureHashEntry(ctx *dispatch.ExecContext, key string) (*storage.KeyEntry, *storage.HashContainer, error) {
	e, h, err := hashEntry(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	if e == nil {
		e = &storage.KeyEntry{Key: []byte(key), Value: storage.NewHashValue()}
		h = e.Value.Hash
	}
	return e, h, nil
}

func cmdHSet(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	if (len(args)-1)%2 != 0 {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "wrong number of arguments for 'hset' command")
	}
	e, h, err := ensureHashEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	var added int64
	for i := 1; i < len(args); i += 2 {
		if h.Set(args[i], []byte(args[i+1])) {
			added++
		}
	}
	e.Version++
	ctx.DB.SetLocked(e)
	return resp.Integer(added), nil
}

func cmdHGet(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	_, h, err := hashEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	if h == nil {
		return resp.NullBulk(), nil
	}
	v, ok := h.Get(args[1])
	if !ok {
		return resp.NullBulk(), nil
	}
	return resp.BulkFromBytes(v), nil
}

func cmdHDel(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	e, h, err := hashEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	if h == nil {
		return resp.Integer(0), nil
	}
	removed := h.Del(args[1:]...)
	if h.Len() == 0 {
		ctx.DB.DeleteLocked(args[0])
	} else if removed > 0 {
		e.Version++
		ctx.DB.SetLocked(e)
	}
	return resp.Integer(int64(removed)), nil
}

func cmdHExists(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	_, h, err := hashEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	if h == nil {
		return resp.Integer(0), nil
	}
	if _, ok := h.Get(args[1]); ok {
		return resp.Integer(1), nil
	}
	return resp.Integer(0), nil
}

func cmdHLen(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	_, h, err := hashEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	if h == nil {
		return resp.Integer(0), nil
	}
	return resp.Integer(int64(h.Len())), nil
}

func cmdHGetAll(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	_, h, err := hashEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	if h == nil {
		return resp.ArraySlice(nil), nil
	}
	flat := h.All()
	elems := make([]resp.Value, len(flat))
	for i, s := range flat {
		elems[i] = resp.Bulk(s)
	}
	return resp.ArraySlice(elems), nil
}

func cmdHKeys(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	_, h, err := hashEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	if h == nil {
		return resp.ArraySlice(nil), nil
	}
	fields := h.Fields()
	elems := make([]resp.Value, len(fields))
	for i, f := range fields {
		elems[i] = resp.Bulk(f)
	}
	return resp.ArraySlice(elems), nil
}

func cmdHVals(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	_, h, err := hashEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	if h == nil {
		return resp.ArraySlice(nil), nil
	}
	fields := h.Fields()
	elems := make([]resp.Value, len(fields))
	for i, f := range fields {
		v, _ := h.Get(f)
		elems[i] = resp.BulkFromBytes(v)
	}
	return resp.ArraySlice(elems), nil
}

func cmdHIncrBy(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	delta, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "value is not an integer or out of range")
	}
	e, h, err := ensureHashEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	var cur int64
	if v, ok := h.Get(args[1]); ok {
		cur, err = strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return resp.Value{}, dispatch.NewError(dispatch.KindErr, "hash value is not an integer")
		}
	}
	next := cur + delta
	h.Set(args[1], []byte(strconv.FormatInt(next, 10)))
	e.Version++
	ctx.DB.SetLocked(e)
	return resp.Integer(next), nil
}

func cmdHScan(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	_, h, err := hashEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	cursor, err := strconv.Atoi(args[1])
	if err != nil {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "invalid cursor")
	}
	if h == nil {
		return resp.Array(resp.Bulk("0"), resp.ArraySlice(nil)), nil
	}
	fields, values, next := h.Scan(cursor, 10)
	elems := make([]resp.Value, 0, len(fields)*2)
	for i, f := range fields {
		elems = append(elems, resp.Bulk(f), resp.BulkFromBytes(values[i]))
	}
	return resp.Array(resp.Bulk(strconv.Itoa(next)), resp.ArraySlice(elems)), nil
}
