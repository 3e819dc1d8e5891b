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
	"github.com/spineldb/spineldb/dispatch"
	"github.com/spineldb/spineldb/resp"
	"github.com/spineldb/spineldb/storage"
)

// registerHLLCommands wires spec.md §4.2's cardinality-estimation family to
// storage.HLLContainer. A HLL rides inside a KindHLL Value (stored as a
// plain string kind in Redis, preserved here so the "string" type name
// reported by TYPE matches for inter-client compatibility).
func registerHLLCommands(r *dispatch.Registry) {
	one := dispatch.KeySpec{FirstKey: 1, LastKey: 1, Step: 1}
	all := dispatch.KeySpec{FirstKey: 1, LastKey: -1, Step: 1}
	r.Register(&dispatch.Command{Name: "PFADD", Arity: -2, Flags: dispatch.FlagWrite, Keys: one, Handler: cmdPFAdd})
	r.Register(&dispatch.Command{Name: "PFCOUNT", Arity: -2, Flags: dispatch.FlagReadOnly, Keys: all, Handler: cmdPFCount})
	r.Register(&dispatch.Command{Name: "PFMERGE", Arity: -2, Flags: dispatch.FlagWrite, Keys: all, Handler: cmdPFMerge})
}

func hllEntry(ctx *dispatch.ExecContext, key string) (*storage.KeyEntry, *storage.HLLContainer, error) {
	e := lookupLive(ctx.DB, key)
	if e == nil {
		return nil, nil, nil
	}
	if err := wrongTypeUnless(e, storage.KindHLL); err != nil {
		return nil, nil, err
	}
	return e, e.Value.HLL, nil
}

func cmdPFAdd(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	key := args[0]
	e, h, err := hllEntry(ctx, key)
	if err != nil {
		return resp.Value{}, err
	}
	created := h == nil
	if h == nil {
		e = &storage.KeyEntry{Key: []byte(key), Value: storage.NewHLLValue()}
		h = e.Value.HLL
	}
	elements := make([][]byte, len(args)-1)
	for i, a := range args[1:] {
		elements[i] = []byte(a)
	}
	changed := h.Add(elements...)
	if created || changed {
		e.Version++
		ctx.DB.SetLocked(e)
	}
	return resp.Bool(created || changed), nil
}

func cmdPFCount(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	if len(args) == 1 {
		_, h, err := hllEntry(ctx, args[0])
		if err != nil {
			return resp.Value{}, err
		}
		if h == nil {
			return resp.Integer(0), nil
		}
		return resp.Integer(int64(h.Count())), nil
	}
	merged := storage.NewHLLContainer()
	for _, key := range args {
		_, h, err := hllEntry(ctx, key)
		if err != nil {
			return resp.Value{}, err
		}
		if h != nil {
			merged.Merge(h)
		}
	}
	return resp.Integer(int64(merged.Count())), nil
}

func cmdPFMerge(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	destKey := args[0]
	e, dest, err := hllEntry(ctx, destKey)
	if err != nil {
		return resp.Value{}, err
	}
	if dest == nil {
		e = &storage.KeyEntry{Key: []byte(destKey), Value: storage.NewHLLValue()}
		dest = e.Value.HLL
	}
	for _, key := range args[1:] {
		_, h, serr := hllEntry(ctx, key)
		if serr != nil {
			return resp.Value{}, serr
		}
		if h != nil {
			dest.Merge(h)
		}
	}
	e.Version++
	ctx.DB.SetLocked(e)
	return resp.OK(), nil
}
