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

// registerSetCommands wires spec.md §4.2's set family to storage.SetContainer.
// Commands that take any number of keys use the `all` KeySpec below, the same
// first/last/step shape the teacher's storage/transaction.go variadic-key
// builtins use.
func registerSetCommands(r *dispatch.Registry) {
	one := dispatch.KeySpec{FirstKey: 1, LastKey: 1, Step: 1}
	all := dispatch.KeySpec{FirstKey: 1, LastKey: -1, Step: 1}
	r.Register(&dispatch.Command{Name: "SADD", Arity: -3, Flags: dispatch.FlagWrite, Keys: one, Handler: cmdSAdd})
	r.Register(&dispatch.Command{Name: "SREM", Arity: -3, Flags: dispatch.FlagWrite, Keys: one, Handler: cmdSRem})
	r.Register(&dispatch.Command{Name: "SISMEMBER", Arity: 3, Flags: dispatch.FlagReadOnly | dispatch.FlagFast, Keys: one, Handler: cmdSIsMember})
	r.Register(&dispatch.Command{Name: "SCARD", Arity: 2, Flags: dispatch.FlagReadOnly | dispatch.FlagFast, Keys: one, Handler: cmdSCard})
	r.Register(&dispatch.Command{Name: "SMEMBERS", Arity: 2, Flags: dispatch.FlagReadOnly, Keys: one, Handler: cmdSMembers})
	r.Register(&dispatch.Command{Name: "SINTER", Arity: -2, Flags: dispatch.FlagReadOnly, Keys: all, Handler: cmdSInter})
	r.Register(&dispatch.Command{Name: "SUNION", Arity: -2, Flags: dispatch.FlagReadOnly, Keys: all, Handler: cmdSUnion})
	r.Register(&dispatch.Command{Name: "SDIFF", Arity: -2, Flags: dispatch.FlagReadOnly, Keys: all, Handler: cmdSDiff})
}

func setEntry(ctx *dispatch.ExecContext, key string) (*storage.KeyEntry, *storage.SetContainer, error) {
	e := lookupLive(ctx.DB, key)
	if e == nil {
		return nil, nil, nil
	}
	if err := wrongTypeUnless(e, storage.KindSet); err != nil {
		return nil, nil, err
	}
	return e, e.Value.Set, nil
}

func ensureSetEntry(ctx *dispatch.ExecContext, key string) (*storage.KeyEntry, *storage.SetContainer, error) {
	e, s, err := setEntry(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	if e == nil {
		e = &storage.KeyEntry{Key: []byte(key), Value: storage.NewSetValue()}
		s = e.Value.Set
	}
	return e, s, nil
}

func cmdSAdd(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	e, s, err := ensureSetEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	members := make([][]byte, len(args)-1)
	for i, a := range args[1:] {
		members[i] = []byte(a)
	}
	added := s.Add(members...)
	e.Version++
	ctx.DB.SetLocked(e)
	return resp.Integer(int64(added)), nil
}

func cmdSRem(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	e, s, err := setEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	if s == nil {
		return resp.Integer(0), nil
	}
	members := make([][]byte, len(args)-1)
	for i, a := range args[1:] {
		members[i] = []byte(a)
	}
	removed := s.Rem(members...)
	if s.Len() == 0 {
		ctx.DB.DeleteLocked(args[0])
	} else if removed > 0 {
		e.Version++
		ctx.DB.SetLocked(e)
	}
	return resp.Integer(int64(removed)), nil
}

func cmdSIsMember(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	_, s, err := setEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	if s == nil {
		return resp.Integer(0), nil
	}
	if s.IsMember([]byte(args[1])) {
		return resp.Integer(1), nil
	}
	return resp.Integer(0), nil
}

func cmdSCard(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	_, s, err := setEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	if s == nil {
		return resp.Integer(0), nil
	}
	return resp.Integer(int64(s.Len())), nil
}

func cmdSMembers(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	_, s, err := setEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	if s == nil {
		return resp.ArraySlice(nil), nil
	}
	return memberReply(s.Members()), nil
}

func memberReply(members []string) resp.Value {
	elems := make([]resp.Value, len(members))
	for i, m := range members {
		elems[i] = resp.Bulk(m)
	}
	return resp.ArraySlice(elems)
}

func resolveSets(ctx *dispatch.ExecContext, keys []string) ([]*storage.SetContainer, error) {
	sets := make([]*storage.SetContainer, 0, len(keys))
	for _, k := range keys {
		_, s, err := setEntry(ctx, k)
		if err != nil {
			return nil, err
		}
		if s == nil {
			s = storage.NewSetContainer()
		}
		sets = append(sets, s)
	}
	return sets, nil
}

func cmdSInter(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	sets, err := resolveSets(ctx, args)
	if err != nil {
		return resp.Value{}, err
	}
	return memberReply(storage.Inter(sets...)), nil
}

func cmdSUnion(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	sets, err := resolveSets(ctx, args)
	if err != nil {
		return resp.Value{}, err
	}
	return memberReply(storage.Union(sets...)), nil
}

func cmdSDiff(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	sets, err := resolveSets(ctx, args)
	if err != nil {
		return resp.Value{}, err
	}
	return memberReply(storage.Diff(sets[0], sets[1:]...)), nil
}
