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

const defaultBloomErrRate = 0.01

// registerBloomCommands wires spec.md §4.2's probabilistic-membership family
// to storage.BloomContainer.
func registerBloomCommands(r *dispatch.Registry) {
	one := dispatch.KeySpec{FirstKey: 1, LastKey: 1, Step: 1}
	r.Register(&dispatch.Command{Name: "BF.RESERVE", Arity: 4, Flags: dispatch.FlagWrite, Keys: one, Handler: cmdBFReserve})
	r.Register(&dispatch.Command{Name: "BF.ADD", Arity: 3, Flags: dispatch.FlagWrite, Keys: one, Handler: cmdBFAdd})
	r.Register(&dispatch.Command{Name: "BF.MADD", Arity: -3, Flags: dispatch.FlagWrite, Keys: one, Handler: cmdBFMAdd})
	r.Register(&dispatch.Command{Name: "BF.EXISTS", Arity: 3, Flags: dispatch.FlagReadOnly, Keys: one, Handler: cmdBFExists})
	r.Register(&dispatch.Command{Name: "BF.MEXISTS", Arity: -3, Flags: dispatch.FlagReadOnly, Keys: one, Handler: cmdBFMExists})
}

func bloomEntry(ctx *dispatch.ExecContext, key string) (*storage.KeyEntry, *storage.BloomContainer, error) {
	e := lookupLive(ctx.DB, key)
	if e == nil {
		return nil, nil, nil
	}
	if err := wrongTypeUnless(e, storage.KindBloom); err != nil {
		return nil, nil, err
	}
	return e, e.Value.Bloom, nil
}

// cmdBFReserve implements BF.RESERVE key error_rate capacity, idempotent
// when an existing filter already carries the same derived (m, k), per
// storage.BloomContainer.SameParams.
func cmdBFReserve(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	key := args[0]
	errRate, perr := strconv.ParseFloat(args[1], 64)
	if perr != nil || errRate <= 0 || errRate >= 1 {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "bad error rate")
	}
	capacity, cerr := strconv.ParseUint(args[2], 10, 64)
	if cerr != nil || capacity == 0 {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "bad capacity")
	}
	e, existing, err := bloomEntry(ctx, key)
	if err != nil {
		return resp.Value{}, err
	}
	if existing != nil {
		if existing.SameParams(capacity, errRate) {
			return resp.OK(), nil
		}
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "item exists")
	}
	m, k := storage.EstimateParams(capacity, errRate)
	e = &storage.KeyEntry{Key: []byte(key), Value: storage.NewBloomValue(m, k)}
	e.Value.Bloom.Capacity, e.Value.Bloom.ErrRate = capacity, errRate
	ctx.DB.SetLocked(e)
	return resp.OK(), nil
}

func autoCreateBloom(ctx *dispatch.ExecContext, key string) (*storage.KeyEntry, *storage.BloomContainer, error) {
	e, b, err := bloomEntry(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	if b != nil {
		return e, b, nil
	}
	m, k := storage.EstimateParams(100, defaultBloomErrRate)
	e = &storage.KeyEntry{Key: []byte(key), Value: storage.NewBloomValue(m, k)}
	e.Value.Bloom.Capacity, e.Value.Bloom.ErrRate = 100, defaultBloomErrRate
	return e, e.Value.Bloom, nil
}

func cmdBFAdd(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	e, b, err := autoCreateBloom(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	added := b.Add([]byte(args[1]))
	e.Version++
	ctx.DB.SetLocked(e)
	return resp.Bool(added), nil
}

func cmdBFMAdd(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	e, b, err := autoCreateBloom(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	out := make([]resp.Value, len(args)-1)
	for i, item := range args[1:] {
		out[i] = resp.Bool(b.Add([]byte(item)))
	}
	e.Version++
	ctx.DB.SetLocked(e)
	return resp.ArraySlice(out), nil
}

func cmdBFExists(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	_, b, err := bloomEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	if b == nil {
		return resp.Bool(false), nil
	}
	return resp.Bool(b.Test([]byte(args[1]))), nil
}

func cmdBFMExists(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	_, b, err := bloomEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	out := make([]resp.Value, len(args)-1)
	for i, item := range args[1:] {
		if b == nil {
			out[i] = resp.Bool(false)
			continue
		}
		out[i] = resp.Bool(b.Test([]byte(item)))
	}
	return resp.ArraySlice(out), nil
}
