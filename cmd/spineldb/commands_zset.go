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
	"math"
	"strconv"
	"strings"

	"github.com/spineldb/spineldb/dispatch"
	"github.com/spineldb/spineldb/resp"
	"github.com/spineldb/spineldb/storage"
)

// registerZSetCommands wires spec.md §4.2's sorted-set family to
// storage.ZSetContainer, itself backed by the teacher's own google/btree
// ordered index (storage/index.go) rather than a hand-rolled skiplist.
func registerZSetCommands(r *dispatch.Registry) {
	one := dispatch.KeySpec{FirstKey: 1, LastKey: 1, Step: 1}
	r.Register(&dispatch.Command{Name: "ZADD", Arity: -4, Flags: dispatch.FlagWrite, Keys: one, Handler: cmdZAdd})
	r.Register(&dispatch.Command{Name: "ZSCORE", Arity: 3, Flags: dispatch.FlagReadOnly | dispatch.FlagFast, Keys: one, Handler: cmdZScore})
	r.Register(&dispatch.Command{Name: "ZREM", Arity: -3, Flags: dispatch.FlagWrite, Keys: one, Handler: cmdZRem})
	r.Register(&dispatch.Command{Name: "ZCARD", Arity: 2, Flags: dispatch.FlagReadOnly | dispatch.FlagFast, Keys: one, Handler: cmdZCard})
	r.Register(&dispatch.Command{Name: "ZINCRBY", Arity: 4, Flags: dispatch.FlagWrite | dispatch.FlagFast, Keys: one, Handler: cmdZIncrBy})
	r.Register(&dispatch.Command{Name: "ZRANK", Arity: 3, Flags: dispatch.FlagReadOnly | dispatch.FlagFast, Keys: one, Handler: cmdZRank})
	r.Register(&dispatch.Command{Name: "ZRANGE", Arity: -4, Flags: dispatch.FlagReadOnly, Keys: one, Handler: cmdZRange})
	r.Register(&dispatch.Command{Name: "ZRANGEBYSCORE", Arity: -4, Flags: dispatch.FlagReadOnly, Keys: one, Handler: cmdZRangeByScore})
}

func zsetEntry(ctx *dispatch.ExecContext, key string) (*storage.KeyEntry, *storage.ZSetContainer, error) {
	e := lookupLive(ctx.DB, key)
	if e == nil {
		return nil, nil, nil
	}
	if err := wrongTypeUnless(e, storage.KindZSet); err != nil {
		return nil, nil, err
	}
	return e, e.Value.ZSet, nil
}

func ensureZSetEntry(ctx *dispatch.ExecContext, key string) (*storage.KeyEntry, *storage.ZSetContainer, error) {
	e, z, err := zsetEntry(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	if e == nil {
		e = &storage.KeyEntry{Key: []byte(key), Value: storage.NewZSetValue()}
		z = e.Value.ZSet
	}
	return e, z, nil
}

func zsetError(err error) (resp.Value, error) {
	if err == storage.ErrNaNScore {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "resulting score is not a number (NaN)")
	}
	return resp.Value{}, err
}

func cmdZAdd(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	if (len(args)-1)%2 != 0 {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "syntax error")
	}
	e, z, err := ensureZSetEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	var added int64
	for i := 1; i < len(args); i += 2 {
		score, perr := strconv.ParseFloat(args[i], 64)
		if perr != nil {
			return resp.Value{}, dispatch.NewError(dispatch.KindErr, "value is not a valid float")
		}
		isNew, aerr := z.Add(args[i+1], score)
		if aerr != nil {
			return zsetError(aerr)
		}
		if isNew {
			added++
		}
	}
	e.Version++
	ctx.DB.SetLocked(e)
	return resp.Integer(added), nil
}

func cmdZScore(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	_, z, err := zsetEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	if z == nil {
		return resp.NullBulk(), nil
	}
	score, ok := z.Score(args[1])
	if !ok {
		return resp.NullBulk(), nil
	}
	return resp.Bulk(formatScore(score)), nil
}

func cmdZRem(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	e, z, err := zsetEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	if z == nil {
		return resp.Integer(0), nil
	}
	removed := z.Rem(args[1:]...)
	if z.Len() == 0 {
		ctx.DB.DeleteLocked(args[0])
	} else if removed > 0 {
		e.Version++
		ctx.DB.SetLocked(e)
	}
	return resp.Integer(int64(removed)), nil
}

func cmdZCard(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	_, z, err := zsetEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	if z == nil {
		return resp.Integer(0), nil
	}
	return resp.Integer(int64(z.Len())), nil
}

func cmdZIncrBy(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	delta, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "value is not a valid float")
	}
	e, z, err := ensureZSetEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	next, err := z.IncrBy(args[2], delta)
	if err != nil {
		return zsetError(err)
	}
	e.Version++
	ctx.DB.SetLocked(e)
	return resp.Bulk(formatScore(next)), nil
}

func cmdZRank(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	_, z, err := zsetEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	if z == nil {
		return resp.NullBulk(), nil
	}
	rank, ok := z.Rank(args[1])
	if !ok {
		return resp.NullBulk(), nil
	}
	return resp.Integer(int64(rank)), nil
}

func cmdZRange(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	_, z, err := zsetEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	start, err := parseIdx(args[1])
	if err != nil {
		return resp.Value{}, err
	}
	stop, err := parseIdx(args[2])
	if err != nil {
		return resp.Value{}, err
	}
	withScores := len(args) > 3 && strings.EqualFold(args[3], "WITHSCORES")
	if z == nil {
		return resp.ArraySlice(nil), nil
	}
	entries := z.RangeByRank(start, stop, false)
	members := make([]string, len(entries))
	scores := make([]float64, len(entries))
	for i, e := range entries {
		members[i], scores[i] = e.Member(), e.ScoreOf()
	}
	return zEntryReply(members, scores, withScores), nil
}

func cmdZRangeByScore(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	_, z, err := zsetEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	r, err := parseScoreRange(args[1], args[2])
	if err != nil {
		return resp.Value{}, err
	}
	withScores := len(args) > 3 && strings.EqualFold(args[3], "WITHSCORES")
	if z == nil {
		return resp.ArraySlice(nil), nil
	}
	entries := z.RangeByScore(r)
	members := make([]string, len(entries))
	scores := make([]float64, len(entries))
	for i, e := range entries {
		members[i], scores[i] = e.Member(), e.ScoreOf()
	}
	return zEntryReply(members, scores, withScores), nil
}

func parseScoreRange(minS, maxS string) (storage.ScoreRange, error) {
	parse := func(s string) (float64, bool, error) {
		exclusive := strings.HasPrefix(s, "(")
		if exclusive {
			s = s[1:]
		}
		switch s {
		case "-inf":
			return math.Inf(-1), exclusive, nil
		case "+inf", "inf":
			return math.Inf(1), exclusive, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false, dispatch.NewError(dispatch.KindErr, "min or max is not a float")
		}
		return f, exclusive, nil
	}
	min, minEx, err := parse(minS)
	if err != nil {
		return storage.ScoreRange{}, err
	}
	max, maxEx, err := parse(maxS)
	if err != nil {
		return storage.ScoreRange{}, err
	}
	return storage.ScoreRange{Min: min, Max: max, MinExclusive: minEx, MaxExclusive: maxEx}, nil
}

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func zEntryReply(members []string, scores []float64, withScores bool) resp.Value {
	if !withScores {
		elems := make([]resp.Value, len(members))
		for i, m := range members {
			elems[i] = resp.Bulk(m)
		}
		return resp.ArraySlice(elems)
	}
	elems := make([]resp.Value, 0, len(members)*2)
	for i, m := range members {
		elems = append(elems, resp.Bulk(m), resp.Bulk(formatScore(scores[i])))
	}
	return resp.ArraySlice(elems)
}
