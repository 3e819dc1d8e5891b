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

	"github.com/spineldb/spineldb/dispatch"
	"github.com/spineldb/spineldb/resp"
	"github.com/spineldb/spineldb/storage"
)

// registerStreamCommands wires spec.md §4.2's append-only stream family to
// storage.StreamContainer, whose monotonic-ID bookkeeping (never go
// backwards, per its own doc comment) is exercised directly by XADD rather
// than re-derived here.
func registerStreamCommands(r *dispatch.Registry) {
	one := dispatch.KeySpec{FirstKey: 1, LastKey: 1, Step: 1}
	r.Register(&dispatch.Command{Name: "XADD", Arity: -5, Flags: dispatch.FlagWrite, Keys: one, Handler: cmdXAdd})
	r.Register(&dispatch.Command{Name: "XLEN", Arity: 2, Flags: dispatch.FlagReadOnly | dispatch.FlagFast, Keys: one, Handler: cmdXLen})
	r.Register(&dispatch.Command{Name: "XRANGE", Arity: -4, Flags: dispatch.FlagReadOnly, Keys: one, Handler: cmdXRange})
	r.Register(&dispatch.Command{Name: "XREAD", Arity: -4, Flags: dispatch.FlagReadOnly, Handler: cmdXRead})
	r.Register(&dispatch.Command{Name: "XGROUP", Arity: -4, Flags: dispatch.FlagWrite, Keys: dispatch.KeySpec{FirstKey: 2, LastKey: 2, Step: 1}, Handler: cmdXGroup})
}

func streamEntry(ctx *dispatch.ExecContext, key string) (*storage.KeyEntry, *storage.StreamContainer, error) {
	e := lookupLive(ctx.DB, key)
	if e == nil {
		return nil, nil, nil
	}
	if err := wrongTypeUnless(e, storage.KindStream); err != nil {
		return nil, nil, err
	}
	return e, e.Value.Stream, nil
}

func ensureStreamEntry(ctx *dispatch.ExecContext, key string) (*storage.KeyEntry, *storage.StreamContainer, error) {
	e, s, err := streamEntry(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	if e == nil {
		e = &storage.KeyEntry{Key: []byte(key), Value: storage.NewStreamValue()}
		s = e.Value.Stream
	}
	return e, s, nil
}

// cmdXAdd implements XADD key [NOMKSTREAM] <* | ms[-seq]> field value
// [field value ...], per spec.md §4.2's stream-ID monotonicity contract.
func cmdXAdd(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	key := args[0]
	i := 1
	noMkStream := false
	if i < len(args) && strings.EqualFold(args[i], "NOMKSTREAM") {
		noMkStream = true
		i++
	}
	if i >= len(args) {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "wrong number of arguments for 'xadd' command")
	}
	idArg := args[i]
	i++
	fields := args[i:]
	if len(fields) == 0 || len(fields)%2 != 0 {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "wrong number of arguments for 'xadd' command")
	}

	if noMkStream {
		e, _, err := streamEntry(ctx, key)
		if err != nil {
			return resp.Value{}, err
		}
		if e == nil {
			return resp.NullBulk(), nil
		}
	}

	e, s, err := ensureStreamEntry(ctx, key)
	if err != nil {
		return resp.Value{}, err
	}

	var id storage.StreamID
	var aerr error
	if idArg == "*" {
		id, aerr = s.Add(storage.StreamID{}, true, nowMs(), fields)
	} else {
		requested, perr := storage.ParseStreamID(idArg)
		if perr != nil {
			return resp.Value{}, dispatch.NewError(dispatch.KindErr, "%s", perr.Error())
		}
		id, aerr = s.Add(requested, false, nowMs(), fields)
	}
	if aerr != nil {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "%s", aerr.Error())
	}
	e.Version++
	ctx.DB.SetLocked(e)
	return resp.Bulk(id.String()), nil
}

func cmdXLen(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	_, s, err := streamEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	if s == nil {
		return resp.Integer(0), nil
	}
	return resp.Integer(int64(s.Len())), nil
}

func parseRangeBound(s string, lo bool) (storage.StreamID, error) {
	switch s {
	case "-":
		return storage.StreamID{}, nil
	case "+":
		return storage.StreamID{Ms: 1<<63 - 1, Seq: 1<<63 - 1}, nil
	}
	return storage.ParseStreamID(s)
}

// cmdXRange implements XRANGE key start end [COUNT n].
func cmdXRange(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	_, s, err := streamEntry(ctx, args[0])
	if err != nil {
		return resp.Value{}, err
	}
	start, err := parseRangeBound(args[1], true)
	if err != nil {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "Invalid stream ID specified as stream command argument")
	}
	end, err := parseRangeBound(args[2], false)
	if err != nil {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "Invalid stream ID specified as stream command argument")
	}
	count := 0
	if len(args) >= 5 && strings.EqualFold(args[3], "COUNT") {
		n, perr := strconv.Atoi(args[4])
		if perr != nil {
			return resp.Value{}, dispatch.NewError(dispatch.KindErr, "value is not an integer or out of range")
		}
		count = n
	}
	if s == nil {
		return resp.ArraySlice(nil), nil
	}
	return streamEntriesReply(s.Range(start, end, count)), nil
}

// cmdXRead implements the non-blocking form: XREAD [COUNT n] STREAMS key
// [key ...] id [id ...]. Blocking (the BLOCK option) is out of scope for
// this pass; spec.md §4.2 marks XREAD BLOCK as a distinct capability from
// the synchronous read this registers.
func cmdXRead(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	count := 0
	i := 0
	if strings.EqualFold(args[i], "COUNT") {
		n, err := strconv.Atoi(args[i+1])
		if err != nil {
			return resp.Value{}, dispatch.NewError(dispatch.KindErr, "value is not an integer or out of range")
		}
		count = n
		i += 2
	}
	if i >= len(args) || !strings.EqualFold(args[i], "STREAMS") {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "syntax error")
	}
	rest := args[i+1:]
	if len(rest)%2 != 0 {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "Unbalanced XREAD list of streams: for each stream key an ID or '$' must be specified.")
	}
	n := len(rest) / 2
	keys, ids := rest[:n], rest[n:]

	var out []resp.Value
	for idx, key := range keys {
		_, s, err := streamEntry(ctx, key)
		if err != nil {
			return resp.Value{}, err
		}
		if s == nil {
			continue
		}
		var after storage.StreamID
		if ids[idx] != "$" {
			after, err = storage.ParseStreamID(ids[idx])
			if err != nil {
				return resp.Value{}, dispatch.NewError(dispatch.KindErr, "Invalid stream ID specified as stream command argument")
			}
		} else {
			after = s.LastID()
		}
		entries := s.RangeAfter(after, count)
		if len(entries) == 0 {
			continue
		}
		out = append(out, resp.Array(resp.Bulk(key), streamEntriesReply(entries)))
	}
	if len(out) == 0 {
		return resp.NullArray(), nil
	}
	return resp.ArraySlice(out), nil
}

// cmdXGroup implements XGROUP CREATE key group <id | $> [MKSTREAM], the
// consumer-group bootstrap spec.md §1 calls out as the one secondary-index
// exception to its "no secondary indexing" non-goal.
func cmdXGroup(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	if !strings.EqualFold(args[0], "CREATE") {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "unsupported XGROUP subcommand '%s'", args[0])
	}
	if len(args) < 4 {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "wrong number of arguments for 'xgroup' command")
	}
	key, group, idArg := args[1], args[2], args[3]
	e, s, err := ensureStreamEntry(ctx, key)
	if err != nil {
		return resp.Value{}, err
	}
	if _, ok := s.Group(group); ok {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "BUSYGROUP Consumer Group name already exists")
	}
	start := s.LastID()
	if idArg != "$" {
		start, err = storage.ParseStreamID(idArg)
		if err != nil {
			return resp.Value{}, dispatch.NewError(dispatch.KindErr, "Invalid stream ID specified as stream command argument")
		}
	}
	s.CreateGroup(group, start)
	e.Version++
	ctx.DB.SetLocked(e)
	return resp.OK(), nil
}

func streamEntriesReply(entries []storage.StreamEntry) resp.Value {
	out := make([]resp.Value, len(entries))
	for i, e := range entries {
		fields := make([]resp.Value, len(e.Fields))
		for j, f := range e.Fields {
			fields[j] = resp.Bulk(f)
		}
		out[i] = resp.Array(resp.Bulk(e.ID.String()), resp.ArraySlice(fields))
	}
	return resp.ArraySlice(out)
}
