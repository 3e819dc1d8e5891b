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
	"encoding/json"
	"strconv"
	"strings"

	"github.com/spineldb/spineldb/dispatch"
	"github.com/spineldb/spineldb/resp"
	"github.com/spineldb/spineldb/storage"
)

// registerJSONCommands wires spec.md §4.2's document family to
// storage.JSONContainer's JSONPath-subset tree walker.
func registerJSONCommands(r *dispatch.Registry) {
	one := dispatch.KeySpec{FirstKey: 1, LastKey: 1, Step: 1}
	r.Register(&dispatch.Command{Name: "JSON.SET", Arity: -4, Flags: dispatch.FlagWrite, Keys: one, Handler: cmdJSONSet})
	r.Register(&dispatch.Command{Name: "JSON.GET", Arity: -2, Flags: dispatch.FlagReadOnly, Keys: one, Handler: cmdJSONGet})
	r.Register(&dispatch.Command{Name: "JSON.DEL", Arity: -2, Flags: dispatch.FlagWrite, Keys: one, Handler: cmdJSONDel})
	r.Register(&dispatch.Command{Name: "JSON.TYPE", Arity: -2, Flags: dispatch.FlagReadOnly, Keys: one, Handler: cmdJSONType})
	r.Register(&dispatch.Command{Name: "JSON.NUMINCRBY", Arity: 4, Flags: dispatch.FlagWrite, Keys: one, Handler: cmdJSONNumIncrBy})
	r.Register(&dispatch.Command{Name: "JSON.ARRAPPEND", Arity: -4, Flags: dispatch.FlagWrite, Keys: one, Handler: cmdJSONArrAppend})
	r.Register(&dispatch.Command{Name: "JSON.ARRINSERT", Arity: -5, Flags: dispatch.FlagWrite, Keys: one, Handler: cmdJSONArrInsert})
}

func jsonEntry(ctx *dispatch.ExecContext, key string) (*storage.KeyEntry, *storage.JSONContainer, error) {
	e := lookupLive(ctx.DB, key)
	if e == nil {
		return nil, nil, nil
	}
	if err := wrongTypeUnless(e, storage.KindJSON); err != nil {
		return nil, nil, err
	}
	return e, e.Value.JSON, nil
}

func jsonPathErr(err error) (resp.Value, error) {
	return resp.Value{}, dispatch.NewError(dispatch.KindErr, "%s", err.Error())
}

// cmdJSONSet implements JSON.SET key path value [NX|XX], decoding value as a
// JSON document fragment and writing it at path (creating missing
// intermediate containers, per JSONContainer.Set's CreateMissing mode).
func cmdJSONSet(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	key, path, raw := args[0], args[1], args[2]
	var val any
	if err := json.Unmarshal([]byte(raw), &val); err != nil {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "invalid JSON: %v", err)
	}

	e, j, err := jsonEntry(ctx, key)
	if err != nil {
		return resp.Value{}, err
	}
	for i := 3; i < len(args); i++ {
		switch strings.ToUpper(args[i]) {
		case "NX":
			if e != nil {
				return resp.NullBulk(), nil
			}
		case "XX":
			if e == nil {
				return resp.NullBulk(), nil
			}
		default:
			return resp.Value{}, dispatch.NewError(dispatch.KindErr, "syntax error")
		}
	}

	if e == nil {
		e = &storage.KeyEntry{Key: []byte(key), Value: storage.NewJSONValue(nil)}
		j = e.Value.JSON
	}
	if err := j.Set(path, val, storage.CreateMissing); err != nil {
		return jsonPathErr(err)
	}
	e.Version++
	ctx.DB.SetLocked(e)
	return resp.OK(), nil
}

// cmdJSONGet implements JSON.GET key [path] -- defaulting to the document
// root, matching a plain value reply when exactly one node matches and an
// array reply for recursive-descent paths that match several.
func cmdJSONGet(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	key := args[0]
	path := "$"
	if len(args) >= 2 {
		path = args[1]
	}
	_, j, err := jsonEntry(ctx, key)
	if err != nil {
		return resp.Value{}, err
	}
	if j == nil {
		return resp.NullBulk(), nil
	}
	matches, gerr := j.Get(path)
	if gerr != nil {
		return jsonPathErr(gerr)
	}
	if len(matches) == 0 {
		return resp.NullBulk(), nil
	}
	var out any = matches[0]
	if path != "$" && len(matches) > 1 {
		out = matches
	} else if path == "$" {
		out = matches[0]
	}
	enc, merr := json.Marshal(out)
	if merr != nil {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "%s", merr.Error())
	}
	return resp.Bulk(string(enc)), nil
}

// cmdJSONDel implements JSON.DEL key [path]; a bare key with no path (or
// path "$") removes the whole key.
func cmdJSONDel(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	key := args[0]
	path := "$"
	if len(args) >= 2 {
		path = args[1]
	}
	e, j, err := jsonEntry(ctx, key)
	if err != nil {
		return resp.Value{}, err
	}
	if e == nil {
		return resp.Integer(0), nil
	}
	if path == "$" {
		ctx.DB.DeleteLocked(key)
		return resp.Integer(1), nil
	}
	if serr := j.Set(path, nil, storage.StrictExists); serr != nil {
		if serr == storage.ErrPathNotExist {
			return resp.Integer(0), nil
		}
		return jsonPathErr(serr)
	}
	e.Version++
	ctx.DB.SetLocked(e)
	return resp.Integer(1), nil
}

// cmdJSONType implements JSON.TYPE key [path], reporting RESP-visible type
// names for the node(s) matched, mirroring the RedisJSON convention.
func cmdJSONType(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	key := args[0]
	path := "$"
	if len(args) >= 2 {
		path = args[1]
	}
	_, j, err := jsonEntry(ctx, key)
	if err != nil {
		return resp.Value{}, err
	}
	if j == nil {
		return resp.NullBulk(), nil
	}
	matches, gerr := j.Get(path)
	if gerr != nil {
		return jsonPathErr(gerr)
	}
	if len(matches) == 0 {
		return resp.NullArray(), nil
	}
	out := make([]resp.Value, len(matches))
	for i, m := range matches {
		out[i] = resp.Bulk(jsonTypeName(m))
	}
	return resp.ArraySlice(out), nil
}

func jsonTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case int64, float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return "unknown"
}

func cmdJSONNumIncrBy(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	key, path, amountStr := args[0], args[1], args[2]
	delta, perr := strconv.ParseFloat(amountStr, 64)
	if perr != nil {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "value is not a valid float")
	}
	e, j, err := jsonEntry(ctx, key)
	if err != nil {
		return resp.Value{}, err
	}
	if e == nil {
		return jsonPathErr(storage.ErrPathNotExist)
	}
	result, ierr := j.NumIncrBy(path, delta)
	if ierr != nil {
		return jsonPathErr(ierr)
	}
	// A float-written increment keeps a float-formatted reply even when the
	// sum is whole ("3.0", not "3").
	if strings.ContainsAny(amountStr, ".eE") && !strings.Contains(result, ".") {
		result += ".0"
	}
	e.Version++
	ctx.DB.SetLocked(e)
	return resp.Bulk(result), nil
}

func cmdJSONArrAppend(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	key, path := args[0], args[1]
	vals, perr := decodeJSONValues(args[2:])
	if perr != nil {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "invalid JSON: %v", perr)
	}
	e, j, err := jsonEntry(ctx, key)
	if err != nil {
		return resp.Value{}, err
	}
	if e == nil {
		return jsonPathErr(storage.ErrPathNotExist)
	}
	n, aerr := j.ArrAppend(path, vals...)
	if aerr != nil {
		return jsonPathErr(aerr)
	}
	e.Version++
	ctx.DB.SetLocked(e)
	return resp.Integer(int64(n)), nil
}

func cmdJSONArrInsert(ctx *dispatch.ExecContext, args []string) (resp.Value, error) {
	key, path := args[0], args[1]
	idx, ierr := strconv.Atoi(args[2])
	if ierr != nil {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "value is not an integer or out of range")
	}
	vals, perr := decodeJSONValues(args[3:])
	if perr != nil {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "invalid JSON: %v", perr)
	}
	e, j, err := jsonEntry(ctx, key)
	if err != nil {
		return resp.Value{}, err
	}
	if e == nil {
		return jsonPathErr(storage.ErrPathNotExist)
	}
	n, aerr := j.ArrInsert(path, idx, vals...)
	if aerr != nil {
		return jsonPathErr(aerr)
	}
	e.Version++
	ctx.DB.SetLocked(e)
	return resp.Integer(int64(n)), nil
}

func decodeJSONValues(raw []string) ([]any, error) {
	out := make([]any, len(raw))
	for i, r := range raw {
		if err := json.Unmarshal([]byte(r), &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
