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
	"strings"
	"testing"
)

func TestJSONSetThenGetRoot(t *testing.T) {
	ctx := newTestCtx()
	if _, err := cmdJSONSet(ctx, []string{"doc", "$", `{"a":1,"b":["x","y"]}`}); err != nil {
		t.Fatalf("json.set: %v", err)
	}
	v, err := cmdJSONGet(ctx, []string{"doc"})
	if err != nil {
		t.Fatalf("json.get: %v", err)
	}
	if !strings.Contains(v.Str, `"a":1`) {
		t.Fatalf("unexpected json.get reply: %s", v.Str)
	}
}

func TestJSONSetNXSkipsExistingKey(t *testing.T) {
	ctx := newTestCtx()
	cmdJSONSet(ctx, []string{"doc", "$", `1`})
	v, err := cmdJSONSet(ctx, []string{"doc", "$", `2`, "NX"})
	if err != nil || !v.IsNil() {
		t.Fatalf("expected NX to skip an already-present key: v=%+v err=%v", v, err)
	}
}

func TestJSONGetPathIntoObject(t *testing.T) {
	ctx := newTestCtx()
	cmdJSONSet(ctx, []string{"doc", "$", `{"name":"spinel"}`})
	v, err := cmdJSONGet(ctx, []string{"doc", ".name"})
	if err != nil || v.Str != `"spinel"` {
		t.Fatalf("json.get path: v=%+v err=%v", v, err)
	}
}

func TestJSONNumIncrBy(t *testing.T) {
	ctx := newTestCtx()
	cmdJSONSet(ctx, []string{"doc", "$", `{"count":1}`})
	v, err := cmdJSONNumIncrBy(ctx, []string{"doc", ".count", "2"})
	if err != nil {
		t.Fatalf("json.numincrby: %v", err)
	}
	if v.Str != "3" {
		t.Fatalf("expected \"3\" for an integral increment, got %q", v.Str)
	}
}

func TestJSONArrAppendAndInsert(t *testing.T) {
	ctx := newTestCtx()
	cmdJSONSet(ctx, []string{"doc", "$", `{"items":[1,2]}`})
	n, err := cmdJSONArrAppend(ctx, []string{"doc", ".items", "3"})
	if err != nil || n.Int != 3 {
		t.Fatalf("json.arrappend: n=%+v err=%v", n, err)
	}
	n, err = cmdJSONArrInsert(ctx, []string{"doc", ".items", "0", "0"})
	if err != nil || n.Int != 4 {
		t.Fatalf("json.arrinsert: n=%+v err=%v", n, err)
	}
}

func TestJSONDelWholeKey(t *testing.T) {
	ctx := newTestCtx()
	cmdJSONSet(ctx, []string{"doc", "$", `{"a":1}`})
	n, err := cmdJSONDel(ctx, []string{"doc"})
	if err != nil || n.Int != 1 {
		t.Fatalf("json.del: n=%+v err=%v", n, err)
	}
	if ctx.DB.GetLocked("doc") != nil {
		t.Fatalf("expected the key to be removed entirely")
	}
}

func TestJSONWrongTypeAgainstString(t *testing.T) {
	ctx := newTestCtx()
	cmdSet(ctx, []string{"k", "v"})
	if _, err := cmdJSONSet(ctx, []string{"k", "$", "1"}); err == nil {
		t.Fatalf("expected WRONGTYPE setting JSON onto a string key")
	}
}
