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
package script

import (
	"testing"

	"github.com/spineldb/spineldb/dispatch"
	"github.com/spineldb/spineldb/resp"
)

func countingExecutor() (Executor, *int) {
	calls := 0
	return func(ctx *dispatch.ExecContext, body string, keys, args []string) (resp.Value, error) {
		calls++
		return resp.Bulk(body), nil
	}, &calls
}

func TestEvalCachesByHash(t *testing.T) {
	exec, calls := countingExecutor()
	c := NewCache(exec)

	body := "return 1"
	v, err := c.Eval(nil, body, nil, nil)
	if err != nil || v.Str != body {
		t.Fatalf("eval failed: v=%+v err=%v", v, err)
	}
	if *calls != 1 {
		t.Fatalf("expected 1 call, got %d", *calls)
	}
	if !c.Exists(Hash(body)) {
		t.Fatalf("expected script cached under its hash after EVAL")
	}
}

func TestEvalShaMissReturnsNoScript(t *testing.T) {
	exec, _ := countingExecutor()
	c := NewCache(exec)
	_, _, err := c.EvalSha(nil, Hash("unregistered"), nil, nil)
	if err != ErrNoScript {
		t.Fatalf("expected ErrNoScript, got %v", err)
	}
}

func TestEvalShaResolvesBodyForReplication(t *testing.T) {
	exec, _ := countingExecutor()
	c := NewCache(exec)
	body := "return 2"
	hash := c.Load(body)

	_, resolved, err := c.EvalSha(nil, hash, nil, nil)
	if err != nil {
		t.Fatalf("evalsha: %v", err)
	}
	if resolved != body {
		t.Fatalf("expected resolved body %q, got %q", body, resolved)
	}
}

func TestFlushClearsCache(t *testing.T) {
	exec, _ := countingExecutor()
	c := NewCache(exec)
	hash := c.Load("return 3")
	c.Flush()
	if c.Exists(hash) {
		t.Fatalf("expected flush to clear cached scripts")
	}
}
