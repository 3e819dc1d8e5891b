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

import "testing"

func TestPFAddThenPFCount(t *testing.T) {
	ctx := newTestCtx()
	if _, err := cmdPFAdd(ctx, []string{"h", "a", "b", "c"}); err != nil {
		t.Fatalf("pfadd: %v", err)
	}
	n, err := cmdPFCount(ctx, []string{"h"})
	if err != nil || n.Int == 0 {
		t.Fatalf("pfcount: n=%+v err=%v", n, err)
	}
}

func TestPFCountUnionsMultipleKeys(t *testing.T) {
	ctx := newTestCtx()
	cmdPFAdd(ctx, []string{"a", "1", "2", "3"})
	cmdPFAdd(ctx, []string{"b", "3", "4", "5"})
	union, err := cmdPFCount(ctx, []string{"a", "b"})
	if err != nil {
		t.Fatalf("pfcount union: %v", err)
	}
	solo, _ := cmdPFCount(ctx, []string{"a"})
	if union.Int <= solo.Int {
		t.Fatalf("expected the union count to exceed a single key's count: union=%d solo=%d", union.Int, solo.Int)
	}
}

func TestPFMergeIntoDest(t *testing.T) {
	ctx := newTestCtx()
	cmdPFAdd(ctx, []string{"a", "1", "2"})
	cmdPFAdd(ctx, []string{"b", "3", "4"})
	if _, err := cmdPFMerge(ctx, []string{"dest", "a", "b"}); err != nil {
		t.Fatalf("pfmerge: %v", err)
	}
	n, err := cmdPFCount(ctx, []string{"dest"})
	if err != nil || n.Int == 0 {
		t.Fatalf("pfcount dest: n=%+v err=%v", n, err)
	}
}

func TestHLLWrongTypeAgainstString(t *testing.T) {
	ctx := newTestCtx()
	cmdSet(ctx, []string{"k", "v"})
	if _, err := cmdPFAdd(ctx, []string{"k", "x"}); err == nil {
		t.Fatalf("expected WRONGTYPE adding to a string key")
	}
}
