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

func TestXAddAutoIDThenXLen(t *testing.T) {
	ctx := newTestCtx()
	id, err := cmdXAdd(ctx, []string{"s", "*", "field", "value"})
	if err != nil {
		t.Fatalf("xadd: %v", err)
	}
	if id.Str == "" {
		t.Fatalf("expected a non-empty auto-assigned stream ID")
	}
	n, err := cmdXLen(ctx, []string{"s"})
	if err != nil || n.Int != 1 {
		t.Fatalf("xlen: n=%+v err=%v", n, err)
	}
}

func TestXAddNoMkStreamOnMissingKey(t *testing.T) {
	ctx := newTestCtx()
	v, err := cmdXAdd(ctx, []string{"missing", "NOMKSTREAM", "*", "f", "v"})
	if err != nil {
		t.Fatalf("xadd nomkstream: %v", err)
	}
	if !v.IsNil() {
		t.Fatalf("expected a nil reply when NOMKSTREAM hits a missing key")
	}
}

func TestXAddExplicitIDMustIncrease(t *testing.T) {
	ctx := newTestCtx()
	if _, err := cmdXAdd(ctx, []string{"s", "5-0", "f", "v"}); err != nil {
		t.Fatalf("xadd: %v", err)
	}
	if _, err := cmdXAdd(ctx, []string{"s", "1-0", "f", "v"}); err == nil {
		t.Fatalf("expected an error adding a stream ID smaller than the last one")
	}
}

func TestXRangeReturnsInsertedEntries(t *testing.T) {
	ctx := newTestCtx()
	cmdXAdd(ctx, []string{"s", "1-0", "f", "a"})
	cmdXAdd(ctx, []string{"s", "2-0", "f", "b"})
	v, err := cmdXRange(ctx, []string{"s", "-", "+"})
	if err != nil || len(v.Elems) != 2 {
		t.Fatalf("xrange: v=%+v err=%v", v, err)
	}
}

func TestXGroupCreateRejectsDuplicate(t *testing.T) {
	ctx := newTestCtx()
	cmdXAdd(ctx, []string{"s", "1-0", "f", "v"})
	if _, err := cmdXGroup(ctx, []string{"CREATE", "s", "g", "$"}); err != nil {
		t.Fatalf("xgroup create: %v", err)
	}
	if _, err := cmdXGroup(ctx, []string{"CREATE", "s", "g", "$"}); err == nil {
		t.Fatalf("expected BUSYGROUP on a duplicate group name")
	}
}

func TestXReadReturnsEntriesAfterID(t *testing.T) {
	ctx := newTestCtx()
	cmdXAdd(ctx, []string{"s", "1-0", "f", "a"})
	cmdXAdd(ctx, []string{"s", "2-0", "f", "b"})
	v, err := cmdXRead(ctx, []string{"STREAMS", "s", "1-0"})
	if err != nil || len(v.Elems) != 1 {
		t.Fatalf("xread: v=%+v err=%v", v, err)
	}
}

func TestStreamWrongTypeAgainstString(t *testing.T) {
	ctx := newTestCtx()
	cmdSet(ctx, []string{"k", "v"})
	if _, err := cmdXAdd(ctx, []string{"k", "*", "f", "v"}); err == nil {
		t.Fatalf("expected WRONGTYPE adding to a string key")
	}
}
