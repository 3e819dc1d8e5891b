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
	"testing"
	"time"

	"github.com/spineldb/spineldb/cache"
)

func newTestCacheManager() *cache.Manager {
	table := cache.NewPolicyTable()
	table.Add(cache.Rule{
		Name:        "pages",
		URLTemplate: "mykey",
		Policy: cache.Policy{
			Name:  "pages",
			TTL:   time.Minute,
			Grace: time.Minute,
			Tags:  []string{"pages"},
		},
	})
	return cache.NewManager(table, nil, nil)
}

func TestCacheSetThenGet(t *testing.T) {
	ctx := newTestCtx()
	mgr := newTestCacheManager()
	if _, err := cmdCacheSet(ctx, mgr, []string{"mykey", "hello"}); err != nil {
		t.Fatalf("cache.set: %v", err)
	}
	v, err := cmdCacheGet(ctx, mgr, []string{"mykey"})
	if err != nil || v.Str != "hello" {
		t.Fatalf("cache.get: v=%+v err=%v", v, err)
	}
}

func TestCacheSetRejectsUnmatchedKey(t *testing.T) {
	ctx := newTestCtx()
	mgr := newTestCacheManager()
	if _, err := cmdCacheSet(ctx, mgr, []string{"nomatch", "hello"}); err == nil {
		t.Fatalf("expected an error setting a key with no matching policy")
	}
}

func TestCacheGetMissIsNullBulk(t *testing.T) {
	ctx := newTestCtx()
	mgr := newTestCacheManager()
	v, err := cmdCacheGet(ctx, mgr, []string{"mykey"})
	if err != nil || !v.IsNil() {
		t.Fatalf("expected a cache miss to return nil: v=%+v err=%v", v, err)
	}
}

func TestCachePurgeRemovesEntry(t *testing.T) {
	ctx := newTestCtx()
	mgr := newTestCacheManager()
	cmdCacheSet(ctx, mgr, []string{"mykey", "hello"})
	n, err := cmdCachePurge(ctx, mgr, []string{"mykey"})
	if err != nil || n.Int != 1 {
		t.Fatalf("cache.purge: n=%+v err=%v", n, err)
	}
	v, _ := cmdCacheGet(ctx, mgr, []string{"mykey"})
	if !v.IsNil() {
		t.Fatalf("expected the key to read as a miss after purge")
	}
}

func TestCachePurgeTagInvalidatesStampedEntries(t *testing.T) {
	ctx := newTestCtx()
	mgr := newTestCacheManager()
	cmdCacheSet(ctx, mgr, []string{"mykey", "hello"})
	if _, err := cmdCachePurgeTag(ctx, mgr, []string{"pages"}); err != nil {
		t.Fatalf("cache.purgetag: %v", err)
	}
	v, err := cmdCacheGet(ctx, mgr, []string{"mykey"})
	if err != nil || !v.IsNil() {
		t.Fatalf("expected a tag purge to invalidate the stamped entry: v=%+v err=%v", v, err)
	}
}
