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
	"time"

	"github.com/spineldb/spineldb/cache"
	"github.com/spineldb/spineldb/dispatch"
	"github.com/spineldb/spineldb/resp"
	"github.com/spineldb/spineldb/storage"
)

// registerCacheCommands wires spec.md §4.10's HTTP-aware caching engine
// (cache.Manager, already composing PolicyTable/TagIndex/Manifest/
// Coalescer/BodyStore) to the keyspace: a cache entry rides inside a normal
// KeyEntry's Cache metadata (storage/keyentry.go's CacheMeta.Opaque), so it
// shares locking, TTL sweeping, and replication with every other key instead
// of living in a side table.
func registerCacheCommands(r *dispatch.Registry, mgr *cache.Manager) {
	one := dispatch.KeySpec{FirstKey: 1, LastKey: 1, Step: 1}
	r.Register(&dispatch.Command{Name: "CACHE.GET", Arity: 2, Flags: dispatch.FlagReadOnly, Keys: one,
		Handler: func(ctx *dispatch.ExecContext, args []string) (resp.Value, error) { return cmdCacheGet(ctx, mgr, args) }})
	r.Register(&dispatch.Command{Name: "CACHE.SET", Arity: -3, Flags: dispatch.FlagWrite, Keys: one,
		Handler: func(ctx *dispatch.ExecContext, args []string) (resp.Value, error) { return cmdCacheSet(ctx, mgr, args) }})
	r.Register(&dispatch.Command{Name: "CACHE.PROXY", Arity: -2, Flags: dispatch.FlagWrite, Keys: one,
		Handler: func(ctx *dispatch.ExecContext, args []string) (resp.Value, error) { return cmdCacheProxy(ctx, mgr, args) }})
	r.Register(&dispatch.Command{Name: "CACHE.PURGE", Arity: 2, Flags: dispatch.FlagWrite, Keys: one,
		Handler: func(ctx *dispatch.ExecContext, args []string) (resp.Value, error) { return cmdCachePurge(ctx, mgr, args) }})
	r.Register(&dispatch.Command{Name: "CACHE.PURGETAG", Arity: 2, Flags: dispatch.FlagWrite | dispatch.FlagAdmin,
		Handler: func(ctx *dispatch.ExecContext, args []string) (resp.Value, error) { return cmdCachePurgeTag(ctx, mgr, args) }})
}

// cacheEntryAt reads the *cache.Entry riding inside the KeyEntry stored at
// storageKey, if any.
func cacheEntryAt(ctx *dispatch.ExecContext, storageKey string) (*storage.KeyEntry, *cache.Entry) {
	e := lookupLive(ctx.DB, storageKey)
	if e == nil || e.Cache == nil {
		return e, nil
	}
	ce, _ := e.Cache.Opaque.(*cache.Entry)
	return e, ce
}

// storeCacheEntry persists ce as storageKey's KeyEntry value, the body held
// as a plain string Value so GET/TTL/etc still see a normal string key, with
// Cache metadata layered on top carrying the full cache.Entry for state
// evaluation.
func storeCacheEntry(ctx *dispatch.ExecContext, storageKey string, ce *cache.Entry, body []byte) {
	prev := ctx.DB.GetLocked(storageKey)
	entry := &storage.KeyEntry{
		Key:   []byte(storageKey),
		Value: &storage.Value{Kind: storage.KindString, Str: body},
		Cache: &storage.CacheMeta{Opaque: ce},
	}
	if prev != nil {
		entry.Version = prev.Version + 1
	}
	ctx.DB.SetLocked(entry)
}

// CACHE.GET key -- returns the body if the entry is still servable
// (Fresh/Stale/Grace), per spec.md §4.10's state machine; Expired or
// tag-invalidated entries read back as a cache miss (nil), matching the
// "never serve content past its grace window" invariant.
func cmdCacheGet(ctx *dispatch.ExecContext, mgr *cache.Manager, args []string) (resp.Value, error) {
	_, ce := cacheEntryAt(ctx, args[0])
	if ce == nil {
		return resp.NullBulk(), nil
	}
	now := time.Now()
	if !ce.IsServable(now) || !mgr.IsCurrent(ce) {
		return resp.NullBulk(), nil
	}
	body, err := mgr.Body(ce)
	if err != nil {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "cache body read failed: %v", err)
	}
	return resp.BulkFromBytes(body), nil
}

// CACHE.SET key body [TAG tag ...] stores a cache entry directly (used for
// pre-warming and tests) against the policy matching key as a URL, skipping
// the origin fetch.
func cmdCacheSet(ctx *dispatch.ExecContext, mgr *cache.Manager, args []string) (resp.Value, error) {
	key, body := args[0], []byte(args[1])
	policy, _, ok := mgr.Policies.Match(key)
	if !ok {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "no cache policy matches '%s'", key)
	}
	var overrideTags []string
	for i := 2; i < len(args); i++ {
		if strings.EqualFold(args[i], "TAG") && i+1 < len(args) {
			overrideTags = append(overrideTags, args[i+1])
			i++
			continue
		}
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "syntax error")
	}
	tags := cache.ResolveTags(policy.Tags, overrideTags)
	ce := &cache.Entry{Key: key, Policy: policy, Body: body, StoredAt: time.Now(), TagEpochAt: mgr.Tags.Snapshot(tags)}
	storeCacheEntry(ctx, key, ce, body)
	return resp.OK(), nil
}

// CACHE.PROXY key [HEADER name value ...] serves key from cache if servable,
// otherwise fetches from origin via the matched policy's URL template,
// single-flighting concurrent misses through mgr.Coalescer per spec.md
// §4.10's stampede-protection requirement. Coalescer.Do's own doc comment
// asks callers not to hold a shard lock across it, but Dispatcher.Execute
// holds this key's shard lock for the whole handler call (see DESIGN.md);
// a cache miss here therefore serializes other commands on the same shard
// for the fetch's duration rather than just the cache-state read/write.
func cmdCacheProxy(ctx *dispatch.ExecContext, mgr *cache.Manager, args []string) (resp.Value, error) {
	key := args[0]
	headers := map[string]string{}
	for i := 1; i < len(args); i++ {
		if strings.EqualFold(args[i], "HEADER") && i+2 < len(args) {
			headers[strings.ToLower(args[i+1])] = args[i+2]
			i += 2
			continue
		}
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "syntax error")
	}

	_, existing := cacheEntryAt(ctx, key)
	now := time.Now()
	if existing != nil && existing.IsServable(now) && mgr.IsCurrent(existing) {
		if !existing.NeedsRevalidate(now) {
			body, err := mgr.Body(existing)
			if err != nil {
				return resp.Value{}, dispatch.NewError(dispatch.KindErr, "cache body read failed: %v", err)
			}
			return resp.BulkFromBytes(body), nil
		}
	}

	fetched, err, _ := mgr.Coalescer.Do(key, func() (*cache.Entry, error) {
		f, ferr := mgr.Resolve(key, headers, nil)
		if ferr != nil {
			return nil, ferr
		}
		return f.Entry, nil
	})
	if err != nil {
		if existing != nil && existing.StateAt(now) == cache.Grace {
			body, berr := mgr.Body(existing)
			if berr != nil {
				return resp.Value{}, dispatch.NewError(dispatch.KindErr, "origin unreachable and cached body read failed: %v", berr)
			}
			return resp.BulkFromBytes(body), nil
		}
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "origin fetch failed: %v", err)
	}
	body, err := mgr.Body(fetched)
	if err != nil {
		return resp.Value{}, dispatch.NewError(dispatch.KindErr, "cache body read failed: %v", err)
	}
	storeCacheEntry(ctx, key, fetched, body)
	return resp.BulkFromBytes(body), nil
}

// CACHE.PURGE key evicts one cache entry outright, releasing its blob
// reference so a later Manifest.Sweep can reclaim on-disk storage.
func cmdCachePurge(ctx *dispatch.ExecContext, mgr *cache.Manager, args []string) (resp.Value, error) {
	_, ce := cacheEntryAt(ctx, args[0])
	if ce == nil {
		return resp.Integer(0), nil
	}
	mgr.Release(ce)
	mgr.Variants.Forget(args[0])
	ctx.DB.DeleteLocked(args[0])
	return resp.Integer(1), nil
}

// CACHE.PURGETAG tag bumps tag's epoch, invalidating every stored entry
// carrying it without an immediate keyspace scan -- entries are checked
// lazily against the new epoch the next time they are read, per spec.md
// §4.10's "tag purge is O(1), not O(keys)" requirement.
func cmdCachePurgeTag(ctx *dispatch.ExecContext, mgr *cache.Manager, args []string) (resp.Value, error) {
	epoch := mgr.PurgeTag(args[0])
	return resp.Integer(int64(epoch)), nil
}
