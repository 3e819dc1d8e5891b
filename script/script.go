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

// Package script provides the EVAL/EVALSHA surface spec.md §1 names: a
// SHA1-keyed script cache plus a command-execution callback. The sandbox
// that actually interprets script bodies is explicitly out of scope (see
// spec.md's Non-goals) — Executor is supplied by the embedding server, the
// same way the teacher's scm.Env threads a callback through to its own
// command layer (scm/scm.go's Globalenv/Apply) rather than this package
// implementing a language of its own.
package script

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"sync"

	"github.com/spineldb/spineldb/dispatch"
	"github.com/spineldb/spineldb/resp"
)

// Executor runs a script body against the command dispatcher, given the
// KEYS/ARGV RESP conventions (keys first, then plain arguments). What the
// body actually does with them is entirely the embedder's concern.
type Executor func(ctx *dispatch.ExecContext, body string, keys []string, args []string) (resp.Value, error)

var ErrNoScript = errors.New("NOSCRIPT No matching script. Please use EVAL.")

// Cache is the SHA1-keyed script store EVALSHA/SCRIPT LOAD/SCRIPT EXISTS
// operate against.
type Cache struct {
	mu      sync.RWMutex
	byHash  map[string]string
	execute Executor
}

func NewCache(execute Executor) *Cache {
	return &Cache{byHash: make(map[string]string), execute: execute}
}

func Hash(body string) string {
	sum := sha1.Sum([]byte(body))
	return hex.EncodeToString(sum[:])
}

// Load registers body under its SHA1 hash (SCRIPT LOAD), returning the hash.
func (c *Cache) Load(body string) string {
	h := Hash(body)
	c.mu.Lock()
	c.byHash[h] = body
	c.mu.Unlock()
	return h
}

func (c *Cache) Exists(hash string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.byHash[hash]
	return ok
}

func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byHash = make(map[string]string)
}

// Eval runs body directly (EVAL), caching it under its hash as a side
// effect so a subsequent EVALSHA for the same body is a cache hit.
func (c *Cache) Eval(ctx *dispatch.ExecContext, body string, keys, args []string) (resp.Value, error) {
	c.Load(body)
	return c.execute(ctx, body, keys, args)
}

// EvalSha runs the script registered under hash (EVALSHA) and also returns
// the resolved script body. Dispatcher.Execute publishes the original
// EVALSHA arguments to the event bus, so AOF and replicas receive EVALSHA,
// not the equivalent EVAL, and replay there succeeds only where the script
// is already loaded.
func (c *Cache) EvalSha(ctx *dispatch.ExecContext, hash string, keys, args []string) (resp.Value, string, error) {
	c.mu.RLock()
	body, ok := c.byHash[hash]
	c.mu.RUnlock()
	if !ok {
		return resp.Value{}, "", ErrNoScript
	}
	v, err := c.execute(ctx, body, keys, args)
	return v, body, err
}
