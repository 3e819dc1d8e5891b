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
package txn

import "sync"

// State is the lifecycle of a connection's MULTI block, the same three-value
// shape as the teacher's TxState (storage/transaction.go) collapsed from the
// ACID/cursor-stability split down to spec.md §4.5's single WATCH-version
// optimistic-concurrency contract.
type State uint8

const (
	Normal State = iota // no MULTI in progress
	Queuing
	Dirty // set by MarkDirty; EXEC aborts
)

// Watch is one watched key's version snapshot, taken at WATCH time.
type Watch struct {
	Key     string
	Version uint64
}

// Tx is one connection's transaction state. Not safe for concurrent use by
// more than one goroutine; a connection is always driven by a single reader
// goroutine, matching the teacher's one-tx-per-session invariant
// (storage/transaction.go's sessionFn-keyed `__memcp_tx` slot).
type Tx struct {
	mu      sync.Mutex
	State   State
	Queued  [][]string
	Watches []Watch
}

func New() *Tx { return &Tx{State: Normal} }

// Begin starts MULTI, resetting any stale queued commands from a prior
// uncommitted block.
func (t *Tx) Begin() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.State = Queuing
	t.Queued = nil
}

// Queue appends one command to the pending EXEC batch. Returns false if no
// MULTI is in progress (caller should reply with an ERR outside a MULTI).
func (t *Tx) Queue(args []string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.State == Normal {
		return false
	}
	t.Queued = append(t.Queued, args)
	return true
}

// MarkDirty flags a queuing transaction as EXEC-must-abort. WATCH version
// mismatches do not go through it; PrepareExec compares versions itself.
func (t *Tx) MarkDirty() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.State == Queuing {
		t.State = Dirty
	}
}

// Watch records a key to watch, along with the version the caller read for
// it right now. Per spec.md §4.5, WATCH is a no-op once inside MULTI.
func (t *Tx) Watch(key string, version uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.State != Normal {
		return
	}
	t.Watches = append(t.Watches, Watch{Key: key, Version: version})
}

func (t *Tx) Unwatch() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Watches = nil
}

// PrepareExec returns the queued commands and whether EXEC should proceed:
// false if the tx was marked Dirty, or if currentVersion reports any watched
// key has moved since WATCH. Either way the transaction resets to Normal,
// per spec.md's "EXEC always clears MULTI state, win or lose" rule.
func (t *Tx) PrepareExec(currentVersion func(key string) uint64) ([][]string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ok := t.State == Queuing
	if ok {
		for _, w := range t.Watches {
			if currentVersion(w.Key) != w.Version {
				ok = false
				break
			}
		}
	}
	queued := t.Queued
	t.State = Normal
	t.Queued = nil
	t.Watches = nil
	return queued, ok
}

// Discard aborts a MULTI block without executing it.
func (t *Tx) Discard() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.State = Normal
	t.Queued = nil
	t.Watches = nil
}

func (t *Tx) InMulti() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.State != Normal
}
