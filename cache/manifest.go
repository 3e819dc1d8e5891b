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
package cache

import (
	"sync"

	"github.com/spineldb/spineldb/logx"
)

// BlobState is a BodyStore ref's lifecycle, per spec.md §4.10's GC contract:
// a body is written (Pending) before its Entry is committed into the
// keyspace, so a crash between the two never leaves a visible Entry
// pointing at a missing blob; once committed, a blob only moves to
// PendingDelete when its last referencing Entry is evicted/overwritten, and
// is only actually removed once GC confirms no Entry still references it.
type BlobState int

const (
	Pending BlobState = iota
	Committed
	PendingDelete
)

// blobRecord tracks one BodyStore ref's state and reference count.
// Grounded on the teacher's blob-refcount.go `.blobs` table (hash ->
// refcount), generalized from a SQL-table-backed counter to an in-memory
// map, since cache bodies don't need SQL scan/aggregate machinery — they
// just need increment/decrement/zero-check.
type blobRecord struct {
	state    BlobState
	refcount int
}

// Manifest is the in-memory ledger of every blob ref a cache engine has
// written through a BodyStore, independent of which BodyStore backend is in
// use (disk/S3/Ceph).
type Manifest struct {
	mu    sync.Mutex
	blobs map[string]*blobRecord
}

func NewManifest() *Manifest {
	return &Manifest{blobs: make(map[string]*blobRecord)}
}

// BeginWrite registers ref as Pending before the BodyStore.Put call that
// produces it, per the crash-safety ordering above.
func (m *Manifest) BeginWrite(ref string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[ref]; !ok {
		m.blobs[ref] = &blobRecord{state: Pending}
	}
}

// CommitWrite marks ref Committed and adds one reference, called once the
// Entry pointing at ref has been stored in the keyspace.
func (m *Manifest) CommitWrite(ref string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[ref]
	if !ok {
		b = &blobRecord{}
		m.blobs[ref] = b
	}
	b.state = Committed
	b.refcount++
}

// Release drops one reference to ref (an Entry pointing at it was evicted
// or overwritten), moving it to PendingDelete once the count reaches zero.
func (m *Manifest) Release(ref string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[ref]
	if !ok {
		return
	}
	b.refcount--
	if b.refcount <= 0 {
		b.state = PendingDelete
	}
}

// Sweep removes every PendingDelete blob from store, logging failures
// rather than aborting the sweep (one unreachable blob must not block GC
// of the rest). Returns the refs that were removed.
func (m *Manifest) Sweep(store BodyStore) []string {
	m.mu.Lock()
	var toDelete []string
	for ref, b := range m.blobs {
		if b.state == PendingDelete {
			toDelete = append(toDelete, ref)
		}
	}
	m.mu.Unlock()

	var removed []string
	for _, ref := range toDelete {
		if err := store.Remove(ref); err != nil {
			logx.Warn("cache manifest: failed to remove blob during GC", "ref", ref, "err", err)
			continue
		}
		m.mu.Lock()
		delete(m.blobs, ref)
		m.mu.Unlock()
		removed = append(removed, ref)
	}
	return removed
}

func (m *Manifest) StateOf(ref string) (BlobState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[ref]
	if !ok {
		return 0, false
	}
	return b.state, true
}
