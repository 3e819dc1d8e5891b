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
	"bytes"
	"errors"
	"time"
)

// Manager is the composition root for the cache engine's already-built
// collaborators (PolicyTable, TagIndex, Manifest, Coalescer, OriginFetcher,
// BodyStore, VariantMap), the thin wiring layer a command handler holds
// instead of threading seven separate fields through every call, the same
// role server.Server plays for the rest of the process.
type Manager struct {
	Policies  *PolicyTable
	Tags      *TagIndex
	Manifest  *Manifest
	Coalescer *Coalescer
	Fetch     OriginFetcher
	Store     BodyStore
	Variants  *VariantMap
}

func NewManager(policies *PolicyTable, fetch OriginFetcher, store BodyStore) *Manager {
	return &Manager{
		Policies:  policies,
		Tags:      NewTagIndex(),
		Manifest:  NewManifest(),
		Coalescer: NewCoalescer(),
		Fetch:     fetch,
		Store:     store,
		Variants:  NewVariantMap(),
	}
}

var ErrNoPolicy = errors.New("cache: no policy matches this URL")

// Fetched is one freshly-populated entry plus the variant suffix it was
// stored under, returned by Resolve so the caller can compute the storage
// key (StorageKey(url, Variant)) without Manager knowing anything about the
// outer keyspace.
type Fetched struct {
	Entry   *Entry
	Variant string
}

// Resolve matches url against the policy table, fetches it from origin, and
// builds a fresh Entry stamped with the tag epochs current at fetch time,
// per spec.md §4.10's "each entry remembers the tag epoch it was stored
// under, so a later tag purge can tell a stale entry from a current one."
// overrideTags wins over the matched rule's tags per policy.ResolveTags.
func (m *Manager) Resolve(url string, headers map[string]string, overrideTags []string) (*Fetched, error) {
	policy, _, ok := m.Policies.Match(url)
	if !ok {
		return nil, ErrNoPolicy
	}
	status, respHeaders, body, err := m.Fetch(url, headers)
	if err != nil {
		return nil, err
	}
	variant := VariantKey(policy, headers)
	tags := ResolveTags(policy.Tags, overrideTags)
	entry := &Entry{
		Key:        url,
		Policy:     policy,
		StoredAt:   time.Now(),
		TagEpochAt: m.Tags.Snapshot(tags),
		Headers:    respHeaders,
	}
	ref := StorageKey(url, variant)
	if err := m.place(entry, ref, body); err != nil {
		return nil, err
	}
	m.Variants.Record(url, variant)
	return &Fetched{Entry: entry, Variant: variant}, nil
}

// place decides, per spec.md §4.10's hybrid in-memory/on-disk split, whether
// body is small enough to live directly on the Entry or must be written
// through the BodyStore and referenced by BodyRef.
func (m *Manager) place(entry *Entry, ref string, body []byte) error {
	if len(body) <= MemThreshold || m.Store == nil {
		entry.Body = body
		return nil
	}
	m.Manifest.BeginWrite(ref)
	if err := m.Store.Put(ref, bytes.NewReader(body)); err != nil {
		m.Manifest.Release(ref)
		return err
	}
	m.Manifest.CommitWrite(ref)
	entry.BodyRef = ref
	return nil
}

// Body returns entry's payload, reading through the BodyStore when the
// entry spilled to disk.
func (m *Manager) Body(entry *Entry) ([]byte, error) {
	if entry.BodyRef == "" || m.Store == nil {
		return entry.Body, nil
	}
	rc, err := m.Store.Get(entry.BodyRef)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(rc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Release drops entry's on-disk blob reference, if any, so a later Sweep
// can reclaim it once no other variant still refers to the same ref.
func (m *Manager) Release(entry *Entry) {
	if entry.BodyRef != "" {
		m.Manifest.Release(entry.BodyRef)
	}
}

// PurgeTag bumps tag's epoch and returns the new value, invalidating every
// entry whose TagEpochAt predates it (spec.md §4.10's tag-based purge).
func (m *Manager) PurgeTag(tag string) uint64 { return m.Tags.Purge(tag) }

// IsCurrent reports whether entry is still current against every tag it was
// stored with, combining Entry.IsTagCurrent with this Manager's TagIndex.
func (m *Manager) IsCurrent(entry *Entry) bool {
	return entry.IsTagCurrent(m.Tags.Epoch)
}
