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
package storage

import (
	"hash/fnv"
	"sync"
)

// Database is one numbered keyspace (SELECT 0..N-1), partitioned into a
// fixed number of shards by key hash. Grounded on the teacher's
// storage/database.go database/databases map, generalized from "named
// schema holding named tables" to "numbered keyspace holding sharded keys" -
// the registry (databaselock-guarded map, Create/Drop pair) is the part kept
// verbatim in spirit; the schema.json persistence is replaced by AOF/SPLDB.
type Database struct {
	Index  int
	shards []*Shard
}

// NewDatabase allocates a Database with shardCount shards, each independently
// lockable so unrelated keys never contend (spec.md §4.1).
func NewDatabase(index, shardCount int) *Database {
	if shardCount < 1 {
		shardCount = 1
	}
	d := &Database{Index: index, shards: make([]*Shard, shardCount)}
	for i := range d.shards {
		d.shards[i] = NewShard()
	}
	return d
}

func (d *Database) NumShards() int { return len(d.shards) }

// ShardFor returns the shard owning key, by FNV-1a hash modulo shard count.
// Cluster-mode slot assignment (CRC16 over hash tags) is a distinct, coarser
// partitioning layered on top by the cluster package; this is the local,
// single-node sharding used regardless of cluster mode.
func (d *Database) ShardFor(key string) *Shard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return d.shards[h.Sum32()%uint32(len(d.shards))]
}

// ShardAt returns the shard at index i, used by the dispatcher to lock a
// command's shards in ascending index order.
func (d *Database) ShardAt(i int) *Shard { return d.shards[i] }

func (d *Database) Get(key string) *KeyEntry { return d.ShardFor(key).Get(key) }
func (d *Database) Set(e *KeyEntry)          { d.ShardFor(string(e.Key)).Set(e) }
func (d *Database) Delete(key string) bool   { return d.ShardFor(key).Delete(key) }

// GetLocked/SetLocked/DeleteLocked are the lock-free counterparts used by
// command handlers, which always run with their keys' shards already locked
// by the dispatcher (dispatch.Dispatcher.Execute). Calling the locking Get/
// Set/Delete from inside a handler would self-deadlock on the shard's
// non-reentrant RWMutex.
func (d *Database) GetLocked(key string) *KeyEntry { return d.ShardFor(key).GetLocked(key) }
func (d *Database) SetLocked(e *KeyEntry)          { d.ShardFor(string(e.Key)).SetLocked(e) }
func (d *Database) DeleteLocked(key string) bool   { return d.ShardFor(key).DeleteLocked(key) }

func (d *Database) Len() int {
	total := 0
	for _, s := range d.shards {
		total += s.Len()
	}
	return total
}

// Flush removes every key in the database in place, used by FLUSHDB.
func (d *Database) Flush() {
	for _, s := range d.shards {
		s.mu.Lock()
		s.entries = make(map[string]*KeyEntry)
		s.expireIndex = NewExpireIndex()
		s.mu.Unlock()
	}
}

// Registry holds the full set of numbered databases a server exposes,
// mirroring the teacher's package-level databases map + databaselock pair
// but keyed by an instance rather than package globals, so a process can run
// more than one server (e.g. in tests).
type Registry struct {
	mu        sync.RWMutex
	databases []*Database
	shards    int
}

// NewRegistry creates count numbered databases, each with the given shard
// count, per spec.md §6's "databases" config option.
func NewRegistry(count, shardsPerDB int) *Registry {
	r := &Registry{databases: make([]*Database, count), shards: shardsPerDB}
	for i := range r.databases {
		r.databases[i] = NewDatabase(i, shardsPerDB)
	}
	return r
}

func (r *Registry) Database(index int) *Database {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.databases[index]
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.databases)
}

// FlushAll resets every database, used by FLUSHALL.
func (r *Registry) FlushAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, db := range r.databases {
		db.Flush()
	}
}
