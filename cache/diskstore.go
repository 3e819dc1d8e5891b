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

import "io"

// BodyStore is the hybrid in-memory/on-disk body backend spec.md §4.10
// requires: small bodies stay in the Entry struct itself, large ones are
// written through a BodyStore and referenced by BodyRef. Grounded on the
// teacher's PersistenceEngine interface (storage/persistence.go), trimmed
// from "schema + column + log" down to the one concern a cache body store
// needs: blob read/write/remove by ref (the variant's StorageKey).
type BodyStore interface {
	Put(ref string, r io.Reader) error
	Get(ref string) (io.ReadCloser, error)
	Remove(ref string) error
}

// MemThreshold is the body size, in bytes, above which a body is written
// through a BodyStore instead of kept inline on the Entry — spec.md §4.10's
// "hybrid" storage split.
const MemThreshold = 64 * 1024
