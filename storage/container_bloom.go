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
	"math"
)

// BloomContainer is a bit array with k hash functions, per spec.md §4.2.
// Parameters m (bits) and k (hash functions) are derived from the requested
// capacity and error rate at BF.RESERVE time.
type BloomContainer struct {
	bits     []uint64
	m        uint64
	k        int
	Capacity uint64
	ErrRate  float64
	inserted uint64
}

func NewBloomContainer(m uint64, k int) *BloomContainer {
	words := (m + 63) / 64
	return &BloomContainer{bits: make([]uint64, words), m: m, k: k}
}

// EstimateParams computes (m, k) for a target capacity and false-positive
// rate, the standard optimal-Bloom-filter formulas.
func EstimateParams(capacity uint64, errRate float64) (m uint64, k int) {
	n := float64(capacity)
	mf := -n * math.Log(errRate) / (math.Ln2 * math.Ln2)
	m = uint64(math.Ceil(mf))
	kf := (mf / n) * math.Ln2
	k = int(math.Round(kf))
	if k < 1 {
		k = 1
	}
	return
}

// SameParams reports whether a RESERVE call with these parameters is a no-op,
// per spec.md §4.2's "BF.RESERVE is idempotent only if the parameters match."
func (b *BloomContainer) SameParams(capacity uint64, errRate float64) bool {
	m, k := EstimateParams(capacity, errRate)
	return m == b.m && k == b.k
}

// doubleHash implements Kirsch-Mitzenmacher hashing from two independent
// FNV-1a digests (one over the item, one over the item with a salt byte
// appended), avoiding k separate hash functions.
func doubleHash(item []byte) (uint64, uint64) {
	h1 := fnv.New64a()
	h1.Write(item)
	a := h1.Sum64()
	h2 := fnv.New64a()
	h2.Write(item)
	h2.Write([]byte{0xa5})
	b := h2.Sum64()
	return a, b
}

func (b *BloomContainer) indices(item []byte) []uint64 {
	h1, h2 := doubleHash(item)
	out := make([]uint64, b.k)
	for i := 0; i < b.k; i++ {
		out[i] = (h1 + uint64(i)*h2) % b.m
	}
	return out
}

// Add sets the k bits for item; returns true if item was probably new.
func (b *BloomContainer) Add(item []byte) bool {
	wasNew := false
	for _, idx := range b.indices(item) {
		word, bit := idx/64, idx%64
		if b.bits[word]&(1<<bit) == 0 {
			wasNew = true
		}
		b.bits[word] |= 1 << bit
	}
	if wasNew {
		b.inserted++
	}
	return wasNew
}

func (b *BloomContainer) Test(item []byte) bool {
	for _, idx := range b.indices(item) {
		word, bit := idx/64, idx%64
		if b.bits[word]&(1<<bit) == 0 {
			return false
		}
	}
	return true
}

func (b *BloomContainer) Inserted() uint64 { return b.inserted }
