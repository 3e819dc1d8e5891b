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
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// VariantKey computes the storage key suffix for one combination of
// Vary-header values, per spec.md §4.10's "entries with a Vary policy
// partition into one stored variant per distinct header combination."
// Accept-Language is BCP-47-normalized before hashing so "en-US" and
// "en-us" (or "en-US,fr;q=0.8" reordered) collapse onto the same variant;
// every other Vary header is compared verbatim.
func VariantKey(policy *Policy, headers map[string]string) string {
	if len(policy.VaryHeaders) == 0 {
		return ""
	}
	parts := make([]string, 0, len(policy.VaryHeaders))
	for _, h := range policy.VaryHeaders {
		v := headers[strings.ToLower(h)]
		if strings.EqualFold(h, "Accept-Language") {
			v = normalizeLanguage(v)
		}
		parts = append(parts, strings.ToLower(h)+"="+v)
	}
	sort.Strings(parts)
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:8])
}

// normalizeLanguage canonicalizes an Accept-Language value to the BCP-47
// form of its highest-preference tag (e.g. "en-US") using
// golang.org/x/text/language, falling back to a
// lower-cased raw value if it fails to parse (malformed Accept-Language
// headers are common and must not crash variant resolution).
func normalizeLanguage(raw string) string {
	if raw == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return strings.ToLower(raw)
	}
	return tags[0].String()
}

// VariantMap tracks, per cache key, the set of variant suffixes stored so
// far, so PURGE and size accounting can enumerate every variant of a key.
type VariantMap struct {
	variants map[string]map[string]struct{}
}

func NewVariantMap() *VariantMap {
	return &VariantMap{variants: make(map[string]map[string]struct{})}
}

func (m *VariantMap) Record(key, variant string) {
	set, ok := m.variants[key]
	if !ok {
		set = make(map[string]struct{})
		m.variants[key] = set
	}
	set[variant] = struct{}{}
}

func (m *VariantMap) Variants(key string) []string {
	set := m.variants[key]
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	return out
}

func (m *VariantMap) Forget(key string) { delete(m.variants, key) }

// StorageKey joins a logical cache key and a variant suffix into the actual
// key used in the backing KV store, consistent whether or not the policy
// has any Vary headers.
func StorageKey(key, variant string) string {
	if variant == "" {
		return key
	}
	return key + "\x00v:" + variant
}
