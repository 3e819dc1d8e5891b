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
	"strings"
)

// Rule binds a URL template (spec.md §4.10's "{param}" placeholder syntax)
// to a Policy. Command-level tag overrides are not stored on the Rule;
// CACHE.PROXY passes them to ResolveTags, which applies them on top of
// whatever the matched rule's own Tags say — the
// decision recorded in DESIGN.md's Open Question log: explicit per-call
// tags from CACHE.PROXY always win over the policy's static tags, since the
// caller has more specific knowledge of what the response depends on.
type Rule struct {
	Name        string
	URLTemplate string
	Policy      Policy
}

// PolicyTable matches incoming request URLs against an ordered list of
// Rules, first match wins — the same "first declarative rule wins"
// resolution order spec.md §4.10 specifies for policy matching.
type PolicyTable struct {
	rules []Rule
}

func NewPolicyTable() *PolicyTable { return &PolicyTable{} }

func (t *PolicyTable) Add(r Rule) { t.rules = append(t.rules, r) }

// Match finds the first rule whose URLTemplate matches url, returning the
// resolved Policy and the path parameters extracted from the template
// placeholders (e.g. "/users/{id}" against "/users/42" yields {"id": "42"}).
func (t *PolicyTable) Match(url string) (*Policy, map[string]string, bool) {
	for _, r := range t.rules {
		if params, ok := matchTemplate(r.URLTemplate, url); ok {
			p := r.Policy
			return &p, params, true
		}
	}
	return nil, nil, false
}

// matchTemplate matches a "{param}" URL template against a concrete path,
// segment by segment.
func matchTemplate(template, url string) (map[string]string, bool) {
	tSegs := strings.Split(strings.Trim(template, "/"), "/")
	uSegs := strings.Split(strings.Trim(url, "/"), "/")
	if len(tSegs) != len(uSegs) {
		return nil, false
	}
	params := make(map[string]string)
	for i, t := range tSegs {
		if strings.HasPrefix(t, "{") && strings.HasSuffix(t, "}") {
			params[t[1:len(t)-1]] = uSegs[i]
			continue
		}
		if t != uSegs[i] {
			return nil, false
		}
	}
	return params, true
}

// ResolveTags merges a rule's static tags with call-specific override tags
// from CACHE.PROXY; overrides entirely replace the rule's tags when
// non-empty (see the Rule doc comment's Open Question resolution).
func ResolveTags(ruleTags, overrideTags []string) []string {
	if len(overrideTags) > 0 {
		return overrideTags
	}
	return ruleTags
}

// InterpolateTemplate substitutes "{param}" placeholders in template with
// values from params, used to build the origin-fetch URL from a matched
// rule and its path parameters.
func InterpolateTemplate(template string, params map[string]string) string {
	out := template
	for k, v := range params {
		out = strings.ReplaceAll(out, "{"+k+"}", v)
	}
	return out
}
