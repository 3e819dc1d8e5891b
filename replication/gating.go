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
package replication

import "fmt"

// CheckMinReplicas implements min-replicas-to-write: a write is refused if
// fewer than minReplicas are currently attached, per spec.md §4.9. Replica
// lag (min-replicas-max-lag) is not checked: no per-replica acknowledged
// offset is recorded anywhere.
func (r *Registry) CheckMinReplicas(minReplicas int) error {
	if minReplicas <= 0 {
		return nil
	}
	if r.Count() < minReplicas {
		return fmt.Errorf("NOREPLICAS Not enough good replicas to write")
	}
	return nil
}
