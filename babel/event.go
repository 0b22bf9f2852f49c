/*
 * babeld. Copyright (C) 2021-present
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License along
 * with this program; if not, write to the Free Software Foundation, Inc.,
 * 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */

package babel

import "net/netip"

// Event is one of the four change notifications a Node accumulates during
// poll and hands back via DrainEvents.
type Event interface {
	eventTag()
}

// NeighborUp fires the first time a Hello is seen from a previously-absent
// neighbor.
type NeighborUp struct {
	Addr     netip.AddrPort
	Neighbor Neighbor
}

// NeighborDown fires when a neighbor is pruned for staleness.
type NeighborDown struct {
	Addr netip.AddrPort
}

// RouteUpdated fires whenever install_or_update changes the table for key.
type RouteUpdated struct {
	Key   RouteKey
	Route Route
}

// BestRouteChanged fires when the best route for key differs from before
// the triggering Update was processed.
type BestRouteChanged struct {
	Key   RouteKey
	Route Route
}

func (NeighborUp) eventTag()       {}
func (NeighborDown) eventTag()     {}
func (RouteUpdated) eventTag()     {}
func (BestRouteChanged) eventTag() {}
