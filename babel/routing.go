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

import (
	"fmt"
	"net/netip"
)

// RouteKey identifies a prefix: address encoding, prefix length, and the
// prefix bytes as given. Omitted bytes of an Update are not reconstructed,
// so a key built from an Update with Omitted > 0 holds only the bytes that
// were transmitted.
type RouteKey struct {
	AE     uint8
	PLen   uint8
	Prefix string // raw prefix bytes, held as a string so RouteKey is comparable
}

// NewRouteKey builds a RouteKey from raw prefix bytes.
func NewRouteKey(ae, plen uint8, prefix []byte) RouteKey {
	return RouteKey{AE: ae, PLen: plen, Prefix: string(prefix)}
}

func (k RouteKey) PrefixBytes() []byte { return []byte(k.Prefix) }

// Route is one path to a RouteKey, learned via Update.
type Route struct {
	Key        RouteKey
	Metric     uint16
	Seqno      uint16
	RouterID   [8]byte
	NextHop    netip.Addr // IsValid() false => none
	IfaceIndex uint32
}

// String renders a short debugging summary, the Go analogue of the
// original crate's Route::summary().
func (r Route) String() string {
	nh := "<none>"
	if r.NextHop.IsValid() {
		nh = r.NextHop.String()
	}
	return fmt.Sprintf("ae=%d plen=%d metric=%d seqno=%d router_id=%02x nexthop=%s iface=%d",
		r.Key.AE, r.Key.PLen, r.Metric, r.Seqno, r.RouterID, nh, r.IfaceIndex)
}

// sameIdentity reports whether r and o share the (key, router_id,
// next_hop, iface) tuple that uniquely identifies a route entry.
func (r Route) sameIdentity(o Route) bool {
	return r.Key == o.Key &&
		r.RouterID == o.RouterID &&
		r.NextHop == o.NextHop &&
		r.IfaceIndex == o.IfaceIndex
}

// isBetter reports whether new strictly improves on old: lower metric, or
// equal metric with a higher seqno.
func isBetter(new, old Route) bool {
	if new.Metric < old.Metric {
		return true
	}
	if new.Metric > old.Metric {
		return false
	}
	return new.Seqno > old.Seqno
}

// RoutingTable is a naive, slice-backed collection of Routes with
// metric-then-seqno best-path selection. Kept as a slice (not a map)
// because RouteKey's sibling entries are disambiguated by a secondary
// tuple, matching the upstream design's Vec<Route>.
type RoutingTable struct {
	routes []Route
}

func NewRoutingTable() *RoutingTable {
	return &RoutingTable{}
}

// All returns every entry in the table.
func (t *RoutingTable) All() []Route {
	return t.routes
}

// RoutesFor returns every entry matching key.
func (t *RoutingTable) RoutesFor(key RouteKey) []Route {
	var out []Route
	for _, r := range t.routes {
		if r.Key == key {
			out = append(out, r)
		}
	}
	return out
}

// BestRoute returns the lowest-metric entry for key, breaking ties by the
// highest seqno. The zero Route and false are returned when nothing matches.
func (t *RoutingTable) BestRoute(key RouteKey) (Route, bool) {
	var best Route
	found := false
	for _, r := range t.routes {
		if r.Key != key {
			continue
		}
		if !found || isBetter(r, best) {
			best = r
			found = true
		}
	}
	return best, found
}

// InstallOrUpdate installs new, or replaces the existing entry sharing its
// identifying tuple if new is strictly better. Reports whether the table
// changed.
func (t *RoutingTable) InstallOrUpdate(new Route) bool {
	for i, r := range t.routes {
		if r.sameIdentity(new) {
			if isBetter(new, r) {
				t.routes[i] = new
				return true
			}
			return false
		}
	}
	t.routes = append(t.routes, new)
	return true
}

// RemoveByRouter drops every entry with the given router-id, returning the
// number removed.
func (t *RoutingTable) RemoveByRouter(routerID [8]byte) int {
	kept := t.routes[:0]
	removed := 0
	for _, r := range t.routes {
		if r.RouterID == routerID {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	t.routes = kept
	return removed
}
