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

import "testing"

func testKey() RouteKey {
	return NewRouteKey(1, 24, []byte{192, 0, 2})
}

func TestBestRouteLowerMetricWins(t *testing.T) {
	tbl := NewRoutingTable()
	key := testKey()

	tbl.InstallOrUpdate(Route{Key: key, Metric: 200, Seqno: 1, RouterID: [8]byte{1}})
	tbl.InstallOrUpdate(Route{Key: key, Metric: 100, Seqno: 1, RouterID: [8]byte{2}})

	best, ok := tbl.BestRoute(key)
	if !ok || best.Metric != 100 {
		t.Fatalf("best metric = %d, want 100", best.Metric)
	}
}

func TestBestRouteTieBreaksOnHigherSeqno(t *testing.T) {
	tbl := NewRoutingTable()
	key := testKey()

	tbl.InstallOrUpdate(Route{Key: key, Metric: 100, Seqno: 1, RouterID: [8]byte{1}})
	tbl.InstallOrUpdate(Route{Key: key, Metric: 100, Seqno: 5, RouterID: [8]byte{2}})

	best, ok := tbl.BestRoute(key)
	if !ok || best.Seqno != 5 {
		t.Fatalf("best seqno = %d, want 5", best.Seqno)
	}
}

func TestInstallOrUpdateReturnsFalseWhenWorse(t *testing.T) {
	tbl := NewRoutingTable()
	key := testKey()
	rid := [8]byte{1}

	if changed := tbl.InstallOrUpdate(Route{Key: key, Metric: 100, Seqno: 5, RouterID: rid}); !changed {
		t.Fatalf("expected first install to change the table")
	}
	if changed := tbl.InstallOrUpdate(Route{Key: key, Metric: 200, Seqno: 1, RouterID: rid}); changed {
		t.Fatalf("expected strictly worse update (same identity) to be rejected")
	}
}

func TestInstallOrUpdateDistinctIdentitiesCoexist(t *testing.T) {
	tbl := NewRoutingTable()
	key := testKey()

	tbl.InstallOrUpdate(Route{Key: key, Metric: 100, Seqno: 1, RouterID: [8]byte{1}})
	tbl.InstallOrUpdate(Route{Key: key, Metric: 200, Seqno: 1, RouterID: [8]byte{2}})

	if got := len(tbl.RoutesFor(key)); got != 2 {
		t.Fatalf("routes_for = %d, want 2 (different router_id makes a distinct entry)", got)
	}
}

func TestRemoveByRouter(t *testing.T) {
	tbl := NewRoutingTable()
	key := testKey()
	rid := [8]byte{9}

	tbl.InstallOrUpdate(Route{Key: key, Metric: 100, Seqno: 1, RouterID: rid})
	tbl.InstallOrUpdate(Route{Key: key, Metric: 200, Seqno: 1, RouterID: [8]byte{8}})

	removed := tbl.RemoveByRouter(rid)
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, ok := tbl.BestRoute(key); !ok {
		t.Fatalf("expected the other router's route to remain")
	}
}

func TestBestRouteNoMatch(t *testing.T) {
	tbl := NewRoutingTable()
	if _, ok := tbl.BestRoute(testKey()); ok {
		t.Fatalf("expected no match on empty table")
	}
}
