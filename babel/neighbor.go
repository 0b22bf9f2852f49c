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
	"net/netip"
	"time"
)

// Neighbor is one record of a peer heard on an attached link.
type Neighbor struct {
	Addr       netip.AddrPort
	IfaceIndex uint32

	LastHelloSeqno  uint16
	HaveHelloSeqno  bool
	HelloIntervalMS uint16
	HaveInterval    bool
	HelloHistory    uint16

	LastHelloRx time.Time
	LastIHURx   time.Time

	RxCost    uint16
	HaveRxCost bool
	TxCost    uint16
	HaveTxCost bool
}

func newNeighbor(addr netip.AddrPort, iface uint32) *Neighbor {
	return &Neighbor{Addr: addr, IfaceIndex: iface}
}

// noteHello records a received Hello: seqno, interval, timestamp, and
// shifts the reception history left, setting the new low bit.
func (n *Neighbor) noteHello(seqno, intervalMS uint16, now time.Time) {
	n.LastHelloSeqno = seqno
	n.HaveHelloSeqno = true
	n.HelloIntervalMS = intervalMS
	n.HaveInterval = true
	n.LastHelloRx = now
	n.HelloHistory = (n.HelloHistory << 1) | 1
}

// noteIHU records a received IHU's advertised receive cost.
func (n *Neighbor) noteIHU(rxcost uint16, now time.Time) {
	n.RxCost = rxcost
	n.HaveRxCost = true
	n.LastIHURx = now
}

func (n *Neighbor) setTxCost(txcost uint16) {
	n.TxCost = txcost
	n.HaveTxCost = true
}

// LinkCost is max(rx, tx) when both are known, whichever is known when
// only one is, and undefined (false) otherwise.
func (n *Neighbor) LinkCost() (uint16, bool) {
	switch {
	case n.HaveRxCost && n.HaveTxCost:
		if n.RxCost > n.TxCost {
			return n.RxCost, true
		}
		return n.TxCost, true
	case n.HaveRxCost:
		return n.RxCost, true
	case n.HaveTxCost:
		return n.TxCost, true
	default:
		return 0, false
	}
}

// IsReachable reports whether any of the low min(window,16) bits of the
// Hello history are set.
func (n *Neighbor) IsReachable(window uint8) bool {
	k := window
	if k > 16 {
		k = 16
	}
	var mask uint16
	if k == 16 {
		mask = 0xFFFF
	} else {
		mask = (uint16(1) << k) - 1
	}
	return n.HelloHistory&mask != 0
}

// IsStale reports whether it has been longer than hello_interval*multiplier
// since the last Hello. A neighbor that has never received a Hello is
// never stale.
func (n *Neighbor) IsStale(now time.Time, multiplier uint32) bool {
	if n.LastHelloRx.IsZero() {
		return false
	}
	base := uint64(n.HelloIntervalMS)
	if !n.HaveInterval {
		base = 4000
	}
	maxSilence := time.Duration(base*uint64(multiplier)) * time.Millisecond
	return now.Sub(n.LastHelloRx) > maxSilence
}

// NeighborTable maps source address to Neighbor, one record per source
// address; the interface index recorded is the one given when the record
// was created.
type NeighborTable struct {
	neighbors map[netip.AddrPort]*Neighbor
}

func NewNeighborTable() *NeighborTable {
	return &NeighborTable{neighbors: make(map[netip.AddrPort]*Neighbor)}
}

func (t *NeighborTable) All() []*Neighbor {
	out := make([]*Neighbor, 0, len(t.neighbors))
	for _, n := range t.neighbors {
		out = append(out, n)
	}
	return out
}

func (t *NeighborTable) Get(addr netip.AddrPort) (*Neighbor, bool) {
	n, ok := t.neighbors[addr]
	return n, ok
}

func (t *NeighborTable) ensure(addr netip.AddrPort, iface uint32) *Neighbor {
	n, ok := t.neighbors[addr]
	if !ok {
		n = newNeighbor(addr, iface)
		t.neighbors[addr] = n
	}
	return n
}

// OnHello creates the neighbor record if absent and applies Hello state.
// Returns the neighbor and whether it was newly created.
func (t *NeighborTable) OnHello(addr netip.AddrPort, iface uint32, seqno, intervalMS uint16, now time.Time) (*Neighbor, bool) {
	_, existed := t.neighbors[addr]
	n := t.ensure(addr, iface)
	n.noteHello(seqno, intervalMS, now)
	return n, !existed
}

// OnIHU creates the neighbor record if absent and applies IHU state.
func (t *NeighborTable) OnIHU(addr netip.AddrPort, iface uint32, rxcost uint16, now time.Time) *Neighbor {
	n := t.ensure(addr, iface)
	n.noteIHU(rxcost, now)
	return n
}

// SetTxCost creates the neighbor record if absent and records our
// transmit cost toward it.
func (t *NeighborTable) SetTxCost(addr netip.AddrPort, iface uint32, txcost uint16) {
	n := t.ensure(addr, iface)
	n.setTxCost(txcost)
}

// PruneStale removes every neighbor whose silence exceeds
// hello_interval*multiplier and returns the addresses removed.
func (t *NeighborTable) PruneStale(now time.Time, multiplier uint32) []netip.AddrPort {
	var removed []netip.AddrPort
	for addr, n := range t.neighbors {
		if n.IsStale(now, multiplier) {
			removed = append(removed, addr)
			delete(t.neighbors, addr)
		}
	}
	return removed
}
