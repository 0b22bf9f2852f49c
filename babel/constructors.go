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

// NewHello builds a Hello TLV with no sub-TLVs.
func NewHello(flags, seqno, interval uint16) Hello {
	return Hello{Flags: flags, Seqno: seqno, Interval: interval}
}

// NewIHU builds an IHU TLV, deriving AE from addr's family.
func NewIHU(rxcost, interval uint16, addr netip.Addr) IHU {
	ae := uint8(0)
	switch {
	case addr.Is4():
		ae = 1
	case addr.Is6():
		ae = 2
	}
	return IHU{AE: ae, RxCost: rxcost, Interval: interval, Addr: addr}
}

// NewRouterID builds a RouterId TLV.
func NewRouterID(id [8]byte) RouterID {
	return RouterID{RouterID: id}
}

// NewNextHop builds a NextHop TLV, deriving AE from addr's family.
func NewNextHop(addr netip.Addr) NextHop {
	ae := uint8(0)
	switch {
	case addr.Is4():
		ae = 1
	case addr.Is6():
		ae = 2
	}
	return NextHop{AE: ae, Addr: addr}
}

// NewUpdate builds an Update TLV.
func NewUpdate(ae, flags, plen, omitted uint8, interval, seqno, metric uint16, prefix []byte) Update {
	return Update{
		AE: ae, Flags: flags, PLen: plen, Omitted: omitted,
		Interval: interval, Seqno: seqno, Metric: metric, Prefix: prefix,
	}
}

// NewAckRequest builds an AckRequest TLV.
func NewAckRequest(opaque, interval uint16) AckRequest {
	return AckRequest{Opaque: opaque, Interval: interval}
}

// NewAck builds an Ack TLV.
func NewAck(opaque uint16) Ack {
	return Ack{Opaque: opaque}
}

// NewRouteRequest builds a RouteRequest TLV.
func NewRouteRequest(ae, plen uint8, prefix []byte) RouteRequest {
	return RouteRequest{AE: ae, PLen: plen, Prefix: prefix}
}

// NewSeqnoRequest builds a SeqnoRequest TLV.
func NewSeqnoRequest(ae, plen uint8, seqno uint16, hopCount uint8, routerID [8]byte, prefix []byte) SeqnoRequest {
	return SeqnoRequest{
		AE: ae, PLen: plen, Seqno: seqno, HopCount: hopCount,
		RouterID: routerID, Prefix: prefix,
	}
}
