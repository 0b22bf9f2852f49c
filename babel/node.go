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
	"net"
	"net/netip"
	"strconv"
	"time"

	baballog "github.com/tinynet/babeld/log"
)

// staleMultiplier is the neighbor-table pruning multiplier the node uses,
// per §4.3.
const staleMultiplier = 3

// fixedIHURxCost is the hardcoded rxcost the node advertises in IHU TLVs
// (see Open Question 4: a real implementation would derive it from the
// hello-history bitmap).
const fixedIHURxCost = 256

// AdvertisedPrefix is one statically originated local prefix.
type AdvertisedPrefix struct {
	AE     uint8
	PLen   uint8
	Prefix []byte
	Metric uint16
}

// NodeConfig configures a Node's timers and originated prefixes.
type NodeConfig struct {
	HelloIntervalMS   uint16
	IHUIntervalMS     uint16
	UpdateIntervalMS  uint16
	AdvertisedPrefixes []AdvertisedPrefix
}

// DefaultNodeConfig returns the configuration defaults from §6.
func DefaultNodeConfig() NodeConfig {
	return NodeConfig{
		HelloIntervalMS:  4000,
		IHUIntervalMS:    4000,
		UpdateIntervalMS: 10000,
	}
}

type sourceInfo struct {
	routerID    [8]byte
	haveRouter  bool
	nextHop     netip.Addr
}

type timer struct {
	interval time.Duration
	last     time.Time
	fired    bool
}

func (t *timer) due(now time.Time) bool {
	return !t.fired || now.Sub(t.last) >= t.interval
}

func (t *timer) fire(now time.Time) {
	t.fired = true
	t.last = now
}

// Node owns a UDP socket, identity, timers, and the neighbor/routing
// tables, and is driven by repeated calls to Poll.
type Node struct {
	conn       *net.UDPConn
	ifaceIndex uint32

	routerID [8]byte
	seqno    uint16

	helloTimer  timer
	ihuTimer    timer
	updateTimer timer

	prefixes []AdvertisedPrefix

	neighbors *NeighborTable
	routes    *RoutingTable
	sources   map[netip.AddrPort]*sourceInfo

	events []Event

	log baballog.Logger

	now func() time.Time
}

// NewV4Multicast joins IPv4 multicast on iface, installs the configured
// advertised prefixes as local routes, and emits RouteUpdated +
// BestRouteChanged for each one.
func NewV4Multicast(iface *net.Interface, ifaceIndex uint32, routerID [8]byte, cfg NodeConfig, logger baballog.Logger) (*Node, error) {
	conn, err := BindMulticastV4(iface)
	if err != nil {
		return nil, err
	}

	n := &Node{
		conn:       conn,
		ifaceIndex: ifaceIndex,
		routerID:   routerID,
		seqno:      1,
		neighbors:  NewNeighborTable(),
		routes:     NewRoutingTable(),
		sources:    make(map[netip.AddrPort]*sourceInfo),
		log:        baballog.Or(logger),
		now:        time.Now,
	}
	n.helloTimer.interval = time.Duration(cfg.HelloIntervalMS) * time.Millisecond
	n.ihuTimer.interval = time.Duration(cfg.IHUIntervalMS) * time.Millisecond
	n.updateTimer.interval = time.Duration(cfg.UpdateIntervalMS) * time.Millisecond
	n.prefixes = cfg.AdvertisedPrefixes

	for _, p := range n.prefixes {
		key := NewRouteKey(p.AE, p.PLen, p.Prefix)
		route := Route{Key: key, Metric: p.Metric, Seqno: n.seqno, RouterID: routerID, IfaceIndex: ifaceIndex}
		n.routes.InstallOrUpdate(route)
		n.events = append(n.events, RouteUpdated{Key: key, Route: route})
		n.events = append(n.events, BestRouteChanged{Key: key, Route: route})
	}

	return n, nil
}

func (n *Node) RouterID() [8]byte { return n.routerID }
func (n *Node) Seqno() uint16     { return n.seqno }

func (n *Node) Routes() []Route          { return n.routes.All() }
func (n *Node) BestRoute(k RouteKey) (Route, bool) { return n.routes.BestRoute(k) }
func (n *Node) Neighbors() []*Neighbor   { return n.neighbors.All() }

// Close releases the node's socket.
func (n *Node) Close() error { return n.conn.Close() }

// DrainEvents returns and clears the accumulated event queue in FIFO
// order.
func (n *Node) DrainEvents() []Event {
	ev := n.events
	n.events = nil
	return ev
}

// Poll performs one finite unit of work: fires due send timers, attempts
// one non-blocking receive and dispatches it, then prunes stale
// neighbors.
func (n *Node) Poll() error {
	now := n.now()

	n.maybeSendHello(now)
	n.maybeSendIHU(now)
	n.maybeSendUpdate(now)

	if err := n.recvOnce(now); err != nil {
		return err
	}

	removed := n.neighbors.PruneStale(now, staleMultiplier)
	for _, addr := range removed {
		n.log.Notice("neighbor pruned as stale", baballog.KV{"addr": addr.String()})
		n.events = append(n.events, NeighborDown{Addr: addr})
	}

	return nil
}

func (n *Node) maybeSendHello(now time.Time) {
	if !n.helloTimer.due(now) {
		return
	}
	n.helloTimer.fire(now)

	interval := saturateU16(n.helloTimer.interval.Milliseconds())
	hello := NewHello(0, n.seqno, interval)
	pkt := NewPacket(hello)
	dest := net.JoinHostPort(MulticastV4.String(), strconv.Itoa(Port))
	if _, err := SendTo(pkt, dest); err != nil {
		n.log.Warn("hello send failed", baballog.KV{"error": err.Error()})
	}
	n.seqno++
}

func (n *Node) maybeSendIHU(now time.Time) {
	if !n.ihuTimer.due(now) {
		return
	}
	n.ihuTimer.fire(now)

	neighbors := n.neighbors.All()
	if len(neighbors) == 0 {
		return
	}
	interval := saturateU16(n.ihuTimer.interval.Milliseconds())
	for _, nb := range neighbors {
		ihu := NewIHU(fixedIHURxCost, interval, nb.Addr.Addr())
		pkt := NewPacket(ihu)
		if _, err := SendTo(pkt, nb.Addr.String()); err != nil {
			n.log.Warn("ihu send failed", baballog.KV{"addr": nb.Addr.String(), "error": err.Error()})
		}
	}
}

func (n *Node) maybeSendUpdate(now time.Time) {
	if !n.updateTimer.due(now) {
		return
	}
	n.updateTimer.fire(now)

	if len(n.prefixes) == 0 {
		return
	}
	interval := saturateU16(n.updateTimer.interval.Milliseconds())
	dest := net.JoinHostPort(MulticastV4.String(), strconv.Itoa(Port))
	for _, p := range n.prefixes {
		update := NewUpdate(p.AE, 0, p.PLen, 0, interval, n.seqno, p.Metric, p.Prefix)
		pkt := NewPacket(update)
		if _, err := SendTo(pkt, dest); err != nil {
			n.log.Warn("update send failed", baballog.KV{"error": err.Error()})
		}
	}
	n.seqno++
}

// recvOnce attempts a single non-blocking receive (via an immediate read
// deadline) and dispatches any TLVs found.
func (n *Node) recvOnce(now time.Time) error {
	if err := n.conn.SetReadDeadline(now); err != nil {
		return err
	}

	buf := make([]byte, 1500)
	tlvs, src, err := Recv(n.conn, buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil
		}
		n.log.Warn("datagram dropped", baballog.KV{"error": err.Error()})
		return nil
	}

	n.dispatch(src, tlvs, now)
	return nil
}

func (n *Node) sourceInfoFor(src netip.AddrPort) *sourceInfo {
	s, ok := n.sources[src]
	if !ok {
		s = &sourceInfo{}
		n.sources[src] = s
	}
	return s
}

// dispatch processes each TLV from src in wire order, per §4.5.
func (n *Node) dispatch(src netip.AddrPort, tlvs []TLV, now time.Time) {
	for _, t := range tlvs {
		switch v := t.(type) {
		case Hello:
			_, isNew := n.neighbors.OnHello(src, n.ifaceIndex, v.Seqno, v.Interval, now)
			if isNew {
				nb, _ := n.neighbors.Get(src)
				n.events = append(n.events, NeighborUp{Addr: src, Neighbor: *nb})
			}

		case IHU:
			n.neighbors.OnIHU(src, n.ifaceIndex, v.RxCost, now)

		case RouterID:
			n.sourceInfoFor(src).routerID = v.RouterID
			n.sourceInfoFor(src).haveRouter = true

		case NextHop:
			addr := v.Addr
			if !addr.IsValid() {
				addr = src.Addr()
			}
			n.sourceInfoFor(src).nextHop = addr

		case Update:
			n.dispatchUpdate(src, v)

		case RouteRequest, SeqnoRequest, Ack, AckRequest, Pad1, PadN, Unknown:
			// ignored, per §4.5

		default:
			_ = v
		}
	}
}

func (n *Node) dispatchUpdate(src netip.AddrPort, u Update) {
	info := n.sourceInfoFor(src)
	if !info.haveRouter {
		n.log.Notice("update dropped: no router-id seen for source", baballog.KV{"src": src.String()})
		return
	}

	nextHop := info.nextHop
	if !nextHop.IsValid() {
		nextHop = src.Addr()
	}

	key := NewRouteKey(u.AE, u.PLen, u.Prefix)
	oldBest, hadOld := n.routes.BestRoute(key)

	route := Route{
		Key: key, Metric: u.Metric, Seqno: u.Seqno,
		RouterID: info.routerID, NextHop: nextHop, IfaceIndex: n.ifaceIndex,
	}

	if !n.routes.InstallOrUpdate(route) {
		return
	}

	best, _ := n.routes.BestRoute(key)
	n.events = append(n.events, RouteUpdated{Key: key, Route: best})

	changed := !hadOld ||
		oldBest.Metric != best.Metric ||
		oldBest.Seqno != best.Seqno ||
		oldBest.RouterID != best.RouterID ||
		oldBest.NextHop != best.NextHop
	if changed {
		n.events = append(n.events, BestRouteChanged{Key: key, Route: best})
	}
}

func saturateU16(ms int64) uint16 {
	if ms > 0xFFFF {
		return 0xFFFF
	}
	return uint16(ms)
}

