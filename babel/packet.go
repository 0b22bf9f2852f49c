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
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

const (
	// Port is the well-known Babel UDP port.
	Port = 6696

	magicByte   = 0x2A
	versionByte = 0x02
)

// MulticastV4 and MulticastV6 are the Babel multicast groups.
var (
	MulticastV4 = netip.MustParseAddr("224.0.0.111")
	MulticastV6 = netip.MustParseAddr("ff02::6")
)

var ErrBodyLengthExceedsBuffer = errors.New("babel: body length exceeds buffer")

// Packet is an ordered list of TLVs framed with the Babel header.
type Packet struct {
	TLVs []TLV
}

func NewPacket(tlvs ...TLV) Packet {
	return Packet{TLVs: tlvs}
}

// ToBytes serializes the packet: magic, version, big-endian body length,
// then the concatenated TLV bytes.
func (p Packet) ToBytes() []byte {
	var body []byte
	for _, t := range p.TLVs {
		body = t.Encode(body)
	}
	buf := make([]byte, 0, 4+len(body))
	buf = append(buf, magicByte, versionByte)
	buf = appendU16(buf, uint16(len(body)))
	buf = append(buf, body...)
	return buf
}

// PacketFromBytes decodes a Packet, applying the lenient fallback: a
// buffer that doesn't begin with magic+version is parsed as a raw TLV
// body (see §9 of the design notes carried from the original behavior).
func PacketFromBytes(buf []byte) (Packet, error) {
	tlvSlice := buf
	if len(buf) >= 4 && buf[0] == magicByte && buf[1] == versionByte {
		bodyLen := int(ntohs(buf[2:4]))
		if 4+bodyLen > len(buf) {
			return Packet{}, ErrBodyLengthExceedsBuffer
		}
		tlvSlice = buf[4 : 4+bodyLen]
	}
	return Packet{TLVs: ParseAll(tlvSlice)}, nil
}

// Bind opens a plain UDP socket on addr.
func Bind(addr string) (*net.UDPConn, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	return net.ListenUDP("udp", udpAddr)
}

// BindMulticastV4 binds 0.0.0.0:6696, joins 224.0.0.111 on iface, and
// disables multicast loopback.
func BindMulticastV4(iface *net.Interface) (*net.UDPConn, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: Port})
	if err != nil {
		return nil, err
	}
	pc := ipv4.NewPacketConn(conn)
	group := net.UDPAddr{IP: MulticastV4.AsSlice()}
	if err := pc.JoinGroup(iface, &group); err != nil {
		conn.Close()
		return nil, err
	}
	if err := pc.SetMulticastLoopback(false); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// BindMulticastV6 binds [::]:6696 and joins ff02::6 on the given
// interface.
func BindMulticastV6(iface *net.Interface) (*net.UDPConn, error) {
	conn, err := net.ListenUDP("udp6", &net.UDPAddr{IP: net.IPv6unspecified, Port: Port})
	if err != nil {
		return nil, err
	}
	pc := ipv6.NewPacketConn(conn)
	group := net.UDPAddr{IP: MulticastV6.AsSlice()}
	if err := pc.JoinGroup(iface, &group); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// SendTo resolves addr and, for each resolved destination, opens a fresh
// wildcard-bound socket of the matching family and sends the packet.
// Returns the byte count on first success, or the last I/O error.
func SendTo(p Packet, addr string) (int, error) {
	buf := p.ToBytes()

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	port, err := net.LookupPort("udp", portStr)
	if err != nil {
		return 0, err
	}

	ips, err := net.DefaultResolver.LookupIPAddr(context.Background(), host)
	if err != nil {
		return 0, err
	}

	var lastErr error
	for _, ip := range ips {
		target := &net.UDPAddr{IP: ip.IP, Port: port, Zone: ip.Zone}

		network := "udp4"
		local := &net.UDPAddr{IP: net.IPv4zero, Port: 0}
		if target.IP.To4() == nil {
			network = "udp6"
			local = &net.UDPAddr{IP: net.IPv6unspecified, Port: 0}
		}

		n, err := sendOnce(network, local, target, buf)
		if err != nil {
			lastErr = err
			continue
		}
		return n, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("babel: no addresses resolved for %q", addr)
	}
	return 0, lastErr
}

func sendOnce(network string, local, target *net.UDPAddr, buf []byte) (int, error) {
	conn, err := net.DialUDP(network, local, target)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	return conn.Write(buf)
}

// Recv reads one datagram from conn and decodes it into TLVs plus the
// source address.
func Recv(conn *net.UDPConn, buf []byte) ([]TLV, netip.AddrPort, error) {
	n, srcAddr, err := conn.ReadFromUDPAddrPort(buf)
	if err != nil {
		return nil, netip.AddrPort{}, err
	}
	pkt, err := PacketFromBytes(buf[:n])
	if err != nil {
		return nil, srcAddr, fmt.Errorf("babel: invalid data from %s: %w", srcAddr, err)
	}
	return pkt.TLVs, srcAddr, nil
}
