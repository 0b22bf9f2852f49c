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
	"testing"

	"github.com/google/go-cmp/cmp"
)

// addrComparer lets cmp.Diff compare netip.Addr values: the type has only
// unexported fields and no Equal method, so go-cmp panics on it by default.
var addrComparer = cmp.Comparer(func(a, b netip.Addr) bool { return a == b })

func byteSliceEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestHelloEncode(t *testing.T) {
	h := Hello{Flags: 0, Seqno: 278, Interval: 400}
	got := Encode(h)
	want := []byte{0x04, 0x06, 0x00, 0x00, 0x01, 0x16, 0x01, 0x90}
	if !byteSliceEqual(got, want) {
		t.Fatalf("Hello encode = %x, want %x", got, want)
	}
}

func TestAckRequestEncode(t *testing.T) {
	a := AckRequest{Opaque: 278, Interval: 400}
	got := Encode(a)
	want := []byte{0x02, 0x06, 0x00, 0x00, 0x01, 0x16, 0x01, 0x90}
	if !byteSliceEqual(got, want) {
		t.Fatalf("AckRequest encode = %x, want %x", got, want)
	}
}

func TestPadNEncode(t *testing.T) {
	p := PadN{N: 4}
	got := Encode(p)
	want := []byte{0x01, 0x04, 0x00, 0x00, 0x00, 0x00}
	if !byteSliceEqual(got, want) {
		t.Fatalf("PadN encode = %x, want %x", got, want)
	}
}

func TestUpdateRoundTrip(t *testing.T) {
	u := Update{
		AE: 1, PLen: 24, Omitted: 0,
		Interval: 500, Seqno: 10, Metric: 256,
		Prefix: []byte{192, 0, 2},
	}
	buf := Encode(u)
	got, n, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("consumed %d, want %d", n, len(buf))
	}
	if diff := cmp.Diff(u, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestPad1RoundTrip(t *testing.T) {
	buf := Encode(Pad1{})
	if !byteSliceEqual(buf, []byte{0}) {
		t.Fatalf("Pad1 encode = %x", buf)
	}
	got, n, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if n != 1 {
		t.Fatalf("consumed %d, want 1", n)
	}
	if _, ok := got.(Pad1); !ok {
		t.Fatalf("got %T, want Pad1", got)
	}
}

func TestIHURoundTripWithAddress(t *testing.T) {
	addr := netip.MustParseAddr("192.0.2.1")
	ihu := IHU{AE: 1, RxCost: 128, Interval: 4000, Addr: addr}
	buf := Encode(ihu)
	got, n, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("consumed %d, want %d", n, len(buf))
	}
	if diff := cmp.Diff(ihu, got, addrComparer); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestIHUAbsentAddress(t *testing.T) {
	ihu := IHU{AE: 0, RxCost: 128, Interval: 4000}
	buf := Encode(ihu)
	got, _, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	parsed := got.(IHU)
	if parsed.Addr.IsValid() {
		t.Fatalf("expected absent address, got %v", parsed.Addr)
	}
}

func TestUnknownTypeRoundTripByteIdentical(t *testing.T) {
	u := Unknown{TLVType: 99, Data: []byte{1, 2, 3, 4}}
	buf := Encode(u)
	want := []byte{99, 4, 1, 2, 3, 4}
	if !byteSliceEqual(buf, want) {
		t.Fatalf("Unknown encode = %x, want %x", buf, want)
	}
	got, n, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("consumed %d, want %d", n, len(buf))
	}
	if diff := cmp.Diff(u, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSeqnoRequestRoundTrip(t *testing.T) {
	sr := SeqnoRequest{
		AE: 1, PLen: 32, Seqno: 7, HopCount: 2,
		RouterID: [8]byte{1, 2, 3, 4, 5, 6, 7, 8},
		Prefix:   []byte{10, 0, 0, 1},
	}
	buf := Encode(sr)
	got, n, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("consumed %d, want %d", n, len(buf))
	}
	if diff := cmp.Diff(sr, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParseAllStopsOnTruncation(t *testing.T) {
	buf := []byte{0, 0, 4, 9, 9} // Pad1, Pad1, then a truncated TLV
	tlvs := ParseAll(buf)
	if len(tlvs) != 2 {
		t.Fatalf("got %d tlvs, want 2", len(tlvs))
	}
}

func TestParseShortBufferError(t *testing.T) {
	_, _, err := Parse([]byte{4, 10, 0, 0})
	if err == nil {
		t.Fatalf("expected error for truncated TLV")
	}
}

func TestSubTLVRoundTrip(t *testing.T) {
	h := Hello{Flags: 0, Seqno: 1, Interval: 4000, Sub: []SubTLV{
		SubPad1{},
		SubPadN{N: 2},
		SubUnknown{SType: 5, Data: []byte{9, 9}},
	}}
	buf := Encode(h)
	got, _, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := cmp.Diff(h, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestAckRoundTrip(t *testing.T) {
	a := Ack{Opaque: 42}
	buf := Encode(a)
	got, n, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("consumed %d, want %d", n, len(buf))
	}
	if diff := cmp.Diff(a, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestAckRequestRoundTrip(t *testing.T) {
	a := AckRequest{Opaque: 278, Interval: 400}
	buf := Encode(a)
	got, n, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("consumed %d, want %d", n, len(buf))
	}
	if diff := cmp.Diff(a, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRouteRequestRoundTrip(t *testing.T) {
	r := RouteRequest{AE: 1, PLen: 24, Prefix: []byte{192, 0, 2}}
	buf := Encode(r)
	got, n, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("consumed %d, want %d", n, len(buf))
	}
	if diff := cmp.Diff(r, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestNextHopRoundTrip(t *testing.T) {
	nh := NextHop{AE: 1, Addr: netip.MustParseAddr("192.0.2.1")}
	buf := Encode(nh)
	got, n, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("consumed %d, want %d", n, len(buf))
	}
	if diff := cmp.Diff(nh, got, addrComparer); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRouterIDRoundTrip(t *testing.T) {
	r := RouterID{RouterID: [8]byte{1, 2, 3, 4, 5, 6, 7, 8}}
	buf := Encode(r)
	got, n, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("consumed %d, want %d", n, len(buf))
	}
	if diff := cmp.Diff(r, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}
