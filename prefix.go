package patricia

import (
	"fmt"
	"math/bits"
	"net/netip"
	"strconv"
	"strings"
)

// Prefix is an immutable IPv4 address block: an address and the count of
// its significant bits. Bits beyond Bitlen are carried verbatim but
// ignored by every comparison, they are neither masked nor assumed zero.
type Prefix struct {
	addr   [4]byte
	bitlen uint8
}

// Make constructs a prefix from addr with bitlen significant bits.
func Make(addr [4]byte, bitlen int) (Prefix, error) {
	if bitlen < 0 || bitlen > MaxBits {
		return Prefix{}, fmt.Errorf("%w: %d", ErrInvalidLength, bitlen)
	}
	return Prefix{addr: addr, bitlen: uint8(bitlen)}, nil
}

// ParseCIDR parses "a.b.c.d/n". A missing "/n" defaults to the full
// address width, i.e. an exact host match.
func ParseCIDR(s string) (Prefix, error) {
	addrPart, lenPart, found := strings.Cut(s, "/")

	bitlen := MaxBits
	if found {
		n, err := strconv.Atoi(lenPart)
		if err != nil {
			return Prefix{}, fmt.Errorf("%w: bad prefix length in %q", ErrParse, s)
		}
		if n < 0 || n > MaxBits {
			return Prefix{}, fmt.Errorf("%w: %d in %q", ErrInvalidLength, n, s)
		}
		bitlen = n
	}

	ip, err := netip.ParseAddr(addrPart)
	if err != nil || !ip.Is4() {
		return Prefix{}, fmt.Errorf("%w: %q is not an IPv4 address", ErrParse, addrPart)
	}

	return Prefix{addr: ip.As4(), bitlen: uint8(bitlen)}, nil
}

// FromNetip converts a netip.Prefix.
func FromNetip(p netip.Prefix) (Prefix, error) {
	if !p.IsValid() || !p.Addr().Is4() {
		return Prefix{}, fmt.Errorf("%w: %v is not an IPv4 prefix", ErrParse, p)
	}
	return Prefix{addr: p.Addr().As4(), bitlen: uint8(p.Bits())}, nil
}

// FromAddr returns the host prefix ip/32.
func FromAddr(ip netip.Addr) (Prefix, error) {
	if !ip.Is4() {
		return Prefix{}, fmt.Errorf("%w: %v is not an IPv4 address", ErrParse, ip)
	}
	return Prefix{addr: ip.As4(), bitlen: MaxBits}, nil
}

// Bitlen returns the number of significant bits.
func (p Prefix) Bitlen() int { return int(p.bitlen) }

// Addr returns the address part, including any bits beyond Bitlen.
func (p Prefix) Addr() netip.Addr { return netip.AddrFrom4(p.addr) }

// Netip returns the prefix as a masked netip.Prefix.
func (p Prefix) Netip() netip.Prefix {
	return netip.PrefixFrom(p.Addr(), int(p.bitlen)).Masked()
}

// Masked returns p with all bits beyond Bitlen cleared.
func (p Prefix) Masked() Prefix {
	var m Prefix
	m.bitlen = p.bitlen
	n := p.bitlen / 8
	copy(m.addr[:n], p.addr[:n])
	if r := p.bitlen % 8; r != 0 {
		m.addr[n] = p.addr[n] & (0xff << (8 - r))
	}
	return m
}

// String returns the canonical form "address/bitlen" with the address
// as supplied, not masked.
func (p Prefix) String() string {
	return p.Addr().String() + "/" + strconv.Itoa(int(p.bitlen))
}

// Equal reports exact equality: same bitlen and same significant bits,
// the final partial byte masked before comparison.
func (p Prefix) Equal(o Prefix) bool {
	return p.bitlen == o.bitlen && maskedEqual(p.addr, o.addr, int(p.bitlen))
}

// Covers reports whether p's significant bits equal o's bits truncated
// to p.Bitlen, i.e. the block p contains the block o.
func (p Prefix) Covers(o Prefix) bool {
	return int(p.bitlen) <= int(o.bitlen) && maskedEqual(p.addr, o.addr, int(p.bitlen))
}

// bitAt returns the bit at index i, 0 is the most significant bit.
// Callers never probe at or beyond the address width.
func (p Prefix) bitAt(i int) uint8 {
	return addrBit(p.addr, i)
}

func addrBit(a [4]byte, i int) uint8 {
	return a[i>>3] >> (7 - i&7) & 1
}

// maskedEqual compares the first n bits of a and b: whole bytes first,
// then the partial byte under a left-aligned mask.
func maskedEqual(a, b [4]byte, n int) bool {
	w := n / 8
	for i := 0; i < w; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	if r := n % 8; r != 0 {
		m := byte(0xff) << (8 - r)
		return a[w]&m == b[w]&m
	}
	return true
}

// firstDifferBit returns the index of the first bit where a and b
// differ, capped at limit.
func firstDifferBit(a, b [4]byte, limit int) int {
	for i := 0; i*8 < limit; i++ {
		if x := a[i] ^ b[i]; x != 0 {
			d := i*8 + bits.LeadingZeros8(x)
			if d > limit {
				return limit
			}
			return d
		}
	}
	return limit
}
