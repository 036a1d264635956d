package iprange

import (
	"errors"
	"fmt"
	"math/big"
	"net/netip"
	"strings"

	"go4.org/netipx"
)

// Family is the address family of a range
type Family int

const (
	V4 Family = iota
	V6
)

var (
	ErrInvalidAddr  = errors.New("invalid address")
	ErrMixedFamily  = errors.New("range bounds belong to different address families")
	ErrInverted     = errors.New("range lower bound is greater than upper bound")
	ErrInvalidRange = errors.New("invalid range")
)

// FamilyOf returns the family of the given address
func FamilyOf(addr netip.Addr) Family {
	if addr.Is4() {
		return V4
	}
	return V6
}

// Bits returns the address length of the family in bits
func (f Family) Bits() int {
	if f == V4 {
		return 32
	}
	return 128
}

func (f Family) String() string {
	switch f {
	case V4:
		return "IPv4"
	case V6:
		return "IPv6"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// Range is an inclusive interval of addresses of a single family.
// The zero value is invalid.
type Range struct {
	ipRange netipx.IPRange
}

// New returns the range [from, to]
func New(from, to netip.Addr) (Range, error) {
	if !from.IsValid() || !to.IsValid() {
		return Range{}, ErrInvalidAddr
	}
	if from.Zone() != "" || to.Zone() != "" {
		return Range{}, fmt.Errorf("%w: zoned address", ErrInvalidAddr)
	}
	if from.Is4() != to.Is4() {
		return Range{}, fmt.Errorf("%w: %s-%s", ErrMixedFamily, from, to)
	}
	if from.Compare(to) > 0 {
		return Range{}, fmt.Errorf("%w: %s-%s", ErrInverted, from, to)
	}
	return Range{ipRange: netipx.IPRangeFrom(from, to)}, nil
}

// MustNew is like New but panics on invalid bounds
func MustNew(from, to netip.Addr) Range {
	r, err := New(from, to)
	if err != nil {
		panic(err)
	}
	return r
}

// FromPrefix returns the range covered by the prefix. Host bits are ignored.
// An invalid prefix yields the invalid zero Range.
func FromPrefix(p netip.Prefix) Range {
	if !p.IsValid() {
		return Range{}
	}
	return Range{ipRange: netipx.RangeOfPrefix(p)}
}

// FromAddr returns the range holding only addr
func FromAddr(addr netip.Addr) Range {
	return Range{ipRange: netipx.IPRangeFrom(addr, addr)}
}

// Full returns the whole address space of the family
func Full(family Family) Range {
	if family == V4 {
		return FromPrefix(netip.PrefixFrom(netip.IPv4Unspecified(), 0))
	}
	return FromPrefix(netip.PrefixFrom(netip.IPv6Unspecified(), 0))
}

// Parse accepts a prefix ("10.0.0.0/8"), a single address ("10.0.0.1")
// or an explicit range ("10.0.0.1-10.0.0.9")
func Parse(s string) (Range, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.Contains(s, "/"):
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return Range{}, err
		}
		return FromPrefix(p), nil
	case strings.Contains(s, "-"):
		left, right, _ := strings.Cut(s, "-")
		from, err := netip.ParseAddr(strings.TrimSpace(left))
		if err != nil {
			return Range{}, err
		}
		to, err := netip.ParseAddr(strings.TrimSpace(right))
		if err != nil {
			return Range{}, err
		}
		return New(from, to)
	default:
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return Range{}, err
		}
		if addr.Zone() != "" {
			return Range{}, fmt.Errorf("%w: zoned address %s", ErrInvalidAddr, s)
		}
		return FromAddr(addr), nil
	}
}

// MustParse is like Parse but panics on error
func MustParse(s string) Range {
	r, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return r
}

func (r Range) From() netip.Addr { return r.ipRange.From() }
func (r Range) To() netip.Addr   { return r.ipRange.To() }

// Family returns the family of the range
func (r Range) Family() Family {
	return FamilyOf(r.From())
}

// IsValid reports whether the range has valid bounds of one family in order
func (r Range) IsValid() bool {
	return r.ipRange.IsValid()
}

// Contains reports whether addr is inside the range
func (r Range) Contains(addr netip.Addr) bool {
	return r.ipRange.Contains(addr)
}

// ContainsRange reports whether o lies entirely inside r
func (r Range) ContainsRange(o Range) bool {
	return r.sameFamily(o) && r.Contains(o.From()) && r.Contains(o.To())
}

// Overlaps reports whether the two ranges share at least one address
func (r Range) Overlaps(o Range) bool {
	return r.ipRange.Overlaps(o.ipRange)
}

// Adjacent reports whether the ranges touch without overlapping
func (r Range) Adjacent(o Range) bool {
	if !r.sameFamily(o) {
		return false
	}
	return r.To().Next() == o.From() || o.To().Next() == r.From()
}

// Compare orders ranges by family, then lower bound, then upper bound
func (r Range) Compare(o Range) int {
	if c := r.From().Compare(o.From()); c != 0 {
		return c
	}
	return r.To().Compare(o.To())
}

// Subtract removes o from r. The result has zero, one or two ranges.
func (r Range) Subtract(o Range) []Range {
	if !r.Overlaps(o) {
		return []Range{r}
	}

	var builder netipx.IPSetBuilder
	builder.AddRange(r.ipRange)
	builder.RemoveRange(o.ipRange)
	return fromSetBuilder(&builder)
}

// Prefixes decomposes the range into the minimal ascending list of CIDR
// blocks whose union is exactly the range
func (r Range) Prefixes() []netip.Prefix {
	if !r.IsValid() {
		return nil
	}
	return r.ipRange.Prefixes()
}

// Prefix returns the range as a single prefix if it is exactly one CIDR block
func (r Range) Prefix() (netip.Prefix, bool) {
	return r.ipRange.Prefix()
}

// Size returns the number of addresses in the range
func (r Range) Size() *big.Int {
	from := r.From().As16()
	to := r.To().As16()
	size := new(big.Int).SetBytes(to[:])
	size.Sub(size, new(big.Int).SetBytes(from[:]))
	return size.Add(size, big.NewInt(1))
}

func (r Range) String() string {
	if !r.IsValid() {
		return "invalid Range"
	}
	if p, ok := r.Prefix(); ok {
		return p.String()
	}
	return r.From().String() + "-" + r.To().String()
}

func (r Range) sameFamily(o Range) bool {
	return r.From().Is4() == o.From().Is4()
}

func mustBeValid(r Range) {
	if !r.IsValid() {
		panic(fmt.Errorf("%w: %s-%s", ErrInvalidRange, r.From(), r.To()))
	}
}

// fromSetBuilder returns the sorted, merged ranges of the builder. The
// builder only ever holds validated ranges, so an error is a bug.
func fromSetBuilder(builder *netipx.IPSetBuilder) []Range {
	set, err := builder.IPSet()
	if err != nil {
		panic(fmt.Errorf("%w: %v", ErrInvalidRange, err))
	}

	ipRanges := set.Ranges()
	if len(ipRanges) == 0 {
		return nil
	}
	ranges := make([]Range, 0, len(ipRanges))
	for _, r := range ipRanges {
		ranges = append(ranges, Range{ipRange: r})
	}
	return ranges
}
