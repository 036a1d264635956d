package allowedips

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/netbirdio/allowedips/iprange"
)

// Mode selects how the split tunneling lists are applied
type Mode int

const (
	// ModeExcludeOnly tunnels everything except the excluded ranges
	ModeExcludeOnly Mode = iota
	// ModeIncludeOnly tunnels only the included ranges
	ModeIncludeOnly
)

func (m Mode) String() string {
	switch m {
	case ModeExcludeOnly:
		return "exclude"
	case ModeIncludeOnly:
		return "include"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "exclude" or "include"
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exclude", "exclude-only", "":
		return ModeExcludeOnly, nil
	case "include", "include-only":
		return ModeIncludeOnly, nil
	default:
		return ModeExcludeOnly, fmt.Errorf("unknown split tunneling mode %q, expected include or exclude", s)
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	if m != ModeExcludeOnly && m != ModeIncludeOnly {
		return nil, fmt.Errorf("unknown split tunneling mode %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// SplitTunneling holds the user's split tunneling preferences
type SplitTunneling struct {
	Enabled  bool
	Mode     Mode
	Included []iprange.Range
	Excluded []iprange.Range
}

// Request is the input of a single allowed IPs computation
type Request struct {
	IPv6Enabled    bool
	SplitTunneling SplitTunneling
	LANPassthrough bool
	// LANDirect excludes the well known private ranges instead of the
	// networks detected on the device
	LANDirect bool
	// AlwaysTunneled addresses are routed through the tunnel under every
	// configuration
	AlwaysTunneled []netip.Addr
}

// Result is the ordered list of blocks to route through the tunnel.
// IPv4 blocks come first.
type Result struct {
	Prefixes []netip.Prefix
}

// IPv4 returns the IPv4 blocks of the result
func (r Result) IPv4() []netip.Prefix {
	var out []netip.Prefix
	for _, p := range r.Prefixes {
		if p.Addr().Is4() {
			out = append(out, p)
		}
	}
	return out
}

// IPv6 returns the IPv6 blocks of the result
func (r Result) IPv6() []netip.Prefix {
	var out []netip.Prefix
	for _, p := range r.Prefixes {
		if p.Addr().Is6() {
			out = append(out, p)
		}
	}
	return out
}

// Contains reports whether addr is routed through the tunnel
func (r Result) Contains(addr netip.Addr) bool {
	for _, p := range r.Prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// Strings returns the blocks in CIDR notation
func (r Result) Strings() []string {
	out := make([]string, 0, len(r.Prefixes))
	for _, p := range r.Prefixes {
		out = append(out, p.String())
	}
	return out
}

func (r Result) String() string {
	return strings.Join(r.Strings(), ",")
}
