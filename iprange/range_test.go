package iprange

import (
	"math/big"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		name        string
		from        string
		to          string
		expectedErr error
	}{
		{name: "v4", from: "10.0.0.1", to: "10.0.0.9"},
		{name: "v6", from: "2001:db8::", to: "2001:db8::ff"},
		{name: "single address", from: "1.1.1.1", to: "1.1.1.1"},
		{name: "mixed families", from: "10.0.0.1", to: "2001:db8::1", expectedErr: ErrMixedFamily},
		{name: "inverted", from: "10.0.0.9", to: "10.0.0.1", expectedErr: ErrInverted},
		{name: "zoned", from: "fe80::1%eth0", to: "fe80::2", expectedErr: ErrInvalidAddr},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := New(netip.MustParseAddr(tc.from), netip.MustParseAddr(tc.to))
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
				assert.False(t, r.IsValid())
				return
			}
			require.NoError(t, err)
			assert.True(t, r.IsValid())
			assert.Equal(t, tc.from, r.From().String())
			assert.Equal(t, tc.to, r.To().String())
		})
	}
}

func TestNewInvalidAddr(t *testing.T) {
	_, err := New(netip.Addr{}, netip.MustParseAddr("10.0.0.1"))
	assert.ErrorIs(t, err, ErrInvalidAddr)

	assert.Panics(t, func() {
		MustNew(netip.MustParseAddr("10.0.0.2"), netip.MustParseAddr("10.0.0.1"))
	})
}

func TestParse(t *testing.T) {
	testCases := []struct {
		input        string
		expectedFrom string
		expectedTo   string
		expectErr    bool
	}{
		{input: "10.0.0.0/8", expectedFrom: "10.0.0.0", expectedTo: "10.255.255.255"},
		{input: "10.1.2.3/16", expectedFrom: "10.1.0.0", expectedTo: "10.1.255.255"},
		{input: " 192.168.1.7 ", expectedFrom: "192.168.1.7", expectedTo: "192.168.1.7"},
		{input: "10.0.0.5-10.0.0.20", expectedFrom: "10.0.0.5", expectedTo: "10.0.0.20"},
		{input: "::1", expectedFrom: "::1", expectedTo: "::1"},
		{input: "2001:db8::/126", expectedFrom: "2001:db8::", expectedTo: "2001:db8::3"},
		{input: "0.0.0.0/0", expectedFrom: "0.0.0.0", expectedTo: "255.255.255.255"},
		{input: "::/0", expectedFrom: "::", expectedTo: "ffff:ffff:ffff:ffff:ffff:ffff:ffff:ffff"},
		{input: "10.0.0.20-10.0.0.5", expectErr: true},
		{input: "10.0.0.1-2001:db8::1", expectErr: true},
		{input: "10.0.0.0/33", expectErr: true},
		{input: "fe80::1%eth0", expectErr: true},
		{input: "not-an-ip", expectErr: true},
		{input: "", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			r, err := Parse(tc.input)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedFrom, r.From().String())
			assert.Equal(t, tc.expectedTo, r.To().String())
		})
	}
}

func TestFromPrefixInvalid(t *testing.T) {
	assert.False(t, FromPrefix(netip.Prefix{}).IsValid())
}

func TestRangeContains(t *testing.T) {
	r := MustParse("10.0.0.0/24")

	assert.True(t, r.Contains(netip.MustParseAddr("10.0.0.0")))
	assert.True(t, r.Contains(netip.MustParseAddr("10.0.0.255")))
	assert.False(t, r.Contains(netip.MustParseAddr("10.0.1.0")))
	assert.False(t, r.Contains(netip.MustParseAddr("::ffff:10.0.0.1")), "4in6 address belongs to the v6 family")
	assert.False(t, r.Contains(netip.Addr{}))

	assert.True(t, r.ContainsRange(MustParse("10.0.0.128/25")))
	assert.False(t, r.ContainsRange(MustParse("10.0.0.128-10.0.1.1")))
}

func TestRangeOverlapsAndAdjacent(t *testing.T) {
	testCases := []struct {
		name     string
		a, b     string
		overlaps bool
		adjacent bool
	}{
		{name: "disjoint", a: "10.0.0.0/24", b: "10.0.2.0/24"},
		{name: "adjacent", a: "10.0.0.0/24", b: "10.0.1.0/24", adjacent: true},
		{name: "adjacent reversed", a: "10.0.1.0/24", b: "10.0.0.0/24", adjacent: true},
		{name: "overlap", a: "10.0.0.0/23", b: "10.0.1.0/24", overlaps: true},
		{name: "touching single address", a: "10.0.0.1-10.0.0.5", b: "10.0.0.5-10.0.0.9", overlaps: true},
		{name: "different families", a: "0.0.0.0/0", b: "::/0"},
		{name: "v4 end and v6 start", a: "255.255.255.255", b: "::"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, b := MustParse(tc.a), MustParse(tc.b)
			assert.Equal(t, tc.overlaps, a.Overlaps(b))
			assert.Equal(t, tc.overlaps, b.Overlaps(a))
			assert.Equal(t, tc.adjacent, a.Adjacent(b))
		})
	}
}

func TestRangeSubtract(t *testing.T) {
	testCases := []struct {
		name     string
		from     string
		remove   string
		expected []string
	}{
		{name: "no overlap", from: "10.0.0.0/24", remove: "10.0.1.0/24", expected: []string{"10.0.0.0/24"}},
		{name: "full cover", from: "10.0.0.0/24", remove: "10.0.0.0/16", expected: nil},
		{name: "exact", from: "10.0.0.0/24", remove: "10.0.0.0/24", expected: nil},
		{name: "middle", from: "10.0.0.0/24", remove: "10.0.0.128/26", expected: []string{"10.0.0.0/25", "10.0.0.192/26"}},
		{name: "left edge", from: "10.0.0.0/24", remove: "9.0.0.0-10.0.0.127", expected: []string{"10.0.0.128/25"}},
		{name: "right edge", from: "10.0.0.0/24", remove: "10.0.0.128-11.0.0.0", expected: []string{"10.0.0.0/25"}},
		{name: "other family", from: "10.0.0.0/24", remove: "::/0", expected: []string{"10.0.0.0/24"}},
		{name: "v6 loopback", from: "::/0", remove: "::1", expected: []string{"::/128", "::2-ffff:ffff:ffff:ffff:ffff:ffff:ffff:ffff"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rest := MustParse(tc.from).Subtract(MustParse(tc.remove))

			var got []string
			for _, r := range rest {
				got = append(got, r.String())
			}
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestRangePrefixes(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "whole v4 space", input: "0.0.0.0-255.255.255.255", expected: []string{"0.0.0.0/0"}},
		{name: "whole v6 space", input: "::-ffff:ffff:ffff:ffff:ffff:ffff:ffff:ffff", expected: []string{"::/0"}},
		{name: "single v4", input: "10.0.0.1", expected: []string{"10.0.0.1/32"}},
		{name: "single v6", input: "2001:db8::1", expected: []string{"2001:db8::1/128"}},
		{name: "aligned", input: "10.0.0.0-10.0.0.255", expected: []string{"10.0.0.0/24"}},
		{
			name:     "unaligned",
			input:    "10.0.0.1-10.0.0.10",
			expected: []string{"10.0.0.1/32", "10.0.0.2/31", "10.0.0.4/30", "10.0.0.8/31", "10.0.0.10/32"},
		},
		{
			name:     "everything but zero",
			input:    "0.0.0.1-255.255.255.255",
			expected: []string{"0.0.0.1/32", "0.0.0.2/31", "0.0.0.4/30", "0.0.0.8/29", "0.0.0.16/28", "0.0.0.32/27", "0.0.0.64/26", "0.0.0.128/25", "0.0.1.0/24", "0.0.2.0/23", "0.0.4.0/22", "0.0.8.0/21", "0.0.16.0/20", "0.0.32.0/19", "0.0.64.0/18", "0.0.128.0/17", "0.1.0.0/16", "0.2.0.0/15", "0.4.0.0/14", "0.8.0.0/13", "0.16.0.0/12", "0.32.0.0/11", "0.64.0.0/10", "0.128.0.0/9", "1.0.0.0/8", "2.0.0.0/7", "4.0.0.0/6", "8.0.0.0/5", "16.0.0.0/4", "32.0.0.0/3", "64.0.0.0/2", "128.0.0.0/1"},
		},
		{
			name:     "v6 crossing 64 bit boundary",
			input:    "2001:db8::ffff:ffff:ffff:ffff-2001:db8:0:1::",
			expected: []string{"2001:db8::ffff:ffff:ffff:ffff/128", "2001:db8:0:1::/128"},
		},
		{
			name:     "upper v6 half",
			input:    "8000::-ffff:ffff:ffff:ffff:ffff:ffff:ffff:ffff",
			expected: []string{"8000::/1"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			prefixes := MustParse(tc.input).Prefixes()

			got := make([]string, 0, len(prefixes))
			for _, p := range prefixes {
				got = append(got, p.String())
			}
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestRangeSize(t *testing.T) {
	assert.Equal(t, "256", MustParse("10.0.0.0/24").Size().String())
	assert.Equal(t, "1", MustParse("::1").Size().String())
	assert.Equal(t, new(big.Int).Lsh(big.NewInt(1), 32).String(), Full(V4).Size().String())
	assert.Equal(t, new(big.Int).Lsh(big.NewInt(1), 128).String(), Full(V6).Size().String())
}

func TestRangeString(t *testing.T) {
	assert.Equal(t, "10.0.0.0/24", MustParse("10.0.0.0-10.0.0.255").String())
	assert.Equal(t, "10.0.0.1-10.0.0.10", MustParse("10.0.0.1-10.0.0.10").String())
	assert.Equal(t, "invalid Range", Range{}.String())
}

func TestFamily(t *testing.T) {
	assert.Equal(t, V4, MustParse("1.2.3.4").Family())
	assert.Equal(t, V6, MustParse("::ffff:1.2.3.4").Family())
	assert.Equal(t, 32, V4.Bits())
	assert.Equal(t, 128, V6.Bits())
	assert.Equal(t, "IPv4", V4.String())
	assert.Equal(t, "IPv6", V6.String())
}
