package localnet

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"testing"

	"github.com/pion/transport/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mobileInterfaces = `wlan0 30 1500 true true false false true|192.168.1.23/24 fe80::1c2d:3ff:fe4e:5f6a%wlan0/64 2001:db8:1::23/64
lo 1 65536 true false true false false|127.0.0.1/8 ::1/128
tun0 40 1400 true false false true false|10.2.0.2/32
rmnet_data0 12 1500 true false false false false|100.64.10.2/30
broken line
eth1 13 1500 false true false false true|172.16.5.4/16
wt0 41 1280 true false false false false|100.100.0.1/16
`

type staticExternalDiscover struct {
	ifaces string
	err    error
}

func (d staticExternalDiscover) IFaces() (string, error) {
	return d.ifaces, d.err
}

type fakeDiscover struct {
	ifaces []*transport.Interface
	err    error
}

func (d fakeDiscover) iFaces() ([]*transport.Interface, error) {
	return d.ifaces, d.err
}

func prefixStrings(prefixes []netip.Prefix) []string {
	var out []string
	for _, p := range prefixes {
		out = append(out, p.String())
	}
	return out
}

func TestParseInterfacesString(t *testing.T) {
	ifs := parseInterfacesString(mobileInterfaces)

	var names []string
	for _, ifc := range ifs {
		names = append(names, ifc.Name)
	}
	assert.Equal(t, []string{"wlan0", "lo", "tun0", "rmnet_data0", "eth1", "wt0"}, names)

	wlan := ifs[0]
	assert.Equal(t, 30, wlan.Index)
	assert.Equal(t, 1500, wlan.MTU)
	assert.NotZero(t, wlan.Flags&net.FlagUp)
	assert.NotZero(t, wlan.Flags&net.FlagMulticast)

	addrs, err := wlan.Addrs()
	require.NoError(t, err)
	assert.Len(t, addrs, 2, "zoned link-local address must be skipped")
}

func TestMobileSource(t *testing.T) {
	testCases := []struct {
		name        string
		includeIPv6 bool
		expected    []string
	}{
		{
			name:        "ipv4 only",
			includeIPv6: false,
			expected:    []string{"100.64.10.0/30", "192.168.1.0/24"},
		},
		{
			name:        "with ipv6",
			includeIPv6: true,
			expected:    []string{"100.64.10.0/30", "192.168.1.0/24", "2001:db8:1::/64"},
		},
	}

	source := NewMobileSource(staticExternalDiscover{ifaces: mobileInterfaces}, []string{"wt"})
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			subnets, err := source.LocalSubnets(context.Background(), tc.includeIPv6)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, prefixStrings(subnets))
		})
	}
}

func TestMobileSourceErrors(t *testing.T) {
	source := NewMobileSource(staticExternalDiscover{err: errors.New("not ready")}, nil)
	_, err := source.LocalSubnets(context.Background(), true)
	assert.ErrorContains(t, err, "not ready")

	_, err = NewMobileSource(nil, nil).LocalSubnets(context.Background(), true)
	assert.Error(t, err)
}

func TestInterfaceSourceNoNetworks(t *testing.T) {
	source := &InterfaceSource{discover: fakeDiscover{}}

	subnets, err := source.LocalSubnets(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, subnets)
}

func TestInterfaceSourceCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &InterfaceSource{discover: fakeDiscover{}}
	_, err := source.LocalSubnets(ctx, false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSubnetsFromInterfaces(t *testing.T) {
	eth := transport.NewInterface(net.Interface{Name: "eth0", Index: 2, Flags: net.FlagUp | net.FlagBroadcast})
	eth.AddAddress(&net.IPNet{IP: net.ParseIP("192.168.1.10"), Mask: net.CIDRMask(24, 32)})
	// IPv4 address with a 16 byte mask, as some platforms report it
	eth.AddAddress(&net.IPNet{IP: net.ParseIP("10.1.2.3"), Mask: net.CIDRMask(112, 128)})
	eth.AddAddress(&net.IPNet{IP: net.ParseIP("192.168.1.11"), Mask: net.CIDRMask(24, 32)})
	eth.AddAddress(&net.IPAddr{IP: net.ParseIP("192.168.7.1")})

	noAddr := transport.NewInterface(net.Interface{Name: "eth1", Index: 3, Flags: net.FlagUp})

	docker := transport.NewInterface(net.Interface{Name: "docker0", Index: 4, Flags: net.FlagUp})
	docker.AddAddress(&net.IPNet{IP: net.ParseIP("172.17.0.1"), Mask: net.CIDRMask(16, 32)})

	subnets := subnetsFromInterfaces([]*transport.Interface{eth, noAddr, docker}, []string{"docker", ""}, false)
	assert.Equal(t, []string{"10.1.0.0/16", "192.168.1.0/24"}, prefixStrings(subnets))
}

func TestStatic(t *testing.T) {
	source := Static(
		netip.MustParsePrefix("192.168.1.7/24"),
		netip.MustParsePrefix("fd00::/8"),
		netip.MustParsePrefix("127.0.0.0/8"),
	)

	subnets, err := source.LocalSubnets(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"192.168.1.0/24"}, prefixStrings(subnets))

	subnets, err = source.LocalSubnets(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, []string{"192.168.1.0/24", "fd00::/8"}, prefixStrings(subnets))
}

func TestMockSource(t *testing.T) {
	mock := &MockSource{}
	_, err := mock.LocalSubnets(context.Background(), false)
	assert.Error(t, err)

	mock.LocalSubnetsFunc = func(context.Context, bool) ([]netip.Prefix, error) {
		return []netip.Prefix{netip.MustParsePrefix("10.0.0.0/24")}, nil
	}
	subnets, err := mock.LocalSubnets(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/24"}, prefixStrings(subnets))
	assert.Equal(t, 2, mock.Calls())
}
