package localnet

import (
	"context"
	"fmt"
	"net/netip"
	"sync/atomic"
)

// MockSource is the mock instance of a local network source
type MockSource struct {
	LocalSubnetsFunc func(ctx context.Context, includeIPv6 bool) ([]netip.Prefix, error)
	calls            atomic.Int32
}

// LocalSubnets mock implementation of LocalSubnets from Source interface
func (m *MockSource) LocalSubnets(ctx context.Context, includeIPv6 bool) ([]netip.Prefix, error) {
	m.calls.Add(1)
	if m.LocalSubnetsFunc != nil {
		return m.LocalSubnetsFunc(ctx, includeIPv6)
	}
	return nil, fmt.Errorf("method LocalSubnets is not implemented")
}

// Calls returns how many times LocalSubnets was invoked
func (m *MockSource) Calls() int {
	return int(m.calls.Load())
}
