package android

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/netbirdio/allowedips/client/internal"
	"github.com/netbirdio/allowedips/client/internal/allowedips"
	"github.com/netbirdio/allowedips/client/internal/localnet"
	"github.com/netbirdio/allowedips/formatter"
)

// IFaceDiscover export internal IFaceDiscover for mobile
type IFaceDiscover interface {
	localnet.ExternalIFaceDiscover
}

func init() {
	formatter.SetTextFormatter(log.StandardLogger())
}

// AllowedIPsCalculator computes the routes handed to the VpnService builder
type AllowedIPsCalculator struct {
	configPath    string
	iFaceDiscover IFaceDiscover
}

// NewAllowedIPsCalculator instantiate a new AllowedIPsCalculator. The
// interface discover is used for LAN passthrough, Android hides the
// interfaces from Go.
func NewAllowedIPsCalculator(configPath string, iFaceDiscover IFaceDiscover) *AllowedIPsCalculator {
	return &AllowedIPsCalculator{
		configPath:    configPath,
		iFaceDiscover: iFaceDiscover,
	}
}

// Compute returns the blocks to route through the tunnel as a comma
// separated list in CIDR notation
func (c *AllowedIPsCalculator) Compute() (string, error) {
	cfg, err := internal.ReadInMemoryConfig(internal.ConfigInput{ConfigPath: c.configPath})
	if err != nil {
		return "", fmt.Errorf("load settings: %w", err)
	}

	req, err := cfg.Request()
	if err != nil {
		return "", fmt.Errorf("invalid settings: %w", err)
	}

	var discover localnet.ExternalIFaceDiscover
	if c.iFaceDiscover != nil {
		discover = c.iFaceDiscover
	}

	source := localnet.NewMobileSource(discover, cfg.InterfaceBlacklist)
	result := allowedips.NewCalculator(source).Compute(context.Background(), req)
	return result.String(), nil
}
