package internal

import (
	"context"
	"fmt"
	"net/netip"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"

	nberrors "github.com/netbirdio/allowedips/client/errors"
	"github.com/netbirdio/allowedips/client/internal/allowedips"
	"github.com/netbirdio/allowedips/iprange"
	"github.com/netbirdio/allowedips/util"
)

// DefaultAlwaysTunneled is the tunnel DNS resolver. It must stay reachable
// whatever the split tunneling and LAN settings are.
const DefaultAlwaysTunneled = "10.2.0.1"

var defaultInterfaceBlacklist = []string{
	"wt", "utun", "tun", "zt", "ZeroTier", "wg", "ts",
	"Tailscale", "tailscale", "docker", "veth", "br-", "lo",
}

// ConfigInput carries configuration changes to the client
type ConfigInput struct {
	ConfigPath     string
	IPv6Enabled    *bool
	SplitTunneling *bool
	SplitMode      *string
	// IncludedRanges and ExcludedRanges replace the stored lists when not nil.
	// An empty slice clears them.
	IncludedRanges      []string
	ExcludedRanges      []string
	LANPassthrough      *bool
	LANDirect           *bool
	AlwaysTunneled      []string
	ExtraIFaceBlackList []string
}

// SplitTunnelingConfig is the stored split tunneling preference
type SplitTunnelingConfig struct {
	Enabled        bool
	Mode           allowedips.Mode
	IncludedRanges []string
	ExcludedRanges []string
}

// LANConfig is the stored LAN passthrough preference
type LANConfig struct {
	Enabled bool
	// Direct excludes the well known private ranges instead of the networks
	// detected on the device interfaces
	Direct bool
}

// Config Configuration type
type Config struct {
	IPv6Enabled    bool
	SplitTunneling SplitTunnelingConfig
	LANPassthrough LANConfig
	// AlwaysTunneled addresses are routed through the tunnel under every
	// configuration. A nil list is filled with DefaultAlwaysTunneled.
	AlwaysTunneled     []string
	InterfaceBlacklist []string
}

// ReadConfig read config file and return with Config. If it is not exists create a new with default values
func ReadConfig(configPath string) (*Config, error) {
	if util.FileExists(configPath) {
		config := &Config{}
		if _, err := util.ReadJson(configPath, config); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
		// initialize through apply() without changes
		if changed, err := config.apply(ConfigInput{}); err != nil {
			return nil, err
		} else if changed {
			if err = WriteOutConfig(configPath, config); err != nil {
				return nil, err
			}
		}

		return config, nil
	}

	cfg, err := createNewConfig(ConfigInput{ConfigPath: configPath})
	if err != nil {
		return nil, err
	}

	err = WriteOutConfig(configPath, cfg)
	return cfg, err
}

// UpdateOrCreateConfig reads existing config or generates a new one
func UpdateOrCreateConfig(input ConfigInput) (*Config, error) {
	if !util.FileExists(input.ConfigPath) {
		log.Infof("generating new config %s", input.ConfigPath)
		cfg, err := createNewConfig(input)
		if err != nil {
			return nil, err
		}
		err = WriteOutConfig(input.ConfigPath, cfg)
		return cfg, err
	}

	return update(input)
}

// ReadInMemoryConfig applies the input on top of the stored config, or on
// top of the defaults when no config file exists. Nothing is written out.
func ReadInMemoryConfig(input ConfigInput) (*Config, error) {
	config := &Config{}
	if util.FileExists(input.ConfigPath) {
		if _, err := util.ReadJson(input.ConfigPath, config); err != nil {
			return nil, fmt.Errorf("read config %s: %w", input.ConfigPath, err)
		}
	}

	if _, err := config.apply(input); err != nil {
		return nil, err
	}
	return config, nil
}

// WriteOutConfig write put the prepared config to the given path
func WriteOutConfig(path string, config *Config) error {
	return util.WriteJson(context.Background(), path, config)
}

func createNewConfig(input ConfigInput) (*Config, error) {
	config := &Config{}

	if _, err := config.apply(input); err != nil {
		return nil, err
	}

	return config, nil
}

func update(input ConfigInput) (*Config, error) {
	config := &Config{}

	if _, err := util.ReadJson(input.ConfigPath, config); err != nil {
		return nil, fmt.Errorf("read config %s: %w", input.ConfigPath, err)
	}

	updated, err := config.apply(input)
	if err != nil {
		return nil, err
	}

	if updated {
		if err := WriteOutConfig(input.ConfigPath, config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

func (config *Config) apply(input ConfigInput) (updated bool, err error) {
	if input.IPv6Enabled != nil && *input.IPv6Enabled != config.IPv6Enabled {
		log.Infof("switching IPv6 to %t", *input.IPv6Enabled)
		config.IPv6Enabled = *input.IPv6Enabled
		updated = true
	}

	if input.SplitTunneling != nil && *input.SplitTunneling != config.SplitTunneling.Enabled {
		log.Infof("switching split tunneling to %t", *input.SplitTunneling)
		config.SplitTunneling.Enabled = *input.SplitTunneling
		updated = true
	}

	if input.SplitMode != nil {
		mode, err := allowedips.ParseMode(*input.SplitMode)
		if err != nil {
			return false, err
		}
		if mode != config.SplitTunneling.Mode {
			log.Infof("updating split tunneling mode to %s (old value %s)", mode, config.SplitTunneling.Mode)
			config.SplitTunneling.Mode = mode
			updated = true
		}
	}

	var merr *multierror.Error

	if input.IncludedRanges != nil {
		included, err := normalizeRanges("included range", input.IncludedRanges)
		merr = multierror.Append(merr, err)
		if err == nil && !slices.Equal(included, config.SplitTunneling.IncludedRanges) {
			log.Infof("updating included ranges [ %s ] (old value: [ %s ])",
				strings.Join(included, " "),
				strings.Join(config.SplitTunneling.IncludedRanges, " "))
			config.SplitTunneling.IncludedRanges = included
			updated = true
		}
	}

	if input.ExcludedRanges != nil {
		excluded, err := normalizeRanges("excluded range", input.ExcludedRanges)
		merr = multierror.Append(merr, err)
		if err == nil && !slices.Equal(excluded, config.SplitTunneling.ExcludedRanges) {
			log.Infof("updating excluded ranges [ %s ] (old value: [ %s ])",
				strings.Join(excluded, " "),
				strings.Join(config.SplitTunneling.ExcludedRanges, " "))
			config.SplitTunneling.ExcludedRanges = excluded
			updated = true
		}
	}

	if input.AlwaysTunneled != nil {
		addrs, err := normalizeAddrs(input.AlwaysTunneled)
		merr = multierror.Append(merr, err)
		if err == nil && !slices.Equal(addrs, config.AlwaysTunneled) {
			log.Infof("updating always tunneled addresses [ %s ] (old value: [ %s ])",
				strings.Join(addrs, " "),
				strings.Join(config.AlwaysTunneled, " "))
			config.AlwaysTunneled = addrs
			updated = true
		}
	} else if config.AlwaysTunneled == nil {
		log.Infof("using default always tunneled address %s", DefaultAlwaysTunneled)
		config.AlwaysTunneled = []string{DefaultAlwaysTunneled}
		updated = true
	}

	if err := nberrors.FormatErrorOrNil(merr); err != nil {
		return false, err
	}

	if input.LANPassthrough != nil && *input.LANPassthrough != config.LANPassthrough.Enabled {
		log.Infof("switching LAN passthrough to %t", *input.LANPassthrough)
		config.LANPassthrough.Enabled = *input.LANPassthrough
		updated = true
	}

	if input.LANDirect != nil && *input.LANDirect != config.LANPassthrough.Direct {
		if *input.LANDirect {
			log.Infof("excluding well known private ranges for LAN passthrough")
		} else {
			log.Infof("excluding detected local networks for LAN passthrough")
		}
		config.LANPassthrough.Direct = *input.LANDirect
		updated = true
	}

	if len(config.InterfaceBlacklist) == 0 {
		log.Infof("filling in interface blacklist with defaults: [ %s ]",
			strings.Join(defaultInterfaceBlacklist, " "))
		config.InterfaceBlacklist = append(config.InterfaceBlacklist, defaultInterfaceBlacklist...)
		updated = true
	}

	if len(input.ExtraIFaceBlackList) > 0 {
		for _, iFace := range util.SliceDiff(input.ExtraIFaceBlackList, config.InterfaceBlacklist) {
			log.Infof("adding new entry to interface blacklist: %s", iFace)
			config.InterfaceBlacklist = append(config.InterfaceBlacklist, iFace)
			updated = true
		}
	}

	return updated, nil
}

// Validate checks every stored list entry and reports all malformed ones at once
func (config *Config) Validate() error {
	_, err := config.Request()
	return err
}

// Request converts the stored preferences into a calculator request
func (config *Config) Request() (allowedips.Request, error) {
	var merr *multierror.Error

	included, err := parseRanges("included range", config.SplitTunneling.IncludedRanges)
	merr = multierror.Append(merr, err)

	excluded, err := parseRanges("excluded range", config.SplitTunneling.ExcludedRanges)
	merr = multierror.Append(merr, err)

	alwaysTunneled := config.AlwaysTunneled
	if alwaysTunneled == nil {
		alwaysTunneled = []string{DefaultAlwaysTunneled}
	}
	addrs, err := parseAddrs(alwaysTunneled)
	merr = multierror.Append(merr, err)

	if err := nberrors.FormatErrorOrNil(merr); err != nil {
		return allowedips.Request{}, err
	}

	return allowedips.Request{
		IPv6Enabled: config.IPv6Enabled,
		SplitTunneling: allowedips.SplitTunneling{
			Enabled:  config.SplitTunneling.Enabled,
			Mode:     config.SplitTunneling.Mode,
			Included: included,
			Excluded: excluded,
		},
		LANPassthrough: config.LANPassthrough.Enabled,
		LANDirect:      config.LANPassthrough.Direct,
		AlwaysTunneled: addrs,
	}, nil
}

func parseRanges(kind string, entries []string) ([]iprange.Range, error) {
	var merr *multierror.Error
	ranges := make([]iprange.Range, 0, len(entries))
	for _, entry := range entries {
		r, err := iprange.Parse(entry)
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("invalid %s %q: %w", kind, entry, err))
			continue
		}
		ranges = append(ranges, r)
	}
	return ranges, merr.ErrorOrNil()
}

// normalizeRanges rewrites every entry in its canonical form. Bare
// addresses become /32 or /128 blocks.
func normalizeRanges(kind string, entries []string) ([]string, error) {
	ranges, err := parseRanges(kind, entries)
	if err != nil {
		return nil, err
	}

	normalized := make([]string, 0, len(ranges))
	for _, r := range ranges {
		normalized = append(normalized, r.String())
	}
	return normalized, nil
}

func parseAddrs(entries []string) ([]netip.Addr, error) {
	var merr *multierror.Error
	addrs := make([]netip.Addr, 0, len(entries))
	for _, entry := range entries {
		addr, err := netip.ParseAddr(strings.TrimSpace(entry))
		if err == nil && addr.Zone() != "" {
			err = fmt.Errorf("zoned addresses are not supported")
		}
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("invalid always tunneled address %q: %w", entry, err))
			continue
		}
		addrs = append(addrs, addr)
	}
	return addrs, merr.ErrorOrNil()
}

func normalizeAddrs(entries []string) ([]string, error) {
	addrs, err := parseAddrs(entries)
	if err != nil {
		return nil, err
	}

	normalized := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		normalized = append(normalized, addr.String())
	}
	return normalized, nil
}
