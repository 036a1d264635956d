package android

import (
	"github.com/netbirdio/allowedips/client/internal"
)

// Preferences export a subset of the internal config for gomobile
type Preferences struct {
	configInput internal.ConfigInput
}

// NewPreferences create new Preferences instance
func NewPreferences(configPath string) *Preferences {
	ci := internal.ConfigInput{
		ConfigPath: configPath,
	}
	return &Preferences{ci}
}

// GetIPv6Enabled read IPv6 preference from config file
func (p *Preferences) GetIPv6Enabled() (bool, error) {
	if p.configInput.IPv6Enabled != nil {
		return *p.configInput.IPv6Enabled, nil
	}

	cfg, err := internal.ReadConfig(p.configInput.ConfigPath)
	if err != nil {
		return false, err
	}
	return cfg.IPv6Enabled, err
}

// SetIPv6Enabled store the given value and wait for commit
func (p *Preferences) SetIPv6Enabled(enabled bool) {
	p.configInput.IPv6Enabled = &enabled
}

// GetSplitTunnelingEnabled read split tunneling preference from config file
func (p *Preferences) GetSplitTunnelingEnabled() (bool, error) {
	if p.configInput.SplitTunneling != nil {
		return *p.configInput.SplitTunneling, nil
	}

	cfg, err := internal.ReadConfig(p.configInput.ConfigPath)
	if err != nil {
		return false, err
	}
	return cfg.SplitTunneling.Enabled, err
}

// SetSplitTunnelingEnabled store the given value and wait for commit
func (p *Preferences) SetSplitTunnelingEnabled(enabled bool) {
	p.configInput.SplitTunneling = &enabled
}

// GetSplitTunnelingMode returns "exclude" or "include"
func (p *Preferences) GetSplitTunnelingMode() (string, error) {
	if p.configInput.SplitMode != nil {
		return *p.configInput.SplitMode, nil
	}

	cfg, err := internal.ReadConfig(p.configInput.ConfigPath)
	if err != nil {
		return "", err
	}
	return cfg.SplitTunneling.Mode.String(), err
}

// SetSplitTunnelingMode store the given mode and wait for commit
func (p *Preferences) SetSplitTunnelingMode(mode string) {
	p.configInput.SplitMode = &mode
}

// GetIncludedRanges read the ranges tunneled in include mode
func (p *Preferences) GetIncludedRanges() (*IPList, error) {
	if p.configInput.IncludedRanges != nil {
		return ipListFrom(p.configInput.IncludedRanges), nil
	}

	cfg, err := internal.ReadConfig(p.configInput.ConfigPath)
	if err != nil {
		return nil, err
	}
	return ipListFrom(cfg.SplitTunneling.IncludedRanges), nil
}

// SetIncludedRanges store the given ranges and wait for commit
func (p *Preferences) SetIncludedRanges(ranges *IPList) {
	p.configInput.IncludedRanges = ranges.toSlice()
}

// GetExcludedRanges read the ranges kept out of the tunnel in exclude mode
func (p *Preferences) GetExcludedRanges() (*IPList, error) {
	if p.configInput.ExcludedRanges != nil {
		return ipListFrom(p.configInput.ExcludedRanges), nil
	}

	cfg, err := internal.ReadConfig(p.configInput.ConfigPath)
	if err != nil {
		return nil, err
	}
	return ipListFrom(cfg.SplitTunneling.ExcludedRanges), nil
}

// SetExcludedRanges store the given ranges and wait for commit
func (p *Preferences) SetExcludedRanges(ranges *IPList) {
	p.configInput.ExcludedRanges = ranges.toSlice()
}

// GetLANPassthrough read LAN passthrough preference from config file
func (p *Preferences) GetLANPassthrough() (bool, error) {
	if p.configInput.LANPassthrough != nil {
		return *p.configInput.LANPassthrough, nil
	}

	cfg, err := internal.ReadConfig(p.configInput.ConfigPath)
	if err != nil {
		return false, err
	}
	return cfg.LANPassthrough.Enabled, err
}

// SetLANPassthrough store the given value and wait for commit
func (p *Preferences) SetLANPassthrough(enabled bool) {
	p.configInput.LANPassthrough = &enabled
}

// GetLANDirect read whether LAN passthrough excludes the well known private ranges
func (p *Preferences) GetLANDirect() (bool, error) {
	if p.configInput.LANDirect != nil {
		return *p.configInput.LANDirect, nil
	}

	cfg, err := internal.ReadConfig(p.configInput.ConfigPath)
	if err != nil {
		return false, err
	}
	return cfg.LANPassthrough.Direct, err
}

// SetLANDirect store the given value and wait for commit
func (p *Preferences) SetLANDirect(direct bool) {
	p.configInput.LANDirect = &direct
}

// GetAlwaysTunneled read the addresses that are always tunneled
func (p *Preferences) GetAlwaysTunneled() (*IPList, error) {
	if p.configInput.AlwaysTunneled != nil {
		return ipListFrom(p.configInput.AlwaysTunneled), nil
	}

	cfg, err := internal.ReadConfig(p.configInput.ConfigPath)
	if err != nil {
		return nil, err
	}
	return ipListFrom(cfg.AlwaysTunneled), nil
}

// SetAlwaysTunneled store the given addresses and wait for commit
func (p *Preferences) SetAlwaysTunneled(addrs *IPList) {
	p.configInput.AlwaysTunneled = addrs.toSlice()
}

// Commit write out the changes into config file
func (p *Preferences) Commit() error {
	_, err := internal.UpdateOrCreateConfig(p.configInput)
	return err
}
