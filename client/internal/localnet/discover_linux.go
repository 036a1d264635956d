//go:build linux && !android

package localnet

import (
	"errors"
	"fmt"
	"net"

	"github.com/pion/transport/v3"
	log "github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
)

type netlinkDiscover struct{}

func newSystemDiscover() discoverer {
	return netlinkDiscover{}
}

func (netlinkDiscover) iFaces() ([]*transport.Interface, error) {
	links, err := netlink.LinkList()
	if err = allowInterrupted(err, "links"); err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}

	ifs := make([]*transport.Interface, 0, len(links))
	for _, link := range links {
		attrs := link.Attrs()
		ifc := transport.NewInterface(net.Interface{
			Index:        attrs.Index,
			MTU:          attrs.MTU,
			Name:         attrs.Name,
			HardwareAddr: attrs.HardwareAddr,
			Flags:        attrs.Flags,
		})

		addrs, err := netlink.AddrList(link, netlink.FAMILY_ALL)
		if err = allowInterrupted(err, "addresses of "+attrs.Name); err != nil {
			log.Debugf("failed to list addresses of %s: %v", attrs.Name, err)
			continue
		}
		for _, addr := range addrs {
			if addr.IPNet != nil {
				ifc.AddAddress(addr.IPNet)
			}
		}

		ifs = append(ifs, ifc)
	}

	return ifs, nil
}

// allowInterrupted drops netlink.ErrDumpInterrupted. The kernel reports it
// when the table changed during the dump; the partial result is still usable.
func allowInterrupted(err error, what string) error {
	if errors.Is(err, netlink.ErrDumpInterrupted) {
		log.Debugf("netlink dump of %s was interrupted, using partial result", what)
		return nil
	}
	return err
}
