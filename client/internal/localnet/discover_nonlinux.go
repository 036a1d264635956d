//go:build !linux || android

package localnet

import (
	"net"

	"github.com/pion/transport/v3"
)

type netDiscover struct{}

func newSystemDiscover() discoverer {
	return netDiscover{}
}

func (netDiscover) iFaces() ([]*transport.Interface, error) {
	oifs, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	ifs := make([]*transport.Interface, 0, len(oifs))
	for _, oif := range oifs {
		ifc := transport.NewInterface(oif)

		addrs, err := oif.Addrs()
		if err != nil {
			return nil, err
		}

		for _, addr := range addrs {
			ifc.AddAddress(addr)
		}

		ifs = append(ifs, ifc)
	}

	return ifs, nil
}
