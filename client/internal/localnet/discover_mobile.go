package localnet

import (
	"fmt"
	"net"
	"strings"

	"github.com/pion/transport/v3"
	log "github.com/sirupsen/logrus"
)

// ExternalIFaceDiscover lets mobile hosts describe their network interfaces.
// Each line has the form
// "name index mtu up broadcast loopback pointToPoint multicast|addr/len addr/len"
type ExternalIFaceDiscover interface {
	IFaces() (string, error)
}

type mobileIFaceDiscover struct {
	externalDiscover ExternalIFaceDiscover
}

func newMobileIFaceDiscover(externalDiscover ExternalIFaceDiscover) *mobileIFaceDiscover {
	return &mobileIFaceDiscover{
		externalDiscover: externalDiscover,
	}
}

func (m *mobileIFaceDiscover) iFaces() ([]*transport.Interface, error) {
	if m.externalDiscover == nil {
		return nil, fmt.Errorf("no interface discovery provided by the host")
	}

	ifacesString, err := m.externalDiscover.IFaces()
	if err != nil {
		return nil, err
	}
	return parseInterfacesString(ifacesString), nil
}

func parseInterfacesString(interfaces string) []*transport.Interface {
	var ifs []*transport.Interface

	for _, iface := range strings.Split(interfaces, "\n") {
		if strings.TrimSpace(iface) == "" {
			continue
		}

		fields := strings.Split(iface, "|")
		if len(fields) != 2 {
			log.Warnf("parseInterfacesString: unable to split %q", iface)
			continue
		}

		var name string
		var index, mtu int
		var up, broadcast, loopback, pointToPoint, multicast bool
		_, err := fmt.Sscanf(fields[0], "%s %d %d %t %t %t %t %t",
			&name, &index, &mtu, &up, &broadcast, &loopback, &pointToPoint, &multicast)
		if err != nil {
			log.Warnf("parseInterfacesString: unable to parse %q: %v", iface, err)
			continue
		}

		newIf := net.Interface{
			Name:  name,
			Index: index,
			MTU:   mtu,
		}
		if up {
			newIf.Flags |= net.FlagUp
		}
		if broadcast {
			newIf.Flags |= net.FlagBroadcast
		}
		if loopback {
			newIf.Flags |= net.FlagLoopback
		}
		if pointToPoint {
			newIf.Flags |= net.FlagPointToPoint
		}
		if multicast {
			newIf.Flags |= net.FlagMulticast
		}

		ifc := transport.NewInterface(newIf)

		foundAddress := false
		for _, addr := range strings.Fields(fields[1]) {
			// scoped addresses carry a zone and are never routed
			if strings.Contains(addr, "%") {
				continue
			}
			ip, ipNet, err := net.ParseCIDR(addr)
			if err != nil {
				log.Warnf("parseInterfacesString: %v", err)
				continue
			}
			ipNet.IP = ip
			ifc.AddAddress(ipNet)
			foundAddress = true
		}
		if foundAddress {
			ifs = append(ifs, ifc)
		}
	}
	return ifs
}
