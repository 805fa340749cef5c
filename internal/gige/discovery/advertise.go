package discovery

import (
	"fmt"

	"github.com/grandcat/zeroconf"

	"github.com/protolab/gigemc/internal/gige"
)

// ServiceType is the mDNS service type emulated cameras advertise
// under. Modeled on the teacher's Smartap "_http._tcp" convention, but
// naming this core's own protocol instead of borrowing HTTP's.
const ServiceType = "_gige-vision._udp"

// ServiceDomain is the mDNS domain, matching the teacher's "local."
const ServiceDomain = "local."

// Advertiser publishes a running GVCP-S instance on the LAN via mDNS.
type Advertiser struct {
	server *zeroconf.Server
}

// Advertise registers descriptor.Serial as the mDNS instance name,
// advertising gvcpPort with the manufacturer/model as TXT metadata.
// Call Shutdown to stop advertising.
func Advertise(descriptor gige.DeviceDescriptor, gvcpPort int) (*Advertiser, error) {
	text := []string{
		fmt.Sprintf("manufacturer=%s", descriptor.Manufacturer),
		fmt.Sprintf("model=%s", descriptor.Model),
		fmt.Sprintf("serial=%s", descriptor.Serial),
	}
	srv, err := zeroconf.Register(descriptor.Serial, ServiceType, ServiceDomain, gvcpPort, text, nil)
	if err != nil {
		return nil, fmt.Errorf("discovery: register: %w", err)
	}
	return &Advertiser{server: srv}, nil
}

// Shutdown stops advertising.
func (a *Advertiser) Shutdown() {
	a.server.Shutdown()
}
