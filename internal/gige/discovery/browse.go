package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/grandcat/zeroconf"
)

// DefaultScanTimeout bounds how long Scan waits for replies.
const DefaultScanTimeout = 10 * time.Second

// Announcement is one camera found on the LAN via mDNS, assembled
// from a zeroconf.ServiceEntry's TXT metadata. This complements GVCP
// broadcast discovery with an mDNS aid carrying the same identity
// fields.
type Announcement struct {
	Serial       string
	Manufacturer string
	Model        string
	Host         string
	Port         int
}

// Scanner browses for cameras advertised via Advertise.
type Scanner struct {
	Timeout time.Duration
}

// NewScanner returns a Scanner with DefaultScanTimeout.
func NewScanner() *Scanner {
	return &Scanner{Timeout: DefaultScanTimeout}
}

// Scan browses the LAN for the configured Timeout and returns every
// camera observed.
func (s *Scanner) Scan() ([]Announcement, error) {
	return s.ScanWithContext(context.Background())
}

// ScanWithContext is Scan with a caller-supplied context, bounded by
// Timeout regardless of ctx's own deadline.
func (s *Scanner) ScanWithContext(ctx context.Context) ([]Announcement, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("discovery: resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	var found []Announcement
	done := make(chan struct{})
	go func() {
		defer close(done)
		for entry := range entries {
			found = append(found, parseEntry(entry))
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("discovery: browse: %w", err)
	}

	<-ctx.Done()
	<-done
	return found, nil
}

// WaitForDevice blocks until a camera with the given serial appears or
// Timeout elapses.
func (s *Scanner) WaitForDevice(serial string) (Announcement, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return Announcement{}, fmt.Errorf("discovery: resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	found := make(chan Announcement, 1)
	go func() {
		for entry := range entries {
			a := parseEntry(entry)
			if a.Serial == serial {
				found <- a
				cancel()
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return Announcement{}, fmt.Errorf("discovery: browse: %w", err)
	}

	select {
	case a := <-found:
		return a, nil
	case <-ctx.Done():
		return Announcement{}, fmt.Errorf("discovery: device %q not found within %s", serial, s.Timeout)
	}
}

func parseEntry(entry *zeroconf.ServiceEntry) Announcement {
	a := Announcement{Host: entry.HostName, Port: entry.Port}
	for _, txt := range entry.Text {
		key, value := splitTXT(txt)
		switch key {
		case "serial":
			a.Serial = value
		case "manufacturer":
			a.Manufacturer = value
		case "model":
			a.Model = value
		}
	}
	if len(entry.AddrIPv4) > 0 {
		a.Host = entry.AddrIPv4[0].String()
	}
	return a
}

func splitTXT(txt string) (key, value string) {
	for i := 0; i < len(txt); i++ {
		if txt[i] == '=' {
			return txt[:i], txt[i+1:]
		}
	}
	return txt, ""
}
