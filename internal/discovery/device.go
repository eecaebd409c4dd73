package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Camera represents a camera found by an mDNS scan
type Camera struct {
	// Instance is the advertised service instance name (e.g., "IPC-0241")
	Instance string

	// Hostname is the mDNS hostname (e.g., "ipc-0241.local.")
	Hostname string

	// IP is the advertised address, IPv4 preferred (e.g., "172.31.0.241")
	IP string

	// Port is the advertised service port (554 for RTSP)
	Port int

	// Metadata contains the mDNS TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the camera was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the camera
func (c *Camera) String() string {
	return fmt.Sprintf("%s (%s) at %s", c.Instance, c.Hostname, net.JoinHostPort(c.IP, strconv.Itoa(c.Port)))
}

// Address returns the value to pass as --ip when provisioning. The control
// endpoint is always on port 80, so the advertised service port is dropped.
func (c *Camera) Address() string {
	return c.IP
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (c *Camera) GetMetadata(key string) string {
	if c.Metadata == nil {
		return ""
	}
	return c.Metadata[key]
}
