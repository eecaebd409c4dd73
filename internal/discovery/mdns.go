package discovery

import (
	"context"
	"fmt"
	"net"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/camprov/internal/logging"
)

const (
	// DefaultServiceType is advertised by most IP cameras for their RTSP stream
	DefaultServiceType = "_rtsp._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for camera discovery
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is the RTSP port assumed when none is advertised
	DefaultPort = 554
)

// Scanner handles mDNS camera discovery
type Scanner struct {
	// Timeout is the maximum time to wait for answers
	Timeout time.Duration

	// Service is the mDNS service type to browse
	Service string

	// Match, when set, keeps only entries whose instance or hostname matches
	Match *regexp.Regexp
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
		Service: DefaultServiceType,
	}
}

// Scan browses the local network until the timeout expires or ctx is
// cancelled, and returns the cameras found, sorted by IP. Cameras answering
// more than once are reported once.
func (s *Scanner) Scan(ctx context.Context) ([]*Camera, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	var (
		mu      sync.Mutex
		cameras = make(map[string]*Camera)
		entries = make(chan *zeroconf.ServiceEntry)
	)

	go func() {
		for entry := range entries {
			camera := s.parseServiceEntry(entry)
			if camera == nil {
				continue
			}
			logging.Debug("Camera found", zap.String("instance", camera.Instance), zap.String("ip", camera.IP))
			mu.Lock()
			if _, seen := cameras[camera.IP]; !seen {
				cameras[camera.IP] = camera
			}
			mu.Unlock()
		}
	}()

	service := s.Service
	if service == "" {
		service = DefaultServiceType
	}
	if err := resolver.Browse(ctx, service, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()

	mu.Lock()
	defer mu.Unlock()
	return sortCameras(cameras), nil
}

// parseServiceEntry converts a zeroconf service entry to a Camera.
// Returns nil if the entry has no address or does not match the filter.
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Camera {
	if s.Match != nil && !s.Match.MatchString(entry.Instance) && !s.Match.MatchString(entry.HostName) {
		return nil
	}

	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		key, value, _ := strings.Cut(txt, "=")
		metadata[key] = value
	}

	return &Camera{
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

func sortCameras(byIP map[string]*Camera) []*Camera {
	cameras := make([]*Camera, 0, len(byIP))
	for _, c := range byIP {
		cameras = append(cameras, c)
	}
	sort.Slice(cameras, func(i, j int) bool {
		a, b := net.ParseIP(cameras[i].IP), net.ParseIP(cameras[j].IP)
		if a4, b4 := a.To4(), b.To4(); a4 != nil && b4 != nil {
			return string(a4) < string(b4)
		}
		return cameras[i].IP < cameras[j].IP
	})
	return cameras
}
