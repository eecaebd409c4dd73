// Package discovery finds IP cameras on the local network using mDNS.
//
// Cameras commonly advertise their RTSP stream as a "_rtsp._tcp" service.
// A scan browses for that service type (configurable) until its timeout
// expires and returns one entry per camera address, so the operator can
// pick the --ip to provision.
//
// # Usage Example
//
//	scanner := discovery.NewScanner()
//	scanner.Match = regexp.MustCompile(`(?i)^ipc`)
//
//	cameras, err := scanner.Scan(ctx)
//	if err != nil {
//	    return err
//	}
//	for _, c := range cameras {
//	    fmt.Println(c.Address(), c.Instance)
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Cameras must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
