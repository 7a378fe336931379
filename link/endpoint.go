package link

import (
	"net"
	"net/netip"
	"strconv"
	"strings"
)

// Endpoint identifies a remote instrument by host and TCP port. It is immutable.
type Endpoint struct {
	host string
	port int
}

// NewEndpoint validates host and port and returns an Endpoint.
//
// host must be an IP address, optionally with an IPv6 zone, or a syntactically valid host name. Host names are not resolved here;
// a name that does not resolve fails later with ErrConnect.
func NewEndpoint(host string, port int) (Endpoint, error) {
	host = strings.TrimSpace(host)
	if !validHost(host) {
		return Endpoint{}, ErrInvalidHost
	}

	if port < 1 || port > 65535 {
		return Endpoint{}, ErrInvalidPort
	}

	return Endpoint{host: host, port: port}, nil
}

func (e Endpoint) Host() string { return e.host }

func (e Endpoint) Port() int { return e.port }

// Address returns the "host:port" form suitable for dialing; IPv6 hosts are bracketed.
func (e Endpoint) Address() string {
	return net.JoinHostPort(e.host, strconv.Itoa(e.port))
}

func (e Endpoint) String() string { return e.Address() }

func validHost(host string) bool {
	if host == "" {
		return false
	}

	// netip accepts IPv6 zones such as fe80::1%eth0, which net.ParseIP rejects
	if _, err := netip.ParseAddr(host); err == nil {
		return true
	}

	host = strings.TrimSuffix(host, ".")
	if host == "" || len(host) > 253 {
		return false
	}

	for _, label := range strings.Split(host, ".") {
		if len(label) == 0 || len(label) > 63 {
			return false
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for i := 0; i < len(label); i++ {
			c := label[i]
			isAlnum := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
			if !isAlnum && c != '-' && c != '_' {
				return false
			}
		}
	}

	return true
}
