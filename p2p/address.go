package p2p

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

var ErrInvalidAddress = errors.New("invalid node address")

// ParseNodeAddress normalizes a node address to host:port. Both bare
// "host:port" and URLs such as "http://192.168.0.5:5000" are accepted; any
// URL path is dropped.
func ParseNodeAddress(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidAddress)
	}

	hostport := raw
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidAddress, u.Scheme)
		}
		hostport = u.Host
	}

	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidAddress, raw, err)
	}
	if host == "" {
		return "", fmt.Errorf("%w: %q has no host", ErrInvalidAddress, raw)
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return "", fmt.Errorf("%w: %q has bad port %q", ErrInvalidAddress, raw, port)
	}
	return net.JoinHostPort(host, port), nil
}
