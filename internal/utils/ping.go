package utils

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// PingTimeout bounds each reachability check
const PingTimeout = 1500 * time.Millisecond

// PingAddress dials target over TCP. target is either host:port or a URL,
// in which case the scheme's default port fills a missing one.
func PingAddress(target string, timeout time.Duration) error {
	address, err := dialAddress(target)
	if err != nil {
		return err
	}

	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	return conn.Close()
}

// PingServer checks that the API is accepting connections on the local port
func PingServer(port string) error {
	return PingAddress(net.JoinHostPort("127.0.0.1", port), PingTimeout)
}

func dialAddress(target string) (string, error) {
	if !strings.Contains(target, "://") {
		if _, _, err := net.SplitHostPort(target); err != nil {
			return "", fmt.Errorf("invalid address %q: %w", target, err)
		}
		return target, nil
	}

	parsedURL, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	port := parsedURL.Port()
	if port == "" {
		port = "80"
		if parsedURL.Scheme == "https" {
			port = "443"
		}
	}
	return net.JoinHostPort(parsedURL.Hostname(), port), nil
}
