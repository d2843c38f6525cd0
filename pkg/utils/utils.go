package utils

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

// SetupSignalHandler returns a context which is canceled on SIGINT or SIGTERM.
// A second signal terminates the process immediately.
func SetupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	c := make(chan os.Signal, 2)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
		<-c
		os.Exit(1)
	}()

	return ctx
}

// IsIPv4 returns true if IP is of type IPV4
func IsIPv4(ip net.IP) bool {
	// Note: when creating net.IP via net.ParseIP() it is created
	// with a fixed size of net.IPv6Len, so we cannot rely on length.
	return ip.To4() != nil
}

// PathExists returns true if path exists in the system or false if it doesnt
// in case of error, and error is returned
func PathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	} else if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// IPToIPNet coverts IP or CIDR formatted string to *net.IPNet.
// if no CIDR notation, then /32 or /128 mask is assumed for ipv4 and ipv6 respectively.
func IPToIPNet(ip string) (*net.IPNet, error) {
	if !strings.Contains(ip, "/") {
		ipp := net.ParseIP(ip)
		if ipp == nil {
			return nil, fmt.Errorf("failed to parse ip: %s", ip)
		}
		if ipp.To4() != nil {
			ip += "/32"
		} else {
			ip += "/128"
		}
	}
	_, ipn, err := net.ParseCIDR(ip)
	return ipn, err
}
