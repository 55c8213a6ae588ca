// Package mx provides the MX lookup backends used by the grouping pipeline.
//
// Both backends issue a single query per call and return records in the
// order the backend produced them. Trailing dots are left in place; the
// core resolver normalizes host names.
package mx

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/JonMunkholm/mxgroup/internal/core"
)

// Backend names accepted by New.
const (
	BackendSystem = "system"
	BackendDNS    = "dns"
)

// ErrNotFound is returned when the domain does not exist.
var ErrNotFound = errors.New("no such domain")

// New builds the lookup backend named by backend. nameserver may be empty
// to use the host configuration; a zero timeout keeps the library default.
func New(backend, nameserver string, timeout time.Duration) (core.MXLookuper, error) {
	switch strings.ToLower(backend) {
	case BackendSystem, "":
		return NewSystemResolver(nameserver, timeout), nil
	case BackendDNS:
		return NewWireResolver(nameserver, timeout)
	default:
		return nil, fmt.Errorf("unknown dns backend %q", backend)
	}
}

// withPort appends the standard DNS port when addr has none.
func withPort(addr string) string {
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	return net.JoinHostPort(addr, "53")
}
