package mx

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/JonMunkholm/mxgroup/internal/core"
)

// SystemResolver queries through net.Resolver, honoring the host resolver
// configuration unless a nameserver is given.
type SystemResolver struct {
	resolver *net.Resolver
	timeout  time.Duration
}

// NewSystemResolver creates a resolver. A non-empty nameserver forces the
// pure Go resolver and sends every query to that address.
func NewSystemResolver(nameserver string, timeout time.Duration) *SystemResolver {
	r := &net.Resolver{}
	if nameserver != "" {
		addr := withPort(nameserver)
		r.PreferGo = true
		r.Dial = func(ctx context.Context, network, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, network, addr)
		}
	}
	return &SystemResolver{resolver: r, timeout: timeout}
}

// LookupMX implements core.MXLookuper.
func (s *SystemResolver) LookupMX(ctx context.Context, domain string) ([]core.MXRecord, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	mxs, err := s.resolver.LookupMX(ctx, domain)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return nil, fmt.Errorf("lookup mx %s: %w", domain, ErrNotFound)
		}
		return nil, fmt.Errorf("lookup mx %s: %w", domain, err)
	}

	records := make([]core.MXRecord, 0, len(mxs))
	for _, mx := range mxs {
		records = append(records, core.MXRecord{Pref: mx.Pref, Host: mx.Host})
	}
	return records, nil
}
