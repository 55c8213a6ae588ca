package mx

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"

	"github.com/JonMunkholm/mxgroup/internal/core"
)

// ErrTruncated is returned when the answer did not fit in one UDP response.
var ErrTruncated = errors.New("truncated response")

// ednsBufferSize is the UDP payload size advertised with each query.
const ednsBufferSize = 4096

// ResolvConfPath is read when no nameserver is configured for the wire backend.
var ResolvConfPath = "/etc/resolv.conf"

// WireResolver sends MX queries straight to one nameserver.
type WireResolver struct {
	client *dns.Client
	server string
}

// NewWireResolver targets nameserver, or the first server listed in
// ResolvConfPath when nameserver is empty.
func NewWireResolver(nameserver string, timeout time.Duration) (*WireResolver, error) {
	server := nameserver
	if server == "" {
		conf, err := dns.ClientConfigFromFile(ResolvConfPath)
		if err != nil {
			return nil, fmt.Errorf("read resolver config: %w", err)
		}
		if len(conf.Servers) == 0 {
			return nil, errors.New("read resolver config: no nameservers")
		}
		server = net.JoinHostPort(conf.Servers[0], conf.Port)
	}

	return &WireResolver{
		client: &dns.Client{Timeout: timeout},
		server: withPort(server),
	}, nil
}

// Server returns the nameserver address queries are sent to.
func (w *WireResolver) Server() string {
	return w.server
}

// LookupMX implements core.MXLookuper. Answers other than MX records are
// ignored. A non-success response code or a truncated response is an error,
// so a partial answer is never mistaken for a domain without MX records.
func (w *WireResolver) LookupMX(ctx context.Context, domain string) ([]core.MXRecord, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(domain), dns.TypeMX)
	m.SetEdns0(ednsBufferSize, false)

	in, _, err := w.client.ExchangeContext(ctx, m, w.server)
	if err != nil {
		return nil, fmt.Errorf("lookup mx %s: %w", domain, err)
	}

	if in.Truncated {
		return nil, fmt.Errorf("lookup mx %s: %w", domain, ErrTruncated)
	}

	switch in.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return nil, fmt.Errorf("lookup mx %s: %w", domain, ErrNotFound)
	default:
		return nil, fmt.Errorf("lookup mx %s: %s", domain, dns.RcodeToString[in.Rcode])
	}

	var records []core.MXRecord
	for _, rr := range in.Answer {
		if mx, ok := rr.(*dns.MX); ok {
			records = append(records, core.MXRecord{Pref: mx.Preference, Host: mx.Mx})
		}
	}
	return records, nil
}
