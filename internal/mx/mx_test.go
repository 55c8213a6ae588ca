package mx

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mxRR(name string, pref uint16, host string) dns.RR {
	return &dns.MX{
		Hdr:        dns.RR_Header{Name: name, Rrtype: dns.TypeMX, Class: dns.ClassINET, Ttl: 300},
		Preference: pref,
		Mx:         host,
	}
}

// startServer runs an in-process UDP nameserver with a fixed zone and
// returns its address.
func startServer(t *testing.T) string {
	t.Helper()

	handler := dns.HandlerFunc(func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(r)
		q := r.Question[0]

		switch q.Name {
		case "gmail.com.":
			m.Answer = append(m.Answer,
				mxRR(q.Name, 5, "gmail-smtp-in.l.google.com."),
				mxRR(q.Name, 10, "alt1.gmail-smtp-in.l.google.com."),
			)
		case "nomx.com.":
		case "truncated.com.":
			m.Truncated = true
		case "edns.com.":
			if opt := r.IsEdns0(); opt != nil && opt.UDPSize() >= 4096 {
				m.Answer = append(m.Answer, mxRR(q.Name, 10, "mx.edns.com."))
			}
		case "broken.com.":
			m.SetRcode(r, dns.RcodeServerFailure)
		default:
			m.SetRcode(r, dns.RcodeNameError)
		}
		w.WriteMsg(m)
	})

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	started := make(chan struct{})
	srv := &dns.Server{PacketConn: pc, Handler: handler, NotifyStartedFunc: func() { close(started) }}
	go srv.ActivateAndServe()
	t.Cleanup(func() { srv.Shutdown() })

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("dns server did not start")
	}
	return pc.LocalAddr().String()
}

func TestWireResolver_LookupMX(t *testing.T) {
	addr := startServer(t)
	r, err := NewWireResolver(addr, time.Second)
	require.NoError(t, err)

	records, err := r.LookupMX(context.Background(), "gmail.com")
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, uint16(5), records[0].Pref)
	assert.Equal(t, "gmail-smtp-in.l.google.com.", records[0].Host)
	assert.Equal(t, "alt1.gmail-smtp-in.l.google.com.", records[1].Host)
}

func TestWireResolver_NoRecords(t *testing.T) {
	r, err := NewWireResolver(startServer(t), time.Second)
	require.NoError(t, err)

	records, err := r.LookupMX(context.Background(), "nomx.com")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestWireResolver_NXDomain(t *testing.T) {
	r, err := NewWireResolver(startServer(t), time.Second)
	require.NoError(t, err)

	_, err = r.LookupMX(context.Background(), "missing.example")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWireResolver_ServerFailure(t *testing.T) {
	r, err := NewWireResolver(startServer(t), time.Second)
	require.NoError(t, err)

	_, err = r.LookupMX(context.Background(), "broken.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "SERVFAIL")
}

func TestWireResolver_TruncatedIsAnError(t *testing.T) {
	r, err := NewWireResolver(startServer(t), time.Second)
	require.NoError(t, err)

	records, err := r.LookupMX(context.Background(), "truncated.com")
	assert.ErrorIs(t, err, ErrTruncated)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Empty(t, records)
}

func TestWireResolver_AdvertisesEDNS0(t *testing.T) {
	r, err := NewWireResolver(startServer(t), time.Second)
	require.NoError(t, err)

	records, err := r.LookupMX(context.Background(), "edns.com")
	require.NoError(t, err)
	require.Len(t, records, 1, "server answers only queries with a 4096 byte buffer")
	assert.Equal(t, "mx.edns.com.", records[0].Host)
}

func TestWireResolver_ResolvConfFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resolv.conf")
	require.NoError(t, os.WriteFile(path, []byte("nameserver 192.0.2.53\n"), 0o600))

	old := ResolvConfPath
	ResolvConfPath = path
	t.Cleanup(func() { ResolvConfPath = old })

	r, err := NewWireResolver("", 0)
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.53:53", r.Server())
}

func TestWireResolver_MissingResolvConf(t *testing.T) {
	old := ResolvConfPath
	ResolvConfPath = filepath.Join(t.TempDir(), "absent.conf")
	t.Cleanup(func() { ResolvConfPath = old })

	_, err := NewWireResolver("", 0)
	assert.Error(t, err)
}

func TestSystemResolver_CustomNameserver(t *testing.T) {
	r := NewSystemResolver(startServer(t), 2*time.Second)

	records, err := r.LookupMX(context.Background(), "gmail.com")
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "gmail-smtp-in.l.google.com.", records[0].Host)
}

func TestSystemResolver_NotFound(t *testing.T) {
	r := NewSystemResolver(startServer(t), 2*time.Second)

	_, err := r.LookupMX(context.Background(), "missing.example")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNew(t *testing.T) {
	l, err := New(BackendSystem, "", 0)
	require.NoError(t, err)
	assert.IsType(t, &SystemResolver{}, l)

	l, err = New(BackendDNS, "127.0.0.1", time.Second)
	require.NoError(t, err)
	require.IsType(t, &WireResolver{}, l)
	assert.Equal(t, "127.0.0.1:53", l.(*WireResolver).Server())

	_, err = New("carrier-pigeon", "", 0)
	assert.Error(t, err)
}

func TestWithPort(t *testing.T) {
	assert.Equal(t, "8.8.8.8:53", withPort("8.8.8.8"))
	assert.Equal(t, "8.8.8.8:5353", withPort("8.8.8.8:5353"))
	assert.Equal(t, "[2001:db8::1]:53", withPort("2001:db8::1"))
}
