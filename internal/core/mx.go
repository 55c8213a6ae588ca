package core

import (
	"context"
	"strings"

	"github.com/JonMunkholm/mxgroup/internal/logging"
)

// MXRecord is one mail exchanger published for a domain.
type MXRecord struct {
	Pref uint16 `json:"pref"`
	Host string `json:"host"`
}

// MXLookuper performs a single DNS MX query. Implementations live in
// internal/mx; tests use static fixtures.
type MXLookuper interface {
	LookupMX(ctx context.Context, domain string) ([]MXRecord, error)
}

// LookupResult is the outcome of one MX query: either the records as
// published, or the error that prevented getting them.
type LookupResult struct {
	Domain  string
	Records []MXRecord
	Err     error
}

// Failed reports whether the query did not produce an answer.
func (r LookupResult) Failed() bool {
	return r.Err != nil
}

// RecordsOrEmpty applies the fail-soft policy: a failed lookup is treated
// as a domain with no mail routing.
func (r LookupResult) RecordsOrEmpty() []MXRecord {
	if r.Failed() {
		return nil
	}
	return r.Records
}

// MXResolver issues exactly one lookup per call, without retries or
// re-sorting, and logs failures.
type MXResolver struct {
	lookuper MXLookuper
}

// NewMXResolver wraps a lookup backend.
func NewMXResolver(l MXLookuper) *MXResolver {
	return &MXResolver{lookuper: l}
}

// Resolve queries the MX records of domain. It never returns an error;
// failures are carried in the result and logged at warn level.
func (r *MXResolver) Resolve(ctx context.Context, domain string) LookupResult {
	records, err := r.lookuper.LookupMX(ctx, domain)
	if err != nil {
		logging.FromContext(ctx).Warn("mx lookup failed", "domain", domain, "error", err)
		return LookupResult{Domain: domain, Err: err}
	}

	out := make([]MXRecord, len(records))
	for i, rec := range records {
		out[i] = MXRecord{Pref: rec.Pref, Host: strings.TrimSuffix(rec.Host, ".")}
	}
	logging.FromContext(ctx).Debug("mx lookup", "domain", domain, "records", len(out))
	return LookupResult{Domain: domain, Records: out}
}
