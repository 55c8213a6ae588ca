package core

import (
	"context"
	"fmt"
)

// ProviderGroup collects the addresses classified under one key, in scan
// order, together with the domain each address came from.
type ProviderGroup struct {
	Key     string   `json:"key"`
	Emails  []string `json:"emails"`
	Domains []string `json:"domains"`
}

func (g *ProviderGroup) add(email, domain string) {
	g.Emails = append(g.Emails, email)
	g.Domains = append(g.Domains, domain)
}

// Grouping is the result of classifying one run's addresses. Groups are
// created lazily and remembered in creation order.
type Grouping struct {
	keys   []string
	groups map[string]*ProviderGroup
	total  int
}

// NewGrouping returns an empty grouping.
func NewGrouping() *Grouping {
	return &Grouping{groups: make(map[string]*ProviderGroup)}
}

// GetOrCreate returns the group for key, creating an empty one on first use.
func (g *Grouping) GetOrCreate(key string) *ProviderGroup {
	if group, ok := g.groups[key]; ok {
		return group
	}
	group := &ProviderGroup{Key: key, Emails: []string{}, Domains: []string{}}
	g.groups[key] = group
	g.keys = append(g.keys, key)
	return group
}

// Get returns the group for key without creating it.
func (g *Grouping) Get(key string) (*ProviderGroup, bool) {
	group, ok := g.groups[key]
	return group, ok
}

// Keys returns every group key in creation order, including empty groups.
func (g *Grouping) Keys() []string {
	return append([]string(nil), g.keys...)
}

// Groups returns every group in creation order, including empty groups.
func (g *Grouping) Groups() []*ProviderGroup {
	out := make([]*ProviderGroup, 0, len(g.keys))
	for _, key := range g.keys {
		out = append(out, g.groups[key])
	}
	return out
}

// NonEmpty returns the groups holding at least one address, in creation order.
func (g *Grouping) NonEmpty() []*ProviderGroup {
	var out []*ProviderGroup
	for _, key := range g.keys {
		if group := g.groups[key]; len(group.Emails) > 0 {
			out = append(out, group)
		}
	}
	return out
}

// Total is the number of addresses classified.
func (g *Grouping) Total() int {
	return g.total
}

// Grouper assigns addresses to provider groups using MX lookups.
type Grouper struct {
	resolver *MXResolver
	rules    ProviderRules
}

// NewGrouper creates a grouper. A nil rules slice means DefaultProviderRules.
func NewGrouper(resolver *MXResolver, rules ProviderRules) *Grouper {
	if rules == nil {
		rules = DefaultProviderRules
	}
	return &Grouper{resolver: resolver, rules: rules}
}

// Classify returns the group key for an address whose domain has the given
// MX records: a matching provider rule's key, or the domain itself.
func (g *Grouper) Classify(domain string, records []MXRecord) (key string, recognized bool) {
	if key, ok := g.rules.Match(records); ok {
		return key, true
	}
	return domain, false
}

// Group classifies emails in order. Each address triggers its own MX lookup,
// even when its domain was already seen. The group for the address's own
// domain is always created, even if the address is then merged into a
// provider group, so such a domain can end up with an empty group.
//
// The only error is cancellation of ctx, checked before each address.
func (g *Grouper) Group(ctx context.Context, emails []string) (*Grouping, error) {
	grouping := NewGrouping()

	for i, email := range emails {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("group emails: stopped at %d of %d: %w", i, len(emails), err)
		}

		domain := Domain(email)
		records := g.resolver.Resolve(ctx, domain).RecordsOrEmpty()

		own := grouping.GetOrCreate(domain)

		if key, recognized := g.Classify(domain, records); recognized {
			grouping.GetOrCreate(key).add(email, domain)
		} else {
			own.add(email, domain)
		}
		grouping.total++
	}

	return grouping, nil
}
