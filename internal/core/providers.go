package core

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProviderRule merges every domain whose MX targets contain MXContains into
// the group named Key.
type ProviderRule struct {
	Key        string `yaml:"key"`
	MXContains string `yaml:"mx_contains"`
}

// ProviderRules are evaluated in order; the first rule that matches wins.
type ProviderRules []ProviderRule

// DefaultProviderRules recognizes mail routed through Google.
var DefaultProviderRules = ProviderRules{
	{Key: "google.com", MXContains: "google.com"},
}

// Match returns the key of the first rule whose marker occurs anywhere in
// any record's target. The comparison is a case-sensitive, unanchored
// substring test, so look-alike hosts containing the marker also match.
func (rs ProviderRules) Match(records []MXRecord) (string, bool) {
	for _, rule := range rs {
		for _, rec := range records {
			if strings.Contains(rec.Host, rule.MXContains) {
				return rule.Key, true
			}
		}
	}
	return "", false
}

// Validate rejects empty rule sets and rules with a blank key or marker.
func (rs ProviderRules) Validate() error {
	if len(rs) == 0 {
		return errors.New("provider rules: at least one rule is required")
	}
	for i, rule := range rs {
		if rule.Key == "" {
			return fmt.Errorf("provider rules[%d]: key is required", i)
		}
		if rule.MXContains == "" {
			return fmt.Errorf("provider rules[%d] (%s): mx_contains is required", i, rule.Key)
		}
	}
	return nil
}

type providerRulesFile struct {
	Providers ProviderRules `yaml:"providers"`
}

// LoadProviderRules reads rules from a YAML file of the form:
//
//	providers:
//	  - key: google.com
//	    mx_contains: google.com
//	  - key: outlook.com
//	    mx_contains: mail.protection.outlook.com
func LoadProviderRules(path string) (ProviderRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read provider rules: %w", err)
	}
	return ParseProviderRules(data)
}

// ParseProviderRules decodes and validates YAML rule data.
func ParseProviderRules(data []byte) (ProviderRules, error) {
	var file providerRulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse provider rules: %w", err)
	}
	if err := file.Providers.Validate(); err != nil {
		return nil, err
	}
	return file.Providers, nil
}
