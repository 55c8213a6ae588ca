package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestProviderRules_Match(t *testing.T) {
	rules := ProviderRules{
		{Key: "outlook.com", MXContains: "mail.protection.outlook.com"},
		{Key: "google.com", MXContains: "google.com"},
	}

	tests := []struct {
		name    string
		hosts   []string
		wantKey string
		wantOK  bool
	}{
		{"google", []string{"aspmx.l.google.com"}, "google.com", true},
		{"outlook", []string{"acme-org.mail.protection.outlook.com"}, "outlook.com", true},
		{"first rule wins", []string{"aspmx.l.google.com", "x.mail.protection.outlook.com"}, "outlook.com", true},
		{"any record counts", []string{"mx1.acme.org", "backup.google.com"}, "google.com", true},
		{"no match", []string{"mx.acme.org"}, "", false},
		{"empty", nil, "", false},
		{"case sensitive", []string{"ASPMX.L.GOOGLE.COM"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := make([]MXRecord, len(tt.hosts))
			for i, h := range tt.hosts {
				records[i] = MXRecord{Pref: 10, Host: h}
			}
			key, ok := rules.Match(records)
			if key != tt.wantKey || ok != tt.wantOK {
				t.Errorf("Match() = %q, %v; want %q, %v", key, ok, tt.wantKey, tt.wantOK)
			}
		})
	}
}

func TestProviderRules_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rules   ProviderRules
		wantErr string
	}{
		{"default", DefaultProviderRules, ""},
		{"empty", ProviderRules{}, "at least one rule"},
		{"missing key", ProviderRules{{MXContains: "google.com"}}, "key is required"},
		{"missing marker", ProviderRules{{Key: "google.com"}}, "mx_contains is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rules.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseProviderRules(t *testing.T) {
	data := []byte(`
providers:
  - key: outlook.com
    mx_contains: mail.protection.outlook.com
  - key: google.com
    mx_contains: google.com
`)

	rules, err := ParseProviderRules(data)
	if err != nil {
		t.Fatalf("ParseProviderRules() error = %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(rules))
	}
	if rules[0].Key != "outlook.com" || rules[0].MXContains != "mail.protection.outlook.com" {
		t.Errorf("rules[0] = %+v", rules[0])
	}
	if rules[1].Key != "google.com" {
		t.Errorf("rules[1] = %+v", rules[1])
	}
}

func TestParseProviderRules_Invalid(t *testing.T) {
	if _, err := ParseProviderRules([]byte("providers: [")); err == nil {
		t.Error("expected YAML syntax error")
	}
	if _, err := ParseProviderRules([]byte("providers: []")); err == nil {
		t.Error("expected error for empty rule list")
	}
}

func TestLoadProviderRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "providers.yaml")
	if err := os.WriteFile(path, []byte("providers:\n  - key: google.com\n    mx_contains: google.com\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadProviderRules(path)
	if err != nil {
		t.Fatalf("LoadProviderRules() error = %v", err)
	}
	if len(rules) != 1 || rules[0].Key != "google.com" {
		t.Errorf("rules = %+v", rules)
	}

	if _, err := LoadProviderRules(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
