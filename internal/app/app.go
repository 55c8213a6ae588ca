// Package app assembles the grouping service from configuration. The
// server and the CLI share it so both behave identically for the same
// settings.
package app

import (
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/mxgroup/internal/config"
	"github.com/JonMunkholm/mxgroup/internal/core"
	"github.com/JonMunkholm/mxgroup/internal/mx"
	"github.com/JonMunkholm/mxgroup/internal/sheet"
)

// NewService builds the DNS backend, document loader, output writer and
// provider rules described by cfg and wires them into a core.Service.
func NewService(cfg *config.Config) (*core.Service, error) {
	lookuper, err := mx.New(cfg.DNS.Backend, cfg.DNS.Nameserver, cfg.DNS.Timeout)
	if err != nil {
		return nil, fmt.Errorf("dns backend: %w", err)
	}

	writer, err := sheet.NewWriter(cfg.Output.Format)
	if err != nil {
		return nil, fmt.Errorf("output writer: %w", err)
	}

	var rules core.ProviderRules
	if cfg.Providers.RulesFile != "" {
		rules, err = core.LoadProviderRules(cfg.Providers.RulesFile)
		if err != nil {
			return nil, err
		}
		slog.Info("provider rules loaded", "file", cfg.Providers.RulesFile, "rules", len(rules))
	}

	return core.NewService(sheet.NewLoader(), lookuper, writer, core.Options{
		Limits: core.UploadLimits{
			MaxFileSize:       cfg.Upload.MaxFileSize,
			AllowedExtensions: cfg.Upload.AllowedExtensions,
		},
		Rules:         rules,
		TempDir:       cfg.Upload.TempDir,
		MaxConcurrent: cfg.Upload.MaxConcurrent,
		MaxWaitTime:   cfg.Upload.MaxWaitTime,
	})
}
