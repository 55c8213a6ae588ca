package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/mxgroup/internal/app"
	"github.com/JonMunkholm/mxgroup/internal/config"
	"github.com/JonMunkholm/mxgroup/internal/core"
	"github.com/JonMunkholm/mxgroup/internal/logging"
)

type groupOptions struct {
	outDir     string
	format     string
	backend    string
	nameserver string
	timeout    time.Duration
	rulesFile  string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mxgroup",
		Short:         "Group email addresses from a spreadsheet by mail provider",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newGroupCmd())
	return root
}

func newGroupCmd() *cobra.Command {
	var opts groupOptions

	cmd := &cobra.Command{
		Use:   "group [file]",
		Short: "Write one spreadsheet of addresses per provider group",
		Long: "Reads every cell of the first sheet of an .xlsx, .xls or .csv file, " +
			"looks up the MX records of each address's domain and writes one file " +
			"per group into the output directory. Settings default to the same " +
			"environment variables the server reads.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env is fine; explicit environment wins over it.
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			applyFlags(cmd, cfg, opts)
			if err := cfg.Validate(); err != nil {
				return err
			}

			slog.SetDefault(logging.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format))
			return runGroup(cmd, cfg, args[0], opts.outDir)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.outDir, "out", "o", ".", "directory to write the group files to")
	f.StringVar(&opts.format, "format", "", "output format: xlsx or csv (default from OUTPUT_FORMAT)")
	f.StringVar(&opts.backend, "backend", "", "dns backend: system or dns (default from DNS_BACKEND)")
	f.StringVar(&opts.nameserver, "nameserver", "", "nameserver host[:port] to query")
	f.DurationVar(&opts.timeout, "timeout", 0, "per-lookup timeout, 0 keeps the backend default")
	f.StringVar(&opts.rulesFile, "rules", "", "YAML file of provider rules")
	f.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	return cmd
}

// applyFlags overrides configuration with the flags the user actually set.
func applyFlags(cmd *cobra.Command, cfg *config.Config, opts groupOptions) {
	f := cmd.Flags()
	if f.Changed("format") {
		cfg.Output.Format = opts.format
	}
	if f.Changed("backend") {
		cfg.DNS.Backend = opts.backend
	}
	if f.Changed("nameserver") {
		cfg.DNS.Nameserver = opts.nameserver
	}
	if f.Changed("timeout") {
		cfg.DNS.Timeout = opts.timeout
	}
	if f.Changed("rules") {
		cfg.Providers.RulesFile = opts.rulesFile
	}
	if f.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
}

func runGroup(cmd *cobra.Command, cfg *config.Config, path, outDir string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	svc, err := app.NewService(cfg)
	if err != nil {
		return err
	}

	result, err := svc.Process(ctx, core.NewRequestContext(path, filepath.Base(path), info.Size()))
	if err != nil {
		return fmt.Errorf("%s: %w", core.FormatUserError(err), err)
	}

	return writeOutputs(ctx, cmd, result, outDir)
}

func writeOutputs(ctx context.Context, cmd *cobra.Command, result *core.Result, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Total Count of Emails: %d\n", result.Total)
	for _, o := range result.Outputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		dest := filepath.Join(outDir, o.FileName)
		if err := os.WriteFile(dest, o.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", o.Key, err)
		}
		fmt.Fprintf(out, "%-30s %8s  %s\n", o.Key, humanize.Comma(int64(o.Count)), dest)
	}
	return nil
}
