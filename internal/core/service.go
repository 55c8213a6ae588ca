package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/mxgroup/internal/logging"
)

// Options configures a Service. Zero values fall back to defaults.
type Options struct {
	Limits        UploadLimits
	Rules         ProviderRules
	TempDir       string
	MaxConcurrent int
	MaxWaitTime   time.Duration
}

// Service runs the extraction and grouping pipeline.
type Service struct {
	loader  DocumentLoader
	grouper *Grouper
	writer  SheetWriter
	limits  UploadLimits
	tempDir string
	limiter *RunLimiter
}

// Result is everything one run produced.
type Result struct {
	RunID    string           `json:"run_id"`
	FileName string           `json:"file_name"`
	Total    int              `json:"total"`
	Groups   []*ProviderGroup `json:"groups"`
	Outputs  []Output         `json:"outputs"`
	Duration time.Duration    `json:"duration"`
}

// NewService wires the pipeline collaborators.
func NewService(loader DocumentLoader, lookuper MXLookuper, writer SheetWriter, opts Options) (*Service, error) {
	if loader == nil || lookuper == nil || writer == nil {
		return nil, errors.New("core: loader, lookuper and writer are required")
	}
	if opts.Limits.MaxFileSize <= 0 || len(opts.Limits.AllowedExtensions) == 0 {
		opts.Limits = DefaultUploadLimits
	}
	if opts.Rules != nil {
		if err := opts.Rules.Validate(); err != nil {
			return nil, err
		}
	}

	return &Service{
		loader:  loader,
		grouper: NewGrouper(NewMXResolver(lookuper), opts.Rules),
		writer:  writer,
		limits:  opts.Limits,
		tempDir: opts.TempDir,
		limiter: NewRunLimiter(opts.MaxConcurrent, opts.MaxWaitTime),
	}, nil
}

// Limits returns the gatekeeping rules in force.
func (s *Service) Limits() UploadLimits {
	return s.limits
}

// ProcessUpload validates an uploaded file, copies it to a temporary file
// for the duration of the run and processes it. The temporary file is
// removed on every return path.
func (s *Service) ProcessUpload(ctx context.Context, fileName string, size int64, src io.Reader) (*Result, error) {
	req := NewRequestContext("", fileName, size)
	if err := s.limits.Validate(req); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(s.tempDir, "mxgroup-upload-*."+req.Extension)
	if err != nil {
		return nil, &UploadTransferError{Err: err}
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return nil, &UploadTransferError{Err: err}
	}
	if err := tmp.Close(); err != nil {
		return nil, &UploadTransferError{Err: err}
	}

	req.Path = tmp.Name()
	return s.Process(ctx, req)
}

// Process runs the pipeline on a file that is already on disk. Scanning
// completes before any lookup starts; a load failure aborts the run with
// no output.
func (s *Service) Process(ctx context.Context, req RequestContext) (*Result, error) {
	if err := s.limits.Validate(req); err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	start := time.Now()
	runID := uuid.New().String()
	ctx = logging.ContextWithFields(ctx, "run_id", runID, "file", req.FileName)
	logger := logging.FromContext(ctx)
	logger.Info("run started", "size", req.Size)

	doc, err := s.loader.Load(req.Path, req.Extension)
	if err != nil {
		return nil, &DocumentLoadError{Path: req.FileName, Err: err}
	}
	emails := slices.Collect(ScanEmails(doc))
	logger.Debug("scan complete", "emails", len(emails))

	grouping, err := s.grouper.Group(ctx, emails)
	if err != nil {
		return nil, err
	}

	outputs, err := RenderOutputs(grouping, s.writer)
	if err != nil {
		return nil, fmt.Errorf("render outputs: %w", err)
	}

	result := &Result{
		RunID:    runID,
		FileName: req.FileName,
		Total:    grouping.Total(),
		Groups:   grouping.Groups(),
		Outputs:  outputs,
		Duration: time.Since(start),
	}
	logger.Info("run completed",
		"emails", result.Total,
		"groups", len(result.Groups),
		"outputs", len(result.Outputs),
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// LimiterStatus reports run slot usage.
func (s *Service) LimiterStatus() RunLimiterStatus {
	return s.limiter.Status()
}

// WaitForRuns blocks until in-flight runs finish or ctx ends.
func (s *Service) WaitForRuns(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
