package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
)

func newTestService(t *testing.T, loader *stubLoader, lookuper MXLookuper) *Service {
	t.Helper()
	svc, err := NewService(loader, lookuper, lineWriter{}, Options{TempDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func TestNewService_RequiresCollaborators(t *testing.T) {
	if _, err := NewService(nil, newStaticLookuper(), lineWriter{}, Options{}); err == nil {
		t.Error("expected error for nil loader")
	}
	if _, err := NewService(&stubLoader{}, newStaticLookuper(), lineWriter{}, Options{Rules: ProviderRules{}}); err == nil {
		t.Error("expected error for empty rule set")
	}
}

func TestNewService_DefaultLimits(t *testing.T) {
	svc, err := NewService(&stubLoader{}, newStaticLookuper(), lineWriter{}, Options{})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	if got := svc.Limits().MaxFileSize; got != DefaultUploadLimits.MaxFileSize {
		t.Errorf("MaxFileSize = %d, want %d", got, DefaultUploadLimits.MaxFileSize)
	}
}

func TestProcessUpload_Scenario(t *testing.T) {
	loader := &stubLoader{doc: rowsDoc{
		{"Email", "Name"},
		{"a@gmail.com", "Ann"},
		{"b@custom.io", "Bob"},
	}}
	lookuper := newStaticLookuper().with("gmail.com", "aspmx.l.google.com.").with("custom.io")
	svc := newTestService(t, loader, lookuper)

	result, err := svc.ProcessUpload(context.Background(), "contacts.xlsx", 64, strings.NewReader("payload"))
	if err != nil {
		t.Fatalf("ProcessUpload() error = %v", err)
	}

	if result.Total != 2 {
		t.Errorf("Total = %d, want 2", result.Total)
	}
	if len(result.Outputs) != 2 {
		t.Fatalf("got %d outputs, want 2", len(result.Outputs))
	}
	if result.Outputs[0].FileName != "google.com_emails.txt" || string(result.Outputs[0].Data) != "a@gmail.com" {
		t.Errorf("outputs[0] = %s %q", result.Outputs[0].FileName, result.Outputs[0].Data)
	}
	if result.Outputs[1].FileName != "custom.io_emails.txt" || string(result.Outputs[1].Data) != "b@custom.io" {
		t.Errorf("outputs[1] = %s %q", result.Outputs[1].FileName, result.Outputs[1].Data)
	}
	if result.RunID == "" {
		t.Error("RunID should be set")
	}
	if result.FileName != "contacts.xlsx" {
		t.Errorf("FileName = %q", result.FileName)
	}
}

func TestProcessUpload_TempFileLifecycle(t *testing.T) {
	loader := &stubLoader{doc: rowsDoc{{"a@x.com"}}}
	svc := newTestService(t, loader, newStaticLookuper().with("x.com"))

	if _, err := svc.ProcessUpload(context.Background(), "list.CSV", 7, strings.NewReader("a@x.com")); err != nil {
		t.Fatalf("ProcessUpload() error = %v", err)
	}

	if !loader.existed {
		t.Fatal("temporary file should exist while the document loads")
	}
	if loader.contents != "a@x.com" {
		t.Errorf("temporary file contents = %q", loader.contents)
	}
	if loader.gotExt != "CSV" {
		t.Errorf("loader ext = %q, want declared extension", loader.gotExt)
	}
	if !strings.HasSuffix(loader.gotPath, ".CSV") {
		t.Errorf("temp path %q should keep the extension", loader.gotPath)
	}
	if _, err := os.Stat(loader.gotPath); !os.IsNotExist(err) {
		t.Errorf("temporary file should be removed after the run, stat err = %v", err)
	}
}

func TestProcessUpload_LoadFailure(t *testing.T) {
	loader := &stubLoader{err: errors.New("zip: not a valid zip file")}
	lookuper := newStaticLookuper()
	svc := newTestService(t, loader, lookuper)

	result, err := svc.ProcessUpload(context.Background(), "broken.xlsx", 10, strings.NewReader("garbage"))

	if result != nil {
		t.Error("a load failure should produce no result")
	}
	var lerr *DocumentLoadError
	if !errors.As(err, &lerr) {
		t.Fatalf("error = %v, want *DocumentLoadError", err)
	}
	if !errors.Is(err, ErrDocumentLoad) {
		t.Error("error should wrap ErrDocumentLoad")
	}
	if len(lookuper.calls) != 0 {
		t.Errorf("no lookups expected after a load failure, got %v", lookuper.calls)
	}
	if _, statErr := os.Stat(loader.gotPath); !os.IsNotExist(statErr) {
		t.Error("temporary file should be removed after a load failure")
	}
}

func TestProcessUpload_ValidationBeforeTransfer(t *testing.T) {
	loader := &stubLoader{}
	svc := newTestService(t, loader, newStaticLookuper())

	_, err := svc.ProcessUpload(context.Background(), "notes.pdf", 6000000, iotest.ErrReader(errors.New("must not be read")))

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if len(verr.Reasons) != 2 {
		t.Errorf("reasons = %v, want size and extension", verr.Reasons)
	}
	if loader.gotPath != "" {
		t.Error("loader should not run for a rejected upload")
	}
}

func TestProcessUpload_TransferFailure(t *testing.T) {
	dir := t.TempDir()
	loader := &stubLoader{}
	svc, err := NewService(loader, newStaticLookuper(), lineWriter{}, Options{TempDir: dir})
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.ProcessUpload(context.Background(), "list.csv", 10, iotest.ErrReader(errors.New("connection reset")))

	var terr *UploadTransferError
	if !errors.As(err, &terr) {
		t.Fatalf("error = %v, want *UploadTransferError", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("temp dir should be empty, found %d entries", len(entries))
	}
}

func TestProcessUpload_MissingTempDir(t *testing.T) {
	svc, err := NewService(&stubLoader{}, newStaticLookuper(), lineWriter{},
		Options{TempDir: filepath.Join(t.TempDir(), "does-not-exist")})
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.ProcessUpload(context.Background(), "list.csv", 10, strings.NewReader("x"))
	if !errors.Is(err, ErrUploadTransfer) {
		t.Errorf("error = %v, want ErrUploadTransfer", err)
	}
}

func TestProcess_EmptyDocument(t *testing.T) {
	loader := &stubLoader{doc: rowsDoc{{"name", 12.5}, {}}}
	svc := newTestService(t, loader, newStaticLookuper())

	result, err := svc.Process(context.Background(), NewRequestContext("/nonexistent", "empty.csv", 1))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if result.Total != 0 || len(result.Outputs) != 0 || len(result.Groups) != 0 {
		t.Errorf("result = %+v, want nothing", result)
	}
}

func TestProcess_Cancelled(t *testing.T) {
	loader := &stubLoader{doc: rowsDoc{{"a@x.com"}}}
	svc := newTestService(t, loader, newStaticLookuper())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Process(ctx, NewRequestContext("/nonexistent", "list.csv", 1))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if status := svc.LimiterStatus(); status.Active != 0 {
		t.Errorf("Active = %d after run, want 0", status.Active)
	}
}
