package core

import (
	"context"
	"errors"
	"iter"
	"os"
	"strings"
	"sync"
)

// staticLookuper answers MX queries from a fixed table and counts calls.
type staticLookuper struct {
	mu      sync.Mutex
	records map[string][]MXRecord
	fail    map[string]error
	calls   []string
}

func newStaticLookuper() *staticLookuper {
	return &staticLookuper{
		records: make(map[string][]MXRecord),
		fail:    make(map[string]error),
	}
}

func (l *staticLookuper) with(domain string, hosts ...string) *staticLookuper {
	recs := make([]MXRecord, len(hosts))
	for i, h := range hosts {
		recs[i] = MXRecord{Pref: uint16(10 * (i + 1)), Host: h}
	}
	l.records[domain] = recs
	return l
}

func (l *staticLookuper) failing(domain string, err error) *staticLookuper {
	l.fail[domain] = err
	return l
}

func (l *staticLookuper) LookupMX(_ context.Context, domain string) ([]MXRecord, error) {
	l.mu.Lock()
	l.calls = append(l.calls, domain)
	l.mu.Unlock()

	if err, ok := l.fail[domain]; ok {
		return nil, err
	}
	if recs, ok := l.records[domain]; ok {
		return recs, nil
	}
	return nil, errors.New("lookup " + domain + ": no such host")
}

// rowsDoc is an in-memory Document.
type rowsDoc [][]any

func (d rowsDoc) Rows() iter.Seq[[]any] {
	return func(yield func([]any) bool) {
		for _, row := range d {
			if !yield(row) {
				return
			}
		}
	}
}

// stubLoader returns doc (or err) for any path and records what it was asked.
type stubLoader struct {
	doc      Document
	err      error
	gotPath  string
	gotExt   string
	existed  bool
	contents string
}

func (l *stubLoader) Load(path, ext string) (Document, error) {
	l.gotPath, l.gotExt = path, ext
	if data, err := os.ReadFile(path); err == nil {
		l.existed = true
		l.contents = string(data)
	}
	if l.err != nil {
		return nil, l.err
	}
	return l.doc, nil
}

// lineWriter encodes values one per line.
type lineWriter struct {
	err error
}

func (w lineWriter) Write(values []string) ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return []byte(strings.Join(values, "\n")), nil
}

func (lineWriter) Extension() string   { return "txt" }
func (lineWriter) ContentType() string { return "text/plain" }
