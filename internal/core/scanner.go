package core

import (
	"iter"
	"net/mail"
	"strings"
)

// Document is a loaded tabular document. Rows yields the cells of the first
// sheet in row order; each cell holds its scalar value (string, float64,
// bool or nil) as the format reports it.
type Document interface {
	Rows() iter.Seq[[]any]
}

// DocumentLoader opens the tabular document at path. ext selects the format.
type DocumentLoader interface {
	Load(path, ext string) (Document, error)
}

// ScanEmails yields every cell of doc whose value is a string that passes
// IsEmail, in row-major order. Values are yielded verbatim; nothing is
// trimmed or case-folded. Non-matching cells are skipped silently.
func ScanEmails(doc Document) iter.Seq[string] {
	return func(yield func(string) bool) {
		for row := range doc.Rows() {
			for _, cell := range row {
				s, ok := cell.(string)
				if !ok || !IsEmail(s) {
					continue
				}
				if !yield(s) {
					return
				}
			}
		}
	}
}

const (
	maxAddressLen = 254
	maxLocalLen   = 64
	maxLabelLen   = 63
)

// IsEmail reports whether s is a bare RFC 5322 addr-spec (local@domain)
// with a dotted hostname domain. Display names, angle brackets, comments
// and surrounding whitespace are rejected because the parsed address must
// equal s exactly.
func IsEmail(s string) bool {
	if s == "" || len(s) > maxAddressLen {
		return false
	}

	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return false
	}

	at := strings.LastIndexByte(s, '@')
	if at <= 0 || at > maxLocalLen {
		return false
	}
	return validHostname(s[at+1:])
}

// validHostname requires at least two LDH labels.
func validHostname(domain string) bool {
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if len(label) == 0 || len(label) > maxLabelLen {
			return false
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for i := 0; i < len(label); i++ {
			c := label[i]
			switch {
			case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
			default:
				return false
			}
		}
	}
	return true
}

// Domain returns the substring after the last '@' of email.
func Domain(email string) string {
	return email[strings.LastIndexByte(email, '@')+1:]
}
