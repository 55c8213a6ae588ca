// Package templates renders the HTML pages of the upload UI. Components are
// written in .templ files; run `templ generate` after editing them.
package templates

import "strings"

// Alert is one user-facing problem shown above the form.
type Alert struct {
	Message string
	Action  string
	Code    string
}

// Download is a link to one provider group's document.
type Download struct {
	Key      string
	FileName string
	Href     string
	Count    int
}

// ResultsView summarizes a completed run.
type ResultsView struct {
	FileName  string
	Total     int
	Downloads []Download
}

// PageParams drives the single page of the UI.
type PageParams struct {
	MaxFileSize int64
	Accept      []string
	Alerts      []Alert
	Results     *ResultsView
}

// acceptList formats extensions for the file input's accept attribute.
func acceptList(exts []string) string {
	out := make([]string, len(exts))
	for i, ext := range exts {
		out[i] = "." + strings.TrimPrefix(ext, ".")
	}
	return strings.Join(out, ", ")
}
