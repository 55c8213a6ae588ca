package core

import (
	"fmt"
	"strings"
)

// SheetWriter encodes a list of values as a spreadsheet with one value per
// row in the first column.
type SheetWriter interface {
	Write(values []string) ([]byte, error)
	Extension() string
	ContentType() string
}

// Output is a downloadable document for one provider group.
type Output struct {
	Key         string `json:"key"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Count       int    `json:"count"`
	Data        []byte `json:"data"`
}

// OutputFileName returns "<lowercased key>_emails.<ext>".
func OutputFileName(key, ext string) string {
	return strings.ToLower(key) + "_emails." + ext
}

// RenderOutputs encodes each non-empty group in creation order. Empty groups
// produce nothing.
func RenderOutputs(grouping *Grouping, w SheetWriter) ([]Output, error) {
	groups := grouping.NonEmpty()
	outputs := make([]Output, 0, len(groups))

	for _, group := range groups {
		data, err := w.Write(group.Emails)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", group.Key, err)
		}
		outputs = append(outputs, Output{
			Key:         group.Key,
			FileName:    OutputFileName(group.Key, w.Extension()),
			ContentType: w.ContentType(),
			Count:       len(group.Emails),
			Data:        data,
		})
	}

	return outputs, nil
}
