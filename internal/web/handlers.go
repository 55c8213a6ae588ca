package web

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/mxgroup/internal/core"
	"github.com/JonMunkholm/mxgroup/internal/logging"
	"github.com/JonMunkholm/mxgroup/internal/web/templates"
)

const (
	// multipartMemory is how much of the form is held in memory before
	// parts spill to temporary files.
	multipartMemory = 1 << 20

	// formOverhead is allowed on top of the file size limit for multipart
	// boundaries and headers.
	formOverhead = 1 << 20
)

// GroupResponse is the JSON body of a successful POST /api/group.
type GroupResponse struct {
	RunID      string                `json:"run_id"`
	FileName   string                `json:"file_name"`
	Total      int                   `json:"total"`
	Groups     []*core.ProviderGroup `json:"groups"`
	Outputs    []core.Output         `json:"outputs"`
	DurationMS int64                 `json:"duration_ms"`
}

func newGroupResponse(res *core.Result) GroupResponse {
	groups := make([]*core.ProviderGroup, 0, len(res.Groups))
	for _, g := range res.Groups {
		if len(g.Emails) > 0 {
			groups = append(groups, g)
		}
	}
	return GroupResponse{
		RunID:      res.RunID,
		FileName:   res.FileName,
		Total:      res.Total,
		Groups:     groups,
		Outputs:    res.Outputs,
		DurationMS: res.Duration.Milliseconds(),
	}
}

// handleIndex renders the upload form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusOK, s.pageParams())
}

// handleUploadForm runs the pipeline for a browser form submission and
// renders the total and the download links.
func (s *Server) handleUploadForm(w http.ResponseWriter, r *http.Request) {
	result, err := s.receiveUpload(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	params := s.pageParams()
	params.Results = resultsView(result)
	s.renderPage(w, r, http.StatusOK, params)
}

// handleGroupAPI runs the pipeline and returns the groups and encoded
// documents as JSON.
func (s *Server) handleGroupAPI(w http.ResponseWriter, r *http.Request) {
	result, err := s.receiveUpload(w, r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, r, http.StatusOK, newGroupResponse(result))
}

// handleHealth reports liveness and run slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status": "ok",
		"runs":   s.service.LimiterStatus(),
	})
}

// receiveUpload reads the "file" part of a multipart form and processes it.
// A body larger than the size limit plus form overhead is reported as a
// too-large file.
func (s *Server) receiveUpload(w http.ResponseWriter, r *http.Request) (*core.Result, error) {
	limits := s.service.Limits()
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxFileSize+formOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isBodyTooLarge(err) {
			return nil, &core.ValidationError{Reasons: []core.Reason{{
				Kind:   core.ReasonTooLarge,
				Detail: fmt.Sprintf("request exceeds %d bytes", limits.MaxFileSize+formOverhead),
			}}}
		}
		return nil, fmt.Errorf("%w: %v", errInvalidForm, err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errNoFile
	}
	defer file.Close()

	ctx := withRequestMetadata(r.Context(), r)
	return s.service.ProcessUpload(ctx, header.Filename, header.Size, file)
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

func (s *Server) pageParams() templates.PageParams {
	limits := s.service.Limits()
	return templates.PageParams{
		MaxFileSize: limits.MaxFileSize,
		Accept:      limits.AllowedExtensions,
	}
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, params templates.PageParams) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.Page(params).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page failed", "error", err)
	}
}

// resultsView turns each output into an inline data URI link so the
// browser can save it without another request.
func resultsView(res *core.Result) *templates.ResultsView {
	view := &templates.ResultsView{FileName: res.FileName, Total: res.Total}
	for _, out := range res.Outputs {
		view.Downloads = append(view.Downloads, templates.Download{
			Key:      out.Key,
			FileName: out.FileName,
			Href:     dataURI(out.ContentType, out.Data),
			Count:    out.Count,
		})
	}
	return view
}

func dataURI(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
