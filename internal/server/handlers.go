package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/vastmap/pkg/buildinfo"
	"github.com/matzehuels/vastmap/pkg/errors"
	"github.com/matzehuels/vastmap/pkg/pipeline"
	"github.com/matzehuels/vastmap/pkg/tmap"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleTMAP(w http.ResponseWriter, r *http.Request) {
	result, err := s.execute(r, pipeline.FormatJSON)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(result.Artifacts[pipeline.FormatJSON])
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	if !s.runner.Caps.HasRenderer {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "rendering is disabled"))
		return
	}
	result, err := s.execute(r, pipeline.FormatJSON, pipeline.FormatSVG)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(result.Artifacts[pipeline.FormatSVG])
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := pipeline.Fetch(r.Context(), s.store, chi.URLParam(r, "key"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := tmap.WriteJSON(w, doc); err != nil {
		loggerFromRequest(r).Error("write document", "error", err)
	}
}

// execute lays out the server's document with the request's mode.
func (s *Server) execute(r *http.Request, formats ...string) (*pipeline.Result, error) {
	opts := s.opts
	opts.Document = s.doc
	opts.Formats = formats
	opts.Logger = loggerFromRequest(r)
	if mode := r.URL.Query().Get("mode"); mode != "" {
		opts.Mode = mode
	}
	return s.runner.Execute(r.Context(), opts)
}

type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		loggerFromRequest(r).Error("request failed", "error", err)
	}
	writeJSON(w, status, errorBody{
		Error:     errors.UserMessage(err),
		Code:      string(code),
		RequestID: requestIDFrom(r.Context()),
	})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
