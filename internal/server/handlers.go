package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/matzehuels/tagcloud/pkg/buildinfo"
	"github.com/matzehuels/tagcloud/pkg/cloud"
	"github.com/matzehuels/tagcloud/pkg/document"
	"github.com/matzehuels/tagcloud/pkg/errors"
	"github.com/matzehuels/tagcloud/pkg/pipeline"
)

// =============================================================================
// Request and Response Types
// =============================================================================

// LayoutRequest is the body of POST /v1/layout. Omitted fields take the
// server defaults; params merge field by field.
type LayoutRequest struct {
	Tags     []document.TagEntry `json:"tags"`
	Radius   float64             `json:"radius,omitempty"`
	Seed     uint64              `json:"seed,omitempty"`
	Fallback string              `json:"fallback,omitempty"`
	Params   cloud.Params        `json:"params"`
}

// RenderRequest is the body of POST /v1/render. When Layout is set it is
// rendered as-is and the tag fields are ignored.
type RenderRequest struct {
	LayoutRequest
	Layout   *document.Layout `json:"layout,omitempty"`
	Style    string           `json:"style,omitempty"`
	Scale    float64          `json:"scale,omitempty"`
	Padding  float64          `json:"padding"`
	Overlaps bool             `json:"overlaps,omitempty"`
	Animate  bool             `json:"animate,omitempty"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Cache   string `json:"cache,omitempty"`
}

// Cache status header values.
const (
	headerCache = "X-Cache"
	cacheHit    = "HIT"
	cacheMiss   = "MISS"
)

func (s *Server) newLayoutRequest() LayoutRequest {
	d := s.defaults
	return LayoutRequest{
		Radius:   d.Radius,
		Seed:     d.Seed,
		Fallback: d.Fallback,
		Params:   d.Params,
	}
}

func (s *Server) newRenderRequest() RenderRequest {
	d := s.defaults
	padding := pipeline.DefaultPadding
	if d.Padding != nil {
		padding = *d.Padding
	}
	return RenderRequest{
		LayoutRequest: s.newLayoutRequest(),
		Style:         d.Style,
		Scale:         d.Scale,
		Padding:       padding,
		Overlaps:      d.Overlaps,
		Animate:       d.Animate,
	}
}

func (req LayoutRequest) options() pipeline.Options {
	return pipeline.Options{
		Radius:   req.Radius,
		Seed:     req.Seed,
		Fallback: req.Fallback,
		Params:   req.Params,
	}
}

func (req RenderRequest) options(format string) pipeline.Options {
	opts := req.LayoutRequest.options()
	padding := req.Padding
	opts.Formats = []string{format}
	opts.Style = req.Style
	opts.Scale = req.Scale
	opts.Padding = &padding
	opts.Overlaps = req.Overlaps
	opts.Animate = req.Animate
	return opts
}

func (req LayoutRequest) tags() ([]cloud.Tag, error) {
	set := document.TagSet{Tags: req.Tags}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set.CloudTags(), nil
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	req := s.newLayoutRequest()
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	tags, err := req.tags()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	l, hit, err := s.runner.LayoutWithCacheInfo(r.Context(), tags, req.options())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set(headerCache, cacheStatus(hit))
	s.writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = document.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}

	req := s.newRenderRequest()
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := req.options(format)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, err)
		return
	}

	l, layoutHit, err := s.layoutFor(r.Context(), req, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	artifacts, renderHit, err := s.runner.RenderWithCacheInfo(r.Context(), l, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set(headerCache, cacheStatus(layoutHit && renderHit))
	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifacts[format]); err != nil {
		s.logger.Warn("write response failed", "err", err, "request_id", RequestID(r.Context()))
	}
}

// layoutFor returns the supplied layout or computes one from the tags.
// A supplied layout counts as a cache hit.
func (s *Server) layoutFor(ctx context.Context, req RenderRequest, opts pipeline.Options) (document.Layout, bool, error) {
	if req.Layout != nil {
		if len(req.Layout.Placements) > 0 && req.Layout.Radius <= 0 {
			return document.Layout{}, false, errors.New(errors.ErrCodeInvalidInput, "layout radius must be positive")
		}
		return *req.Layout, true, nil
	}
	tags, err := req.tags()
	if err != nil {
		return document.Layout{}, false, err
	}
	return s.runner.LayoutWithCacheInfo(ctx, tags, opts)
}

// Pinger is implemented by caches that can check their backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Version: buildinfo.Version}
	status := http.StatusOK

	if p, ok := s.runner.Cache.(Pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			s.logger.Warn("cache ping failed", "err", err)
			resp.Status = "degraded"
			resp.Cache = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			resp.Cache = "ok"
		}
	}
	s.writeJSON(w, status, resp)
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}

	id := RequestID(r.Context())
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err, "request_id", id)
	} else {
		s.logger.Debug("request rejected", "err", err, "request_id", id)
	}

	s.writeJSON(w, status, ErrorResponse{
		Code:      string(code),
		Message:   errors.UserMessage(err),
		RequestID: id,
	})
}

func statusFor(err error) int {
	switch {
	case errors.IsClientError(err):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrCodeUnsupported):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

func errNotFound(r *http.Request) error {
	return errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path)
}

func errMethodNotAllowed(r *http.Request) error {
	return errors.New(errors.ErrCodeUnsupported, "method %s not allowed on %s", r.Method, r.URL.Path)
}

func cacheStatus(hit bool) string {
	if hit {
		return cacheHit
	}
	return cacheMiss
}

func contentType(format string) string {
	switch format {
	case document.FormatSVG:
		return "image/svg+xml"
	case document.FormatPNG:
		return "image/png"
	default:
		return "application/json"
	}
}
