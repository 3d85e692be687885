package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/cgmap/pkg/buildinfo"
	"github.com/matzehuels/cgmap/pkg/errors"
	"github.com/matzehuels/cgmap/pkg/observability"
	"github.com/matzehuels/cgmap/pkg/pipeline"
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatJSON: "application/json",
}

type sessionResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title,omitempty"`
	SequenceLength int       `json:"sequence_length"`
	Features       int       `json:"features"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresIn      string    `json:"expires_in"`
}

type errorResponse struct {
	Error   errors.Code `json:"error"`
	Message string      `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  buildinfo.Version,
		"sessions": s.store.Len(),
	})
}

// handleRender draws a posted scene once. Results go through the runner's
// artifact cache.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	opts, err := s.viewOptions(r, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := s.readScene(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.renderTimeout)
	defer cancel()
	res, err := s.runner.Execute(ctx, data, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if res.CacheInfo.RenderHit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	writeArtifact(w, format, res.Artifacts[format])
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	data, err := s.readScene(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sc, err := pipeline.LoadScene(r.Context(), data, s.logger)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.store.Create(r.Context(), sc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	observability.HTTP().OnSessionCreate(r.Context(), sess.ID, len(sc.Map.Features))
	w.Header().Set("Location", "/sessions/"+sess.ID)
	writeJSON(w, http.StatusCreated, sessionResponse{
		ID:             sess.ID,
		Title:          sc.Map.Title,
		SequenceLength: sc.Map.SequenceLength,
		Features:       len(sc.Map.Features),
		CreatedAt:      sess.CreatedAt,
		ExpiresIn:      s.store.TTL().String(),
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if format != pipeline.FormatSVG && format != pipeline.FormatPNG {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "map format %q (must be svg or png)", format))
		return
	}
	s.renderSession(w, r, format)
}

func (s *Server) handleLabels(w http.ResponseWriter, r *http.Request) {
	s.renderSession(w, r, pipeline.FormatJSON)
}

func (s *Server) renderSession(w http.ResponseWriter, r *http.Request, format string) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := s.viewOptions(r, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.renderTimeout)
	defer cancel()
	artifacts, res, err := sess.Render(ctx, s.runner, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if res != nil {
		w.Header().Set("X-Labels-Placed", strconv.Itoa(res.Placed))
		w.Header().Set("X-Labels-Dropped", strconv.Itoa(res.Dropped))
	}
	writeArtifact(w, format, artifacts[format])
}

// viewOptions builds run options from the server defaults and the query.
func (s *Server) viewOptions(r *http.Request, format string) (pipeline.Options, error) {
	opts := s.defaults
	opts.Formats = []string{format}
	opts.Logger = s.logger
	q := r.URL.Query()

	floats := []struct {
		name string
		dst  *float64
	}{
		{"width", &opts.Width},
		{"height", &opts.Height},
		{"zoom", &opts.Zoom},
		{"scale", &opts.Scale},
	}
	for _, f := range floats {
		if v := q.Get(f.name); v != "" {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return opts, errors.New(errors.ErrCodeInvalidInput, "%s: %q is not a number", f.name, v)
			}
			*f.dst = n
		}
	}
	if v := q.Get("center"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "center: %q is not an integer", v)
		}
		opts.Center = n
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"reuse", &opts.Reuse},
		{"hide_labels", &opts.HideLabels},
		{"hide_ruler", &opts.HideRuler},
		{"hide_legends", &opts.HideLegends},
		{"hide_title", &opts.HideTitle},
	}
	for _, b := range bools {
		if v := q.Get(b.name); v != "" {
			ok, err := strconv.ParseBool(v)
			if err != nil {
				return opts, errors.New(errors.ErrCodeInvalidInput, "%s: %q is not a boolean", b.name, v)
			}
			*b.dst = ok
		}
	}
	if err := opts.ValidateForRender(); err != nil {
		return opts, err
	}
	return opts, nil
}

func (s *Server) readScene(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxSceneBytes))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read scene")
	}
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty scene document")
	}
	return data, nil
}

// statusFor maps error codes to HTTP statuses.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidScene, errors.ErrCodeInvalidRange,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidOptions:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeSessionNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "err", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
	writeJSON(w, status, errorResponse{Error: code, Message: errors.UserMessage(err)})
}

func writeArtifact(w http.ResponseWriter, format string, data []byte) {
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// observe reports requests to the HTTP hooks and logs them at debug level.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Header().Set("Server", buildinfo.UserAgent())
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, route)
		hooks.OnResponse(r.Context(), r.Method, route, ww.Status(), time.Since(start))
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}
