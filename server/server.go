// Package server exposes the StoryBot pipeline over HTTP with a small form page.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"storybot_eli5/generator"
	"storybot_eli5/render"
)

//go:embed web/index.html
var embeddedStatic embed.FS

// Storyteller is the part of generator.StoryBot the server needs.
type Storyteller interface {
	CreateStory(ctx context.Context, req generator.StoryRequest) (*generator.Result, error)
	AgentInfo() []generator.AgentInfo
	NewRequest(topic string) generator.StoryRequest
}

type Server struct {
	bot     Storyteller
	timeout time.Duration
	logger  *slog.Logger
}

// New returns a Server; timeout bounds one whole CreateStory call (0 = none).
func New(bot Storyteller, timeout time.Duration, logger *slog.Logger) (*Server, error) {
	if bot == nil {
		return nil, errors.New("storybot required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{bot: bot, timeout: timeout, logger: logger}, nil
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLoggingMiddleware(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/api/agents", s.handleAgents)
	r.Post("/api/stories", s.handleCreateStory)
	return r
}

// --- Handlers ---

type storyReq struct {
	Topic           string `json:"topic"`
	Age             *int   `json:"age"`
	SimplerLanguage bool   `json:"simpler_language"`
}

type storyResp struct {
	*generator.Result
	FinalStoryHTML string `json:"final_story_html"`
}

type errorResp struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
	Stage string `json:"stage,omitempty"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := embeddedStatic.ReadFile("web/index.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.bot.AgentInfo())
}

func (s *Server) handleCreateStory(w http.ResponseWriter, r *http.Request) {
	var req storyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: err.Error(), Code: generator.CodeValidation})
		return
	}
	sr := s.bot.NewRequest(req.Topic)
	if req.Age != nil {
		sr.Age = *req.Age
	}
	sr.SimplerLanguage = req.SimplerLanguage

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	res, err := s.bot.CreateStory(ctx, sr)
	if err != nil {
		s.logger.Warn("story request failed", "request_id", middleware.GetReqID(r.Context()), "error", err)
		writeError(w, err)
		return
	}

	html, err := render.MarkdownToHTML(res.FinalStory)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, storyResp{Result: res, FinalStoryHTML: html})
}

// --- Helpers ---

func writeError(w http.ResponseWriter, err error) {
	resp := errorResp{Error: err.Error(), Code: generator.ErrorCode(err)}
	status := http.StatusBadGateway

	var vErr *generator.ValidationError
	var pErr *generator.PipelineError
	var provErr *generator.ProviderError
	switch {
	case errors.As(err, &vErr):
		status = http.StatusBadRequest
		resp.Field = vErr.Field
	case errors.As(err, &pErr):
		resp.Stage = string(pErr.Stage)
		if errors.As(err, &provErr) && provErr.Reason == generator.ReasonRateLimit {
			status = http.StatusTooManyRequests
		} else if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func requestLoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
