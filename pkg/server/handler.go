package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/manifestlab/puppetmill/pkg/eval"
	"github.com/manifestlab/puppetmill/pkg/llm"
)

const (
	HealthzPath  = "/healthz"
	ReadyzPath   = "/readyz"
	MetricsPath  = "/metrics"
	GeneratePath = "/generate"
)

// GenerateRequest asks the backing model for Puppet code.
type GenerateRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateResponse carries the generated code and its syntax score.
type GenerateResponse struct {
	Status      string `json:"status"`
	Model       string `json:"model"`
	Prompt      string `json:"prompt"`
	Code        string `json:"code"`
	SyntaxScore int    `json:"syntax_score"`
	DurationMS  int64  `json:"duration_ms"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

type Handler struct {
	log *slog.Logger
	cfg Config
}

func NewHandler(log *slog.Logger, cfg Config) (*Handler, error) {
	if log == nil {
		return nil, errors.New("logger is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("handler config validation failed: %w", err)
	}
	return &Handler{log: log, cfg: cfg}, nil
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc(HealthzPath, h.healthzHandler)
	mux.HandleFunc(ReadyzPath, h.readyzHandler)
	mux.HandleFunc(GeneratePath, h.generateHandler)
	mux.Handle(MetricsPath, promhttp.Handler())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeJSONError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, ErrorResponse{Error: msg, Code: status})
}

func (h *Handler) generateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		h.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		GenerateRequestErrorsTotal.WithLabelValues("method_not_allowed").Inc()
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			h.writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
			GenerateRequestErrorsTotal.WithLabelValues("request_body_too_large").Inc()
			return
		}
		h.writeJSONError(w, http.StatusBadRequest, "failed to read body")
		GenerateRequestErrorsTotal.WithLabelValues("failed_to_read_body").Inc()
		return
	}

	var req GenerateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeJSONError(w, http.StatusBadRequest, "invalid json")
		GenerateRequestErrorsTotal.WithLabelValues("invalid_json").Inc()
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		h.writeJSONError(w, http.StatusBadRequest, "prompt is required")
		GenerateRequestErrorsTotal.WithLabelValues("empty_prompt").Inc()
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.GenerateTimeout)
	defer cancel()

	prompt := llm.FormatPrompt(req.Prompt)
	start := h.cfg.Clock.Now()
	completion, err := h.cfg.Client.Complete(ctx, llm.DefaultSystemPrompt, prompt)
	duration := h.cfg.Clock.Since(start)
	GenerateDuration.WithLabelValues(h.cfg.Client.Model()).Observe(duration.Seconds())
	if err != nil {
		h.log.Error("generation failed", "prompt", req.Prompt, "error", err)
		h.writeJSONError(w, http.StatusBadGateway, "model backend error")
		GenerateRequestErrorsTotal.WithLabelValues("backend_error").Inc()
		return
	}

	code := llm.StripEcho(prompt, completion)
	GenerateRequestsTotal.WithLabelValues(h.cfg.Client.Model()).Inc()

	h.writeJSON(w, http.StatusOK, GenerateResponse{
		Status:      "ok",
		Model:       h.cfg.Client.Model(),
		Prompt:      req.Prompt,
		Code:        code,
		SyntaxScore: eval.SyntaxScore(code),
		DurationMS:  duration.Milliseconds(),
	})
}

func (h *Handler) healthzHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		h.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
	})
}

func (h *Handler) readyzHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		h.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "ready",
		"model":  h.cfg.Client.Model(),
	})
}
