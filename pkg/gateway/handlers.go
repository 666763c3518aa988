package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"gatehouse-hq/janus/pkg/audit"
	"gatehouse-hq/janus/pkg/breaker"
	"gatehouse-hq/janus/pkg/gateway/middleware"
	"gatehouse-hq/janus/pkg/providers"
)

// maxReviewBody bounds the request body size for review submissions.
const maxReviewBody = 1 << 20

// reviewSystemPrompt frames the provider call as a code review.
const reviewSystemPrompt = "You are a code reviewer. Review the submitted diff for bugs, " +
	"security issues, and style problems. Be specific and concise."

// reviewRequest is the POST /v1/review body.
type reviewRequest struct {
	// Diff is the code change under review. Required.
	Diff string `json:"diff"`

	// Context is optional surrounding information (PR description,
	// file paths).
	Context string `json:"context,omitempty"`

	// Provider names a configured provider. Empty uses the default.
	Provider string `json:"provider,omitempty"`

	// Model overrides the provider's configured model.
	Model string `json:"model,omitempty"`
}

// reviewResponse is the POST /v1/review response.
type reviewResponse struct {
	Review   string `json:"review"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Usage    struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxReviewBody)).Decode(&req); err != nil {
		middleware.WriteError(w, r, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.Diff == "" {
		middleware.WriteError(w, r, http.StatusBadRequest, "invalid_request", "diff is required")
		return
	}

	name := req.Provider
	if name == "" {
		name = s.opts.DefaultProvider
	}
	provider, ok := s.opts.Providers[name]
	if !ok {
		middleware.WriteError(w, r, http.StatusBadRequest, "invalid_request", "unknown provider "+name)
		return
	}
	br := s.opts.Breakers[name]

	identity := middleware.GetIdentity(r.Context())
	userID := ""
	if identity != nil {
		userID = identity.UserID
	}

	prompt := req.Diff
	if req.Context != "" {
		prompt = req.Context + "\n\n" + req.Diff
	}

	var resp *providers.Response
	err := br.Do(func() error {
		var callErr error
		resp, callErr = provider.Complete(r.Context(), &providers.Request{
			System: reviewSystemPrompt,
			Prompt: prompt,
			Model:  req.Model,
		})
		return callErr
	})

	var openErr *breaker.OpenError
	if errors.As(err, &openErr) {
		s.opts.Recorder.Record(r.Context(), &audit.Record{
			RequestID: middleware.GetRequestID(r.Context()),
			UserID:    userID,
			Action:    audit.ActionBreakerRejected,
			Resource:  name,
			Result:    audit.ResultDenied,
		})
		w.Header().Set("Retry-After", strconv.Itoa(int(openErr.RetryAfter.Seconds())+1))
		middleware.WriteError(w, r, http.StatusServiceUnavailable,
			"provider_unavailable", "provider "+name+" is temporarily unavailable")
		return
	}
	if err != nil {
		s.logger.Error("review call failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"provider", name,
			"error", err.Error(),
		)
		middleware.WriteError(w, r, http.StatusBadGateway,
			"provider_error", "provider call failed")
		return
	}

	s.opts.Recorder.Record(r.Context(), &audit.Record{
		RequestID: middleware.GetRequestID(r.Context()),
		UserID:    userID,
		Action:    audit.ActionReviewRequested,
		Resource:  name,
		Result:    audit.ResultSuccess,
		Detail: map[string]any{
			"model":         resp.Model,
			"input_tokens":  resp.InputTokens,
			"output_tokens": resp.OutputTokens,
		},
	})

	out := reviewResponse{Review: resp.Content, Provider: name, Model: resp.Model}
	out.Usage.InputTokens = resp.InputTokens
	out.Usage.OutputTokens = resp.OutputTokens
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBreakers(w http.ResponseWriter, r *http.Request) {
	statuses := make([]breaker.Status, 0, len(s.opts.Breakers))
	for _, b := range s.opts.Breakers {
		statuses = append(statuses, b.Status())
	}
	writeJSON(w, http.StatusOK, map[string]any{"breakers": statuses})
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := audit.QueryFilter{
		UserID: q.Get("user_id"),
		Action: audit.Action(q.Get("action")),
	}
	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			middleware.WriteError(w, r, http.StatusBadRequest, "invalid_request", "since must be RFC 3339")
			return
		}
		filter.Since = t
	}
	if v := q.Get("until"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			middleware.WriteError(w, r, http.StatusBadRequest, "invalid_request", "until must be RFC 3339")
			return
		}
		filter.Until = t
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			middleware.WriteError(w, r, http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer")
			return
		}
		filter.Limit = n
	}

	records, err := s.opts.Recorder.Store().Query(r.Context(), filter)
	if err != nil {
		s.logger.Error("audit query failed", "error", err.Error())
		middleware.WriteError(w, r, http.StatusInternalServerError, "internal_error", "audit query failed")
		return
	}
	if records == nil {
		records = []*audit.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
