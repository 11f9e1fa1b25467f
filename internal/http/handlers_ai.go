package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"finsights/internal/ai"
	"finsights/internal/cache"
	"finsights/internal/core"
	"finsights/internal/insights"
	applog "finsights/internal/log"
	"finsights/internal/prompt"
)

// aiReportRequest carries the client's provider credential per call.
// The key is never stored or logged.
type aiReportRequest struct {
	Limit  int    `json:"limit"`
	APIKey string `json:"api_key"`
}

type aiQuestionRequest struct {
	Question string `json:"question"`
	APIKey   string `json:"api_key"`
}

// handleAIReport composes the spending-report prompt from aggregated
// insights plus a small context sample and hands it to the provider.
// The two store reads are independent, so they run concurrently.
func (s *Server) handleAIReport(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodPost) {
		return
	}

	req := aiReportRequest{Limit: defaultReportLimit}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("decode request body: %w", core.ErrInvalidArgument))
		return
	}
	if !ai.ValidCredential(req.APIKey) {
		s.writeError(w, r, fmt.Errorf("missing or malformed api_key: %w", core.ErrInvalidArgument))
		return
	}
	if req.Limit == 0 {
		req.Limit = defaultReportLimit
	}
	if err := core.ValidateLimit(req.Limit); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := s.storeContext(r)
	defer cancel()

	var window, sample []core.Transaction
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		window, err = s.store.Fetch(gctx, insightsWindow)
		return err
	})
	g.Go(func() error {
		var err error
		sample, err = s.store.Fetch(gctx, req.Limit)
		return err
	})
	if err := g.Wait(); err != nil {
		s.writeError(w, r, err)
		return
	}

	summary, err := insights.Compute(window)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := prompt.Report(summary, sample, prompt.ReportSampleSize)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	text, cached, err := s.generate(r, req.APIKey, p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.publishUsage(r, p.Kind, len(sample), cached)
	s.writeJSON(w, r, http.StatusOK, map[string]string{"report": text})
}

// handleAIQuestion answers a free-form question grounded on a fixed
// slice of recent transactions.
func (s *Server) handleAIQuestion(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodPost) {
		return
	}

	var req aiQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("decode request body: %w", core.ErrInvalidArgument))
		return
	}
	if !ai.ValidCredential(req.APIKey) {
		s.writeError(w, r, fmt.Errorf("missing or malformed api_key: %w", core.ErrInvalidArgument))
		return
	}

	ctx, cancel := s.storeContext(r)
	defer cancel()

	sample, err := s.store.Fetch(ctx, questionFetchLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := prompt.Question(req.Question, sample, prompt.QuestionSampleSize)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	text, cached, err := s.generate(r, req.APIKey, p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.publishUsage(r, p.Kind, len(sample), cached)
	s.writeJSON(w, r, http.StatusOK, map[string]string{"answer": text})
}

// generate serves a provider response, reusing a cached one when the
// prompt digest matches. Identical prompts are deterministic, so the
// digest fully identifies the request.
func (s *Server) generate(r *http.Request, apiKey string, p prompt.Payload) (string, bool, error) {
	key := cache.Digest(string(p.Kind), p.Text)
	if text, ok := s.aiCache.Get(key); ok {
		s.logger.InfoContext(r.Context(), "AI response served from cache", applog.FieldPromptKind, string(p.Kind))
		return text, true, nil
	}

	text, err := s.generator.Generate(r.Context(), apiKey, p)
	if err != nil {
		return "", false, err
	}

	s.aiCache.Set(key, text)
	return text, false, nil
}

// publishUsage emits the AI usage event. It carries shape metadata
// only, never the credential or the prompt text. Failures are logged
// and dropped.
func (s *Server) publishUsage(r *http.Request, kind prompt.Kind, sampleSize int, cached bool) {
	if err := s.pub.PublishAIUsage(r.Context(), string(kind), sampleSize, cached); err != nil {
		s.logger.ErrorContext(r.Context(), "AI usage publish failed", "error", err)
	}
}
