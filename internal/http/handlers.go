package http

import (
	"net/http"

	"finsights/internal/insights"
	applog "finsights/internal/log"
	"finsights/internal/query"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !s.requireMethod(w, r, http.MethodGet) {
		return
	}

	s.writeJSON(w, r, http.StatusOK, map[string]any{
		"service": "finsights",
		"status":  "running",
		"state":   s.seq.State(),
	})
}

// handleTransactions returns the first limit rows in stable store
// order. The limit defaults to 10 and must stay inside the engine's
// fetch bounds.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodGet) {
		return
	}

	limit, err := parseLimit(r, defaultListLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := s.storeContext(r)
	defer cancel()

	txs, err := s.store.Fetch(ctx, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "Transactions served",
		applog.FieldLimit, limit, applog.FieldRows, len(txs))
	s.writeJSON(w, r, http.StatusOK, txs)
}

// handleTransactionsFilter narrows by category and merchant substring,
// case-insensitively. Blank filters are treated as absent.
func (s *Server) handleTransactionsFilter(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodGet) {
		return
	}

	limit, err := parseLimit(r, defaultFilterLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	spec, err := query.Build(r.URL.Query().Get("category"), r.URL.Query().Get("merchant"), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := s.storeContext(r)
	defer cancel()

	txs, err := s.store.FetchFiltered(ctx, spec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "Filtered transactions served",
		applog.FieldCategory, spec.Category,
		applog.FieldMerchant, spec.Merchant,
		applog.FieldLimit, spec.Limit,
		applog.FieldRows, len(txs))
	s.writeJSON(w, r, http.StatusOK, txs)
}

// handleInsights aggregates a fresh bounded sample on every call.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodGet) {
		return
	}

	ctx, cancel := s.storeContext(r)
	defer cancel()

	sample, err := s.store.Fetch(ctx, insightsWindow)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	summary, err := insights.Compute(sample)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, summary)
}

func (s *Server) handleLaunchState(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodGet) {
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string]any{"state": s.seq.State()})
}

// handleUIUp is the dashboard's callback once it finished starting, the
// final transition of the launch sequence. Repeating it is harmless.
func (s *Server) handleUIUp(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodPost) {
		return
	}

	if err := s.seq.MarkUIUp(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "Dashboard reported up", applog.FieldState, string(s.seq.State()))
	s.writeJSON(w, r, http.StatusOK, map[string]any{"state": s.seq.State()})
}
