package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/selivandex/situation-monitor/internal/adapters/twitter"
	"github.com/selivandex/situation-monitor/internal/extract"
	"github.com/selivandex/situation-monitor/internal/watchlist"
	"github.com/selivandex/situation-monitor/pkg/logger"
	"github.com/selivandex/situation-monitor/pkg/models"
)

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if s.deps.Health != nil {
		if err := s.deps.Health.Health(); err != nil {
			respondError(w, http.StatusServiceUnavailable, "storage unavailable")
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Accounts.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleAddAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Handle string `json:"handle"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, isNew, err := s.deps.Accounts.Add(r.Context(), req.Handle)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	status := http.StatusOK
	if isNew {
		status = http.StatusCreated
	}
	respondJSON(w, status, account)
}

func (s *Server) handleRemoveAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.deps.Accounts.Remove(r.Context(), id); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"removed": id})
}

func (s *Server) handleListSignals(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	list, err := s.deps.Signals.List(r.Context(), category, limit)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleClearSignals(w http.ResponseWriter, r *http.Request) {
	count, err := s.deps.Signals.Clear(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"cleared": count})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	newSignals, started, err := s.deps.Refresher.RefreshAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !started {
		// A refresh is already in flight; this trigger is a no-op
		respondJSON(w, http.StatusAccepted, map[string]interface{}{
			"started":    false,
			"refreshing": true,
		})
		return
	}

	if newSignals == nil {
		newSignals = []models.Signal{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"started":     true,
		"new_signals": newSignals,
	})
}

func (s *Server) handleRefreshStatus(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{
		"refreshing": s.deps.Refresher.IsRefreshing(),
	})
}

func (s *Server) handleListWatchlist(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Watchlist.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleAddPosition(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Ticker         string           `json:"ticker"`
		Sentiment      string           `json:"sentiment"`
		Notes          string           `json:"notes"`
		SourceSignalID string           `json:"source_signal_id"`
		SourceTweetURL string           `json:"source_tweet_url"`
		EntryPrice     *decimal.Decimal `json:"entry_price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	position, err := s.deps.Watchlist.AddPosition(r.Context(), req.Ticker,
		models.PositionSentiment(req.Sentiment), &models.PositionOptions{
			Notes:          req.Notes,
			SourceSignalID: req.SourceSignalID,
			SourceTweetURL: req.SourceTweetURL,
			EntryPrice:     req.EntryPrice,
		})
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, position)
}

func (s *Server) handleUpdatePosition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var update watchlist.PositionUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	position, err := s.deps.Watchlist.UpdatePosition(r.Context(), id, update)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, position)
}

func (s *Server) handleRemovePosition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.deps.Watchlist.RemovePosition(r.Context(), id); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"removed": id})
}

// handleAnalyzePosition runs an on-demand deep analysis for a watchlist
// position. When the position came from a signal, the full signal text
// is analyzed; a manually added position is analyzed from its ticker
// and notes.
func (s *Server) handleAnalyzePosition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()

	position, err := s.deps.Watchlist.GetPositionByID(ctx, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if position == nil {
		respondError(w, http.StatusNotFound, "position not found")
		return
	}

	var signal *models.Signal
	if position.SourceSignalID != "" {
		signal, err = s.deps.Signals.GetByID(ctx, position.SourceSignalID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	if signal == nil {
		// Source signal gone or never existed; analyze from the position itself
		signal = &models.Signal{
			Tickers:   []string{position.Ticker},
			Sentiment: models.Sentiment(position.Sentiment),
			Content:   position.Notes,
			TweetURL:  position.SourceTweetURL,
		}
	}

	analysis, err := s.deps.Analyzer.AnalyzeSignal(ctx, signal)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	updated, err := s.deps.Watchlist.SetAnalysis(ctx, id, analysis)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// handleImportTweet resolves a pasted tweet URL or id and runs the local
// extractor over its text. The network classifier is not invoked here.
func (s *Server) handleImportTweet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Input string `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tweetID, err := twitter.ParseTweetID(req.Input)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := s.deps.TweetSource.GetTweetByID(r.Context(), tweetID)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"post":      post,
		"tickers":   extract.ExtractTickers(post.Text),
		"sentiment": extract.DetectSentiment(post.Text),
	})
}

// handleExtract runs the pure ticker/sentiment extractor over raw text
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tickers":   extract.ExtractTickers(req.Text),
		"sentiment": extract.DetectSentiment(req.Text),
	})
}
