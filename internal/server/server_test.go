package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/selivandex/situation-monitor/internal/accounts"
	"github.com/selivandex/situation-monitor/internal/adapters/config"
	"github.com/selivandex/situation-monitor/internal/kv"
	"github.com/selivandex/situation-monitor/internal/refresh"
	"github.com/selivandex/situation-monitor/internal/signals"
	"github.com/selivandex/situation-monitor/internal/watchlist"
	"github.com/selivandex/situation-monitor/pkg/models"
)

type stubLookup struct{}

func (stubLookup) LookupUser(_ context.Context, username string) *models.TwitterUser {
	return &models.TwitterUser{
		ID:       "ext_" + username,
		Username: username,
		Name:     username,
	}
}

type stubAccountClassifier struct{}

func (stubAccountClassifier) ClassifyAccount(_ context.Context, _, _ string) *models.AccountClassification {
	return &models.AccountClassification{Category: models.CategoryStocks, Confidence: 0.8}
}

type stubSignalClassifier struct{}

func (stubSignalClassifier) ClassifySignal(_ context.Context, postText, _ string) *models.SignalAnalysis {
	return &models.SignalAnalysis{
		IsSignal:   true,
		Tickers:    []string{"GME"},
		Sentiment:  models.SentimentBullish,
		Confidence: models.ConfidenceHigh,
		Reasoning:  "test",
	}
}

type stubFetcher struct {
	posts []models.Post
}

func (s *stubFetcher) FetchUserTweets(_ context.Context, _, _ string, _ int) ([]models.Post, error) {
	return s.posts, nil
}

type stubTweetSource struct{}

func (stubTweetSource) GetTweetByID(_ context.Context, tweetID string) (*models.Post, error) {
	return &models.Post{
		ID:       tweetID,
		Text:     "loading up on $TSLA calls, breakout coming",
		URL:      "https://twitter.com/i/status/" + tweetID,
		PostedAt: time.Now().UTC(),
	}, nil
}

type stubAnalyzer struct{}

func (stubAnalyzer) AnalyzeSignal(_ context.Context, _ *models.Signal) (*models.DeepAnalysis, error) {
	return &models.DeepAnalysis{
		Summary:    "looks legitimate",
		BullCase:   "strong momentum",
		ScamRisk:   models.ScamRiskLow,
		AnalyzedAt: time.Now().UTC(),
	}, nil
}

func newTestServer(t *testing.T, fetcher *stubFetcher) *Server {
	t.Helper()
	ctx := context.Background()

	signalRepo := signals.NewKVRepository(ctx, kv.NewMemoryStore())
	signalSvc := signals.NewService(signalRepo, stubSignalClassifier{}, nil)

	accountRepo := accounts.NewKVRepository(ctx, kv.NewMemoryStore())
	accountSvc := accounts.NewService(accountRepo, stubLookup{}, stubAccountClassifier{}, signalSvc)

	watchRepo := watchlist.NewKVRepository(ctx, kv.NewMemoryStore())
	watchSvc := watchlist.NewService(watchRepo)

	if fetcher == nil {
		fetcher = &stubFetcher{}
	}
	orch := refresh.NewOrchestrator(accountSvc, fetcher, signalSvc, refresh.NewLocalLock(), nil, 10)

	cfg := &config.ServerConfig{Port: 0, ReadTimeout: time.Second, WriteTimeout: time.Second}
	return New(cfg, Deps{
		Accounts:    accountSvc,
		Signals:     signalSvc,
		Watchlist:   watchSvc,
		Refresher:   orch,
		TweetSource: stubTweetSource{},
		Analyzer:    stubAnalyzer{},
	})
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/ready", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 when no storage is wired, got %d", rec.Code)
	}
}

func TestAccountsAPI(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/accounts", map[string]string{"handle": "@trader"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var account models.Account
	decodeBody(t, rec, &account)
	if account.TwitterHandle != "trader" {
		t.Errorf("Expected normalized handle, got %s", account.TwitterHandle)
	}

	// Re-adding is a no-op returning the existing account
	rec = doJSON(t, srv, http.MethodPost, "/api/accounts", map[string]string{"handle": "TRADER"})
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 on re-add, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/accounts", nil)
	var list []models.Account
	decodeBody(t, rec, &list)
	if len(list) != 1 {
		t.Errorf("Expected 1 account, got %d", len(list))
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/accounts/"+account.ID, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 on delete, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/accounts/acc_missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown account, got %d", rec.Code)
	}
}

func TestRefreshAndSignalsAPI(t *testing.T) {
	fetcher := &stubFetcher{posts: []models.Post{
		{ID: "1", Text: "buying $GME", PostedAt: time.Now().UTC()},
	}}
	srv := newTestServer(t, fetcher)

	rec := doJSON(t, srv, http.MethodPost, "/api/accounts", map[string]string{"handle": "trader"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Failed to add account: %s", rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/refresh", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 refresh, got %d: %s", rec.Code, rec.Body.String())
	}
	var result struct {
		Started    bool            `json:"started"`
		NewSignals []models.Signal `json:"new_signals"`
	}
	decodeBody(t, rec, &result)
	if !result.Started || len(result.NewSignals) != 1 {
		t.Errorf("Expected 1 new signal from refresh, got %+v", result)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/signals?category=stocks", nil)
	var listed []models.Signal
	decodeBody(t, rec, &listed)
	if len(listed) != 1 {
		t.Errorf("Expected 1 stocks signal, got %d", len(listed))
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/signals?category=bogus", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown category, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/signals", nil)
	var cleared map[string]int
	decodeBody(t, rec, &cleared)
	if cleared["cleared"] != 1 {
		t.Errorf("Expected 1 cleared, got %d", cleared["cleared"])
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/refresh/status", nil)
	var status map[string]bool
	decodeBody(t, rec, &status)
	if status["refreshing"] {
		t.Error("Expected refreshing=false after the pass")
	}
}

func TestWatchlistAPI(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/watchlist", map[string]interface{}{
		"ticker":    "$tsla",
		"sentiment": "bullish",
		"notes":     "breakout watch",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Failed to add position: %s", rec.Body.String())
	}
	var position models.WatchlistPosition
	decodeBody(t, rec, &position)
	if position.Ticker != "TSLA" {
		t.Errorf("Expected normalized ticker, got %s", position.Ticker)
	}

	rec = doJSON(t, srv, http.MethodPatch, "/api/watchlist/"+position.ID, map[string]string{
		"sentiment": "bearish",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Failed to update position: %s", rec.Body.String())
	}
	decodeBody(t, rec, &position)
	if position.Sentiment != models.PositionBearish {
		t.Errorf("Expected bearish after update, got %s", position.Sentiment)
	}
	if position.Notes != "breakout watch" {
		t.Errorf("Expected notes preserved, got %q", position.Notes)
	}

	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/watchlist/%s/analysis", position.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Failed to analyze position: %s", rec.Body.String())
	}
	decodeBody(t, rec, &position)
	if position.Analysis == nil || position.Analysis.ScamRisk != models.ScamRiskLow {
		t.Errorf("Expected analysis attached, got %+v", position.Analysis)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/watchlist/"+position.ID, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 on delete, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/watchlist", map[string]interface{}{
		"ticker":    "TSLA",
		"sentiment": "neutral",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for neutral position sentiment, got %d", rec.Code)
	}
}

func TestImportAndExtractAPI(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/import/tweet", map[string]string{
		"input": "https://x.com/trader/status/12345",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Failed to import tweet: %s", rec.Body.String())
	}
	var imported struct {
		Tickers   []string `json:"tickers"`
		Sentiment string   `json:"sentiment"`
	}
	decodeBody(t, rec, &imported)
	if len(imported.Tickers) != 1 || imported.Tickers[0] != "TSLA" {
		t.Errorf("Expected TSLA extracted, got %v", imported.Tickers)
	}
	if imported.Sentiment != "bullish" {
		t.Errorf("Expected bullish sentiment, got %s", imported.Sentiment)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/import/tweet", map[string]string{
		"input": "not a tweet reference",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unparseable input, got %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/extract", map[string]string{
		"text": "dump $PEPE before the crash",
	})
	var extracted struct {
		Tickers   []string `json:"tickers"`
		Sentiment string   `json:"sentiment"`
	}
	decodeBody(t, rec, &extracted)
	if len(extracted.Tickers) != 1 || extracted.Tickers[0] != "PEPE" {
		t.Errorf("Expected PEPE extracted, got %v", extracted.Tickers)
	}
	if extracted.Sentiment != "bearish" {
		t.Errorf("Expected bearish sentiment, got %s", extracted.Sentiment)
	}
}
