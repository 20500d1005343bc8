package signals

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/selivandex/situation-monitor/internal/kv"
	"github.com/selivandex/situation-monitor/pkg/models"
)

// fakeClassifier returns canned analyses keyed by post text
type fakeClassifier struct {
	analyses map[string]*models.SignalAnalysis
	calls    int
}

func (f *fakeClassifier) ClassifySignal(_ context.Context, postText, _ string) *models.SignalAnalysis {
	f.calls++
	if a, ok := f.analyses[postText]; ok {
		return a
	}
	return &models.SignalAnalysis{
		IsSignal:   false,
		Tickers:    []string{},
		Sentiment:  models.SentimentNeutral,
		Confidence: models.ConfidenceLow,
		Reasoning:  "not a signal",
	}
}

func signalAnalysis(tickers ...string) *models.SignalAnalysis {
	return &models.SignalAnalysis{
		IsSignal:   true,
		Tickers:    tickers,
		Sentiment:  models.SentimentBullish,
		Confidence: models.ConfidenceHigh,
		Reasoning:  "clear trade idea",
	}
}

func testAccount() *models.Account {
	return &models.Account{
		ID:            "acc_1",
		TwitterHandle: "@trader",
		Name:          "Trader",
		Category:      models.CategoryStocks,
	}
}

func newTestService(classifier *fakeClassifier) *Service {
	repo := NewKVRepository(context.Background(), kv.NewMemoryStore())
	return NewService(repo, classifier, nil)
}

func TestProcessPost_Idempotent(t *testing.T) {
	classifier := &fakeClassifier{analyses: map[string]*models.SignalAnalysis{
		"buying $GME": signalAnalysis("GME"),
	}}
	svc := newTestService(classifier)
	ctx := context.Background()

	post := models.Post{ID: "100", Text: "buying $GME", PostedAt: time.Now()}

	first, isNew, err := svc.ProcessPost(ctx, post, testAccount())
	if err != nil {
		t.Fatalf("Failed to process post: %v", err)
	}
	if !isNew || first == nil {
		t.Fatal("Expected new signal on first call")
	}

	second, isNew, err := svc.ProcessPost(ctx, post, testAccount())
	if err != nil {
		t.Fatalf("Failed to reprocess post: %v", err)
	}
	if isNew {
		t.Error("Expected isNew=false on second call")
	}
	if second.ID != first.ID {
		t.Errorf("Expected same signal id, got %s and %s", first.ID, second.ID)
	}

	if classifier.calls != 1 {
		t.Errorf("Expected 1 classifier call, got %d", classifier.calls)
	}

	all, err := svc.List(ctx, "all", 0)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("Expected store size 1, got %d", len(all))
	}
}

func TestProcessPost_NonSignalNotStored(t *testing.T) {
	classifier := &fakeClassifier{}
	svc := newTestService(classifier)
	ctx := context.Background()

	signal, isNew, err := svc.ProcessPost(ctx, models.Post{ID: "200", Text: "gm everyone"}, testAccount())
	if err != nil {
		t.Fatalf("Failed to process post: %v", err)
	}
	if signal != nil || isNew {
		t.Errorf("Expected nil/false for non-signal, got %+v, %v", signal, isNew)
	}

	all, _ := svc.List(ctx, "", 0)
	if len(all) != 0 {
		t.Errorf("Expected empty store, got %d signals", len(all))
	}
}

func TestProcessPost_ZeroTickersNotStored(t *testing.T) {
	classifier := &fakeClassifier{analyses: map[string]*models.SignalAnalysis{
		"market is going up": {
			IsSignal:   true,
			Tickers:    []string{},
			Sentiment:  models.SentimentBullish,
			Confidence: models.ConfidenceMedium,
		},
	}}
	svc := newTestService(classifier)

	signal, isNew, err := svc.ProcessPost(context.Background(),
		models.Post{ID: "300", Text: "market is going up"}, testAccount())
	if err != nil {
		t.Fatalf("Failed to process post: %v", err)
	}
	if signal != nil || isNew {
		t.Error("Signal with zero tickers must never be stored")
	}
}

func TestList_CategoryFilterAndOrder(t *testing.T) {
	classifier := &fakeClassifier{analyses: map[string]*models.SignalAnalysis{
		"btc long":   signalAnalysis("BTC"),
		"eth long":   signalAnalysis("ETH"),
		"tsla calls": signalAnalysis("TSLA"),
	}}
	svc := newTestService(classifier)
	ctx := context.Background()

	cryptoAccount := &models.Account{ID: "acc_c", TwitterHandle: "@crypto", Category: models.CategoryCrypto}
	stocksAccount := &models.Account{ID: "acc_s", TwitterHandle: "@stocks", Category: models.CategoryStocks}

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	posts := []struct {
		post    models.Post
		account *models.Account
	}{
		{models.Post{ID: "1", Text: "btc long", PostedAt: base.Add(1 * time.Hour)}, cryptoAccount},
		{models.Post{ID: "2", Text: "tsla calls", PostedAt: base.Add(2 * time.Hour)}, stocksAccount},
		{models.Post{ID: "3", Text: "eth long", PostedAt: base.Add(3 * time.Hour)}, cryptoAccount},
	}

	for _, p := range posts {
		if _, _, err := svc.ProcessPost(ctx, p.post, p.account); err != nil {
			t.Fatalf("Failed to process post %s: %v", p.post.ID, err)
		}
	}

	crypto, err := svc.List(ctx, "crypto", 0)
	if err != nil {
		t.Fatalf("Failed to list crypto: %v", err)
	}
	if len(crypto) != 2 {
		t.Fatalf("Expected 2 crypto signals, got %d", len(crypto))
	}
	for _, s := range crypto {
		if s.Category != models.CategoryCrypto {
			t.Errorf("Expected crypto category, got %s", s.Category)
		}
	}
	if !crypto[0].PostedAt.After(crypto[1].PostedAt) {
		t.Error("Expected posted_at descending order")
	}

	limited, err := svc.List(ctx, "all", 2)
	if err != nil {
		t.Fatalf("Failed to list limited: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("Expected limit of 2, got %d", len(limited))
	}
	if limited[0].TweetID != "3" {
		t.Errorf("Expected most recent tweet first, got %s", limited[0].TweetID)
	}

	if _, err := svc.List(ctx, "sports", 0); err == nil {
		t.Error("Expected error for unknown category")
	}
}

func TestClear(t *testing.T) {
	classifier := &fakeClassifier{analyses: map[string]*models.SignalAnalysis{
		"buying $GME": signalAnalysis("GME"),
	}}
	svc := newTestService(classifier)
	ctx := context.Background()

	if _, _, err := svc.ProcessPost(ctx, models.Post{ID: "1", Text: "buying $GME"}, testAccount()); err != nil {
		t.Fatalf("Failed to process: %v", err)
	}

	count, err := svc.Clear(ctx)
	if err != nil {
		t.Fatalf("Failed to clear: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 cleared, got %d", count)
	}

	all, _ := svc.List(ctx, "", 0)
	if len(all) != 0 {
		t.Errorf("Expected empty store after clear, got %d", len(all))
	}
}

func TestRemoveByAccountID(t *testing.T) {
	classifier := &fakeClassifier{analyses: map[string]*models.SignalAnalysis{
		"buying $GME":  signalAnalysis("GME"),
		"buying $AMC":  signalAnalysis("AMC"),
		"selling $BTC": signalAnalysis("BTC"),
	}}
	svc := newTestService(classifier)
	ctx := context.Background()

	first := testAccount()
	other := &models.Account{ID: "acc_2", TwitterHandle: "@other", Category: models.CategoryCrypto}

	svc.ProcessPost(ctx, models.Post{ID: "1", Text: "buying $GME"}, first)
	svc.ProcessPost(ctx, models.Post{ID: "2", Text: "buying $AMC"}, first)
	svc.ProcessPost(ctx, models.Post{ID: "3", Text: "selling $BTC"}, other)

	removed, err := svc.RemoveByAccountID(ctx, first.ID)
	if err != nil {
		t.Fatalf("Failed to remove by account: %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 removed, got %d", removed)
	}

	remaining, _ := svc.List(ctx, "", 0)
	if len(remaining) != 1 || remaining[0].AccountID != other.ID {
		t.Errorf("Expected only the other account's signal to remain, got %+v", remaining)
	}
}

func TestKVRepository_SnapshotRoundTrip(t *testing.T) {
	store := kv.NewMemoryStore()
	ctx := context.Background()

	repo := NewKVRepository(ctx, store)
	signal := &models.Signal{
		ID:       "sig_1",
		TweetID:  "42",
		Tickers:  []string{"GME"},
		Category: models.CategoryStocks,
		PostedAt: time.Now().UTC(),
	}
	if err := repo.Insert(ctx, signal); err != nil {
		t.Fatalf("Failed to insert: %v", err)
	}

	// Reopening from the same store must see the persisted snapshot
	reloaded := NewKVRepository(ctx, store)
	got, err := reloaded.GetByTweetID(ctx, "42")
	if err != nil {
		t.Fatalf("Failed to read reloaded repo: %v", err)
	}
	if got == nil || got.ID != "sig_1" {
		t.Errorf("Expected persisted signal sig_1, got %+v", got)
	}
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("store unavailable")
}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New("store unavailable")
}

func (failingStore) Remove(context.Context, string) error {
	return errors.New("store unavailable")
}

func TestKVRepository_PersistFailureSwallowed(t *testing.T) {
	ctx := context.Background()
	repo := NewKVRepository(ctx, failingStore{})

	signal := &models.Signal{
		ID:       "sig_1",
		TweetID:  "42",
		Tickers:  []string{"GME"},
		Category: models.CategoryStocks,
		PostedAt: time.Now().UTC(),
	}
	if err := repo.Insert(ctx, signal); err != nil {
		t.Fatalf("Insert must not surface persistence errors: %v", err)
	}

	// In-memory state stays authoritative for the session
	got, err := repo.GetByTweetID(ctx, "42")
	if err != nil {
		t.Fatalf("Failed to read back: %v", err)
	}
	if got == nil || got.ID != "sig_1" {
		t.Errorf("Expected in-memory signal sig_1, got %+v", got)
	}

	count, err := repo.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear must not surface persistence errors: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 cleared signal, got %d", count)
	}
}
