package watchlist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/selivandex/situation-monitor/internal/kv"
	"github.com/selivandex/situation-monitor/pkg/models"
)

func newTestService() *Service {
	repo := NewKVRepository(context.Background(), kv.NewMemoryStore())
	return NewService(repo)
}

func decimalPtr(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"$TSLA", "TSLA"},
		{"tsla", "TSLA"},
		{"  $gme  ", "GME"},
		{"BTC", "BTC"},
		{" $ ", ""},
	}

	for _, tt := range tests {
		if got := NormalizeTicker(tt.input); got != tt.expected {
			t.Errorf("NormalizeTicker(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestAddPosition(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	position, err := svc.AddPosition(ctx, "$tsla", models.PositionBullish, &models.PositionOptions{
		Notes:      "breakout setup",
		EntryPrice: decimalPtr(250),
	})
	if err != nil {
		t.Fatalf("Failed to add position: %v", err)
	}
	if position.Ticker != "TSLA" {
		t.Errorf("Expected normalized ticker TSLA, got %s", position.Ticker)
	}
	if position.Notes != "breakout setup" {
		t.Errorf("Expected notes preserved, got %q", position.Notes)
	}
	if position.EntryPrice == nil || !position.EntryPrice.Equal(decimal.NewFromInt(250)) {
		t.Errorf("Expected entry price 250, got %v", position.EntryPrice)
	}
	if position.AddedAt.IsZero() {
		t.Error("Expected added_at to be set")
	}
}

func TestAddPosition_LastWriteWinsMerge(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	first, err := svc.AddPosition(ctx, "TSLA", models.PositionBullish, &models.PositionOptions{
		Notes:      "original notes",
		EntryPrice: decimalPtr(250),
	})
	if err != nil {
		t.Fatalf("Failed to add position: %v", err)
	}

	// Re-adding the same ticker in different case overwrites sentiment
	// but preserves fields absent from the options
	second, err := svc.AddPosition(ctx, "$tsla", models.PositionBearish, nil)
	if err != nil {
		t.Fatalf("Failed to re-add position: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("Expected same position id, got %s and %s", first.ID, second.ID)
	}
	if second.Sentiment != models.PositionBearish {
		t.Errorf("Expected sentiment overwritten to bearish, got %s", second.Sentiment)
	}
	if second.Notes != "original notes" {
		t.Errorf("Expected notes preserved, got %q", second.Notes)
	}
	if second.EntryPrice == nil || !second.EntryPrice.Equal(decimal.NewFromInt(250)) {
		t.Errorf("Expected entry price preserved, got %v", second.EntryPrice)
	}

	all, _ := svc.List(ctx)
	if len(all) != 1 {
		t.Errorf("Expected single position per ticker, got %d", len(all))
	}
}

func TestAddPosition_MergeProvidedFields(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.AddPosition(ctx, "GME", models.PositionBullish, &models.PositionOptions{
		Notes: "squeeze watch",
	}); err != nil {
		t.Fatalf("Failed to add position: %v", err)
	}

	updated, err := svc.AddPosition(ctx, "GME", models.PositionBullish, &models.PositionOptions{
		SourceSignalID: "sig_1",
		SourceTweetURL: "https://twitter.com/trader/status/1",
	})
	if err != nil {
		t.Fatalf("Failed to merge position: %v", err)
	}

	if updated.Notes != "squeeze watch" {
		t.Errorf("Expected existing notes kept, got %q", updated.Notes)
	}
	if updated.SourceSignalID != "sig_1" {
		t.Errorf("Expected provenance merged in, got %q", updated.SourceSignalID)
	}
}

func TestAddPosition_Invalid(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.AddPosition(ctx, "  $ ", models.PositionBullish, nil); err == nil {
		t.Error("Expected error for empty ticker")
	}
	if _, err := svc.AddPosition(ctx, "TSLA", models.PositionSentiment("neutral"), nil); err == nil {
		t.Error("Expected error for neutral sentiment")
	}
}

func TestUpdatePosition(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	position, err := svc.AddPosition(ctx, "AMC", models.PositionBullish, nil)
	if err != nil {
		t.Fatalf("Failed to add position: %v", err)
	}

	bearish := models.PositionBearish
	notes := "taking profits"
	updated, err := svc.UpdatePosition(ctx, position.ID, PositionUpdate{
		Sentiment: &bearish,
		Notes:     &notes,
	})
	if err != nil {
		t.Fatalf("Failed to update position: %v", err)
	}
	if updated.Sentiment != models.PositionBearish || updated.Notes != "taking profits" {
		t.Errorf("Expected update applied, got %+v", updated)
	}

	// Partial update leaves other fields untouched
	price := decimalPtr(5.5)
	updated, err = svc.UpdatePosition(ctx, position.ID, PositionUpdate{EntryPrice: price})
	if err != nil {
		t.Fatalf("Failed to apply partial update: %v", err)
	}
	if updated.Notes != "taking profits" {
		t.Errorf("Expected notes untouched by partial update, got %q", updated.Notes)
	}
	if updated.EntryPrice == nil || !updated.EntryPrice.Equal(decimal.NewFromFloat(5.5)) {
		t.Errorf("Expected entry price 5.5, got %v", updated.EntryPrice)
	}

	if _, err := svc.UpdatePosition(ctx, "pos_missing", PositionUpdate{}); err == nil {
		t.Error("Expected error updating unknown position")
	}
}

func TestSetAnalysis(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	position, err := svc.AddPosition(ctx, "PEPE", models.PositionBullish, nil)
	if err != nil {
		t.Fatalf("Failed to add position: %v", err)
	}

	analysis := &models.DeepAnalysis{
		Summary:        "meme coin, high risk",
		ScamRisk:       models.ScamRiskHigh,
		ScamIndicators: []string{"anonymous team"},
		AnalyzedAt:     time.Now().UTC(),
	}
	updated, err := svc.SetAnalysis(ctx, position.ID, analysis)
	if err != nil {
		t.Fatalf("Failed to set analysis: %v", err)
	}
	if updated.Analysis == nil || updated.Analysis.ScamRisk != models.ScamRiskHigh {
		t.Errorf("Expected analysis attached, got %+v", updated.Analysis)
	}
}

func TestRemoveAndLookups(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	position, err := svc.AddPosition(ctx, "NVDA", models.PositionBullish, nil)
	if err != nil {
		t.Fatalf("Failed to add position: %v", err)
	}

	has, err := svc.HasPosition(ctx, "$nvda")
	if err != nil || !has {
		t.Errorf("Expected HasPosition true, got %v, %v", has, err)
	}

	byTicker, err := svc.GetPositionByTicker(ctx, "nvda")
	if err != nil || byTicker == nil || byTicker.ID != position.ID {
		t.Errorf("Expected lookup by any ticker casing, got %+v, %v", byTicker, err)
	}

	if err := svc.RemovePosition(ctx, position.ID); err != nil {
		t.Fatalf("Failed to remove position: %v", err)
	}
	if err := svc.RemovePosition(ctx, position.ID); err == nil {
		t.Error("Expected error removing already-removed position")
	}

	has, _ = svc.HasPosition(ctx, "NVDA")
	if has {
		t.Error("Expected HasPosition false after removal")
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
	svc := NewService(NewKVRepository(ctx, failingStore{}))

	position, err := svc.AddPosition(ctx, "TSLA", models.PositionBullish, nil)
	if err != nil {
		t.Fatalf("AddPosition must not surface persistence errors: %v", err)
	}

	// In-memory state stays authoritative for the session
	got, err := svc.GetPositionByTicker(ctx, "TSLA")
	if err != nil {
		t.Fatalf("Failed to read back: %v", err)
	}
	if got == nil || got.ID != position.ID {
		t.Errorf("Expected in-memory position %s, got %+v", position.ID, got)
	}

	if err := svc.RemovePosition(ctx, position.ID); err != nil {
		t.Fatalf("RemovePosition must not surface persistence errors: %v", err)
	}
	has, _ := svc.HasPosition(ctx, "TSLA")
	if has {
		t.Error("Expected HasPosition false after removal")
	}
}
