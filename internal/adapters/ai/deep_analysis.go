package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/selivandex/situation-monitor/pkg/models"
)

const deepAnalysisPromptTemplate = `Analyze this trading signal tweet and provide insights:

TWEET FROM: %s (%s)
TICKERS MENTIONED: %s
SENTIMENT: %s
CONTENT: %q
%s
Please analyze this signal and provide:
1. A clear summary of what's being said
2. A bull case for why this position could be profitable
3. Assessment of scam/pump-and-dump risk
4. Any red flags or warning signs
5. Key takeaways

Be honest and balanced in your analysis. If there are concerns, highlight them clearly.

Respond with ONLY a JSON object in this exact format, no other text:
{"summary": "2-3 sentence summary", "bullCase": "bull case for the position", "scamRisk": "low|medium|high", "scamIndicators": ["red flag"]}`

// AnalyzeSignal runs the deep-dive analysis of one stored signal. Unlike
// classification this surfaces errors: the result is shown to the user on
// demand and a failed analysis is actionable feedback, not pipeline noise.
func (c *Classifier) AnalyzeSignal(ctx context.Context, signal *models.Signal) (*models.DeepAnalysis, error) {
	if !c.completer.IsEnabled() {
		return nil, fmt.Errorf("AI service not configured")
	}

	var priceLines strings.Builder
	if signal.EntryPrice != nil {
		fmt.Fprintf(&priceLines, "Entry Price: $%s\n", signal.EntryPrice)
	}
	if signal.TargetPrice != nil {
		fmt.Fprintf(&priceLines, "Target Price: $%s\n", signal.TargetPrice)
	}
	if signal.StopPrice != nil {
		fmt.Fprintf(&priceLines, "Stop Price: $%s\n", signal.StopPrice)
	}

	prompt := fmt.Sprintf(deepAnalysisPromptTemplate,
		signal.AccountHandle,
		signal.AccountName,
		strings.Join(signal.Tickers, ", "),
		signal.Sentiment,
		signal.Content,
		priceLines.String(),
	)

	content, err := c.completer.Complete(ctx, []Message{{Role: "user", Content: prompt}})
	if err != nil {
		return nil, fmt.Errorf("deep analysis request failed: %w", err)
	}

	return parseDeepAnalysis(content)
}

func parseDeepAnalysis(content string) (*models.DeepAnalysis, error) {
	jsonStr := extractJSON(content)
	if jsonStr == "" {
		return nil, fmt.Errorf("no JSON object in AI response")
	}

	var raw struct {
		Summary        string   `json:"summary"`
		BullCase       string   `json:"bullCase"`
		ScamRisk       string   `json:"scamRisk"`
		ScamIndicators []string `json:"scamIndicators"`
	}

	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse analysis: %w", err)
	}

	analysis := &models.DeepAnalysis{
		Summary:        raw.Summary,
		BullCase:       raw.BullCase,
		ScamRisk:       models.ScamRisk(raw.ScamRisk),
		ScamIndicators: raw.ScamIndicators,
		AnalyzedAt:     time.Now(),
	}

	if !analysis.ScamRisk.Valid() {
		analysis.ScamRisk = models.ScamRiskMedium
	}
	if analysis.ScamIndicators == nil {
		analysis.ScamIndicators = []string{}
	}

	return analysis, nil
}
