package agents

import (
	"context"
	"fmt"

	"github.com/consilium-ai/consilium-go/internal/config"
)

// Built-in analyst identifiers.
const (
	AgentMacroCycle   = "macro_cycle"
	AgentCentralBank  = "central_bank"
	AgentGeopolitical = "geopolitical"
	AgentSentiment    = "sentiment"
	AgentTechnical    = "technical"
)

// MacroCycleAnalyst infers the business-cycle phase from ambient
// macroeconomic inputs.
type MacroCycleAnalyst struct {
	gdpGrowth    float64
	inflation    float64
	unemployment float64
}

func NewMacroCycleAnalyst(cfg config.AnalystsConfig) *MacroCycleAnalyst {
	return &MacroCycleAnalyst{
		gdpGrowth:    cfg.GDPGrowth,
		inflation:    cfg.InflationRate,
		unemployment: cfg.UnemploymentRate,
	}
}

func (a *MacroCycleAnalyst) ID() string { return AgentMacroCycle }

func (a *MacroCycleAnalyst) Analyze(ctx context.Context) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	phase := "expansion"
	outlook := "bullish"
	switch {
	case a.gdpGrowth < 0:
		phase = "contraction"
		outlook = "bearish"
	case a.gdpGrowth < 1.0:
		phase = "trough"
		outlook = "neutral"
	case a.inflation > 4.0:
		phase = "peak"
		outlook = "neutral"
	}

	growthScore := a.gdpGrowth / 4.0
	if growthScore > 1 {
		growthScore = 1
	}
	if growthScore < -1 {
		growthScore = -1
	}

	conviction := 0.55
	if a.unemployment < 4.5 && a.gdpGrowth > 1.5 {
		conviction = 0.7
	}

	return &MacroCycleReport{
		CyclePhase:        phase,
		GrowthScore:       growthScore,
		InflationPressure: a.inflation / 10.0,
		Outlook:           outlook,
		Conviction:        conviction,
		Notes: []string{
			fmt.Sprintf("Cycle phase assessed as %s with GDP growth at %.1f%%", phase, a.gdpGrowth),
			fmt.Sprintf("Inflation running at %.1f%%, unemployment at %.1f%%", a.inflation, a.unemployment),
		},
		AssetImpacts: map[string]float64{
			"equities": growthScore,
			"bonds":    -a.inflation / 10.0,
		},
	}, nil
}

// CentralBankAnalyst infers the policy stance from the current rate and its
// trend.
type CentralBankAnalyst struct {
	policyRate float64
	rateTrend  float64
}

func NewCentralBankAnalyst(cfg config.AnalystsConfig) *CentralBankAnalyst {
	return &CentralBankAnalyst{policyRate: cfg.PolicyRate, rateTrend: cfg.PolicyRateTrend}
}

func (a *CentralBankAnalyst) ID() string { return AgentCentralBank }

func (a *CentralBankAnalyst) Analyze(ctx context.Context) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stance := "neutral"
	conviction := 0.5
	if a.rateTrend < -0.1 {
		stance = "dovish"
		conviction = 0.65
	} else if a.rateTrend > 0.1 {
		stance = "hawkish"
		conviction = 0.65
	}

	return &PolicyReport{
		Stance:     stance,
		PolicyRate: a.policyRate,
		RateTrend:  a.rateTrend,
		Conviction: conviction,
		Summary:    fmt.Sprintf("Policy stance %s at %.2f%% with trend %+.2f", stance, a.policyRate, a.rateTrend),
		Watchlist:  []string{"rate decisions", "balance sheet runoff"},
	}, nil
}

// GeopoliticalAnalyst scores geopolitical risk from an ambient risk index
// and hotspot list.
type GeopoliticalAnalyst struct {
	riskIndex float64
	hotspots  []string
}

func NewGeopoliticalAnalyst(cfg config.AnalystsConfig) *GeopoliticalAnalyst {
	return &GeopoliticalAnalyst{riskIndex: cfg.GeopoliticalRisk, hotspots: cfg.Hotspots}
}

func (a *GeopoliticalAnalyst) ID() string { return AgentGeopolitical }

func (a *GeopoliticalAnalyst) Analyze(ctx context.Context) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	risk := a.riskIndex
	if risk < 0 {
		risk = 0
	}
	if risk > 1 {
		risk = 1
	}

	assessment := "Geopolitical backdrop broadly stable"
	if risk > 0.6 {
		assessment = fmt.Sprintf("Elevated geopolitical risk across %d active hotspots", len(a.hotspots))
	}

	return &GeopoliticalReport{
		RiskIndex:     risk,
		Hotspots:      append([]string(nil), a.hotspots...),
		Assessment:    assessment,
		SafeHavenBias: risk * 0.5,
	}, nil
}

// SentimentAnalyst converts an ambient news-sentiment score into a report.
type SentimentAnalyst struct {
	score float64
}

func NewSentimentAnalyst(cfg config.AnalystsConfig) *SentimentAnalyst {
	return &SentimentAnalyst{score: cfg.NewsSentiment}
}

func (a *SentimentAnalyst) ID() string { return AgentSentiment }

func (a *SentimentAnalyst) Analyze(ctx context.Context) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mood := "mixed"
	if a.score > 0.25 {
		mood = "risk-on"
	} else if a.score < -0.25 {
		mood = "risk-off"
	}

	return &SentimentReport{
		Mood:    mood,
		Score:   a.score,
		Drivers: []string{fmt.Sprintf("Aggregate news sentiment at %+.2f (%s)", a.score, mood)},
	}, nil
}
