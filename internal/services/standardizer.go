package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/consilium-ai/consilium-go/internal/agents"
	"github.com/consilium-ai/consilium-go/internal/models"
)

// extraction is the intermediate result an extraction rule pulls out of an
// agent's raw report before the standardizer assembles the full decision.
type extraction struct {
	SignalStrength     decimal.Decimal
	Direction          models.Direction
	Confidence         decimal.Decimal
	Insights           []string
	MarketImplications map[string]decimal.Decimal
}

// extractionRule maps one agent's report shape into the common extraction.
// A rule may fail on an unexpected shape; the standardizer degrades to the
// generic rule instead of propagating the failure.
type extractionRule func(raw interface{}) (extraction, error)

// horizonByAgent fixes every agent's time horizon by identity. Identifiers
// absent from the table default to medium_term.
var horizonByAgent = map[string]models.TimeHorizon{
	agents.AgentMacroCycle:   models.HorizonLongTerm,
	agents.AgentCentralBank:  models.HorizonMediumTerm,
	agents.AgentGeopolitical: models.HorizonShortTerm,
	agents.AgentSentiment:    models.HorizonShortTerm,
	agents.AgentTechnical:    models.HorizonShortTerm,
}

// Standardizer converts heterogeneous agent reports into AgentDecision
// records using an agent-identity-keyed rule table. Standardization is
// total: it never fails, it only degrades.
type Standardizer struct {
	rules  map[string]extractionRule
	logger *logrus.Logger
}

func NewStandardizer(logger *logrus.Logger) *Standardizer {
	return &Standardizer{
		rules: map[string]extractionRule{
			agents.AgentMacroCycle:   extractMacroCycle,
			agents.AgentCentralBank:  extractCentralBank,
			agents.AgentGeopolitical: extractGeopolitical,
			agents.AgentSentiment:    extractSentiment,
			agents.AgentTechnical:    extractTechnical,
		},
		logger: logger,
	}
}

// Standardize maps (agentID, raw report) to a complete AgentDecision. An
// unknown identity, a nil report, a shape mismatch, or a panicking rule all
// degrade to the generic defaults for that agent.
func (s *Standardizer) Standardize(agentID string, raw interface{}) *models.AgentDecision {
	ext := genericExtraction()

	if rule, ok := s.rules[agentID]; ok && raw != nil {
		extracted, err := runRule(rule, raw)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"agent_id": agentID,
				"error":    err,
			}).Warn("Report extraction degraded to generic defaults")
		} else {
			ext = extracted
		}
	}

	horizon, ok := horizonByAgent[agentID]
	if !ok {
		horizon = models.HorizonMediumTerm
	}

	if ext.Insights == nil {
		ext.Insights = []string{}
	}
	if ext.MarketImplications == nil {
		ext.MarketImplications = map[string]decimal.Decimal{}
	}

	return &models.AgentDecision{
		AgentID:            agentID,
		ProducedAt:         time.Now().UTC(),
		SignalStrength:     models.ClampUnit(ext.SignalStrength),
		Direction:          ext.Direction,
		Confidence:         models.ClampUnit(ext.Confidence),
		Insights:           ext.Insights,
		MarketImplications: ext.MarketImplications,
		TimeHorizon:        horizon,
		Raw:                raw,
	}
}

// runRule executes a rule with panic containment. A panicking rule is a
// rule failure, never a pipeline failure.
func runRule(rule extractionRule, raw interface{}) (ext extraction, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extraction rule panicked: %v", r)
		}
	}()
	return rule(raw)
}

func genericExtraction() extraction {
	return extraction{
		SignalStrength: decimal.NewFromFloat(0.5),
		Direction:      models.DirectionNeutral,
		Confidence:     decimal.NewFromFloat(0.5),
		Insights:       []string{"Analysis completed"},
	}
}

var errShapeMismatch = errors.New("unexpected report shape")

func extractMacroCycle(raw interface{}) (extraction, error) {
	r, ok := raw.(*agents.MacroCycleReport)
	if !ok {
		return extraction{}, errShapeMismatch
	}

	direction, err := models.ParseDirection(r.Outlook)
	if err != nil {
		direction = models.DirectionNeutral
	}

	implications := make(map[string]decimal.Decimal, len(r.AssetImpacts))
	for asset, impact := range r.AssetImpacts {
		implications[asset] = decimal.NewFromFloat(impact)
	}

	return extraction{
		SignalStrength:     decimal.NewFromFloat(r.GrowthScore).Abs(),
		Direction:          direction,
		Confidence:         decimal.NewFromFloat(r.Conviction),
		Insights:           append([]string(nil), r.Notes...),
		MarketImplications: implications,
	}, nil
}

func extractCentralBank(raw interface{}) (extraction, error) {
	r, ok := raw.(*agents.PolicyReport)
	if !ok {
		return extraction{}, errShapeMismatch
	}

	direction := models.DirectionNeutral
	switch r.Stance {
	case "dovish":
		direction = models.DirectionBullish
	case "hawkish":
		direction = models.DirectionBearish
	}

	return extraction{
		SignalStrength: decimal.NewFromFloat(r.RateTrend).Abs().Mul(decimal.NewFromInt(2)),
		Direction:      direction,
		Confidence:     decimal.NewFromFloat(r.Conviction),
		Insights:       []string{r.Summary},
		MarketImplications: map[string]decimal.Decimal{
			"rates": decimal.NewFromFloat(r.RateTrend),
		},
	}, nil
}

func extractGeopolitical(raw interface{}) (extraction, error) {
	r, ok := raw.(*agents.GeopoliticalReport)
	if !ok {
		return extraction{}, errShapeMismatch
	}

	direction := models.DirectionNeutral
	if r.RiskIndex > 0.5 {
		direction = models.DirectionBearish
	}

	return extraction{
		SignalStrength: decimal.NewFromFloat(r.RiskIndex),
		Direction:      direction,
		Confidence:     decimal.NewFromFloat(0.4 + r.SafeHavenBias),
		Insights:       []string{r.Assessment},
		MarketImplications: map[string]decimal.Decimal{
			"safe_havens": decimal.NewFromFloat(r.SafeHavenBias),
		},
	}, nil
}

func extractSentiment(raw interface{}) (extraction, error) {
	r, ok := raw.(*agents.SentimentReport)
	if !ok {
		return extraction{}, errShapeMismatch
	}

	direction := models.DirectionNeutral
	if r.Score > 0.25 {
		direction = models.DirectionBullish
	} else if r.Score < -0.25 {
		direction = models.DirectionBearish
	}

	score := decimal.NewFromFloat(r.Score)
	return extraction{
		SignalStrength: score.Abs(),
		Direction:      direction,
		Confidence:     decimal.NewFromFloat(0.3).Add(score.Abs()),
		Insights:       append([]string(nil), r.Drivers...),
	}, nil
}

func extractTechnical(raw interface{}) (extraction, error) {
	r, ok := raw.(*agents.TechnicalReport)
	if !ok {
		return extraction{}, errShapeMismatch
	}

	direction := models.DirectionNeutral
	switch r.TrendBias {
	case "up":
		direction = models.DirectionBullish
	case "down":
		direction = models.DirectionBearish
	}

	momentum := decimal.NewFromFloat(r.MomentumScore)
	return extraction{
		SignalStrength: momentum.Abs(),
		Direction:      direction,
		Confidence:     decimal.NewFromFloat(0.65),
		Insights:       append([]string(nil), r.Observations...),
		MarketImplications: map[string]decimal.Decimal{
			"equities": momentum,
		},
	}, nil
}
