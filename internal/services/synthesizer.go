package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/consilium-ai/consilium-go/internal/agents"
	"github.com/consilium-ai/consilium-go/internal/config"
	"github.com/consilium-ai/consilium-go/internal/models"
	"github.com/consilium-ai/consilium-go/internal/reasoning"
)

// ConsensusSynthesizer fuses the full weighted decision set into one
// consensus decision. The primary path asks the reasoning service; any
// failure there falls back to a deterministic weighted average.
type ConsensusSynthesizer struct {
	svc      ReasoningService
	registry *agents.Registry
	cfg      *config.EngineConfig
	logger   *logrus.Logger
}

func NewConsensusSynthesizer(svc ReasoningService, registry *agents.Registry, cfg *config.EngineConfig, logger *logrus.Logger) *ConsensusSynthesizer {
	return &ConsensusSynthesizer{svc: svc, registry: registry, cfg: cfg, logger: logger}
}

// Synthesize always returns a decision. Views are assembled in registration
// order so the request payload is stable across runs.
func (s *ConsensusSynthesizer) Synthesize(ctx context.Context, decisions map[string]*models.AgentDecision, targetAssets []string) *models.ConsensusDecision {
	req := &reasoning.SynthesizeRequest{
		Agents:       s.weightedViews(decisions),
		TargetAssets: targetAssets,
	}

	resp, err := s.svc.Synthesize(ctx, req)
	if err != nil {
		s.logger.WithError(err).Warn("Consensus synthesis failed, using deterministic fallback")
		return s.Fallback(decisions)
	}

	return fromResponse(resp)
}

func (s *ConsensusSynthesizer) weightedViews(decisions map[string]*models.AgentDecision) []reasoning.WeightedView {
	views := make([]reasoning.WeightedView, 0, s.registry.Len())
	for _, id := range s.registry.IDs() {
		decision, ok := decisions[id]
		if !ok {
			continue
		}
		views = append(views, reasoning.WeightedView{
			AgentView: agentView(decision),
			Weight:    s.registry.Weight(id),
		})
	}
	return views
}

// fromResponse builds the decision from a validated service response,
// filling absent fields with named defaults.
func fromResponse(resp *reasoning.SynthesizeResponse) *models.ConsensusDecision {
	decision := &models.ConsensusDecision{
		ProducedAt:        time.Now().UTC(),
		OverallSignal:     models.SignalHold,
		ConvictionLevel:   decimal.NewFromFloat(0.5),
		AssetAllocation:   map[string]decimal.Decimal{"stocks": decimal.NewFromFloat(0.6), "bonds": decimal.NewFromFloat(0.4)},
		SectorWeights:     map[string]decimal.Decimal{},
		RiskLevel:         decimal.NewFromFloat(0.5),
		ConsensusFactors:  []string{},
		DissentingViews:   []string{},
		ExecutionPriority: models.PriorityGradual,
	}

	if resp.OverallSignal != "" {
		decision.OverallSignal = models.OverallSignal(resp.OverallSignal)
	}
	if resp.ConvictionLevel != nil {
		decision.ConvictionLevel = *resp.ConvictionLevel
	}
	if resp.AssetAllocation != nil {
		decision.AssetAllocation = resp.AssetAllocation
	}
	if resp.SectorWeights != nil {
		decision.SectorWeights = resp.SectorWeights
	}
	if resp.RiskLevel != nil {
		decision.RiskLevel = *resp.RiskLevel
	}
	if resp.ConsensusFactors != nil {
		decision.ConsensusFactors = resp.ConsensusFactors
	}
	if resp.DissentingViews != nil {
		decision.DissentingViews = resp.DissentingViews
	}
	if resp.ExecutionPriority != "" {
		decision.ExecutionPriority = models.ExecutionPriority(resp.ExecutionPriority)
	}
	return decision
}

// Fallback computes the deterministic weighted consensus used whenever the
// reasoning service cannot. Given the same decision set it always produces
// the same values: no randomness, no external calls.
func (s *ConsensusSynthesizer) Fallback(decisions map[string]*models.AgentDecision) *models.ConsensusDecision {
	numerator := decimal.Zero
	denominator := decimal.Zero
	for _, id := range s.registry.IDs() {
		weight := s.registry.Weight(id)
		denominator = denominator.Add(weight)

		decision, ok := decisions[id]
		if !ok {
			continue
		}
		numerator = numerator.Add(weight.Mul(decision.Direction.Sign()).Mul(decision.SignalStrength))
	}

	score := decimal.Zero
	if !denominator.IsZero() {
		score = numerator.Div(denominator)
	}

	signal := models.SignalHold
	if score.GreaterThan(decimal.NewFromFloat(s.cfg.BuyThreshold)) {
		signal = models.SignalBuy
	} else if score.LessThan(decimal.NewFromFloat(s.cfg.SellThreshold)) {
		signal = models.SignalSell
	}

	return &models.ConsensusDecision{
		ProducedAt:      time.Now().UTC(),
		OverallSignal:   signal,
		ConvictionLevel: models.ClampUnit(score.Abs()),
		AssetAllocation: map[string]decimal.Decimal{
			"stocks": decimal.NewFromFloat(0.6),
			"bonds":  decimal.NewFromFloat(0.3),
			"cash":   decimal.NewFromFloat(0.1),
		},
		SectorWeights:     map[string]decimal.Decimal{},
		RiskLevel:         decimal.NewFromFloat(0.5),
		ConsensusFactors:  []string{"Default consensus due to system error"},
		DissentingViews:   []string{},
		ExecutionPriority: models.PriorityGradual,
	}
}
