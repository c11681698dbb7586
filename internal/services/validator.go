package services

import (
	"github.com/shopspring/decimal"

	"github.com/consilium-ai/consilium-go/internal/config"
	"github.com/consilium-ai/consilium-go/internal/models"
)

// PostSynthesisValidator applies two independent dampening adjustments to a
// freshly synthesized decision. It mutates the decision in place exactly
// once, never fails, and never calls out.
type PostSynthesisValidator struct {
	cfg *config.EngineConfig
}

func NewPostSynthesisValidator(cfg *config.EngineConfig) *PostSynthesisValidator {
	return &PostSynthesisValidator{cfg: cfg}
}

// Validate dampens allocations of high-risk asset classes when risk runs
// hot, and dampens conviction when the committee is near-evenly split. The
// two checks are independent and may both fire in the same run.
func (v *PostSynthesisValidator) Validate(consensus *models.ConsensusDecision, decisions map[string]*models.AgentDecision) {
	v.dampenHighRiskAllocations(consensus)
	v.dampenDisagreement(consensus, decisions)
}

func (v *PostSynthesisValidator) dampenHighRiskAllocations(consensus *models.ConsensusDecision) {
	if !consensus.RiskLevel.GreaterThan(decimal.NewFromFloat(v.cfg.RiskThreshold)) {
		return
	}

	factor := decimal.NewFromFloat(v.cfg.RiskDampeningFactor)
	for _, asset := range v.cfg.HighRiskAssets {
		if weight, ok := consensus.AssetAllocation[asset]; ok {
			consensus.AssetAllocation[asset] = weight.Mul(factor)
		}
	}
}

func (v *PostSynthesisValidator) dampenDisagreement(consensus *models.ConsensusDecision, decisions map[string]*models.AgentDecision) {
	bulls, bears := 0, 0
	for _, decision := range decisions {
		switch decision.Direction {
		case models.DirectionBullish:
			bulls++
		case models.DirectionBearish:
			bears++
		}
	}

	margin := bulls - bears
	if margin < 0 {
		margin = -margin
	}
	if margin > v.cfg.DisagreementMargin {
		return
	}

	factor := decimal.NewFromFloat(v.cfg.DisagreementDampeningFactor)
	consensus.ConvictionLevel = models.ClampUnit(consensus.ConvictionLevel.Mul(factor))
	consensus.ExecutionPriority = models.PriorityGradual
}
