package reasoning

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/consilium-ai/consilium-go/internal/models"
)

// Refinement actions the reasoning service may return.
const (
	ActionAdjust   = "adjust"
	ActionMaintain = "maintain"
)

// AgentView summarizes one agent's current decision for the reasoning
// service.
type AgentView struct {
	AgentID        string          `json:"agent_id"`
	Direction      string          `json:"direction"`
	SignalStrength decimal.Decimal `json:"signal_strength"`
	Confidence     decimal.Decimal `json:"confidence"`
	TimeHorizon    string          `json:"time_horizon"`
	LeadInsight    string          `json:"lead_insight,omitempty"`
}

// PeerView is a one-line summary of a peer's current view.
type PeerView struct {
	PeerID  string `json:"peer_id"`
	Summary string `json:"summary"`
}

// RefineRequest asks the service whether an agent should adjust its view in
// light of its peers'.
type RefineRequest struct {
	Model string     `json:"model,omitempty"`
	Agent AgentView  `json:"agent"`
	Peers []PeerView `json:"peers"`
}

// RefineResponse is the service's structured answer to a refinement request.
// Numeric fields are pointers so an absent field is distinguishable from a
// zero value.
type RefineResponse struct {
	Action            string           `json:"action"`
	NewSignalStrength *decimal.Decimal `json:"new_signal_strength"`
	NewDirection      string           `json:"new_direction"`
	NewConfidence     *decimal.Decimal `json:"new_confidence"`
	Reasoning         string           `json:"reasoning"`
}

// Validate enforces the response schema. A violation makes the whole
// refinement a failure; downstream logic never sees partially valid data.
func (r *RefineResponse) Validate() error {
	switch r.Action {
	case ActionMaintain:
		return nil
	case ActionAdjust:
	default:
		return fmt.Errorf("invalid refinement action: %q", r.Action)
	}

	if r.NewSignalStrength == nil || r.NewConfidence == nil {
		return fmt.Errorf("adjust response missing new_signal_strength or new_confidence")
	}
	if !models.InUnitRange(*r.NewSignalStrength) {
		return fmt.Errorf("new_signal_strength %s outside [0, 1]", r.NewSignalStrength)
	}
	if !models.InUnitRange(*r.NewConfidence) {
		return fmt.Errorf("new_confidence %s outside [0, 1]", r.NewConfidence)
	}
	if _, err := models.ParseDirection(r.NewDirection); err != nil {
		return err
	}
	return nil
}

// WeightedView is an agent view paired with its fusion weight.
type WeightedView struct {
	AgentView
	Weight decimal.Decimal `json:"weight"`
}

// SynthesizeRequest asks the service to fuse the full weighted decision set
// into one consensus decision.
type SynthesizeRequest struct {
	Model        string         `json:"model,omitempty"`
	Agents       []WeightedView `json:"agents"`
	TargetAssets []string       `json:"target_assets,omitempty"`
}

// SynthesizeResponse is the service's structured consensus. Missing fields
// are filled with named defaults by the synthesizer; present fields must
// pass validation or the whole response is treated as a failure.
type SynthesizeResponse struct {
	OverallSignal     string                     `json:"overall_signal"`
	ConvictionLevel   *decimal.Decimal           `json:"conviction_level"`
	AssetAllocation   map[string]decimal.Decimal `json:"asset_allocation"`
	SectorWeights     map[string]decimal.Decimal `json:"sector_weights"`
	RiskLevel         *decimal.Decimal           `json:"risk_level"`
	ConsensusFactors  []string                   `json:"consensus_factors"`
	DissentingViews   []string                   `json:"dissenting_views"`
	ExecutionPriority string                     `json:"execution_priority"`
}

// Validate enforces the response schema on every present field.
func (r *SynthesizeResponse) Validate() error {
	if r.OverallSignal != "" {
		if _, err := models.ParseOverallSignal(r.OverallSignal); err != nil {
			return err
		}
	}
	if r.ConvictionLevel != nil && !models.InUnitRange(*r.ConvictionLevel) {
		return fmt.Errorf("conviction_level %s outside [0, 1]", r.ConvictionLevel)
	}
	if r.RiskLevel != nil && !models.InUnitRange(*r.RiskLevel) {
		return fmt.Errorf("risk_level %s outside [0, 1]", r.RiskLevel)
	}
	for asset, weight := range r.AssetAllocation {
		if weight.LessThan(decimal.Zero) {
			return fmt.Errorf("asset_allocation[%s] is negative: %s", asset, weight)
		}
	}
	for sector, weight := range r.SectorWeights {
		if weight.LessThan(decimal.Zero) {
			return fmt.Errorf("sector_weights[%s] is negative: %s", sector, weight)
		}
	}
	if r.ExecutionPriority != "" {
		if _, err := models.ParseExecutionPriority(r.ExecutionPriority); err != nil {
			return err
		}
	}
	return nil
}
