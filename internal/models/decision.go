package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Direction represents the polarity of an agent's market view.
type Direction string

const (
	DirectionBullish Direction = "bullish"
	DirectionBearish Direction = "bearish"
	DirectionNeutral Direction = "neutral"
)

// TimeHorizon represents the horizon an agent's view applies to.
type TimeHorizon string

const (
	HorizonShortTerm  TimeHorizon = "short_term"
	HorizonMediumTerm TimeHorizon = "medium_term"
	HorizonLongTerm   TimeHorizon = "long_term"
	HorizonUnknown    TimeHorizon = "unknown"
)

// OverallSignal represents the fused directional call of a consensus run.
type OverallSignal string

const (
	SignalStrongBuy  OverallSignal = "strong_buy"
	SignalBuy        OverallSignal = "buy"
	SignalHold       OverallSignal = "hold"
	SignalSell       OverallSignal = "sell"
	SignalStrongSell OverallSignal = "strong_sell"
)

// ExecutionPriority represents how urgently a consensus decision should be acted on.
type ExecutionPriority string

const (
	PriorityImmediate ExecutionPriority = "immediate"
	PriorityGradual   ExecutionPriority = "gradual"
	PriorityWait      ExecutionPriority = "wait"
)

var validDirections = map[Direction]bool{
	DirectionBullish: true, DirectionBearish: true, DirectionNeutral: true,
}

var validSignals = map[OverallSignal]bool{
	SignalStrongBuy: true, SignalBuy: true, SignalHold: true,
	SignalSell: true, SignalStrongSell: true,
}

var validPriorities = map[ExecutionPriority]bool{
	PriorityImmediate: true, PriorityGradual: true, PriorityWait: true,
}

// ParseDirection validates a direction string from an external source.
func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if !validDirections[d] {
		return "", fmt.Errorf("invalid direction: %q", s)
	}
	return d, nil
}

// ParseOverallSignal validates an overall signal string from an external source.
func ParseOverallSignal(s string) (OverallSignal, error) {
	sig := OverallSignal(s)
	if !validSignals[sig] {
		return "", fmt.Errorf("invalid overall signal: %q", s)
	}
	return sig, nil
}

// ParseExecutionPriority validates an execution priority string from an external source.
func ParseExecutionPriority(s string) (ExecutionPriority, error) {
	p := ExecutionPriority(s)
	if !validPriorities[p] {
		return "", fmt.Errorf("invalid execution priority: %q", s)
	}
	return p, nil
}

// Sign returns the numeric polarity of a direction: +1 bullish, -1 bearish, 0 neutral.
func (d Direction) Sign() decimal.Decimal {
	switch d {
	case DirectionBullish:
		return decimal.NewFromInt(1)
	case DirectionBearish:
		return decimal.NewFromInt(-1)
	default:
		return decimal.Zero
	}
}

var unitMax = decimal.NewFromInt(1)

// ClampUnit clamps a value to the [0, 1] interval.
func ClampUnit(v decimal.Decimal) decimal.Decimal {
	if v.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	if v.GreaterThan(unitMax) {
		return unitMax
	}
	return v
}

// InUnitRange reports whether a value already lies inside [0, 1].
func InUnitRange(v decimal.Decimal) bool {
	return !v.LessThan(decimal.Zero) && !v.GreaterThan(unitMax)
}

// AgentDecision is the standardized record every registered agent produces
// exactly once per run, regardless of whether its analysis succeeded.
type AgentDecision struct {
	AgentID            string                     `json:"agent_id"`
	ProducedAt         time.Time                  `json:"produced_at"`
	SignalStrength     decimal.Decimal            `json:"signal_strength"`
	Direction          Direction                  `json:"direction"`
	Confidence         decimal.Decimal            `json:"confidence"`
	Insights           []string                   `json:"insights"`
	MarketImplications map[string]decimal.Decimal `json:"market_implications"`
	TimeHorizon        TimeHorizon                `json:"time_horizon"`
	Raw                interface{}                `json:"raw,omitempty"`
}

// LeadInsight returns the first insight, or an empty string when none exist.
func (d *AgentDecision) LeadInsight() string {
	if len(d.Insights) == 0 {
		return ""
	}
	return d.Insights[0]
}

// Clone returns a deep copy of the decision. Raw is shared; it is opaque and
// never mutated after standardization.
func (d *AgentDecision) Clone() *AgentDecision {
	c := *d
	c.Insights = append([]string(nil), d.Insights...)
	if d.MarketImplications != nil {
		c.MarketImplications = make(map[string]decimal.Decimal, len(d.MarketImplications))
		for k, v := range d.MarketImplications {
			c.MarketImplications[k] = v
		}
	}
	return &c
}

// ErrorDecision builds the canonical decision substituted when an agent's
// analysis fails: zero strength, neutral direction, zero confidence.
func ErrorDecision(agentID string, err error) *AgentDecision {
	return &AgentDecision{
		AgentID:            agentID,
		ProducedAt:         time.Now().UTC(),
		SignalStrength:     decimal.Zero,
		Direction:          DirectionNeutral,
		Confidence:         decimal.Zero,
		Insights:           []string{fmt.Sprintf("Error: %v", err)},
		MarketImplications: map[string]decimal.Decimal{},
		TimeHorizon:        HorizonUnknown,
	}
}

// ConsensusDecision is the single fused decision produced per run.
type ConsensusDecision struct {
	ID                string                     `json:"id"`
	ProducedAt        time.Time                  `json:"produced_at"`
	OverallSignal     OverallSignal              `json:"overall_signal"`
	ConvictionLevel   decimal.Decimal            `json:"conviction_level"`
	AssetAllocation   map[string]decimal.Decimal `json:"asset_allocation"`
	SectorWeights     map[string]decimal.Decimal `json:"sector_weights"`
	RiskLevel         decimal.Decimal            `json:"risk_level"`
	ConsensusFactors  []string                   `json:"consensus_factors"`
	DissentingViews   []string                   `json:"dissenting_views"`
	ExecutionPriority ExecutionPriority          `json:"execution_priority"`
}
