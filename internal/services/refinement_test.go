package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/consilium-ai/consilium-go/internal/agents"
	"github.com/consilium-ai/consilium-go/internal/models"
	"github.com/consilium-ai/consilium-go/internal/reasoning"
)

func adjustResponse(strength, confidence float64, direction, rationale string) *reasoning.RefineResponse {
	s := decimal.NewFromFloat(strength)
	c := decimal.NewFromFloat(confidence)
	return &reasoning.RefineResponse{
		Action:            reasoning.ActionAdjust,
		NewSignalStrength: &s,
		NewDirection:      direction,
		NewConfidence:     &c,
		Reasoning:         rationale,
	}
}

func TestRefineAppliesAdjustment(t *testing.T) {
	svc := &mockReasoning{}
	svc.On("Refine", mock.Anything, mock.Anything).
		Return(adjustResponse(0.55, 0.5, "neutral", "peers lean cautious"), nil).Once()

	decisions := map[string]*models.AgentDecision{
		"alpha": decision("alpha", models.DirectionBullish, 0.8),
		"beta":  decision("beta", models.DirectionBearish, 0.4),
	}
	stage := NewRefinementStage(svc, agents.PeerGraph{"alpha": {"beta"}}, testLogger())

	stage.Refine(context.Background(), decisions)

	alpha := decisions["alpha"]
	assert.True(t, alpha.SignalStrength.Equal(decimal.NewFromFloat(0.55)))
	assert.Equal(t, models.DirectionNeutral, alpha.Direction)
	assert.True(t, alpha.Confidence.Equal(decimal.NewFromFloat(0.5)))
	assert.Equal(t, "Revised after peer review: peers lean cautious", alpha.Insights[len(alpha.Insights)-1])
	svc.AssertNumberOfCalls(t, "Refine", 1)
}

func TestRefineEmptyPeerSetMakesNoCall(t *testing.T) {
	svc := &mockReasoning{}

	decisions := map[string]*models.AgentDecision{
		"alpha": decision("alpha", models.DirectionBullish, 0.8),
		"beta":  decision("beta", models.DirectionBearish, 0.4),
	}
	stage := NewRefinementStage(svc, agents.PeerGraph{}, testLogger())

	stage.Refine(context.Background(), decisions)

	svc.AssertNumberOfCalls(t, "Refine", 0)
}

func TestRefineMaintainLeavesDecisionUntouched(t *testing.T) {
	svc := &mockReasoning{}
	svc.On("Refine", mock.Anything, mock.Anything).
		Return(&reasoning.RefineResponse{Action: reasoning.ActionMaintain}, nil)

	original := decision("alpha", models.DirectionBullish, 0.8)
	decisions := map[string]*models.AgentDecision{
		"alpha": original,
		"beta":  decision("beta", models.DirectionBearish, 0.4),
	}
	stage := NewRefinementStage(svc, agents.PeerGraph{"alpha": {"beta"}}, testLogger())

	stage.Refine(context.Background(), decisions)

	assert.True(t, original.SignalStrength.Equal(decimal.NewFromFloat(0.8)))
	assert.Equal(t, models.DirectionBullish, original.Direction)
	assert.Equal(t, []string{"alpha view"}, original.Insights)
}

func TestRefineServiceFailureLeavesDecisionUntouched(t *testing.T) {
	svc := &mockReasoning{}
	svc.On("Refine", mock.Anything, mock.Anything).
		Return(nil, errors.New("reasoning service returned status 503"))

	original := decision("alpha", models.DirectionBullish, 0.8)
	decisions := map[string]*models.AgentDecision{
		"alpha": original,
		"beta":  decision("beta", models.DirectionBearish, 0.4),
	}
	stage := NewRefinementStage(svc, agents.PeerGraph{"alpha": {"beta"}}, testLogger())

	stage.Refine(context.Background(), decisions)

	assert.True(t, original.SignalStrength.Equal(decimal.NewFromFloat(0.8)))
	assert.Equal(t, models.DirectionBullish, original.Direction)
	assert.True(t, original.Confidence.Equal(decimal.NewFromFloat(0.6)))
}

func TestRefinePeerSummariesComeFromPreRoundSnapshot(t *testing.T) {
	svc := &mockReasoning{}
	var mu sync.Mutex
	var requests []*reasoning.RefineRequest
	svc.On("Refine", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			mu.Lock()
			requests = append(requests, args.Get(1).(*reasoning.RefineRequest))
			mu.Unlock()
		}).
		Return(adjustResponse(0.1, 0.1, "bearish", "flip"), nil)

	decisions := map[string]*models.AgentDecision{
		"alpha": decision("alpha", models.DirectionBullish, 0.8),
		"beta":  decision("beta", models.DirectionBullish, 0.7),
	}
	// Mutual peers: each refinement must still see the other's original view.
	stage := NewRefinementStage(svc, agents.PeerGraph{"alpha": {"beta"}, "beta": {"alpha"}}, testLogger())

	stage.Refine(context.Background(), decisions)

	assert.Len(t, requests, 2)
	for _, req := range requests {
		assert.Len(t, req.Peers, 1)
		assert.Contains(t, req.Peers[0].Summary, "bullish at strength 0.")
	}
	// Both adjustments were applied to the live decisions afterwards.
	assert.Equal(t, models.DirectionBearish, decisions["alpha"].Direction)
	assert.Equal(t, models.DirectionBearish, decisions["beta"].Direction)
}

func TestRefineUnknownPeerIsSkippedInSummary(t *testing.T) {
	svc := &mockReasoning{}
	var captured *reasoning.RefineRequest
	svc.On("Refine", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(*reasoning.RefineRequest) }).
		Return(&reasoning.RefineResponse{Action: reasoning.ActionMaintain}, nil)

	decisions := map[string]*models.AgentDecision{
		"alpha": decision("alpha", models.DirectionBullish, 0.8),
	}
	stage := NewRefinementStage(svc, agents.PeerGraph{"alpha": {"ghost"}}, testLogger())

	stage.Refine(context.Background(), decisions)

	assert.NotNil(t, captured)
	assert.Empty(t, captured.Peers)
}
