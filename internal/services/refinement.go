package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/consilium-ai/consilium-go/internal/agents"
	"github.com/consilium-ai/consilium-go/internal/models"
	"github.com/consilium-ai/consilium-go/internal/reasoning"
)

// ReasoningService is the consumer-side view of the external reasoning
// sidecar. Both operations are fallible and possibly slow; every failure is
// contained by the stage that made the call.
type ReasoningService interface {
	Refine(ctx context.Context, req *reasoning.RefineRequest) (*reasoning.RefineResponse, error)
	Synthesize(ctx context.Context, req *reasoning.SynthesizeRequest) (*reasoning.SynthesizeResponse, error)
}

// RefinementStage lets each analyst revise its decision in light of its
// peers' views. Refinement is strictly best-effort: any service failure
// leaves the decision exactly as it was.
type RefinementStage struct {
	svc    ReasoningService
	peers  agents.PeerGraph
	logger *logrus.Logger
}

func NewRefinementStage(svc ReasoningService, peers agents.PeerGraph, logger *logrus.Logger) *RefinementStage {
	return &RefinementStage{svc: svc, peers: peers, logger: logger}
}

// Refine runs one refinement round over the full decision set, in place.
// Peer views are read from a snapshot taken before the round starts, so
// every analyst refines against the same frozen pre-refinement state no
// matter how the concurrent calls interleave. Analysts with no peers skip
// the round entirely.
func (s *RefinementStage) Refine(ctx context.Context, decisions map[string]*models.AgentDecision) {
	snapshot := make(map[string]*models.AgentDecision, len(decisions))
	for id, decision := range decisions {
		snapshot[id] = decision.Clone()
	}

	var wg sync.WaitGroup
	for id, decision := range decisions {
		peerIDs := s.peers.Peers(id)
		if len(peerIDs) == 0 {
			continue
		}

		wg.Add(1)
		go func(agentID string, decision *models.AgentDecision, peerIDs []string) {
			defer wg.Done()
			s.refineOne(ctx, agentID, decision, peerIDs, snapshot)
		}(id, decision, peerIDs)
	}
	wg.Wait()
}

func (s *RefinementStage) refineOne(ctx context.Context, agentID string, decision *models.AgentDecision, peerIDs []string, snapshot map[string]*models.AgentDecision) {
	req := &reasoning.RefineRequest{
		Agent: agentView(decision),
		Peers: peerViews(peerIDs, snapshot),
	}

	resp, err := s.svc.Refine(ctx, req)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"agent_id": agentID,
			"error":    err,
		}).Warn("Peer refinement failed, keeping original decision")
		return
	}

	if resp.Action != reasoning.ActionAdjust {
		return
	}

	decision.SignalStrength = models.ClampUnit(*resp.NewSignalStrength)
	decision.Direction = models.Direction(resp.NewDirection)
	decision.Confidence = models.ClampUnit(*resp.NewConfidence)

	provenance := "Revised after peer review"
	if resp.Reasoning != "" {
		provenance = fmt.Sprintf("Revised after peer review: %s", resp.Reasoning)
	}
	decision.Insights = append(decision.Insights, provenance)
}

// agentView condenses a decision into the summary shape the reasoning
// service consumes.
func agentView(d *models.AgentDecision) reasoning.AgentView {
	return reasoning.AgentView{
		AgentID:        d.AgentID,
		Direction:      string(d.Direction),
		SignalStrength: d.SignalStrength,
		Confidence:     d.Confidence,
		TimeHorizon:    string(d.TimeHorizon),
		LeadInsight:    d.LeadInsight(),
	}
}

// peerViews builds one-line summaries of each peer's current view from the
// frozen snapshot. Peers missing from the snapshot are skipped.
func peerViews(peerIDs []string, snapshot map[string]*models.AgentDecision) []reasoning.PeerView {
	views := make([]reasoning.PeerView, 0, len(peerIDs))
	for _, peerID := range peerIDs {
		peer, ok := snapshot[peerID]
		if !ok {
			continue
		}
		summary := fmt.Sprintf("%s at strength %s", peer.Direction, peer.SignalStrength.StringFixed(2))
		if lead := peer.LeadInsight(); lead != "" {
			summary = fmt.Sprintf("%s: %s", summary, lead)
		}
		views = append(views, reasoning.PeerView{PeerID: peerID, Summary: summary})
	}
	return views
}
