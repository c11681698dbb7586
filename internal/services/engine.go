package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/consilium-ai/consilium-go/internal/agents"
	"github.com/consilium-ai/consilium-go/internal/config"
	"github.com/consilium-ai/consilium-go/internal/models"
)

// Engine drives one full analysis run through its stages: concurrent agent
// execution with standardization, peer refinement, consensus synthesis, and
// post-synthesis validation. A run always completes with a decision; agent
// and service failures only degrade it.
type Engine struct {
	registry    *agents.Registry
	coordinator *ExecutionCoordinator
	refinement  *RefinementStage
	synthesizer *ConsensusSynthesizer
	validator   *PostSynthesisValidator
	tracer      trace.Tracer
	logger      *logrus.Logger
}

func NewEngine(cfg *config.Config, registry *agents.Registry, peers agents.PeerGraph, svc ReasoningService, logger *logrus.Logger) *Engine {
	standardizer := NewStandardizer(logger)
	return &Engine{
		registry:    registry,
		coordinator: NewExecutionCoordinator(registry, standardizer, cfg.Engine.AgentTimeoutDuration(), logger),
		refinement:  NewRefinementStage(svc, peers, logger),
		synthesizer: NewConsensusSynthesizer(svc, registry, &cfg.Engine, logger),
		validator:   NewPostSynthesisValidator(&cfg.Engine),
		tracer:      otel.Tracer("consilium/engine"),
		logger:      logger,
	}
}

// RunAnalysis executes one stateless analysis run and returns the fused
// consensus decision. It never returns an error: failures at any stage are
// contained and surface only as degraded conviction values.
//
// The stages are separated by two hard barriers: refinement does not start
// until every agent has a standardized decision, and synthesis does not
// start until every refinement has completed or no-opped.
func (e *Engine) RunAnalysis(ctx context.Context, targetAssets []string) *models.ConsensusDecision {
	runID := uuid.New().String()
	ctx, span := e.tracer.Start(ctx, "engine.run_analysis", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.Int("run.agents", e.registry.Len()),
		attribute.StringSlice("run.target_assets", targetAssets),
	))
	defer span.End()

	log := e.logger.WithField("run_id", runID)
	log.WithField("agents", e.registry.Len()).Info("Starting consensus analysis run")

	agentCtx, agentSpan := e.tracer.Start(ctx, "engine.execute_agents")
	decisions := e.coordinator.RunAgents(agentCtx)
	agentSpan.End()

	refineCtx, refineSpan := e.tracer.Start(ctx, "engine.refine_decisions")
	e.refinement.Refine(refineCtx, decisions)
	refineSpan.End()

	synthCtx, synthSpan := e.tracer.Start(ctx, "engine.synthesize_consensus")
	consensus := e.synthesizer.Synthesize(synthCtx, decisions, targetAssets)
	synthSpan.End()

	e.validator.Validate(consensus, decisions)
	consensus.ID = runID

	log.WithFields(logrus.Fields{
		"overall_signal": consensus.OverallSignal,
		"conviction":     consensus.ConvictionLevel,
		"priority":       consensus.ExecutionPriority,
	}).Info("Consensus analysis run complete")

	return consensus
}
