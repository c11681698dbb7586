package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/consilium-ai/consilium-go/internal/agents"
	"github.com/consilium-ai/consilium-go/internal/models"
)

// ExecutionCoordinator fans the registered analysts out concurrently and
// fans their standardized decisions back in. Every registered analyst yields
// exactly one decision per run; a failing analyst yields the canonical error
// decision instead of aborting the run.
type ExecutionCoordinator struct {
	registry     *agents.Registry
	standardizer *Standardizer
	agentTimeout time.Duration
	logger       *logrus.Logger
}

func NewExecutionCoordinator(registry *agents.Registry, standardizer *Standardizer, agentTimeout time.Duration, logger *logrus.Logger) *ExecutionCoordinator {
	return &ExecutionCoordinator{
		registry:     registry,
		standardizer: standardizer,
		agentTimeout: agentTimeout,
		logger:       logger,
	}
}

// RunAgents executes every registered analyst concurrently and returns one
// decision per analyst. Wall-clock time is bounded by the slowest analyst.
// The results slice is pre-sized with one slot per analyst so the goroutines
// never contend on a shared structure.
func (c *ExecutionCoordinator) RunAgents(ctx context.Context) map[string]*models.AgentDecision {
	ids := c.registry.IDs()
	results := make([]*models.AgentDecision, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(slot int, agentID string) {
			defer wg.Done()
			results[slot] = c.runOne(ctx, agentID)
		}(i, id)
	}
	wg.Wait()

	decisions := make(map[string]*models.AgentDecision, len(ids))
	for _, decision := range results {
		decisions[decision.AgentID] = decision
	}
	return decisions
}

// runOne executes a single analyst under the per-agent timeout and converts
// any failure, including a panic, into the canonical error decision.
func (c *ExecutionCoordinator) runOne(ctx context.Context, agentID string) *models.AgentDecision {
	analyst, ok := c.registry.Analyst(agentID)
	if !ok {
		// Unreachable given a validated registry, but contained anyway.
		return models.ErrorDecision(agentID, fmt.Errorf("analyst %q not registered", agentID))
	}

	raw, err := c.analyze(ctx, analyst)
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"agent_id": agentID,
			"error":    err,
		}).Warn("Agent analysis failed, substituting error decision")
		return models.ErrorDecision(agentID, err)
	}

	return c.standardizer.Standardize(agentID, raw)
}

func (c *ExecutionCoordinator) analyze(ctx context.Context, analyst agents.Analyst) (raw interface{}, err error) {
	actx := ctx
	if c.agentTimeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, c.agentTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("agent panicked: %v", r)
		}
	}()
	return analyst.Analyze(actx)
}
