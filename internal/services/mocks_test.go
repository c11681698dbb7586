package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/consilium-ai/consilium-go/internal/agents"
	"github.com/consilium-ai/consilium-go/internal/config"
	"github.com/consilium-ai/consilium-go/internal/models"
	"github.com/consilium-ai/consilium-go/internal/reasoning"
)

// mockReasoning is a testify mock of the reasoning service boundary.
type mockReasoning struct {
	mock.Mock
}

func (m *mockReasoning) Refine(ctx context.Context, req *reasoning.RefineRequest) (*reasoning.RefineResponse, error) {
	args := m.Called(ctx, req)
	if resp := args.Get(0); resp != nil {
		return resp.(*reasoning.RefineResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReasoning) Synthesize(ctx context.Context, req *reasoning.SynthesizeRequest) (*reasoning.SynthesizeResponse, error) {
	args := m.Called(ctx, req)
	if resp := args.Get(0); resp != nil {
		return resp.(*reasoning.SynthesizeResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

// scriptedAnalyst produces a fixed report, error, or delay on demand.
type scriptedAnalyst struct {
	id     string
	report interface{}
	err    error
	delay  time.Duration
	panics bool
}

func (a *scriptedAnalyst) ID() string { return a.id }

func (a *scriptedAnalyst) Analyze(ctx context.Context) (interface{}, error) {
	if a.panics {
		panic("scripted analyst panic")
	}
	if a.delay > 0 {
		select {
		case <-time.After(a.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if a.err != nil {
		return nil, a.err
	}
	return a.report, nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testEngineConfig() *config.EngineConfig {
	return &config.EngineConfig{
		AgentTimeout:                "5s",
		RiskThreshold:               0.8,
		RiskDampeningFactor:         0.8,
		DisagreementMargin:          1,
		DisagreementDampeningFactor: 0.8,
		BuyThreshold:                0.3,
		SellThreshold:               -0.3,
		HighRiskAssets:              []string{"stocks", "equities", "growth", "emerging_markets", "crypto"},
	}
}

// testRegistry builds a registry from (analyst, weight) pairs, failing the
// test on misconfiguration.
func testRegistry(t *testing.T, regs ...agents.Registration) *agents.Registry {
	t.Helper()
	registry, err := agents.NewRegistry(regs)
	require.NoError(t, err)
	return registry
}

func reg(analyst agents.Analyst, weight float64) agents.Registration {
	return agents.Registration{Analyst: analyst, Weight: decimal.NewFromFloat(weight)}
}

// decision builds a minimal standardized decision for fusion tests.
func decision(agentID string, direction models.Direction, strength float64) *models.AgentDecision {
	return &models.AgentDecision{
		AgentID:            agentID,
		ProducedAt:         time.Now().UTC(),
		SignalStrength:     decimal.NewFromFloat(strength),
		Direction:          direction,
		Confidence:         decimal.NewFromFloat(0.6),
		Insights:           []string{agentID + " view"},
		MarketImplications: map[string]decimal.Decimal{},
		TimeHorizon:        models.HorizonMediumTerm,
	}
}
