package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAnalyst is a minimal analyst for registry tests.
type stubAnalyst struct {
	id     string
	report interface{}
	err    error
}

func (s *stubAnalyst) ID() string { return s.id }

func (s *stubAnalyst) Analyze(ctx context.Context) (interface{}, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

func weightedStub(id string, weight float64) Registration {
	return Registration{
		Analyst: &stubAnalyst{id: id, report: map[string]string{"id": id}},
		Weight:  decimal.NewFromFloat(weight),
	}
}

func TestNewRegistryValid(t *testing.T) {
	r, err := NewRegistry([]Registration{
		weightedStub("a", 0.5),
		weightedStub("b", 0.3),
		weightedStub("c", 0.2),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []string{"a", "b", "c"}, r.IDs())
	assert.True(t, r.Weight("b").Equal(decimal.NewFromFloat(0.3)))
	assert.True(t, r.TotalWeight().Sub(decimal.NewFromInt(1)).Abs().LessThanOrEqual(decimal.New(1, -6)))
}

func TestNewRegistryRejectsEmpty(t *testing.T) {
	_, err := NewRegistry(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one analyst")
}

func TestNewRegistryRejectsBadWeightSum(t *testing.T) {
	_, err := NewRegistry([]Registration{
		weightedStub("a", 0.5),
		weightedStub("b", 0.3),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weights sum")
}

func TestNewRegistryAcceptsSumWithinEpsilon(t *testing.T) {
	_, err := NewRegistry([]Registration{
		weightedStub("a", 0.5),
		weightedStub("b", 0.4999995),
	})
	assert.NoError(t, err)
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry([]Registration{
		weightedStub("a", 0.5),
		weightedStub("a", 0.5),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestNewRegistryRejectsOutOfRangeWeight(t *testing.T) {
	_, err := NewRegistry([]Registration{
		{Analyst: &stubAnalyst{id: "a"}, Weight: decimal.NewFromFloat(1.5)},
		{Analyst: &stubAnalyst{id: "b"}, Weight: decimal.NewFromFloat(-0.5)},
	})
	assert.Error(t, err)
}

func TestRegistryAnalystLookup(t *testing.T) {
	r, err := NewRegistry([]Registration{weightedStub("solo", 1.0)})
	require.NoError(t, err)

	a, ok := r.Analyst("solo")
	assert.True(t, ok)
	assert.Equal(t, "solo", a.ID())

	_, ok = r.Analyst("missing")
	assert.False(t, ok)
	assert.True(t, r.Weight("missing").Equal(decimal.Zero))
}

func TestPeerGraphPeers(t *testing.T) {
	g := PeerGraph{"a": {"b", "c"}}
	assert.Equal(t, []string{"b", "c"}, g.Peers("a"))
	assert.Empty(t, g.Peers("b"))
}

func TestStubAnalystError(t *testing.T) {
	s := &stubAnalyst{id: "x", err: errors.New("boom")}
	_, err := s.Analyze(context.Background())
	assert.Error(t, err)
}
