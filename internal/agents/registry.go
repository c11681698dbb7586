package agents

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// weightEpsilon is the tolerance for the registry weight-sum invariant.
var weightEpsilon = decimal.New(1, -6) // 1e-6

// Registration pairs an analyst with its fixed relative weight in the
// consensus fusion.
type Registration struct {
	Analyst Analyst
	Weight  decimal.Decimal
}

// Registry is the static table of analysts participating in a run. It is
// built once at startup and never mutated afterwards.
type Registry struct {
	entries map[string]Registration
	order   []string
}

// NewRegistry validates and builds a registry. It rejects an empty analyst
// set, duplicate identifiers, out-of-range weights, and weight sums that
// deviate from 1.0 by more than 1e-6. These are the only unrecoverable
// misconfigurations in the engine and they surface here, at startup.
func NewRegistry(regs []Registration) (*Registry, error) {
	if len(regs) == 0 {
		return nil, errors.New("agent registry must contain at least one analyst")
	}

	entries := make(map[string]Registration, len(regs))
	order := make([]string, 0, len(regs))
	sum := decimal.Zero

	for _, reg := range regs {
		if reg.Analyst == nil {
			return nil, errors.New("agent registry contains a nil analyst")
		}
		id := reg.Analyst.ID()
		if id == "" {
			return nil, errors.New("agent registry contains an analyst with an empty identifier")
		}
		if _, dup := entries[id]; dup {
			return nil, fmt.Errorf("duplicate analyst identifier: %q", id)
		}
		if reg.Weight.LessThan(decimal.Zero) || reg.Weight.GreaterThan(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("analyst %q weight %s outside [0, 1]", id, reg.Weight)
		}
		entries[id] = reg
		order = append(order, id)
		sum = sum.Add(reg.Weight)
	}

	if sum.Sub(decimal.NewFromInt(1)).Abs().GreaterThan(weightEpsilon) {
		return nil, fmt.Errorf("analyst weights sum to %s, want 1.0 within 1e-6", sum)
	}

	return &Registry{entries: entries, order: order}, nil
}

// IDs returns analyst identifiers in registration order. The order is stable
// across calls, which keeps weighted iteration deterministic.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of registered analysts.
func (r *Registry) Len() int {
	return len(r.order)
}

// Analyst returns the analyst registered under id.
func (r *Registry) Analyst(id string) (Analyst, bool) {
	reg, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	return reg.Analyst, true
}

// Weight returns the fusion weight for id, or zero for unknown identifiers.
func (r *Registry) Weight(id string) decimal.Decimal {
	return r.entries[id].Weight
}

// TotalWeight returns the sum of all registered weights.
func (r *Registry) TotalWeight() decimal.Decimal {
	sum := decimal.Zero
	for _, id := range r.order {
		sum = sum.Add(r.entries[id].Weight)
	}
	return sum
}
