package agents

import (
	"github.com/shopspring/decimal"

	"github.com/consilium-ai/consilium-go/internal/config"
)

// DefaultRegistry builds the standard five-analyst committee with its fixed
// fusion weights. The weights sum to exactly 1.0.
func DefaultRegistry(cfg config.AnalystsConfig, market MarketDataProvider) (*Registry, error) {
	symbol := "SPY"
	if len(cfg.TechnicalSymbols) > 0 {
		symbol = cfg.TechnicalSymbols[0]
	}

	return NewRegistry([]Registration{
		{Analyst: NewMacroCycleAnalyst(cfg), Weight: decimal.NewFromFloat(0.25)},
		{Analyst: NewCentralBankAnalyst(cfg), Weight: decimal.NewFromFloat(0.20)},
		{Analyst: NewGeopoliticalAnalyst(cfg), Weight: decimal.NewFromFloat(0.15)},
		{Analyst: NewSentimentAnalyst(cfg), Weight: decimal.NewFromFloat(0.15)},
		{Analyst: NewTechnicalAnalyst(market, symbol), Weight: decimal.NewFromFloat(0.25)},
	})
}

// DefaultPeerGraph wires the standard committee's peer relationships. The
// graph is directed: sentiment watches everyone, but only the macro analyst
// watches policy back.
func DefaultPeerGraph() PeerGraph {
	return PeerGraph{
		AgentMacroCycle:   {AgentCentralBank, AgentGeopolitical},
		AgentCentralBank:  {AgentMacroCycle},
		AgentGeopolitical: {AgentMacroCycle, AgentCentralBank},
		AgentSentiment:    {AgentMacroCycle, AgentCentralBank, AgentGeopolitical, AgentTechnical},
		// The technical analyst has no peers; it skips refinement.
	}
}
