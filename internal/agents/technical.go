package agents

import (
	"context"
	"fmt"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
)

// MarketDataProvider supplies recent closing prices to the technical
// analyst. A provider failure fails the analyst, which the execution
// coordinator contains like any other agent failure.
type MarketDataProvider interface {
	RecentCloses(ctx context.Context, symbol string, limit int) ([]float64, error)
}

// TechnicalAnalyst computes trend and momentum state over recent closes.
type TechnicalAnalyst struct {
	provider MarketDataProvider
	symbol   string
}

// minClosesForAnalysis covers the longest moving-average window plus one
// prior bar for crossover detection.
const minClosesForAnalysis = 51

func NewTechnicalAnalyst(provider MarketDataProvider, symbol string) *TechnicalAnalyst {
	return &TechnicalAnalyst{provider: provider, symbol: symbol}
}

func (a *TechnicalAnalyst) ID() string { return AgentTechnical }

func (a *TechnicalAnalyst) Analyze(ctx context.Context) (interface{}, error) {
	if a.provider == nil {
		return nil, fmt.Errorf("no market data provider configured")
	}

	closes, err := a.provider.RecentCloses(ctx, a.symbol, 200)
	if err != nil {
		return nil, fmt.Errorf("fetching closes for %s: %w", a.symbol, err)
	}
	if len(closes) < minClosesForAnalysis {
		return nil, fmt.Errorf("insufficient price data for %s: need at least %d closes, got %d",
			a.symbol, minClosesForAnalysis, len(closes))
	}

	sma20Indicator := trend.NewSmaWithPeriod[float64](20)
	sma50Indicator := trend.NewSmaWithPeriod[float64](50)
	sma20 := helper.ChanToSlice(sma20Indicator.Compute(helper.SliceToChan(closes)))
	sma50 := helper.ChanToSlice(sma50Indicator.Compute(helper.SliceToChan(closes)))

	rsiIndicator := momentum.NewRsiWithPeriod[float64](14)
	rsi := helper.ChanToSlice(rsiIndicator.Compute(helper.SliceToChan(closes)))

	report := &TechnicalReport{Symbol: a.symbol, TrendBias: "flat"}
	if len(rsi) > 0 {
		report.RSI = rsi[len(rsi)-1]
	}

	if len(sma20) > 0 && len(sma50) > 0 {
		fast := sma20[len(sma20)-1]
		slow := sma50[len(sma50)-1]
		switch {
		case fast > slow:
			report.TrendBias = "up"
			report.Observations = append(report.Observations,
				fmt.Sprintf("SMA20 above SMA50 for %s (%.2f vs %.2f)", a.symbol, fast, slow))
		case fast < slow:
			report.TrendBias = "down"
			report.Observations = append(report.Observations,
				fmt.Sprintf("SMA20 below SMA50 for %s (%.2f vs %.2f)", a.symbol, fast, slow))
		}
	}

	// Momentum score combines the RSI deviation from the 50 midline with the
	// trend bias, each contributing half.
	momentumScore := (report.RSI - 50) / 50
	switch report.TrendBias {
	case "up":
		momentumScore = momentumScore*0.5 + 0.5
	case "down":
		momentumScore = momentumScore*0.5 - 0.5
	}
	if momentumScore > 1 {
		momentumScore = 1
	}
	if momentumScore < -1 {
		momentumScore = -1
	}
	report.MomentumScore = momentumScore

	if report.RSI > 70 {
		report.Observations = append(report.Observations,
			fmt.Sprintf("RSI overbought at %.1f for %s", report.RSI, a.symbol))
	} else if report.RSI < 30 && report.RSI > 0 {
		report.Observations = append(report.Observations,
			fmt.Sprintf("RSI oversold at %.1f for %s", report.RSI, a.symbol))
	}
	if len(report.Observations) == 0 {
		report.Observations = []string{fmt.Sprintf("No decisive technical setup for %s", a.symbol)}
	}

	return report, nil
}
