package agents

// Report shapes produced by the built-in analyst committee. Each analyst
// owns its own shape; the decision standardizer knows how to map every one
// of them into the common decision record, and unknown shapes degrade to a
// generic rule there.

// MacroCycleReport is the raw output of the macroeconomic-cycle analyst.
type MacroCycleReport struct {
	CyclePhase        string             `json:"cycle_phase"`
	GrowthScore       float64            `json:"growth_score"`
	InflationPressure float64            `json:"inflation_pressure"`
	Outlook           string             `json:"outlook"`
	Conviction        float64            `json:"conviction"`
	Notes             []string           `json:"notes"`
	AssetImpacts      map[string]float64 `json:"asset_impacts"`
}

// PolicyReport is the raw output of the central-bank policy analyst.
type PolicyReport struct {
	Stance     string   `json:"stance"`
	PolicyRate float64  `json:"policy_rate"`
	RateTrend  float64  `json:"rate_trend"`
	Conviction float64  `json:"conviction"`
	Summary    string   `json:"summary"`
	Watchlist  []string `json:"watchlist"`
}

// GeopoliticalReport is the raw output of the geopolitical-scoring analyst.
type GeopoliticalReport struct {
	RiskIndex     float64  `json:"risk_index"`
	Hotspots      []string `json:"hotspots"`
	Assessment    string   `json:"assessment"`
	SafeHavenBias float64  `json:"safe_haven_bias"`
}

// SentimentReport is the raw output of the market-sentiment analyst.
type SentimentReport struct {
	Mood    string   `json:"mood"`
	Score   float64  `json:"score"`
	Drivers []string `json:"drivers"`
}

// TechnicalReport is the raw output of the technical analyst.
type TechnicalReport struct {
	Symbol        string   `json:"symbol"`
	RSI           float64  `json:"rsi"`
	TrendBias     string   `json:"trend_bias"`
	MomentumScore float64  `json:"momentum_score"`
	Observations  []string `json:"observations"`
}
