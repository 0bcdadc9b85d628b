package model

// Quote is one row of current-session data for an index constituent.
type Quote struct {
	Symbol        string
	PercentChange float64
}

// GainerLoser is a ranked entry of the session's biggest movers.
type GainerLoser struct {
	Symbol        string
	PercentChange float64
}

// ExtremeDeviation relates the latest close to the window high or low.
type ExtremeDeviation struct {
	Symbol       string
	CurrentPrice float64
	ExtremePrice float64 // high for below-high entries, low for above-low entries
}

// ReturnEntry is a ranked trailing return in percent.
type ReturnEntry struct {
	Symbol        string
	ReturnPercent float64
}
