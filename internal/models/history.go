package models

import "time"

// HistoryCapacity is the number of scaling samples kept in the trend window
const HistoryCapacity = 5

// HistoryLabelFormat is the short date used to label trend samples
const HistoryLabelFormat = "Jan 2"

// HistoricalSample is one point of the scaling trend chart
type HistoricalSample struct {
	Label     string    `json:"label"`
	Timestamp time.Time `json:"timestamp"`
	LSI       float64   `json:"lsi"`
	RSI       float64   `json:"rsi"`
	PSI       float64   `json:"psi"`
}

// NewHistoricalSample builds a trend sample from a scaling result
func NewHistoricalSample(result *ScalingResult, at time.Time) HistoricalSample {
	return HistoricalSample{
		Label:     at.Format(HistoryLabelFormat),
		Timestamp: at,
		LSI:       result.LSI,
		RSI:       result.RSI,
		PSI:       result.PSI,
	}
}
