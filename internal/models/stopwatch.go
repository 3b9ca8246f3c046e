package models

import (
	"fmt"
	"math"
	"strconv"
)

// StopwatchPhase represents the state of the SDI stopwatch
type StopwatchPhase string

const (
	StopwatchIdle    StopwatchPhase = "idle"
	StopwatchRunning StopwatchPhase = "running"
	StopwatchStopped StopwatchPhase = "stopped"
)

// StopwatchState is a point-in-time snapshot of the stopwatch
type StopwatchState struct {
	Phase        StopwatchPhase `json:"state"`
	ElapsedMs    int64          `json:"elapsed_ms"`
	Running      bool           `json:"running"`
	StartEpochMs int64          `json:"start_epoch_ms"`
	Display      string         `json:"display"`
}

// FormatElapsed renders milliseconds as minutes:seconds.tenths with the
// seconds part zero-padded to width 4, e.g. 65300 -> "1:05.3"
func FormatElapsed(ms int64) string {
	totalSeconds := float64(ms) / 1000
	minutes := int64(math.Floor(totalSeconds / 60))
	seconds := math.Mod(totalSeconds, 60)
	return fmt.Sprintf("%d:%04.1f", minutes, seconds)
}

// MillisToSeconds converts milliseconds to seconds rounded to one decimal
func MillisToSeconds(ms int64) float64 {
	return math.Round(float64(ms)/100) / 10
}

// FormatSeconds renders seconds with one decimal, the form the timing sheet stores
func FormatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 1, 64)
}
