package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Capstone-E1/aquasmart_calculators/internal/models"
)

// StopwatchCommand is an operator action on the SDI stopwatch
type StopwatchCommand string

const (
	CommandStart    StopwatchCommand = "start"
	CommandStop     StopwatchCommand = "stop"
	CommandReset    StopwatchCommand = "reset"
	CommandRecordTi StopwatchCommand = "record_ti"
	CommandRecordTf StopwatchCommand = "record_tf"
)

// ParseStopwatchCommand accepts a bare word ("start", "record-ti") or a JSON
// object {"command": "..."}. Matching ignores case; dashes equal underscores.
func ParseStopwatchCommand(payload []byte) (StopwatchCommand, error) {
	text := strings.TrimSpace(string(payload))
	if strings.HasPrefix(text, "{") {
		var body struct {
			Command string `json:"command"`
		}
		if err := json.Unmarshal([]byte(text), &body); err != nil {
			return "", fmt.Errorf("invalid stopwatch command payload: %w", err)
		}
		text = body.Command
	}

	cmd := StopwatchCommand(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(text)), "-", "_"))
	switch cmd {
	case CommandStart, CommandStop, CommandReset, CommandRecordTi, CommandRecordTf:
		return cmd, nil
	}
	return "", fmt.Errorf("unknown stopwatch command %q", text)
}

// CommandResult reports what a stopwatch command did
type CommandResult struct {
	Command  StopwatchCommand      `json:"command"`
	State    models.StopwatchState `json:"state"`
	Recorded *float64              `json:"recorded_seconds,omitempty"`
}

// Execute applies cmd to the stopwatch
func (sw *Stopwatch) Execute(cmd StopwatchCommand) (*CommandResult, error) {
	result := &CommandResult{Command: cmd}

	switch cmd {
	case CommandStart:
		if err := sw.Start(); err != nil {
			return nil, err
		}
	case CommandStop:
		if err := sw.Stop(); err != nil {
			return nil, err
		}
	case CommandReset:
		sw.Reset()
	case CommandRecordTi:
		seconds := sw.RecordAsInitial()
		result.Recorded = &seconds
	case CommandRecordTf:
		seconds := sw.RecordAsFinal()
		result.Recorded = &seconds
	default:
		return nil, fmt.Errorf("unknown stopwatch command %q", cmd)
	}

	result.State = sw.State()
	return result, nil
}
