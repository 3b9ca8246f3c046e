package mqtt

import (
	"errors"
	"testing"

	"github.com/Capstone-E1/aquasmart_calculators/internal/models"
	"github.com/Capstone-E1/aquasmart_calculators/internal/services"
)

func TestHandleCommandPayload_DispatchesParsedCommand(t *testing.T) {
	var received []services.StopwatchCommand
	handler := func(cmd services.StopwatchCommand) (*services.CommandResult, error) {
		received = append(received, cmd)
		return &services.CommandResult{Command: cmd, State: models.StopwatchState{Display: "0:00.0"}}, nil
	}

	client := NewClient(DefaultConfig(), handler)

	payloads := []string{"start", `{"command":"record_ti"}`, "RECORD-TF"}
	for _, p := range payloads {
		if _, err := client.HandleCommandPayload([]byte(p)); err != nil {
			t.Errorf("payload %q: unexpected error %v", p, err)
		}
	}

	expected := []services.StopwatchCommand{services.CommandStart, services.CommandRecordTi, services.CommandRecordTf}
	if len(received) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, received)
	}
	for i := range expected {
		if received[i] != expected[i] {
			t.Errorf("Command %d: expected %s, got %s", i, expected[i], received[i])
		}
	}
}

func TestHandleCommandPayload_Errors(t *testing.T) {
	rejected := errors.New("stopwatch is already running")
	calls := 0
	client := NewClient(DefaultConfig(), func(cmd services.StopwatchCommand) (*services.CommandResult, error) {
		calls++
		return nil, rejected
	})

	var reported []error
	client.SetErrorHandler(func(err error) { reported = append(reported, err) })

	if _, err := client.HandleCommandPayload([]byte("explode")); err == nil {
		t.Error("Expected parse error for unknown command")
	}
	if calls != 0 {
		t.Errorf("Handler must not run for invalid payloads, ran %d times", calls)
	}

	if _, err := client.HandleCommandPayload([]byte("start")); !errors.Is(err, rejected) {
		t.Errorf("Expected handler error, got %v", err)
	}
	if len(reported) != 2 {
		t.Errorf("Expected 2 reported errors, got %d", len(reported))
	}
}

func TestPublish_NotConnected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ConnectRetry = false
	client := NewClient(cfg, nil)

	if client.IsConnected() {
		t.Error("Expected client to start disconnected")
	}
	if err := client.PublishScalingResult(&models.ScalingResult{}); err == nil {
		t.Error("Expected publish to fail without a broker connection")
	}
}
