package services

import (
	"errors"
	"testing"
	"time"

	"github.com/Capstone-E1/aquasmart_calculators/internal/models"
	"github.com/Capstone-E1/aquasmart_calculators/internal/store"
)

func newTestSession() (*SDISession, *store.Store, *fakeClock) {
	dataStore := store.NewStore(5)
	clock := newFakeClock()
	session := NewSDISession(dataStore)
	session.SetClock(clock.Now)
	return session, dataStore, clock
}

func TestSDISession_Defaults(t *testing.T) {
	session, _, _ := newTestSession()

	state := session.State()
	if state.Timing.TotalDuration != "15" {
		t.Errorf("Expected default duration 15, got %q", state.Timing.TotalDuration)
	}
	if state.TestInfo.PressurePSI != "30" || state.TestInfo.TemperatureC != "25" {
		t.Errorf("Unexpected default test info: %+v", state.TestInfo)
	}
	if state.Report != nil {
		t.Error("Expected no report initially")
	}
}

func TestSDISession_CalculateFromStopwatch(t *testing.T) {
	session, dataStore, _ := newTestSession()
	sw, clock := newTestStopwatch(session)
	defer sw.Close()

	sw.Start()
	clock.Advance(30500 * time.Millisecond)
	sw.RecordAsInitial()
	clock.Advance(14700 * time.Millisecond)
	sw.RecordAsFinal()

	state := session.State()
	if state.Timing.TI != "30.5" || state.Timing.TF != "45.2" {
		t.Fatalf("Expected recorded timing 30.5/45.2, got %+v", state.Timing)
	}

	report, err := session.Calculate()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if report.Result.Value != 2.17 || report.Result.Band != models.SDIBandLow {
		t.Errorf("Unexpected result: %+v", report.Result)
	}
	if report.ID.String() == "" {
		t.Error("Expected report ID to be set")
	}

	if _, exists := session.Report(); !exists {
		t.Error("Expected session to hold the report")
	}
	if latest, exists := dataStore.GetLatestSDIReport(); !exists || latest.ID != report.ID {
		t.Error("Expected report to be added to the store")
	}
}

func TestSDISession_InputChangeClearsResult(t *testing.T) {
	session, _, _ := newTestSession()
	session.UpdateTiming(models.SDIRawInput{TI: "30", TF: "45", TotalDuration: "15"})

	if _, err := session.Calculate(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	session.SetFinalTime(46.1)
	if _, exists := session.Report(); exists {
		t.Error("Expected timing change to clear the report")
	}

	if _, err := session.Calculate(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	session.UpdateTestInfo(models.SDITestInfo{Operator: "R. Ortiz"})
	if _, exists := session.Report(); exists {
		t.Error("Expected test info change to clear the report")
	}
}

func TestSDISession_FailedCalculationKeepsNoResult(t *testing.T) {
	session, dataStore, _ := newTestSession()
	session.UpdateTiming(models.SDIRawInput{TI: "45", TF: "30", TotalDuration: "15"})

	_, err := session.Calculate()
	if !errors.Is(err, models.ErrOrderingViolation) {
		t.Fatalf("Expected ordering violation, got %v", err)
	}
	if _, exists := session.Report(); exists {
		t.Error("Expected no report after failure")
	}
	if len(dataStore.GetSDIReports()) != 0 {
		t.Error("Expected no report stored after failure")
	}
}

func TestSDISession_ResetAll(t *testing.T) {
	session, _, clock := newTestSession()
	session.UpdateTiming(models.SDIRawInput{TI: "30", TF: "45", TotalDuration: "20"})
	session.UpdateTestInfo(models.SDITestInfo{SampleSource: "Well Water"})
	session.Calculate()

	clock.Advance(48 * time.Hour)
	session.ResetAll()

	state := session.State()
	if state.Timing != (models.SDIRawInput{TotalDuration: "15"}) {
		t.Errorf("Expected default timing after reset, got %+v", state.Timing)
	}
	if state.TestInfo.SampleSource != "" || state.TestInfo.TestDate != "2026-10-16" {
		t.Errorf("Unexpected test info after reset: %+v", state.TestInfo)
	}
	if state.Report != nil {
		t.Error("Expected report cleared after reset")
	}
}

func TestSDISession_ChangeHandler(t *testing.T) {
	session, _, _ := newTestSession()

	var states []SDISessionState
	session.SetChangeHandler(func(state SDISessionState) {
		states = append(states, state)
	})

	session.SetInitialTime(12.3)
	session.SetFinalTime(20)

	if len(states) != 2 {
		t.Fatalf("Expected 2 change notifications, got %d", len(states))
	}
	if states[1].Timing.TI != "12.3" || states[1].Timing.TF != "20.0" {
		t.Errorf("Unexpected timing in notification: %+v", states[1].Timing)
	}
}
