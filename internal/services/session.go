package services

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Capstone-E1/aquasmart_calculators/internal/models"
	"github.com/Capstone-E1/aquasmart_calculators/internal/store"
)

// SDISessionState is the full state of the SDI calculator form
type SDISessionState struct {
	TestInfo models.SDITestInfo `json:"test_info"`
	Timing   models.SDIRawInput `json:"timing"`
	Report   *models.SDIReport  `json:"report,omitempty"`
}

// SDISession holds the SDI test sheet between operator actions. Any change
// to the timing or test information clears the last computed report.
type SDISession struct {
	mu       sync.RWMutex
	store    store.DataStore
	now      func() time.Time
	testInfo models.SDITestInfo
	timing   models.SDIRawInput
	report   *models.SDIReport
	onChange func(SDISessionState)
}

// NewSDISession creates a session with default test conditions
func NewSDISession(dataStore store.DataStore) *SDISession {
	s := &SDISession{
		store: dataStore,
		now:   time.Now,
	}
	s.resetLocked()
	return s
}

// SetClock replaces the clock used for test dates and report timestamps
func (s *SDISession) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SetChangeHandler sets a callback invoked after every field update
func (s *SDISession) SetChangeHandler(handler func(SDISessionState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = handler
}

// SetInitialTime records Ti in seconds, as written by the stopwatch
func (s *SDISession) SetInitialTime(seconds float64) {
	s.update(func() { s.timing.TI = models.FormatSeconds(seconds) })
}

// SetFinalTime records Tf in seconds, as written by the stopwatch
func (s *SDISession) SetFinalTime(seconds float64) {
	s.update(func() { s.timing.TF = models.FormatSeconds(seconds) })
}

// UpdateTiming replaces the raw timing fields
func (s *SDISession) UpdateTiming(timing models.SDIRawInput) {
	s.update(func() { s.timing = timing })
}

// UpdateTestInfo replaces the test information
func (s *SDISession) UpdateTestInfo(info models.SDITestInfo) {
	s.update(func() { s.testInfo = info })
}

// Calculate computes the SDI for the current timing sheet. On success the
// report is kept as the session result and added to the store.
func (s *SDISession) Calculate() (*models.SDIReport, error) {
	s.mu.Lock()
	timing := s.timing
	result, err := ComputeSDI(timing)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	report := &models.SDIReport{
		ID:           uuid.New(),
		TestInfo:     s.testInfo,
		Timing:       timing,
		Result:       *result,
		CalculatedAt: s.now(),
	}
	s.report = report
	s.mu.Unlock()

	if s.store != nil {
		s.store.AddSDIReport(*report)
	}
	log.Printf("🧮 SDI calculated: SDI=%.2f (%s) for sample '%s'",
		result.Value, result.Band, report.TestInfo.SampleSourceOrDefault())

	reportCopy := *report
	return &reportCopy, nil
}

// ResetAll restores the default test sheet and clears the result
func (s *SDISession) ResetAll() {
	s.mu.Lock()
	s.resetLocked()
	state := s.stateLocked()
	handler := s.onChange
	s.mu.Unlock()

	if handler != nil {
		handler(state)
	}
}

// State returns a snapshot of the session
func (s *SDISession) State() SDISessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

// Report returns the current result, if one is valid for the present inputs
func (s *SDISession) Report() (*models.SDIReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.report == nil {
		return nil, false
	}
	report := *s.report
	return &report, true
}

func (s *SDISession) update(apply func()) {
	s.mu.Lock()
	apply()
	s.report = nil
	state := s.stateLocked()
	handler := s.onChange
	s.mu.Unlock()

	if handler != nil {
		handler(state)
	}
}

func (s *SDISession) resetLocked() {
	s.testInfo = models.NewSDITestInfo(s.now())
	s.timing = models.SDIRawInput{TotalDuration: models.DefaultTotalDuration}
	s.report = nil
}

func (s *SDISession) stateLocked() SDISessionState {
	state := SDISessionState{
		TestInfo: s.testInfo,
		Timing:   s.timing,
	}
	if s.report != nil {
		report := *s.report
		state.Report = &report
	}
	return state
}
