package store

import (
	"sync"

	"github.com/Capstone-E1/aquasmart_calculators/internal/models"
)

// Store keeps the scaling trend and recent SDI reports in memory. Both are
// bounded windows; the oldest entry is evicted first.
type Store struct {
	mu             sync.RWMutex
	scalingHistory []models.HistoricalSample
	sdiReports     []models.SDIReport
	maxSamples     int
	maxReports     int
}

// NewStore creates a new in-memory store. maxReports bounds the SDI report
// window; the scaling window is always models.HistoryCapacity.
func NewStore(maxReports int) *Store {
	if maxReports <= 0 {
		maxReports = models.HistoryCapacity
	}

	return &Store{
		scalingHistory: make([]models.HistoricalSample, 0, models.HistoryCapacity),
		sdiReports:     make([]models.SDIReport, 0, maxReports),
		maxSamples:     models.HistoryCapacity,
		maxReports:     maxReports,
	}
}

// AddScalingSample appends a trend sample, evicting the oldest beyond capacity
func (s *Store) AddScalingSample(sample models.HistoricalSample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scalingHistory = append(s.scalingHistory, sample)

	// Maintain maximum size by removing oldest entries
	if len(s.scalingHistory) > s.maxSamples {
		s.scalingHistory = s.scalingHistory[len(s.scalingHistory)-s.maxSamples:]
	}
}

// GetScalingHistory returns a copy of the trend window, oldest first
func (s *Store) GetScalingHistory() []models.HistoricalSample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := make([]models.HistoricalSample, len(s.scalingHistory))
	copy(history, s.scalingHistory)
	return history
}

// GetScalingHistoryCount returns the number of samples in the trend window
func (s *Store) GetScalingHistoryCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.scalingHistory)
}

// ClearScalingHistory empties the trend window
func (s *Store) ClearScalingHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scalingHistory = s.scalingHistory[:0]
}

// AddSDIReport appends an SDI test summary, evicting the oldest beyond capacity
func (s *Store) AddSDIReport(report models.SDIReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sdiReports = append(s.sdiReports, report)
	if len(s.sdiReports) > s.maxReports {
		s.sdiReports = s.sdiReports[len(s.sdiReports)-s.maxReports:]
	}
}

// GetSDIReports returns a copy of the recent SDI reports, oldest first
func (s *Store) GetSDIReports() []models.SDIReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reports := make([]models.SDIReport, len(s.sdiReports))
	copy(reports, s.sdiReports)
	return reports
}

// GetLatestSDIReport returns the most recent SDI report
func (s *Store) GetLatestSDIReport() (*models.SDIReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.sdiReports) == 0 {
		return nil, false
	}

	// Return a copy to avoid race conditions
	report := s.sdiReports[len(s.sdiReports)-1]
	return &report, true
}
