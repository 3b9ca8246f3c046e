package store

import (
	"github.com/Capstone-E1/aquasmart_calculators/internal/models"
)

// DataStore defines the interface for in-memory calculation history
type DataStore interface {
	// Scaling trend window
	AddScalingSample(models.HistoricalSample)
	GetScalingHistory() []models.HistoricalSample
	GetScalingHistoryCount() int
	ClearScalingHistory()

	// Recent SDI test summaries
	AddSDIReport(models.SDIReport)
	GetSDIReports() []models.SDIReport
	GetLatestSDIReport() (*models.SDIReport, bool)
}
