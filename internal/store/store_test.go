package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/Capstone-E1/aquasmart_calculators/internal/models"
)

func sample(i int) models.HistoricalSample {
	return models.HistoricalSample{
		Label:     fmt.Sprintf("sample-%d", i),
		Timestamp: time.Date(2026, time.January, i+1, 0, 0, 0, 0, time.UTC),
		LSI:       float64(i),
		RSI:       float64(i) + 6,
		PSI:       float64(i) + 5,
	}
}

func TestStore_ScalingHistory_Empty(t *testing.T) {
	store := NewStore(5)

	if count := store.GetScalingHistoryCount(); count != 0 {
		t.Errorf("Expected empty history, got %d entries", count)
	}
	if history := store.GetScalingHistory(); len(history) != 0 {
		t.Errorf("Expected empty slice, got %v", history)
	}
}

func TestStore_ScalingHistory_InsertionOrder(t *testing.T) {
	store := NewStore(5)

	for i := 0; i < 3; i++ {
		store.AddScalingSample(sample(i))
	}

	history := store.GetScalingHistory()
	if len(history) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(history))
	}
	for i, s := range history {
		if s.Label != fmt.Sprintf("sample-%d", i) {
			t.Errorf("Expected entry %d to be sample-%d, got %s", i, i, s.Label)
		}
	}
}

func TestStore_ScalingHistory_EvictsOldest(t *testing.T) {
	store := NewStore(5)

	for i := 0; i < 6; i++ {
		store.AddScalingSample(sample(i))
		if count := store.GetScalingHistoryCount(); count > models.HistoryCapacity {
			t.Fatalf("History exceeded capacity: %d entries", count)
		}
	}

	history := store.GetScalingHistory()
	if len(history) != models.HistoryCapacity {
		t.Fatalf("Expected %d entries, got %d", models.HistoryCapacity, len(history))
	}
	if history[0].Label != "sample-1" {
		t.Errorf("Expected first entry to be evicted, oldest is now %s", history[0].Label)
	}
	if history[4].Label != "sample-5" {
		t.Errorf("Expected newest entry sample-5, got %s", history[4].Label)
	}
}

func TestStore_ScalingHistory_ReturnsCopy(t *testing.T) {
	store := NewStore(5)
	store.AddScalingSample(sample(0))

	history := store.GetScalingHistory()
	history[0].Label = "mutated"

	if got := store.GetScalingHistory()[0].Label; got != "sample-0" {
		t.Errorf("Expected store to be unaffected by caller mutation, got %s", got)
	}
}

func TestStore_ClearScalingHistory(t *testing.T) {
	store := NewStore(5)
	store.AddScalingSample(sample(0))
	store.AddScalingSample(sample(1))

	store.ClearScalingHistory()

	if count := store.GetScalingHistoryCount(); count != 0 {
		t.Errorf("Expected 0 entries after clear, got %d", count)
	}
}

func TestStore_SDIReports(t *testing.T) {
	store := NewStore(2)

	if _, exists := store.GetLatestSDIReport(); exists {
		t.Error("Expected no SDI report initially")
	}

	for i := 0; i < 3; i++ {
		store.AddSDIReport(models.SDIReport{
			TestInfo: models.SDITestInfo{Operator: fmt.Sprintf("op-%d", i)},
		})
	}

	reports := store.GetSDIReports()
	if len(reports) != 2 {
		t.Fatalf("Expected 2 reports, got %d", len(reports))
	}
	if reports[0].TestInfo.Operator != "op-1" {
		t.Errorf("Expected oldest report op-1, got %s", reports[0].TestInfo.Operator)
	}

	latest, exists := store.GetLatestSDIReport()
	if !exists {
		t.Fatal("Expected latest report to exist")
	}
	if latest.TestInfo.Operator != "op-2" {
		t.Errorf("Expected latest report op-2, got %s", latest.TestInfo.Operator)
	}
}
