package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Capstone-E1/aquasmart_calculators/internal/models"
)

func sampleHistory() []models.HistoricalSample {
	base := time.Date(2026, time.October, 3, 9, 0, 0, 0, time.UTC)
	return []models.HistoricalSample{
		{Label: "Oct 3", Timestamp: base, LSI: 0.4951, RSI: 6.81, PSI: 6.882},
		{Label: "Oct 4", Timestamp: base.AddDate(0, 0, 1), LSI: -0.42, RSI: 7.9, PSI: 7.4},
	}
}

func sampleReport() models.SDIReport {
	return models.SDIReport{
		ID:       uuid.MustParse("6f1c3a52-8f0e-4c42-9d8b-2f0a9e5b7c11"),
		TestInfo: models.SDITestInfo{SampleSource: "Feed tank", TestDate: "2026-10-14", PressurePSI: "30", TemperatureC: "25"},
		Timing:   models.SDIRawInput{TI: "30.5", TF: "45.2", TotalDuration: "15"},
		Result: models.SDIResult{
			Value:          2.17,
			RawValue:       2.168141592920354,
			Band:           models.SDIBandLow,
			Interpretation: models.SDIBandLow.Interpretation(),
			Recommendation: models.SDIBandLow.Recommendation(),
		},
		CalculatedAt: time.Date(2026, time.October, 14, 10, 30, 0, 0, time.UTC),
	}
}

func TestGenerateExcel_Sheets(t *testing.T) {
	es := NewExportService()
	data := NewExportData(sampleHistory(), []models.SDIReport{sampleReport()}, time.Date(2026, time.October, 14, 11, 0, 0, 0, time.UTC))

	f, err := es.GenerateExcel(data)
	if err != nil {
		t.Fatalf("GenerateExcel failed: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	expected := []string{"Summary", "Scaling Trend", "SDI Tests"}
	if len(sheets) != len(expected) {
		t.Fatalf("Expected sheets %v, got %v", expected, sheets)
	}
	for i, name := range expected {
		if sheets[i] != name {
			t.Errorf("Expected sheet %d to be %s, got %s", i, name, sheets[i])
		}
	}

	label, _ := f.GetCellValue("Scaling Trend", "A3")
	if label != "Oct 4" {
		t.Errorf("Expected second trend label Oct 4, got %s", label)
	}
	condition, _ := f.GetCellValue("Scaling Trend", "D2")
	if condition != "Scaling potential" {
		t.Errorf("Expected LSI condition 'Scaling potential', got %s", condition)
	}

	operator, _ := f.GetCellValue("SDI Tests", "C2")
	if operator != "Not specified" {
		t.Errorf("Expected default operator, got %s", operator)
	}
	interpretation, _ := f.GetCellValue("SDI Tests", "K2")
	if interpretation != "Low fouling potential" {
		t.Errorf("Expected low fouling interpretation, got %s", interpretation)
	}

	total, _ := f.GetCellValue("Summary", "B4")
	if total != "2" {
		t.Errorf("Expected 2 scaling samples in summary, got %s", total)
	}
}

func TestGenerateExcel_Empty(t *testing.T) {
	es := NewExportService()
	f, err := es.GenerateExcel(NewExportData(nil, nil, time.Now()))
	if err != nil {
		t.Fatalf("GenerateExcel failed on empty data: %v", err)
	}
	defer f.Close()

	if v, _ := f.GetCellValue("Summary", "A7"); v != "" {
		t.Errorf("Expected no latest SDI row, got %q", v)
	}
}

func TestGenerateCSV(t *testing.T) {
	es := NewExportService()
	records, err := es.GenerateCSV(sampleHistory())
	if err != nil {
		t.Fatalf("GenerateCSV failed: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d", len(records))
	}
	if records[1][2] != "0.50" {
		t.Errorf("Expected LSI rounded to 2 decimals, got %s", records[1][2])
	}
	if records[2][3] != "7.90" {
		t.Errorf("Expected RSI 7.90, got %s", records[2][3])
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := es.WriteCSV(w, records); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "Label,Timestamp,LSI,RSI,PSI\n") {
		t.Errorf("Unexpected CSV header: %q", buf.String())
	}
}

func TestWriteSDIReportPDF(t *testing.T) {
	es := NewExportService()
	report := sampleReport()

	var buf bytes.Buffer
	if err := es.WriteSDIReportPDF(&buf, &report); err != nil {
		t.Fatalf("WriteSDIReportPDF failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("Expected PDF header, got %q", buf.Bytes()[:8])
	}
}
