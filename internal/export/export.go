package export

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Capstone-E1/aquasmart_calculators/internal/models"
)

// ExportService handles data export functionality
type ExportService struct{}

// NewExportService creates a new export service instance
func NewExportService() *ExportService {
	return &ExportService{}
}

// ExportData represents data to be exported
type ExportData struct {
	ScalingHistory []models.HistoricalSample
	SDIReports     []models.SDIReport
	ExportMetadata ExportMetadata
}

// ExportMetadata contains information about the export
type ExportMetadata struct {
	GeneratedAt  time.Time `json:"generated_at"`
	TotalSamples int       `json:"total_samples"`
	TotalReports int       `json:"total_reports"`
}

// NewExportData assembles export data with its metadata
func NewExportData(history []models.HistoricalSample, reports []models.SDIReport, now time.Time) ExportData {
	return ExportData{
		ScalingHistory: history,
		SDIReports:     reports,
		ExportMetadata: ExportMetadata{
			GeneratedAt:  now,
			TotalSamples: len(history),
			TotalReports: len(reports),
		},
	}
}

func headerStyle(f *excelize.File, color string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
}

func writeHeaders(f *excelize.File, sheetName string, headers []string, color string) error {
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return err
		}
	}

	style, err := headerStyle(f, color)
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheetName, "A1", last, style)
}

// GenerateExcel creates an Excel workbook with the scaling trend and SDI
// reports. The caller must Close the returned file.
func (es *ExportService) GenerateExcel(data ExportData) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetDocProps(&excelize.DocProperties{
		Category:       "AquaSmart Water Treatment",
		Created:        data.ExportMetadata.GeneratedAt.Format(time.RFC3339),
		Creator:        "AquaSmart Calculators",
		Description:    "Scaling indices trend and SDI test summaries",
		LastModifiedBy: "AquaSmart Calculators",
		Modified:       data.ExportMetadata.GeneratedAt.Format(time.RFC3339),
		Subject:        "Scaling Indices & Silt Density Index",
		Title:          "AquaSmart Calculation Report",
		Version:        "1.0",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set document properties: %w", err)
	}

	steps := []func(*excelize.File, ExportData) error{
		es.createSummarySheet,
		es.createScalingTrendSheet,
		es.createSDIReportSheet,
	}
	for _, step := range steps {
		if err := step(f, data); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// createSummarySheet creates the summary overview sheet
func (es *ExportService) createSummarySheet(f *excelize.File, data ExportData) error {
	sheetName := "Summary"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to rename summary sheet: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create title style: %w", err)
	}

	f.SetCellValue(sheetName, "A1", "AquaSmart Calculation Report")
	f.MergeCell(sheetName, "A1", "D1")
	f.SetCellStyle(sheetName, "A1", "D1", titleStyle)
	f.SetRowHeight(sheetName, 1, 25)

	f.SetCellValue(sheetName, "A3", "Generated At:")
	f.SetCellValue(sheetName, "B3", data.ExportMetadata.GeneratedAt.Format("2006-01-02 15:04:05"))
	f.SetCellValue(sheetName, "A4", "Scaling Samples:")
	f.SetCellValue(sheetName, "B4", data.ExportMetadata.TotalSamples)
	f.SetCellValue(sheetName, "A5", "SDI Tests:")
	f.SetCellValue(sheetName, "B5", data.ExportMetadata.TotalReports)

	if n := len(data.SDIReports); n > 0 {
		latest := data.SDIReports[n-1]
		f.SetCellValue(sheetName, "A7", "Latest SDI:")
		f.SetCellValue(sheetName, "B7", latest.Result.Value)
		f.SetCellValue(sheetName, "C7", latest.Result.Interpretation)
	}

	f.SetColWidth(sheetName, "A", "A", 20)
	f.SetColWidth(sheetName, "B", "D", 18)
	return nil
}

// createScalingTrendSheet creates the scaling trend sheet
func (es *ExportService) createScalingTrendSheet(f *excelize.File, data ExportData) error {
	sheetName := "Scaling Trend"
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("failed to create %s sheet: %w", sheetName, err)
	}

	headers := []string{"Label", "Timestamp", "LSI", "LSI Condition", "RSI", "RSI Condition", "PSI", "PSI Condition"}
	if err := writeHeaders(f, sheetName, headers, "70AD47"); err != nil {
		return err
	}

	for i, sample := range data.ScalingHistory {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), sample.Label)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), sample.Timestamp.Format("2006-01-02 15:04:05"))
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), round2(sample.LSI))
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), models.LSICondition(sample.LSI))
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), round2(sample.RSI))
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), models.RSICondition(sample.RSI))
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), round2(sample.PSI))
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), models.PSICondition(sample.PSI))
	}

	f.SetColWidth(sheetName, "A", "B", 20)
	f.SetColWidth(sheetName, "C", "H", 16)
	return nil
}

// createSDIReportSheet creates the SDI test summaries sheet
func (es *ExportService) createSDIReportSheet(f *excelize.File, data ExportData) error {
	sheetName := "SDI Tests"
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("failed to create %s sheet: %w", sheetName, err)
	}

	headers := []string{"Calculated At", "Sample Source", "Operator", "Test Date", "Pressure (psi)",
		"Temperature (°C)", "Ti (s)", "Tf (s)", "Duration (min)", "SDI", "Interpretation", "Recommendation"}
	if err := writeHeaders(f, sheetName, headers, "C55A11"); err != nil {
		return err
	}

	for i, report := range data.SDIReports {
		row := i + 2
		values := []interface{}{
			report.CalculatedAt.Format("2006-01-02 15:04:05"),
			report.TestInfo.SampleSourceOrDefault(),
			report.TestInfo.OperatorOrDefault(),
			report.TestInfo.TestDate,
			report.TestInfo.PressurePSI,
			report.TestInfo.TemperatureC,
			report.Timing.TI,
			report.Timing.TF,
			report.Timing.TotalDuration,
			report.Result.Value,
			report.Result.Interpretation,
			report.Result.Recommendation,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			f.SetCellValue(sheetName, cell, v)
		}
	}

	f.SetColWidth(sheetName, "A", "F", 18)
	f.SetColWidth(sheetName, "G", "J", 12)
	f.SetColWidth(sheetName, "K", "L", 40)
	return nil
}

// GenerateCSV creates CSV records for the scaling trend
func (es *ExportService) GenerateCSV(history []models.HistoricalSample) ([][]string, error) {
	records := [][]string{
		{"Label", "Timestamp", "LSI", "RSI", "PSI"},
	}

	for _, sample := range history {
		records = append(records, []string{
			sample.Label,
			sample.Timestamp.Format(time.RFC3339),
			strconv.FormatFloat(sample.LSI, 'f', 2, 64),
			strconv.FormatFloat(sample.RSI, 'f', 2, 64),
			strconv.FormatFloat(sample.PSI, 'f', 2, 64),
		})
	}

	return records, nil
}

// WriteCSV writes CSV data to a writer
func (es *ExportService) WriteCSV(w *csv.Writer, records [][]string) error {
	return w.WriteAll(records)
}

func round2(v float64) float64 {
	f, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return f
}
