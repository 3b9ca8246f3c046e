package export

import (
	"fmt"
	"io"

	"github.com/phpdave11/gofpdf"

	"github.com/Capstone-E1/aquasmart_calculators/internal/models"
)

// WriteSDIReportPDF renders the SDI test summary as a one-page PDF
func (es *ExportService) WriteSDIReportPDF(w io.Writer, report *models.SDIReport) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "SDI (Silt Density Index) Test Report")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Test Information")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	lines := []string{
		fmt.Sprintf("Report ID: %s", report.ID),
		fmt.Sprintf("Sample Source: %s", report.TestInfo.SampleSourceOrDefault()),
		fmt.Sprintf("Operator: %s", report.TestInfo.OperatorOrDefault()),
		fmt.Sprintf("Test Date: %s", report.TestInfo.TestDate),
		fmt.Sprintf("Pressure: %s psi", report.TestInfo.PressurePSI),
		fmt.Sprintf("Temperature: %s °C", report.TestInfo.TemperatureC),
	}
	for _, line := range lines {
		pdf.Cell(0, 6, tr(line))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Timing Data")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Ti: %s seconds", report.Timing.TI))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Tf: %s seconds", report.Timing.TF))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Test Duration: %s minutes", report.Timing.TotalDuration))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, fmt.Sprintf("SDI = %.2f", report.Result.Value))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 6, report.Result.Interpretation)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, report.Result.Recommendation, "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Calculated at %s", report.CalculatedAt.Format("2006-01-02 15:04:05")))

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render SDI report: %w", err)
	}
	return nil
}
