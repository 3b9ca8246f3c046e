package http

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Capstone-E1/aquasmart_calculators/internal/export"
	"github.com/Capstone-E1/aquasmart_calculators/internal/metrics"
	"github.com/Capstone-E1/aquasmart_calculators/internal/models"
	"github.com/Capstone-E1/aquasmart_calculators/internal/services"
	"github.com/Capstone-E1/aquasmart_calculators/internal/store"
	"github.com/Capstone-E1/aquasmart_calculators/internal/ws"
)

// ResultPublisher forwards calculation results to the bench rig
type ResultPublisher interface {
	PublishSDIReport(report *models.SDIReport) error
	PublishScalingResult(result *models.ScalingResult) error
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	store         store.DataStore
	session       *services.SDISession
	stopwatch     *services.Stopwatch
	scaling       *services.ScalingCalculator
	hub           *ws.Hub
	metrics       *metrics.Registry
	publisher     ResultPublisher
	exportService *export.ExportService
	now           func() time.Time
}

// NewHandlers creates a new handlers instance
func NewHandlers(deps Dependencies) *Handlers {
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewRegistry()
	}
	return &Handlers{
		store:         deps.Store,
		session:       deps.Session,
		stopwatch:     deps.Stopwatch,
		scaling:       deps.Scaling,
		hub:           deps.Hub,
		metrics:       deps.Metrics,
		publisher:     deps.Publisher,
		exportService: export.NewExportService(),
		now:           time.Now,
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
	Field   string      `json:"field,omitempty"`
}

// ScalingResponse is a scaling result with the updated trend
type ScalingResponse struct {
	Result  *models.ScalingResult     `json:"result"`
	History []models.HistoricalSample `json:"history"`
}

// sendJSON encodes before writing the status so an unencodable payload
// becomes a 500 instead of an empty success
func sendJSON(w http.ResponseWriter, statusCode int, response APIResponse) {
	body, err := json.Marshal(response)
	if err != nil {
		log.Printf("❌ Failed to encode response: %v", err)
		statusCode = http.StatusInternalServerError
		body, _ = json.Marshal(APIResponse{Success: false, Error: "Failed to encode response"})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(append(body, '\n'))
}

func (h *Handlers) sendSuccess(w http.ResponseWriter, message string, data interface{}) {
	sendJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// sendErrorResponse sends a standardized error response
func (h *Handlers) sendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	sendJSON(w, statusCode, APIResponse{
		Success: false,
		Error:   message,
	})
}

// sendCalculationError maps validation errors to 400 with their kind and field
func (h *Handlers) sendCalculationError(w http.ResponseWriter, calculator string, err error) {
	if ve, ok := models.AsValidationError(err); ok {
		h.metrics.ObserveCalculation(calculator, string(ve.Kind))
		sendJSON(w, http.StatusBadRequest, APIResponse{
			Success: false,
			Error:   ve.Message,
			Code:    string(ve.Kind),
			Field:   ve.Field,
		})
		return
	}

	h.metrics.ObserveCalculation(calculator, "error")
	log.Printf("❌ %s calculation failed: %v", calculator, err)
	h.sendErrorResponse(w, "Calculation failed", http.StatusInternalServerError)
}

func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// GetHealth reports service status
func (h *Handlers) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":            "healthy",
		"server_time":       h.now(),
		"stopwatch_running": h.stopwatch.IsRunning(),
		"scaling_samples":   h.store.GetScalingHistoryCount(),
	}
	if h.hub != nil {
		status["websocket_clients"] = h.hub.GetConnectedClientsCount()
	}

	h.sendSuccess(w, "", status)
}

// CalculateSDI computes the SDI for the posted timing values without
// touching the session
func (h *Handlers) CalculateSDI(w http.ResponseWriter, r *http.Request) {
	var raw models.SDIRawInput
	if err := decodeBody(r, &raw); err != nil {
		h.sendErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := services.ComputeSDI(raw)
	if err != nil {
		h.sendCalculationError(w, metrics.CalculatorSDI, err)
		return
	}

	h.metrics.ObserveCalculation(metrics.CalculatorSDI, metrics.OutcomeSuccess)
	h.sendSuccess(w, "SDI calculated", result)
}

// GetSDISession returns the SDI test sheet and its current result
func (h *Handlers) GetSDISession(w http.ResponseWriter, r *http.Request) {
	h.sendSuccess(w, "", h.session.State())
}

// UpdateSDITiming replaces Ti, Tf and the test duration
func (h *Handlers) UpdateSDITiming(w http.ResponseWriter, r *http.Request) {
	var timing models.SDIRawInput
	if err := decodeBody(r, &timing); err != nil {
		h.sendErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.session.UpdateTiming(timing)
	h.sendSuccess(w, "Timing updated", h.session.State())
}

// UpdateSDITestInfo replaces the sample and operator information
func (h *Handlers) UpdateSDITestInfo(w http.ResponseWriter, r *http.Request) {
	var info models.SDITestInfo
	if err := decodeBody(r, &info); err != nil {
		h.sendErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.session.UpdateTestInfo(info)
	h.sendSuccess(w, "Test information updated", h.session.State())
}

// CalculateSDISession computes the SDI for the session's timing sheet
func (h *Handlers) CalculateSDISession(w http.ResponseWriter, r *http.Request) {
	report, err := h.session.Calculate()
	if err != nil {
		h.sendCalculationError(w, metrics.CalculatorSDI, err)
		return
	}

	h.metrics.ObserveCalculation(metrics.CalculatorSDI, metrics.OutcomeSuccess)
	if h.hub != nil {
		h.hub.BroadcastSDIReport(report)
	}
	if h.publisher != nil {
		if err := h.publisher.PublishSDIReport(report); err != nil {
			log.Printf("⚠️  Failed to publish SDI report: %v", err)
		}
	}

	h.sendSuccess(w, "SDI calculated", report)
}

// ResetSDISession restores the default test sheet and resets the stopwatch
func (h *Handlers) ResetSDISession(w http.ResponseWriter, r *http.Request) {
	h.stopwatch.Reset()
	h.session.ResetAll()
	h.sendSuccess(w, "SDI session reset", h.session.State())
}

// GetSDIReports returns the retained SDI test summaries, oldest first
func (h *Handlers) GetSDIReports(w http.ResponseWriter, r *http.Request) {
	h.sendSuccess(w, "", h.store.GetSDIReports())
}

// GetStopwatch returns the stopwatch state
func (h *Handlers) GetStopwatch(w http.ResponseWriter, r *http.Request) {
	h.sendSuccess(w, "", h.stopwatch.State())
}

// StopwatchCommand runs start, stop, reset, record-ti or record-tf
func (h *Handlers) StopwatchCommand(w http.ResponseWriter, r *http.Request) {
	cmd, err := services.ParseStopwatchCommand([]byte(chi.URLParam(r, "command")))
	if err != nil {
		sendJSON(w, http.StatusNotFound, APIResponse{
			Success: false,
			Error:   err.Error(),
			Code:    "unknown_command",
		})
		return
	}

	result, err := h.stopwatch.Execute(cmd)
	if err != nil {
		if errors.Is(err, services.ErrStopwatchRunning) || errors.Is(err, services.ErrStopwatchNotRunning) {
			sendJSON(w, http.StatusConflict, APIResponse{
				Success: false,
				Error:   err.Error(),
				Code:    "invalid_transition",
			})
			return
		}
		h.sendErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.metrics.ObserveStopwatchCommand("http")
	h.sendSuccess(w, fmt.Sprintf("Stopwatch %s", cmd), result)
}

// CalculateScaling computes the scaling indices and records the trend sample
func (h *Handlers) CalculateScaling(w http.ResponseWriter, r *http.Request) {
	var raw models.ScalingRawInput
	if err := decodeBody(r, &raw); err != nil {
		h.sendErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.scaling.Calculate(raw)
	if err != nil {
		h.sendCalculationError(w, metrics.CalculatorScaling, err)
		return
	}

	h.metrics.ObserveCalculation(metrics.CalculatorScaling, metrics.OutcomeSuccess)
	history := h.scaling.History()
	if h.hub != nil {
		h.hub.BroadcastScalingResult(result, history)
	}
	if h.publisher != nil {
		if err := h.publisher.PublishScalingResult(result); err != nil {
			log.Printf("⚠️  Failed to publish scaling result: %v", err)
		}
	}

	h.sendSuccess(w, "Scaling indices calculated", ScalingResponse{Result: result, History: history})
}

// GetScalingHistory returns the trend window, oldest first
func (h *Handlers) GetScalingHistory(w http.ResponseWriter, r *http.Request) {
	h.sendSuccess(w, "", h.scaling.History())
}

// ClearScalingHistory empties the trend window
func (h *Handlers) ClearScalingHistory(w http.ResponseWriter, r *http.Request) {
	h.store.ClearScalingHistory()
	h.sendSuccess(w, "Scaling history cleared", []models.HistoricalSample{})
}

// ExportHistoryExcel handles GET requests to export the scaling trend and SDI tests as Excel
func (h *Handlers) ExportHistoryExcel(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	data := export.NewExportData(h.store.GetScalingHistory(), h.store.GetSDIReports(), now)

	excelFile, err := h.exportService.GenerateExcel(data)
	if err != nil {
		log.Printf("❌ Excel export failed: %v", err)
		h.sendErrorResponse(w, "Failed to generate Excel file", http.StatusInternalServerError)
		return
	}
	defer excelFile.Close()

	// Render fully before writing headers so failures still return JSON
	var buf bytes.Buffer
	if err := excelFile.Write(&buf); err != nil {
		h.sendErrorResponse(w, "Failed to write Excel file", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("aquasmart_calculations_%s.xlsx", now.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.Write(buf.Bytes())
}

// ExportHistoryCSV handles GET requests to export the scaling trend as CSV
func (h *Handlers) ExportHistoryCSV(w http.ResponseWriter, r *http.Request) {
	csvData, err := h.exportService.GenerateCSV(h.store.GetScalingHistory())
	if err != nil {
		h.sendErrorResponse(w, "Failed to generate CSV data", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("aquasmart_scaling_trend_%s.csv", h.now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))

	csvWriter := csv.NewWriter(w)
	if err := h.exportService.WriteCSV(csvWriter, csvData); err != nil {
		log.Printf("❌ CSV export failed: %v", err)
	}
}

// ExportSDIReportPDF renders the current session result, or the latest
// stored SDI test when the session has none
func (h *Handlers) ExportSDIReportPDF(w http.ResponseWriter, r *http.Request) {
	report, ok := h.session.Report()
	if !ok {
		report, ok = h.store.GetLatestSDIReport()
	}
	if !ok {
		h.sendErrorResponse(w, "No SDI result available, calculate one first", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := h.exportService.WriteSDIReportPDF(&buf, report); err != nil {
		log.Printf("❌ PDF export failed: %v", err)
		h.sendErrorResponse(w, "Failed to generate PDF report", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("sdi_report_%s.pdf", report.CalculatedAt.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.Write(buf.Bytes())
}
