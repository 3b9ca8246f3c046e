package models

import (
	"time"

	"github.com/google/uuid"
)

// SDI field names used in validation errors and request bodies
const (
	FieldInitialTime   = "ti"
	FieldFinalTime     = "tf"
	FieldTotalDuration = "total_duration"
)

// Default values for a fresh SDI test sheet
const (
	DefaultTotalDuration = "15"
	DefaultPressurePSI   = "30"
	DefaultTemperatureC  = "25"
)

// SDI band thresholds
const (
	SDILowUpperBound      = 3.0
	SDIModerateUpperBound = 5.0
)

// SDIRawInput carries the three SDI timing fields as entered by the operator
type SDIRawInput struct {
	TI            string `json:"ti"`
	TF            string `json:"tf"`
	TotalDuration string `json:"total_duration"`
}

// SDIInput is the validated, parsed form of SDIRawInput
type SDIInput struct {
	InitialTime          float64 `json:"initial_time_s"`
	FinalTime            float64 `json:"final_time_s"`
	TotalDurationMinutes float64 `json:"total_duration_min"`
}

// SDIBand represents the fouling potential band of an SDI value
type SDIBand string

const (
	SDIBandLow      SDIBand = "low"
	SDIBandModerate SDIBand = "moderate"
	SDIBandHigh     SDIBand = "high"
)

// SDIResult is the outcome of one SDI calculation
type SDIResult struct {
	Value          float64 `json:"sdi"`
	RawValue       float64 `json:"raw_value"`
	Band           SDIBand `json:"band"`
	Interpretation string  `json:"interpretation"`
	Recommendation string  `json:"recommendation"`
}

// BandForSDI returns the fouling band for an unrounded SDI value.
// 3 and 5 both fall in the moderate band.
func BandForSDI(sdi float64) SDIBand {
	switch {
	case sdi < SDILowUpperBound:
		return SDIBandLow
	case sdi <= SDIModerateUpperBound:
		return SDIBandModerate
	default:
		return SDIBandHigh
	}
}

// Interpretation returns the qualitative reading of the band
func (b SDIBand) Interpretation() string {
	switch b {
	case SDIBandLow:
		return "Low fouling potential"
	case SDIBandModerate:
		return "Moderate fouling potential"
	default:
		return "High fouling potential"
	}
}

// Recommendation returns the pre-treatment guidance for the band
func (b SDIBand) Recommendation() string {
	switch b {
	case SDIBandLow:
		return "Water is suitable for RO or NF systems without additional pre-treatment."
	case SDIBandModerate:
		return "Pre-treatment such as media filters or ultrafiltration may be required."
	default:
		return "Significant pre-treatment is necessary, such as coagulation, sedimentation, or advanced filtration."
	}
}

// SDITestInfo describes the conditions of an SDI test. It is informational
// and never feeds the formula.
type SDITestInfo struct {
	SampleSource string `json:"sample_source"`
	Operator     string `json:"operator"`
	TestDate     string `json:"test_date"` // Format: "YYYY-MM-DD"
	PressurePSI  string `json:"pressure_psi"`
	TemperatureC string `json:"temperature_c"`
}

// NewSDITestInfo returns test info with the default pressure, temperature and today's date
func NewSDITestInfo(now time.Time) SDITestInfo {
	return SDITestInfo{
		TestDate:     now.Format("2006-01-02"),
		PressurePSI:  DefaultPressurePSI,
		TemperatureC: DefaultTemperatureC,
	}
}

// SampleSourceOrDefault returns the sample source or "Not specified"
func (ti SDITestInfo) SampleSourceOrDefault() string {
	if ti.SampleSource == "" {
		return "Not specified"
	}
	return ti.SampleSource
}

// OperatorOrDefault returns the operator or "Not specified"
func (ti SDITestInfo) OperatorOrDefault() string {
	if ti.Operator == "" {
		return "Not specified"
	}
	return ti.Operator
}

// SDIReport is the test summary produced by a successful session calculation
type SDIReport struct {
	ID           uuid.UUID   `json:"id"`
	TestInfo     SDITestInfo `json:"test_info"`
	Timing       SDIRawInput `json:"timing"`
	Result       SDIResult   `json:"result"`
	CalculatedAt time.Time   `json:"calculated_at"`
}
