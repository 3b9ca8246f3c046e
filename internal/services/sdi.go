package services

import (
	"math"

	"github.com/Capstone-E1/aquasmart_calculators/internal/models"
)

// ComputeSDI validates the raw SDI timing fields and computes the Silt
// Density Index. Checks run in order and the first failure is returned:
// missing/unparsable field, Tf <= Ti, then any non-positive value. A
// duration small enough to overflow the result is rejected on total_duration.
func ComputeSDI(raw models.SDIRawInput) (*models.SDIResult, error) {
	in, err := ParseSDIInput(raw)
	if err != nil {
		return nil, err
	}
	return CalculateSDI(in)
}

// CalculateSDI computes the SDI for already-parsed inputs
func CalculateSDI(in models.SDIInput) (*models.SDIResult, error) {
	if in.FinalTime <= in.InitialTime {
		return nil, models.NewOrderingViolation(models.FieldFinalTime,
			"Final time (Tf) must be greater than initial time (Ti)")
	}

	if in.InitialTime <= 0 {
		return nil, models.NewNonPositiveValue(models.FieldInitialTime, "All timing values must be positive numbers")
	}
	if in.FinalTime <= 0 {
		return nil, models.NewNonPositiveValue(models.FieldFinalTime, "All timing values must be positive numbers")
	}
	if in.TotalDurationMinutes <= 0 {
		return nil, models.NewNonPositiveValue(models.FieldTotalDuration, "All timing values must be positive numbers")
	}

	sdi := ((1 - in.InitialTime/in.FinalTime) * 100) / in.TotalDurationMinutes
	if math.IsInf(sdi, 0) || math.IsNaN(sdi) {
		return nil, models.NewNonPositiveValue(models.FieldTotalDuration, "Total duration is too small to produce a finite SDI")
	}
	band := models.BandForSDI(sdi)

	return &models.SDIResult{
		Value:          roundTo(sdi, 2),
		RawValue:       sdi,
		Band:           band,
		Interpretation: band.Interpretation(),
		Recommendation: band.Recommendation(),
	}, nil
}

// roundTo rounds v to the given number of decimal places
func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
