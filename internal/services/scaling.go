package services

import (
	"log"
	"math"
	"time"

	"github.com/Capstone-E1/aquasmart_calculators/internal/models"
	"github.com/Capstone-E1/aquasmart_calculators/internal/store"
)

// Absolute zero offset used by the saturation pH temperature term
const kelvinOffset = 273.0

// ComputeScaling validates the raw water-chemistry fields and derives the
// saturation pH and the RSI, LSI, PSI and SDSI stability indices.
func ComputeScaling(raw models.ScalingRawInput) (*models.ScalingResult, error) {
	in, err := ParseScalingInput(raw)
	if err != nil {
		return nil, err
	}
	return CalculateScaling(in)
}

// CalculateScaling computes the indices for already-parsed inputs. TDS,
// calcium hardness, M-alkalinity and absolute temperature feed a base-10
// logarithm and must be strictly positive.
func CalculateScaling(in models.WaterChemistry) (*models.ScalingResult, error) {
	if in.TDS <= 0 {
		return nil, models.NewNonPositiveValue(models.FieldTDS, "TDS must be greater than zero")
	}
	if in.CalciumHardness <= 0 {
		return nil, models.NewNonPositiveValue(models.FieldCalciumHardness, "Calcium hardness must be greater than zero")
	}
	if in.MAlkalinity <= 0 {
		return nil, models.NewNonPositiveValue(models.FieldMAlkalinity, "M-alkalinity must be greater than zero")
	}
	if in.TemperatureC+kelvinOffset <= 0 {
		return nil, models.NewNonPositiveValue(models.FieldTemperature, "Temperature must be above absolute zero")
	}

	a := (math.Log10(in.TDS) - 1) / 10
	b := -13.12*math.Log10(in.TemperatureC+kelvinOffset) + 34.55
	c := math.Log10(in.CalciumHardness) - 0.4
	d := math.Log10(in.MAlkalinity)

	pHs := (9.3 + a + b) - (c + d)
	rsi := 2*pHs - in.ActualPH
	lsi := in.ActualPH - pHs
	pHeq := 1.465*math.Log10(in.MAlkalinity) + 4.54
	psi := 2*pHs - pHeq
	// Stiff-Davis is reported as the Langelier value, not the ionic-strength form.
	sdsi := lsi

	return &models.ScalingResult{
		PHs:        pHs,
		RSI:        rsi,
		LSI:        lsi,
		PSI:        psi,
		SDSI:       sdsi,
		Conditions: models.NewScalingConditions(lsi, rsi, psi, sdsi),
	}, nil
}

// ScalingCalculator computes scaling indices and records each successful
// result in the trend history
type ScalingCalculator struct {
	store store.DataStore
	now   func() time.Time
}

// NewScalingCalculator creates a calculator backed by the given store
func NewScalingCalculator(dataStore store.DataStore) *ScalingCalculator {
	return &ScalingCalculator{
		store: dataStore,
		now:   time.Now,
	}
}

// SetClock replaces the clock used to label trend samples
func (sc *ScalingCalculator) SetClock(now func() time.Time) {
	sc.now = now
}

// Calculate runs ComputeScaling and appends the result to the trend window
func (sc *ScalingCalculator) Calculate(raw models.ScalingRawInput) (*models.ScalingResult, error) {
	result, err := ComputeScaling(raw)
	if err != nil {
		return nil, err
	}

	sc.store.AddScalingSample(models.NewHistoricalSample(result, sc.now()))
	log.Printf("🧪 Scaling indices calculated: %s", FormatScalingResult(result))

	return result, nil
}

// History returns the trend window, oldest first
func (sc *ScalingCalculator) History() []models.HistoricalSample {
	return sc.store.GetScalingHistory()
}
