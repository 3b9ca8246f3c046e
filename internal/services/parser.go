package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Capstone-E1/aquasmart_calculators/internal/models"
)

// ParseField parses a raw text field as a finite float. Empty or
// non-numeric text is a MissingInput error, never zero.
func ParseField(field, raw string) (float64, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, models.NewMissingInput(field, fmt.Sprintf("%s is required", field))
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, models.NewMissingInput(field, fmt.Sprintf("%s must be a number, got %q", field, raw))
	}

	return parsed, nil
}

// ParseSDIInput parses the three SDI timing fields
func ParseSDIInput(raw models.SDIRawInput) (models.SDIInput, error) {
	ti, err := ParseField(models.FieldInitialTime, raw.TI)
	if err != nil {
		return models.SDIInput{}, err
	}
	tf, err := ParseField(models.FieldFinalTime, raw.TF)
	if err != nil {
		return models.SDIInput{}, err
	}
	duration, err := ParseField(models.FieldTotalDuration, raw.TotalDuration)
	if err != nil {
		return models.SDIInput{}, err
	}

	return models.SDIInput{
		InitialTime:          ti,
		FinalTime:            tf,
		TotalDurationMinutes: duration,
	}, nil
}

// ParseScalingInput parses the five water-chemistry fields
func ParseScalingInput(raw models.ScalingRawInput) (models.WaterChemistry, error) {
	var in models.WaterChemistry
	fields := []struct {
		name  string
		raw   string
		value *float64
	}{
		{models.FieldTDS, raw.TDS, &in.TDS},
		{models.FieldTemperature, raw.Temp, &in.TemperatureC},
		{models.FieldCalciumHardness, raw.CaH, &in.CalciumHardness},
		{models.FieldMAlkalinity, raw.MAlk, &in.MAlkalinity},
		{models.FieldActualPH, raw.PH, &in.ActualPH},
	}

	for _, f := range fields {
		v, err := ParseField(f.name, f.raw)
		if err != nil {
			return models.WaterChemistry{}, err
		}
		*f.value = v
	}

	return in, nil
}

// FormatSDIResult formats an SDI result for logging or debugging
func FormatSDIResult(in models.SDIInput, result *models.SDIResult) string {
	return fmt.Sprintf("Ti: %.1f s, Tf: %.1f s, Duration: %.1f min, SDI: %.2f (%s)",
		in.InitialTime,
		in.FinalTime,
		in.TotalDurationMinutes,
		result.Value,
		result.Band)
}

// FormatScalingResult formats a scaling result for logging or debugging
func FormatScalingResult(result *models.ScalingResult) string {
	return fmt.Sprintf("pHs: %.2f, RSI: %.2f (%s), LSI: %.2f (%s), PSI: %.2f (%s), SDSI: %.2f",
		result.PHs,
		result.RSI, result.Conditions.RSI,
		result.LSI, result.Conditions.LSI,
		result.PSI, result.Conditions.PSI,
		result.SDSI)
}
