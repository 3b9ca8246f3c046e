package services

import (
	"errors"
	"math"
	"testing"

	"github.com/Capstone-E1/aquasmart_calculators/internal/models"
)

func TestComputeSDI_Example(t *testing.T) {
	result, err := ComputeSDI(models.SDIRawInput{TI: "30.5", TF: "45.2", TotalDuration: "15"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	ti, tf, duration := 30.5, 45.2, 15.0
	expected := ((1 - ti/tf) * 100) / duration
	if result.RawValue != expected {
		t.Errorf("Expected raw value %v, got %v", expected, result.RawValue)
	}
	if result.Value != 2.17 {
		t.Errorf("Expected rounded value 2.17, got %v", result.Value)
	}
	if result.Band != models.SDIBandLow {
		t.Errorf("Expected low band, got %v", result.Band)
	}
	if result.Interpretation != "Low fouling potential" {
		t.Errorf("Unexpected interpretation: %s", result.Interpretation)
	}
}

func TestComputeSDI_MatchesFormula(t *testing.T) {
	tests := []struct {
		ti, tf, duration float64
	}{
		{10, 20, 15},
		{30.5, 45.2, 15},
		{12.3, 98.7, 5},
		{1, 1.5, 1},
		{44.4, 44.5, 30},
	}

	for _, tt := range tests {
		in := models.SDIInput{InitialTime: tt.ti, FinalTime: tt.tf, TotalDurationMinutes: tt.duration}
		result, err := CalculateSDI(in)
		if err != nil {
			t.Fatalf("Unexpected error for %+v: %v", in, err)
		}

		sdi := ((1 - tt.ti/tt.tf) * 100) / tt.duration
		if expected := math.Round(sdi*100) / 100; result.Value != expected {
			t.Errorf("For %+v expected %v, got %v", in, expected, result.Value)
		}
		if result.Band != models.BandForSDI(sdi) {
			t.Errorf("For %+v expected band %v, got %v", in, models.BandForSDI(sdi), result.Band)
		}
	}
}

func TestComputeSDI_BandBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		raw      models.SDIRawInput
		expected models.SDIBand
	}{
		// (1 - 25/100) * 100 / 25 == 3 exactly
		{name: "sdi exactly 3", raw: models.SDIRawInput{TI: "25", TF: "100", TotalDuration: "25"}, expected: models.SDIBandModerate},
		// (1 - 25/100) * 100 / 15 == 5 exactly
		{name: "sdi exactly 5", raw: models.SDIRawInput{TI: "25", TF: "100", TotalDuration: "15"}, expected: models.SDIBandModerate},
		{name: "sdi above 5", raw: models.SDIRawInput{TI: "24.99", TF: "100", TotalDuration: "15"}, expected: models.SDIBandHigh},
		{name: "sdi below 3", raw: models.SDIRawInput{TI: "25.01", TF: "100", TotalDuration: "25"}, expected: models.SDIBandLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ComputeSDI(tt.raw)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if result.Band != tt.expected {
				t.Errorf("Expected band %v, got %v (sdi=%v)", tt.expected, result.Band, result.RawValue)
			}
		})
	}
}

func TestComputeSDI_Validation(t *testing.T) {
	tests := []struct {
		name          string
		raw           models.SDIRawInput
		expectedErr   error
		expectedField string
	}{
		{
			name:          "empty ti",
			raw:           models.SDIRawInput{TI: "", TF: "45", TotalDuration: "15"},
			expectedErr:   models.ErrMissingInput,
			expectedField: models.FieldInitialTime,
		},
		{
			name:          "non-numeric tf",
			raw:           models.SDIRawInput{TI: "30", TF: "abc", TotalDuration: "15"},
			expectedErr:   models.ErrMissingInput,
			expectedField: models.FieldFinalTime,
		},
		{
			name:          "blank duration",
			raw:           models.SDIRawInput{TI: "30", TF: "45", TotalDuration: "   "},
			expectedErr:   models.ErrMissingInput,
			expectedField: models.FieldTotalDuration,
		},
		{
			name:          "infinite ti",
			raw:           models.SDIRawInput{TI: "Inf", TF: "45", TotalDuration: "15"},
			expectedErr:   models.ErrMissingInput,
			expectedField: models.FieldInitialTime,
		},
		{
			name:          "tf equals ti",
			raw:           models.SDIRawInput{TI: "30", TF: "30", TotalDuration: "15"},
			expectedErr:   models.ErrOrderingViolation,
			expectedField: models.FieldFinalTime,
		},
		{
			name:          "tf below ti with bad duration",
			raw:           models.SDIRawInput{TI: "30", TF: "20", TotalDuration: "-1"},
			expectedErr:   models.ErrOrderingViolation,
			expectedField: models.FieldFinalTime,
		},
		{
			name:          "zero ti",
			raw:           models.SDIRawInput{TI: "0", TF: "45", TotalDuration: "15"},
			expectedErr:   models.ErrNonPositiveValue,
			expectedField: models.FieldInitialTime,
		},
		{
			name:          "negative ti and tf with ordering held",
			raw:           models.SDIRawInput{TI: "-10", TF: "-5", TotalDuration: "15"},
			expectedErr:   models.ErrNonPositiveValue,
			expectedField: models.FieldInitialTime,
		},
		{
			name:          "zero duration",
			raw:           models.SDIRawInput{TI: "30", TF: "45", TotalDuration: "0"},
			expectedErr:   models.ErrNonPositiveValue,
			expectedField: models.FieldTotalDuration,
		},
		{
			name:          "duration small enough to overflow",
			raw:           models.SDIRawInput{TI: "1", TF: "2", TotalDuration: "1e-310"},
			expectedErr:   models.ErrNonPositiveValue,
			expectedField: models.FieldTotalDuration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ComputeSDI(tt.raw)
			if result != nil {
				t.Errorf("Expected no result, got %+v", result)
			}
			if !errors.Is(err, tt.expectedErr) {
				t.Fatalf("Expected %v, got %v", tt.expectedErr, err)
			}
			ve, ok := models.AsValidationError(err)
			if !ok {
				t.Fatalf("Expected ValidationError, got %T", err)
			}
			if ve.Field != tt.expectedField {
				t.Errorf("Expected field %q, got %q", tt.expectedField, ve.Field)
			}
		})
	}
}

func TestComputeSDI_Idempotent(t *testing.T) {
	raw := models.SDIRawInput{TI: "12.7", TF: "19.3", TotalDuration: "15"}

	first, err := ComputeSDI(raw)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, err := ComputeSDI(raw)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if math.Float64bits(first.RawValue) != math.Float64bits(second.RawValue) || *first != *second {
		t.Errorf("Expected identical results, got %+v and %+v", first, second)
	}
}
