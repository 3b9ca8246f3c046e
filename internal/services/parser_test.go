package services

import (
	"errors"
	"testing"

	"github.com/Capstone-E1/aquasmart_calculators/internal/models"
)

func TestParseField(t *testing.T) {
	tests := []struct {
		raw       string
		expected  float64
		expectErr bool
	}{
		{raw: "30.5", expected: 30.5},
		{raw: "  12 ", expected: 12},
		{raw: "-4.25", expected: -4.25},
		{raw: "1e2", expected: 100},
		{raw: "0", expected: 0},
		{raw: "", expectErr: true},
		{raw: "   ", expectErr: true},
		{raw: "abc", expectErr: true},
		{raw: "12abc", expectErr: true},
		{raw: "NaN", expectErr: true},
		{raw: "-Inf", expectErr: true},
		{raw: "1e400", expectErr: true},
	}

	for _, tt := range tests {
		got, err := ParseField("x", tt.raw)
		if tt.expectErr {
			if !errors.Is(err, models.ErrMissingInput) {
				t.Errorf("ParseField(%q): expected MissingInput, got value=%v err=%v", tt.raw, got, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseField(%q): unexpected error %v", tt.raw, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseField(%q): expected %v, got %v", tt.raw, tt.expected, got)
		}
	}
}

func TestParseScalingInput_FirstMissingFieldReported(t *testing.T) {
	_, err := ParseScalingInput(models.ScalingRawInput{TDS: "500", Temp: "25", CaH: "", MAlk: "", PH: "7.8"})

	ve, ok := models.AsValidationError(err)
	if !ok {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if ve.Field != models.FieldCalciumHardness {
		t.Errorf("Expected first missing field %q, got %q", models.FieldCalciumHardness, ve.Field)
	}
}
