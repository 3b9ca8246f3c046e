package models

// Scaling field names used in validation errors and request bodies
const (
	FieldTDS             = "tds"
	FieldTemperature     = "temp"
	FieldCalciumHardness = "cah"
	FieldMAlkalinity     = "malk"
	FieldActualPH        = "ph"
)

// ScalingRawInput carries the five water-chemistry fields as entered
type ScalingRawInput struct {
	TDS  string `json:"tds"`
	Temp string `json:"temp"`
	CaH  string `json:"cah"`
	MAlk string `json:"malk"`
	PH   string `json:"ph"`
}

// WaterChemistry is the validated, parsed form of ScalingRawInput
type WaterChemistry struct {
	TDS             float64 `json:"tds_ppm"`
	TemperatureC    float64 `json:"temperature_c"`
	CalciumHardness float64 `json:"calcium_hardness"`
	MAlkalinity     float64 `json:"m_alkalinity"`
	ActualPH        float64 `json:"actual_ph"`
}

// ScalingConditions holds the qualitative label for each index
type ScalingConditions struct {
	LSI  string `json:"lsi"`
	RSI  string `json:"rsi"`
	PSI  string `json:"psi"`
	SDSI string `json:"sdsi"`
}

// ScalingResult holds the stability indices derived from one water sample.
// SDSI is reported equal to LSI.
type ScalingResult struct {
	PHs        float64           `json:"phs"`
	RSI        float64           `json:"rsi"`
	LSI        float64           `json:"lsi"`
	PSI        float64           `json:"psi"`
	SDSI       float64           `json:"sdsi"`
	Conditions ScalingConditions `json:"conditions"`
}

// LSICondition returns the Langelier condition label
func LSICondition(lsi float64) string {
	if lsi > 0 {
		return "Scaling potential"
	}
	return "Corrosive"
}

// RSICondition returns the Ryznar condition label
func RSICondition(rsi float64) string {
	switch {
	case rsi < 5.5:
		return "Heavy scale"
	case rsi < 6.2:
		return "Moderate scale"
	case rsi < 6.8:
		return "Slight scale"
	case rsi < 8.5:
		return "Corrosive"
	default:
		return "Very corrosive"
	}
}

// PSICondition returns the Puckorius condition label
func PSICondition(psi float64) string {
	if psi > 6 {
		return "High scaling potential"
	}
	return "Low scaling/corrosion"
}

// NewScalingConditions labels each index of a result
func NewScalingConditions(lsi, rsi, psi, sdsi float64) ScalingConditions {
	return ScalingConditions{
		LSI:  LSICondition(lsi),
		RSI:  RSICondition(rsi),
		PSI:  PSICondition(psi),
		SDSI: LSICondition(sdsi),
	}
}
