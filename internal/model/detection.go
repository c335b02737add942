package model

// Detection is the single normalized value crossing the perception
// boundary: raw OCR text plus the highest-confidence vehicle label.
// The engine never sees detector-specific result shapes.
type Detection struct {
	RawText     string  `json:"raw_text"`
	VehicleType string  `json:"vehicle_type"`
	Confidence  float64 `json:"confidence"`
}
