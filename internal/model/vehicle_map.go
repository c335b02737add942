package model

import "strings"

// DefaultVehicleType is assumed when classification is missing or unknown.
const DefaultVehicleType = "family_sedan"

// VehicleClasses maps the classifier's class ids to labels.
var VehicleClasses = map[int]string{
	0: "bus",
	1: "family_sedan",
	2: "suv",
	3: "jeep",
	4: "mini_bus",
	5: "heavy_truck",
	6: "fire_engine",
	7: "taxi",
	8: "truck",
	9: "racing_car",
}

var vehicleSlotClasses = map[string]SlotClass{
	"suv":          SlotLarge,
	"family_sedan": SlotMedium,
	"jeep":         SlotMedium,
	"bus":          SlotXL,
	"mini_bus":     SlotLarge,
	"heavy_truck":  SlotXL,
	"truck":        SlotXL,
	"taxi":         SlotMedium,
	"racing_car":   SlotMedium,
}

// SlotFallbackOrder is tried when the preferred class is full.
var SlotFallbackOrder = []SlotClass{SlotMedium, SlotLarge, SlotXL, SlotSmall}

// VehicleClassLabel resolves a classifier class id, falling back to the
// default label for ids outside the trained set.
func VehicleClassLabel(classID int) string {
	if label, ok := VehicleClasses[classID]; ok {
		return label
	}
	return DefaultVehicleType
}

// SlotClassForVehicle maps a vehicle label to its preferred slot class.
// Unknown labels park in medium slots.
func SlotClassForVehicle(vehicleType string) SlotClass {
	if class, ok := vehicleSlotClasses[strings.ToLower(strings.TrimSpace(vehicleType))]; ok {
		return class
	}
	return SlotMedium
}
