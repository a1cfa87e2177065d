package migrate

import (
	"github.com/zohar-ui/ParserZamaActive/pkg/equipment"
	"github.com/zohar-ui/ParserZamaActive/pkg/transform"
)

// Schema versions.
const (
	V2_0 Version = "2.0"
	V3_0 Version = "3.0"
	V3_1 Version = "3.1"
	V3_2 Version = "3.2"

	// Current is the newest schema version.
	Current = V3_2
)

// DefaultSteps returns the built-in single-version steps, oldest first.
// Equipment keys are assigned with c, or the default classifier when c is nil.
func DefaultSteps(c *equipment.Classifier) []Step {
	if c == nil {
		c = equipment.Default()
	}
	return []Step{
		{
			From:        V2_0,
			To:          V3_0,
			Description: "wrap weights and loads in kg measurements; canonical item key order",
			Rules: []transform.Rule{
				transform.MergeRange{Min: "target_weight_kg_min", Max: "target_weight_kg_max", To: "target_weight", Unit: "kg"},
				transform.WrapMeasurement{From: "target_weight_kg", To: "target_weight", Unit: "kg"},
				transform.WrapMeasurement{From: "actual_weight_kg", To: "actual_weight", Unit: "kg"},
				transform.WrapMeasurement{From: "target_load", Unit: "kg"},
				transform.WrapMeasurement{From: "actual_load", Unit: "kg"},
				transform.ReorderItem{},
			},
		},
		{
			From:        V3_0,
			To:          V3_1,
			Description: "assign equipment_key from exercise_name",
			Rules: []transform.Rule{
				transform.ClassifyEquipment{Classifier: c},
				transform.ReorderItem{},
			},
		},
		{
			From:        V3_1,
			To:          V3_2,
			Description: "wrap durations, rests and distances in measurements",
			Rules: []transform.Rule{
				transform.MergeUnit{Values: []string{"target_distance", "actual_distance"}, UnitKey: "distance_unit"},

				transform.WrapMeasurement{From: "target_duration_min", To: "target_duration", Unit: "min"},
				transform.WrapMeasurement{From: "target_duration_sec", To: "target_duration", Unit: "sec"},
				transform.WrapMeasurement{From: "target_rest_min", To: "target_rest", Unit: "min"},
				transform.WrapMeasurement{From: "target_rest_sec", To: "target_rest", Unit: "sec"},
				transform.WrapMeasurement{From: "target_amrap_duration_sec", To: "target_amrap_duration", Unit: "sec"},
				transform.WrapMeasurement{From: "target_fortime_cap_sec", To: "target_fortime_cap", Unit: "sec"},
				transform.WrapMeasurement{From: "actual_duration_sec", To: "actual_duration", Unit: "sec"},
				transform.WrapMeasurement{From: "actual_time_sec", To: "actual_time", Unit: "sec"},
				transform.WrapMeasurement{From: "rest_between_rounds_sec", To: "rest_between_rounds", Unit: "sec"},

				transform.WrapMeasurement{From: "target_meters", To: "target_distance", Unit: "m"},
				transform.WrapMeasurement{From: "target_distance_m", To: "target_distance", Unit: "m"},
				transform.WrapMeasurement{From: "actual_meters", To: "actual_distance", Unit: "m"},
				transform.WrapMeasurement{From: "actual_distance_m", To: "actual_distance", Unit: "m"},
			},
		},
	}
}

// MeasurementFields lists the fields that hold measurements once a document
// is at Current.
var MeasurementFields = []string{
	"target_weight", "actual_weight",
	"target_load", "actual_load",
	"target_duration", "target_rest",
	"target_amrap_duration", "target_fortime_cap",
	"actual_duration", "actual_time",
	"target_distance", "actual_distance",
	"rest_between_rounds",
}
