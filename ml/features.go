package ml

import "fmt"

// NumFeatures is the width of every vector the artifacts accept.
const NumFeatures = 12

// FeatureNames returns the column order the scaler and model were fitted on.
func FeatureNames() []string {
	return []string{
		"gender",
		"age",
		"height_cm",
		"workout_heart_rate",
		"body_temp_c",
		"bmi",
		"steps",
		"sleep_hours",
		"water_liters",
		"body_fat_pct",
		"resting_heart_rate",
		"active_minutes",
	}
}

func checkFeatureNames(names []string) error {
	if len(names) == 0 {
		return nil
	}
	expected := FeatureNames()
	if len(names) != len(expected) {
		return fmt.Errorf("%w: artifact lists %d columns, want %d", ErrFeatureOrder, len(names), len(expected))
	}
	for i, name := range names {
		if name != expected[i] {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrFeatureOrder, i, name, expected[i])
		}
	}
	return nil
}
