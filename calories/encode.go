package calories

import "calorieburn/ml"

// FeatureVector is the model input, in the column order of ml.FeatureNames.
type FeatureVector [ml.NumFeatures]float64

// Encode lays the inputs out in training column order. The artifacts cannot
// detect a reordering, so this order is fixed and pinned by tests.
func Encode(in Inputs) FeatureVector {
	return FeatureVector{
		encodeGender(in.Gender),
		float64(in.Age),
		float64(in.HeightCM),
		float64(in.WorkoutHeartRate),
		in.BodyTempC,
		in.BMI,
		float64(in.Steps),
		in.SleepHours,
		in.WaterLiters,
		in.BodyFatPct,
		float64(in.RestingHeartRate),
		float64(in.ActiveMinutes),
	}
}

func encodeGender(g Gender) float64 {
	if g == Female {
		return 1
	}
	return 0
}
