package calories

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"calorieburn/ml"
)

func sampleInputs() Inputs {
	return Inputs{
		Gender:           Male,
		Age:              31,
		HeightCM:         182,
		WorkoutHeartRate: 141,
		BodyTempC:        38.2,
		BMI:              24.6,
		Steps:            12034,
		SleepHours:       6.5,
		WaterLiters:      3.1,
		BodyFatPct:       17.3,
		RestingHeartRate: 58,
		ActiveMinutes:    95,
	}
}

func TestEncodeColumnOrder(t *testing.T) {
	got := Encode(sampleInputs())
	want := FeatureVector{0, 31, 182, 141, 38.2, 24.6, 12034, 6.5, 3.1, 17.3, 58, 95}
	assert.Equal(t, want, got)
}

func TestEncodeMatchesArtifactColumnNames(t *testing.T) {
	names := ml.FeatureNames()
	assert.Len(t, names, len(FeatureVector{}))

	// each input lands in the column of the same name
	vec := Encode(sampleInputs())
	for i, name := range names {
		raw, ok := sampleInputs().Value(name)
		if !assert.True(t, ok, name) {
			continue
		}
		if name == "gender" {
			assert.Equal(t, "Male", raw)
			assert.Equal(t, 0.0, vec[i])
			continue
		}
		assert.Equal(t, raw, formatFloat(vec[i]), name)
	}
}

func TestEncodeGender(t *testing.T) {
	male := sampleInputs()
	female := sampleInputs()
	female.Gender = Female

	maleVec := Encode(male)
	femaleVec := Encode(female)

	assert.Equal(t, 0.0, maleVec[0])
	assert.Equal(t, 1.0, femaleVec[0])
	assert.Equal(t, maleVec[1:], femaleVec[1:])
}

func TestEncodeDefaults(t *testing.T) {
	got := Encode(DefaultInputs())
	want := FeatureVector{0, 25, 170, 90, 37.0, 22.0, 8000, 7.0, 2.5, 20.0, 70, 60}
	assert.Equal(t, want, got)
}
