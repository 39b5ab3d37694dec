package calories

import (
	"encoding/json"
	"math"
	"net/url"
	"strconv"
	"strings"
)

type Gender string

const (
	Male   Gender = "Male"
	Female Gender = "Female"
)

// Kind describes how a control reads its raw value.
type Kind string

const (
	KindChoice  Kind = "choice"
	KindInteger Kind = "integer"
	KindFloat   Kind = "float"
)

// Control is one bounded input of the form.
type Control struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Kind    Kind     `json:"kind"`
	Min     float64  `json:"min,omitempty"`
	Max     float64  `json:"max,omitempty"`
	Step    float64  `json:"step,omitempty"`
	Default float64  `json:"default"`
	Options []string `json:"options,omitempty"`
}

// Clamp bounds v to the control range. Integer controls round first.
func (c Control) Clamp(v float64) float64 {
	if c.Kind == KindInteger {
		v = math.Round(v)
	}
	if v < c.Min {
		return c.Min
	}
	if v > c.Max {
		return c.Max
	}
	return v
}

// Read returns the clamped value for this control, or its default when
// the source has no usable value.
func (c Control) Read(src InputSource) float64 {
	raw, ok := src.Value(c.Name)
	if !ok {
		return c.Default
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return c.Default
	}
	return c.Clamp(v)
}

var (
	genderControl = Control{Name: "gender", Label: "Gender", Kind: KindChoice, Options: []string{string(Male), string(Female)}}

	ageControl              = Control{Name: "age", Label: "Age (years)", Kind: KindInteger, Min: 1, Max: 100, Step: 1, Default: 25}
	heightControl           = Control{Name: "height_cm", Label: "Height (cm)", Kind: KindInteger, Min: 100, Max: 220, Step: 1, Default: 170}
	workoutHeartRateControl = Control{Name: "workout_heart_rate", Label: "Workout Heart Rate (bpm)", Kind: KindInteger, Min: 50, Max: 200, Step: 1, Default: 90}
	bodyTempControl         = Control{Name: "body_temp_c", Label: "Body Temperature (°C)", Kind: KindFloat, Min: 35, Max: 42, Step: 0.01, Default: 37}
	bmiControl              = Control{Name: "bmi", Label: "BMI", Kind: KindFloat, Min: 10, Max: 50, Step: 0.01, Default: 22}
	stepsControl            = Control{Name: "steps", Label: "Steps Count", Kind: KindInteger, Min: 0, Max: 50000, Step: 1, Default: 8000}
	sleepControl            = Control{Name: "sleep_hours", Label: "Sleep Hours", Kind: KindFloat, Min: 0, Max: 12, Step: 0.01, Default: 7}
	waterControl            = Control{Name: "water_liters", Label: "Water Intake (Liters)", Kind: KindFloat, Min: 0, Max: 10, Step: 0.01, Default: 2.5}
	bodyFatControl          = Control{Name: "body_fat_pct", Label: "Body Fat Percentage (%)", Kind: KindFloat, Min: 5, Max: 60, Step: 0.01, Default: 20}
	restingHeartRateControl = Control{Name: "resting_heart_rate", Label: "Resting Heart Rate (bpm)", Kind: KindInteger, Min: 40, Max: 120, Step: 1, Default: 70}
	activeMinutesControl    = Control{Name: "active_minutes", Label: "Daily Active Minutes", Kind: KindInteger, Min: 0, Max: 300, Step: 1, Default: 60}
)

// Section groups controls into the two columns of the form.
type Section struct {
	Title   string      `json:"title"`
	Columns [][]Control `json:"columns"`
}

// Layout returns the form sections in display order.
func Layout() []Section {
	return []Section{
		{
			Title: "Body Information",
			Columns: [][]Control{
				{genderControl, ageControl, heightControl, bmiControl},
				{bodyTempControl, bodyFatControl, restingHeartRateControl},
			},
		},
		{
			Title: "Workout & Activity Details",
			Columns: [][]Control{
				{workoutHeartRateControl, stepsControl},
				{sleepControl, waterControl, activeMinutesControl},
			},
		},
	}
}

// Controls returns every control in layout order.
func Controls() []Control {
	var controls []Control
	for _, section := range Layout() {
		for _, column := range section.Columns {
			controls = append(controls, column...)
		}
	}
	return controls
}

// InputSource supplies raw control values by control name.
// A missing name means the control was left untouched.
type InputSource interface {
	Value(name string) (string, bool)
}

// Inputs is one submission of the form after clamping.
type Inputs struct {
	Gender           Gender  `json:"gender"`
	Age              int     `json:"age"`
	HeightCM         int     `json:"height_cm"`
	WorkoutHeartRate int     `json:"workout_heart_rate"`
	BodyTempC        float64 `json:"body_temp_c"`
	BMI              float64 `json:"bmi"`
	Steps            int     `json:"steps"`
	SleepHours       float64 `json:"sleep_hours"`
	WaterLiters      float64 `json:"water_liters"`
	BodyFatPct       float64 `json:"body_fat_pct"`
	RestingHeartRate int     `json:"resting_heart_rate"`
	ActiveMinutes    int     `json:"active_minutes"`
}

// DefaultInputs is the form as first shown.
func DefaultInputs() Inputs {
	return ReadInputs(FormValues(nil))
}

// ReadInputs reads every control from src.
func ReadInputs(src InputSource) Inputs {
	return Inputs{
		Gender:           readGender(src),
		Age:              int(ageControl.Read(src)),
		HeightCM:         int(heightControl.Read(src)),
		WorkoutHeartRate: int(workoutHeartRateControl.Read(src)),
		BodyTempC:        bodyTempControl.Read(src),
		BMI:              bmiControl.Read(src),
		Steps:            int(stepsControl.Read(src)),
		SleepHours:       sleepControl.Read(src),
		WaterLiters:      waterControl.Read(src),
		BodyFatPct:       bodyFatControl.Read(src),
		RestingHeartRate: int(restingHeartRateControl.Read(src)),
		ActiveMinutes:    int(activeMinutesControl.Read(src)),
	}
}

func readGender(src InputSource) Gender {
	raw, ok := src.Value(genderControl.Name)
	if !ok {
		return Male
	}
	raw = strings.TrimSpace(raw)
	// the encoded column value, as echoed back in Result.Features
	switch raw {
	case "0":
		return Male
	case "1":
		return Female
	}
	for _, option := range genderControl.Options {
		if strings.EqualFold(raw, option) {
			return Gender(option)
		}
	}
	return Male
}

// Value lets a submission be read back as a source, e.g. to refill the form.
func (in Inputs) Value(name string) (string, bool) {
	switch name {
	case genderControl.Name:
		return string(in.Gender), true
	case ageControl.Name:
		return strconv.Itoa(in.Age), true
	case heightControl.Name:
		return strconv.Itoa(in.HeightCM), true
	case workoutHeartRateControl.Name:
		return strconv.Itoa(in.WorkoutHeartRate), true
	case bodyTempControl.Name:
		return formatFloat(in.BodyTempC), true
	case bmiControl.Name:
		return formatFloat(in.BMI), true
	case stepsControl.Name:
		return strconv.Itoa(in.Steps), true
	case sleepControl.Name:
		return formatFloat(in.SleepHours), true
	case waterControl.Name:
		return formatFloat(in.WaterLiters), true
	case bodyFatControl.Name:
		return formatFloat(in.BodyFatPct), true
	case restingHeartRateControl.Name:
		return strconv.Itoa(in.RestingHeartRate), true
	case activeMinutesControl.Name:
		return strconv.Itoa(in.ActiveMinutes), true
	}
	return "", false
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormValues adapts submitted HTML form values.
type FormValues url.Values

func (f FormValues) Value(name string) (string, bool) {
	values, ok := f[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// MapSource adapts a decoded JSON object.
type MapSource map[string]interface{}

func (m MapSource) Value(name string) (string, bool) {
	raw, ok := m[name]
	if !ok || raw == nil {
		return "", false
	}
	switch v := raw.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		return formatFloat(v), true
	case int:
		return strconv.Itoa(v), true
	default:
		return "", false
	}
}
