package models

import "strings"

const (
	// Grades are on the 1.0 - 7.0 scale.
	GradeMax     = 7.0
	GradePassing = 4.0
)

type Subject struct {
	ID          string  `json:"id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Credits     int     `json:"credits"`
	Description *string `json:"description,omitempty"`
}

type Grade struct {
	ID             string     `json:"id"`
	Value          float64    `json:"value"`
	Weight         float64    `json:"weight"`
	EvaluationName string     `json:"evaluation_name"`
	EvaluationDate *Timestamp `json:"evaluation_date,omitempty"`
	SubjectName    string     `json:"subject_name"`
	SubjectCode    string     `json:"subject_code"`
}

func (g Grade) IsPassing() bool {
	return g.Value >= GradePassing
}

// Ratio returns the grade as a fraction of the maximum, clamped to [0, 1].
func (g Grade) Ratio() float64 {
	r := g.Value / GradeMax
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

type ScheduleEntry struct {
	ID          string `json:"id"`
	Day         string `json:"day"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Classroom   string `json:"classroom"`
	SubjectName string `json:"subject_name"`
	SubjectCode string `json:"subject_code"`
}

// ShortDay returns the first three letters of the day name.
func (s ScheduleEntry) ShortDay() string {
	day := []rune(strings.TrimSpace(s.Day))
	if len(day) <= 3 {
		return string(day)
	}
	return string(day[:3])
}

// Weekdays in the order the API uses.
var Weekdays = []string{
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
	"Sunday",
}

// WeightedAverage returns the weight-averaged grade value. Grades without a
// weight count once. The boolean is false when there are no grades.
func WeightedAverage(grades []Grade) (float64, bool) {
	var sum, weights float64
	for _, grade := range grades {
		weight := grade.Weight
		if weight <= 0 {
			weight = 1
		}
		sum += grade.Value * weight
		weights += weight
	}
	if weights == 0 {
		return 0, false
	}
	return sum / weights, true
}
