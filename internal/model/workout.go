package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Plan is a weekly workout plan. Days[0] is Monday, Days[6] is Sunday.
type Plan struct {
	Days []Day `json:"days" yaml:"days"`
}

// Day is the workout for a single weekday
type Day struct {
	Title     string     `json:"title" yaml:"title"`
	Exercises []Exercise `json:"exercises" yaml:"exercises"`
}

// Exercise is a single entry of a day's workout
type Exercise struct {
	Name string `json:"name" yaml:"name"`
	Sets Text   `json:"sets" yaml:"sets"`
	Rest Text   `json:"rest" yaml:"rest"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
}

// DisplayTitle returns the title shown in the email body
func (d Day) DisplayTitle() string {
	if d.Title == "" {
		return "Workout"
	}
	return d.Title
}

// SubjectTitle returns the title used in the email subject
func (d Day) SubjectTitle() string {
	if d.Title == "" {
		return "Your Workout"
	}
	return d.Title
}

// DisplayName returns the exercise name, or a placeholder when it is missing
func (e Exercise) DisplayName() string {
	if e.Name == "" {
		return "Unknown Exercise"
	}
	return e.Name
}

// Text is a free-form plan value such as "4 x 8" or 60. JSON plans may give
// it as a string or a number; numbers keep their literal spelling.
type Text string

// UnmarshalJSON accepts a JSON string, number or null.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected a string or number, got %s", data)
	}
	*t = Text(n.String())
	return nil
}

func (t Text) String() string {
	return string(t)
}
