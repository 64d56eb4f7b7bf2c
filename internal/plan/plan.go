// Package plan loads weekly workout plans and picks the workout for a date.
package plan

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/workoutnotifier/workout-notifier/internal/model"
)

var (
	ErrNoDays            = errors.New("plan: no workouts found")
	ErrDayOutOfRange     = errors.New("plan: no workout for today")
	ErrUnsupportedFormat = errors.New("plan: unsupported file format")
)

// Format is the encoding of a plan document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

//go:embed default_plan.json
var defaultPlan []byte

// Default returns the built-in weekly plan.
func Default() (*model.Plan, error) {
	return Parse(defaultPlan, FormatJSON)
}

// Load reads a plan from path, choosing the decoder from the file extension.
// An empty path returns the built-in plan.
func Load(path string) (*model.Plan, error) {
	if path == "" {
		return Default()
	}

	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plan: failed to read %s: %w", path, err)
	}

	p, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// FormatFromPath maps a file extension to a Format.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Parse decodes a plan document. Both formats reject unknown fields, and a
// plan without days is rejected.
func Parse(data []byte, format Format) (*model.Plan, error) {
	var p model.Plan

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("plan: invalid JSON: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("plan: invalid YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if len(p.Days) == 0 {
		return nil, ErrNoDays
	}
	return &p, nil
}

// WeekdayIndex returns the plan index for t: Monday is 0, Sunday is 6.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// ForDate returns the workout scheduled for the weekday of t.
// The caller decides the timezone by converting t beforehand.
func ForDate(p *model.Plan, t time.Time) (model.Day, error) {
	if p == nil || len(p.Days) == 0 {
		return model.Day{}, ErrNoDays
	}

	idx := WeekdayIndex(t)
	if idx >= len(p.Days) {
		return model.Day{}, fmt.Errorf("%w: %s is day %d but the plan has %d days",
			ErrDayOutOfRange, t.Weekday(), idx, len(p.Days))
	}
	return p.Days[idx], nil
}
