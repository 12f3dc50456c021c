package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/tripreel/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

var (
	itineraryShape = Schema{
		"trip_title": String(),
		"summary":    Optional(String()),
		"days":       Slice(Object()),
	}
	dayShape = Schema{
		"day_number":  Int(),
		"theme":       String(),
		"image_query": Optional(String()),
		"image_url":   Optional(String()),
		"activities":  Slice(Object()),
	}
	activityShape = Schema{
		"time":        String(),
		"activity":    String(),
		"description": Optional(String()),
	}
)

type headerRecord struct {
	TripTitle string `mapstructure:"trip_title"`
	Summary   string `mapstructure:"summary"`
}

type dayRecord struct {
	DayNumber  int    `mapstructure:"day_number"`
	Theme      string `mapstructure:"theme"`
	ImageQuery string `mapstructure:"image_query"`
	ImageURL   string `mapstructure:"image_url"`
}

type activityRecord struct {
	Time        string `mapstructure:"time"`
	Activity    string `mapstructure:"activity"`
	Description string `mapstructure:"description"`
}

// Decode converts a JSON object into an Itinerary.
// The returned itinerary is never nil. The error, when non-nil, is an
// *AggregateError describing fields that were coerced or defaulted; it is a
// warning, not a failure.
func Decode(raw map[string]any) (*domain.Itinerary, error) {
	it := &domain.Itinerary{Days: []domain.Day{}}
	if raw == nil {
		return it, &AggregateError{Errors: []error{&ValidationError{Key: "$", Reason: "empty body"}}}
	}

	var warnings []error
	shapeErr := Validate(itineraryShape, raw)
	warnings = append(warnings, shapeErr)

	var header headerRecord
	if err := weakDecode(raw, &header); err != nil && shapeErr == nil {
		warnings = append(warnings, &ValidationError{Key: "$", Reason: err.Error()})
	}
	it.TripTitle = header.TripTitle
	it.Summary = header.Summary

	rawDays, _ := raw["days"].([]any)
	for i, rawDay := range rawDays {
		m, ok := rawDay.(map[string]any)
		if !ok {
			continue
		}
		day, warn := decodeDay(fmt.Sprintf("days[%d].", i), m)
		warnings = append(warnings, warn)
		it.Days = append(it.Days, day)
	}

	return it, merge(warnings...)
}

func decodeDay(prefix string, raw map[string]any) (domain.Day, error) {
	var warnings []error
	shapeErr := validateAt(prefix, dayShape, raw)
	warnings = append(warnings, shapeErr)

	var rec dayRecord
	if err := weakDecode(raw, &rec); err != nil && shapeErr == nil {
		warnings = append(warnings, &ValidationError{Key: strings.TrimSuffix(prefix, "."), Reason: err.Error()})
	}

	day := domain.Day{
		DayNumber:  rec.DayNumber,
		Theme:      rec.Theme,
		ImageQuery: strings.TrimSpace(rec.ImageQuery),
		ImageURL:   strings.TrimSpace(rec.ImageURL),
		Activities: []domain.Activity{},
	}

	rawActivities, _ := raw["activities"].([]any)
	for j, rawAct := range rawActivities {
		m, ok := rawAct.(map[string]any)
		if !ok {
			continue
		}
		actPrefix := fmt.Sprintf("%sactivities[%d].", prefix, j)
		actShapeErr := validateAt(actPrefix, activityShape, m)
		warnings = append(warnings, actShapeErr)

		var act activityRecord
		if err := weakDecode(m, &act); err != nil && actShapeErr == nil {
			warnings = append(warnings, &ValidationError{Key: strings.TrimSuffix(actPrefix, "."), Reason: err.Error()})
		}
		day.Activities = append(day.Activities, domain.Activity(act))
	}

	return day, merge(warnings...)
}

func weakDecode(input map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// EmbeddedError reports the "error" field some responses carry despite an
// HTTP success status. Null, false, zero and empty values do not count as errors.
func EmbeddedError(raw map[string]any) (*domain.EmbeddedError, bool) {
	msg := Text(raw["error"])
	if msg == "" {
		return nil, false
	}
	return &domain.EmbeddedError{Message: msg, Detail: Text(raw["detail"])}, true
}

// Detail returns the "detail" field of an error body, or "" when absent.
func Detail(raw map[string]any) string {
	return Text(raw["detail"])
}

// Text renders a JSON value as user-facing text. Strings are returned
// verbatim; other values are re-encoded as JSON. Null, false and zero are
// blank.
func Text(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if !val {
			return ""
		}
		return "true"
	case float64:
		if val == 0 {
			return ""
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
