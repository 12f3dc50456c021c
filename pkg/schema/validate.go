package schema

import (
	"maps"
	"slices"
)

// Schema maps wire field names to their expected shape.
type Schema map[string]Type

// Validate checks data against s. Every mismatch is collected into an
// *AggregateError ordered by field name; nil means the shape matched.
func Validate(s Schema, data map[string]any) error {
	return validateAt("", s, data)
}

func validateAt(prefix string, s Schema, data map[string]any) error {
	var errs []error
	for _, field := range slices.Sorted(maps.Keys(s)) {
		want := s[field]
		got, present := data[field]
		switch {
		case !present && want.optional:
		case !present:
			errs = append(errs, &ValidationError{Key: prefix + field, Reason: "required"})
		default:
			if err := want.Validate(got); err != nil {
				errs = append(errs, &ValidationError{Key: prefix + field, Reason: err.Error(), Value: got})
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &AggregateError{Errors: errs}
}
