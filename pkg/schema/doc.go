// Package schema decodes generation service responses into domain values.
//
// The service is trusted for shape but not for types: numbers may arrive as
// strings, optional fields may be missing and lists may be absent. Decoding
// never fails on such mismatches. Instead the offending field falls back to its
// zero value and the mismatch is reported as a warning:
//
//	it, warn := schema.Decode(raw)
//	if warn != nil {
//	    logger.Warn("itinerary decoded with defaults", "err", warn)
//	}
//	// it is always usable
//
// Shapes are described with a small type system (String, Int, Slice, Object)
// and checked with Validate before mapstructure performs the weakly typed
// conversion.
package schema
