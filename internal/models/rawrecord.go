package models

// RawRecord maps a platform-specific field name to its string value for one
// source row. Records are ephemeral: produced by an extractor and consumed
// by the same platform's normalizer within one pass.
type RawRecord map[string]string

// Get returns the value for a field name, or "" when the field is absent.
// Missing optional fields degrade to empty strings rather than errors.
func (r RawRecord) Get(field string) string {
	return r[field]
}
