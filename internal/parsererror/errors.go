// Package parsererror defines the typed errors surfaced by the platform
// extractors and normalizers.
package parsererror

import "fmt"

// ParseError represents an error during extraction: no recognizable
// header or marker, or a row with an unexpected shape in strict mode.
type ParseError struct {
	Platform string
	Reason   string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Platform, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Platform, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// InvalidFormatError represents an input file that does not conform to the
// expected export format for a platform.
type InvalidFormatError struct {
	FilePath       string
	ExpectedFormat string
	Msg            string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid format in file '%s': %s. Expected: %s",
		e.FilePath, e.Msg, e.ExpectedFormat)
}

// EncodingError represents a character-encoding normalization failure.
// Encoding failures are surfaced rather than swallowed into corrupted text.
type EncodingError struct {
	Platform string
	Err      error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("%s: encoding normalization failed: %v", e.Platform, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}
