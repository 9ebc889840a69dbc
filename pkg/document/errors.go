package document

import "fmt"

// DateParseError reports a date or number field that could not be parsed at
// load time. The affected field is treated as unknown; the load continues.
type DateParseError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("row %d: cannot parse %s %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *DateParseError) Unwrap() error {
	return e.Err
}
