package phout

import (
	"errors"
	"fmt"
)

// Parse errors
var (
	ErrFieldCount = errors.New("incorrect fields count")
	ErrTimeFormat = errors.New("incorrect time value")
)

// FormatError reports a phout line that could not be turned into a Record
type FormatError struct {
	Line int    // 1-based line number
	Text string // line content after trimming
	Err  error
}

func (e *FormatError) Error() string {
	if errors.Is(e.Err, ErrFieldCount) || e.Err == nil {
		return fmt.Sprintf("Incorrect fields count in line %d: %q", e.Line, e.Text)
	}
	return fmt.Sprintf("%v in line %d: %q", e.Err, e.Line, e.Text)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
