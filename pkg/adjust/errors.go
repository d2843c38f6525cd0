package adjust

import "fmt"

// IndexOutOfRangeError is returned when the provided interface index has no
// pipes configured in the engine, meaning it was never allocated by the
// compiler or the rule program is not installed.
type IndexOutOfRangeError struct {
	Index int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("no pipes configured for interface index %d", e.Index)
}
