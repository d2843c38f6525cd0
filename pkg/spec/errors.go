package spec

import "fmt"

// MalformedSpecError indicates an interface spec token does not conform to the
// token grammar (empty name, unrecognized OS marker, bad network).
type MalformedSpecError struct {
	Token  string
	Reason string
}

// Error implements error interface
func (e *MalformedSpecError) Error() string {
	return fmt.Sprintf("malformed interface spec %q: %s", e.Token, e.Reason)
}

// MalformedRateError indicates the bandwidth suffix of an interface spec token
// is not a well formed {in,out} pair.
type MalformedRateError struct {
	Token  string
	Reason string
}

// Error implements error interface
func (e *MalformedRateError) Error() string {
	return fmt.Sprintf("malformed rate suffix in %q: %s", e.Token, e.Reason)
}
