package catalogue

import "errors"

// ErrInvalidInput indicates a catalogue record (or a request built from one) is malformed.
var ErrInvalidInput = errors.New("invalid input")
