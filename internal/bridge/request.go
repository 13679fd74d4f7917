package bridge

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// R package names: letters, digits and dots, starting with a letter.
	packagePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9.]*[A-Za-z0-9]$`)
	// Syntactic R names, used for both functions and keyword arguments.
	identPattern = regexp.MustCompile(`^(\.[A-Za-z_.]|[A-Za-z])[A-Za-z0-9_.]*$|^\.$`)
)

// CallRequest names an R function and the arguments to call it with.
type CallRequest struct {
	Package  string           `json:"package"`
	Function string           `json:"function"`
	Args     []Value          `json:"args,omitempty"`
	Kwargs   map[string]Value `json:"kwargs,omitempty"`
}

// Normalize returns a copy with surrounding whitespace removed from the package
// and function names.
func (r CallRequest) Normalize() CallRequest {
	r.Package = strings.TrimSpace(r.Package)
	r.Function = strings.TrimSpace(r.Function)
	return r
}

// Validate checks that the package, function and keyword names are valid R
// identifiers as given. Padded names are rejected; call Normalize first.
func (r CallRequest) Validate() error {
	if strings.TrimSpace(r.Package) == "" {
		return fmt.Errorf("%w: package is required", ErrInvalidInput)
	}
	if !packagePattern.MatchString(r.Package) {
		return fmt.Errorf("%w: invalid package name %q", ErrInvalidInput, r.Package)
	}
	if strings.TrimSpace(r.Function) == "" {
		return fmt.Errorf("%w: function is required", ErrInvalidInput)
	}
	if !identPattern.MatchString(r.Function) {
		return fmt.Errorf("%w: invalid function name %q", ErrInvalidInput, r.Function)
	}
	for _, name := range sortedKeys(r.Kwargs) {
		if !identPattern.MatchString(name) {
			return fmt.Errorf("%w: invalid keyword argument %q", ErrInvalidInput, name)
		}
	}
	return nil
}

// Target renders the request as pkg::fn.
func (r CallRequest) Target() string {
	return r.Package + "::" + r.Function
}
