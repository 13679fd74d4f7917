package match

import "github.com/epiagent/epiagent-cli/internal/catalogue"

// ErrInvalidInput is returned for malformed entries or options. It is the same
// sentinel the catalogue uses, so errors.Is works across both packages.
var ErrInvalidInput = catalogue.ErrInvalidInput
