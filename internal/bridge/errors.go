package bridge

import (
	"errors"

	"github.com/epiagent/epiagent-cli/internal/catalogue"
)

// ErrInvalidInput is returned when a call request fails validation.
var ErrInvalidInput = catalogue.ErrInvalidInput

// ErrRscriptMissing is returned when the configured Rscript binary cannot be found.
var ErrRscriptMissing = errors.New("Rscript not found")
