package sqlgen

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTemplateNotFound is returned for lookups of unknown template keys.
var ErrTemplateNotFound = errors.New("template not found")

// MissingParametersError names every required parameter absent from a
// render request. Validation is separate from rendering: Render itself
// never fails on missing parameters.
type MissingParametersError struct {
	TemplateKey string
	Missing     []string
}

func (e *MissingParametersError) Error() string {
	return fmt.Sprintf("template %s: missing required parameters: %s",
		e.TemplateKey, strings.Join(e.Missing, ", "))
}
