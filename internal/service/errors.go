package service

import (
	"errors"
	"fmt"

	"pd-smartdoc/internal/domain"
)

// ErrNotFound signals that an id does not resolve in the addressed collection.
var ErrNotFound = errors.New("not found")

// MissingFieldError reports a mandatory field the client omitted.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	switch len(e.Fields) {
	case 1:
		return e.Fields[0] + " is required"
	case 2:
		return e.Fields[0] + " and " + e.Fields[1] + " are required"
	default:
		return fmt.Sprintf("required fields missing: %v", e.Fields)
	}
}

// LinkTargetError reports a cross-reference id that does not resolve. Only
// raised at creation time; later deletion of the target is allowed.
type LinkTargetError struct {
	Kind string // domain.ControlTypeEDPS or domain.ControlTypeDVP
	ID   string
}

func (e *LinkTargetError) Error() string {
	if e.Kind == domain.ControlTypeDVP {
		return fmt.Sprintf("DVP procedure with ID %s not found", e.ID)
	}
	return fmt.Sprintf("EDPS norm with ID %s not found", e.ID)
}

// UpstreamError preserves the status and message of a failed SAI call so the
// user sees what the template service actually said. Status 0 means the call
// never got a response.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("SAI request failed: %s", e.Message)
	}
	return fmt.Sprintf("SAI returned %d: %s", e.Status, e.Message)
}
