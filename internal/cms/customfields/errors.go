package customfields

import (
	"errors"
	"fmt"
)

// Negative outcomes. These are ordinary values, not failures: they never
// degrade service state and are never logged as critical.
var (
	// ErrDuplicateFieldName means the field name is already in use.
	ErrDuplicateFieldName = errors.New("duplicate field_name")

	// ErrDuplicateSystemName means the system name is already in use.
	ErrDuplicateSystemName = errors.New("duplicate system_name")

	// ErrFieldNotFound means the field id does not exist.
	ErrFieldNotFound = errors.New("custom field not found")

	// ErrInvalidMove means the move target is out of range or unoccupied.
	ErrInvalidMove = errors.New("invalid field or move operation")

	// ErrUnknownFieldType means the field type name did not resolve.
	ErrUnknownFieldType = errors.New("unknown field type")
)

// ProjectInvalidError reports a project name that failed to resolve during
// field-to-project assignment. The already-created field is not rolled
// back when this happens; see the design notes.
type ProjectInvalidError struct {
	Name string
}

func (e *ProjectInvalidError) Error() string {
	return fmt.Sprintf("Project '%s' is not valid", e.Name)
}
