// Package customfields manages the ordered collection of test-case custom
// field definitions: insert-at-end, swap-based reordering and project
// assignment.
package customfields

import (
	"context"

	"github.com/mharte/caseflow/internal/domain"
)

// MoveDirection is the direction a custom field is moved in its ordering.
type MoveDirection string

// Move directions.
const (
	MoveUp   MoveDirection = "up"
	MoveDown MoveDirection = "down"
)

// IsValid checks if the move direction is valid.
func (d MoveDirection) IsValid() bool {
	return d == MoveUp || d == MoveDown
}

// CreateFieldRecord holds the resolved column values for a field insert.
// Position is assigned by the store, never by callers.
type CreateFieldRecord struct {
	FieldName            string
	Description          string
	SystemName           string
	FieldTypeID          int64
	Enabled              bool
	IsRequired           bool
	DefaultValue         string
	AppliesToAllProjects bool
}

// Repository defines the interface for custom field data operations.
//
// Implementations must keep the position invariant: the positions of the N
// existing fields are exactly {1..N}. CreateField assigns max+1 and
// MoveField swaps two adjacent positions atomically; a failed move leaves
// every position unchanged.
type Repository interface {
	FieldNameExists(ctx context.Context, fieldName string) (bool, error)
	SystemNameExists(ctx context.Context, systemName string) (bool, error)

	// GetFieldTypeInfo resolves a field type name to its capability triple.
	// Returns ErrUnknownFieldType for an unknown name.
	GetFieldTypeInfo(ctx context.Context, fieldType domain.FieldType) (*domain.FieldTypeInfo, error)

	// CreateField inserts the field at position max+1 and returns its id.
	CreateField(ctx context.Context, record CreateFieldRecord) (int64, error)

	// AssignFieldToProjects links a field to projects as one all-or-nothing
	// batch.
	AssignFieldToProjects(ctx context.Context, fieldID int64, projectIDs []int64) error

	// MoveField swaps the field with its neighbor in the given direction.
	// Returns ErrFieldNotFound for an unknown id and ErrInvalidMove when
	// the target position is out of range or unoccupied.
	MoveField(ctx context.Context, fieldID int64, direction MoveDirection) error

	// ListAllFields returns every field ordered by position, with resolved
	// assigned projects for non-global fields.
	ListAllFields(ctx context.Context) ([]domain.CustomField, error)

	// ListFieldsForProject returns global fields plus fields explicitly
	// assigned to the project, ordered by position.
	ListFieldsForProject(ctx context.Context, projectID int64) ([]domain.CustomField, error)
}
