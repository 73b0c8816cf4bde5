// Package projects provides read access to the project catalog in the
// content management store.
package projects

import (
	"context"
	"errors"

	"github.com/mharte/caseflow/internal/domain"
)

// ErrProjectNotFound is returned when a project name or id is unknown.
var ErrProjectNotFound = errors.New("project not found")

// Repository defines the interface for project data operations.
type Repository interface {
	GetProjectIDByName(ctx context.Context, name string) (int64, error)
	GetProjectByID(ctx context.Context, id int64) (*domain.Project, error)
	ListProjects(ctx context.Context) ([]domain.Project, error)
}
