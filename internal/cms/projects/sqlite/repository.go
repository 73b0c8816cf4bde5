// Package sqlite provides the sqlite implementation of the projects
// repository. All access goes through the fault-isolating query gate.
package sqlite

import (
	"context"
	"database/sql"

	"github.com/mharte/caseflow/internal/cms/projects"
	"github.com/mharte/caseflow/internal/domain"
	"github.com/mharte/caseflow/internal/pkg/safedb"
)

// Repository implements projects.Repository over the query gate.
type Repository struct {
	gate *safedb.Gate
}

// NewRepository creates a new sqlite projects repository.
func NewRepository(gate *safedb.Gate) *Repository {
	return &Repository{gate: gate}
}

// GetProjectIDByName resolves a project name to its id.
// Returns projects.ErrProjectNotFound when the name is unknown.
func (r *Repository) GetProjectIDByName(ctx context.Context, name string) (int64, error) {
	const query = `SELECT id FROM prj_projects WHERE name = ?`

	var id int64
	found, err := r.gate.QueryRow(ctx, "get project id by name", query, []any{name}, &id)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, projects.ErrProjectNotFound
	}
	return id, nil
}

// GetProjectByID retrieves a project by id.
func (r *Repository) GetProjectByID(ctx context.Context, id int64) (*domain.Project, error) {
	const query = `SELECT id, name FROM prj_projects WHERE id = ?`

	var project domain.Project
	found, err := r.gate.QueryRow(ctx, "get project by id", query, []any{id},
		&project.ID, &project.Name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, projects.ErrProjectNotFound
	}
	return &project, nil
}

// ListProjects retrieves all projects ordered by name.
func (r *Repository) ListProjects(ctx context.Context) ([]domain.Project, error) {
	const query = `SELECT id, name FROM prj_projects ORDER BY name`

	list := make([]domain.Project, 0)
	err := r.gate.Query(ctx, "list projects", query, nil, func(rows *sql.Rows) error {
		var project domain.Project
		if err := rows.Scan(&project.ID, &project.Name); err != nil {
			return err
		}
		list = append(list, project)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}
