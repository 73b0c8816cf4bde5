package customfields

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mharte/caseflow/internal/cms/projects"
	"github.com/mharte/caseflow/internal/domain"
)

// Service implements custom field business logic on top of the repository.
type Service struct {
	repo     Repository
	projects projects.Repository
	logger   *slog.Logger
}

// NewService creates a new custom fields service.
func NewService(repo Repository, projectsRepo projects.Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		projects: projectsRepo,
		logger:   logger,
	}
}

// AddFieldInput holds data for creating a custom field.
type AddFieldInput struct {
	FieldName            string
	Description          string
	SystemName           string
	FieldType            domain.FieldType
	Enabled              bool
	IsRequired           bool
	DefaultValue         string
	AppliesToAllProjects bool
	Projects             []string
}

// AddField creates a custom field at the end of the ordering.
//
// Both uniqueness checks run before the insert: a duplicate field name or
// system name is a distinct outcome (ErrDuplicateFieldName,
// ErrDuplicateSystemName), not a failure. The field type must resolve to a
// known type row or the add fails with ErrUnknownFieldType and nothing is
// inserted.
//
// When the field is not global, each project name is resolved to an id
// after the field row is created. A name that fails to resolve returns a
// *ProjectInvalidError without rolling the field back. This mirrors the
// long-standing behavior of the store; see the design notes before
// changing it.
func (s *Service) AddField(ctx context.Context, input AddFieldInput) (int64, error) {
	// The two name checks and the insert are separate gate acquisitions,
	// and the schema's UNIQUE constraint covers the (field_name,
	// system_name) pair rather than each column, so two interleaved adds
	// can race past the checks and both commit.
	exists, err := s.repo.FieldNameExists(ctx, input.FieldName)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, ErrDuplicateFieldName
	}

	exists, err = s.repo.SystemNameExists(ctx, input.SystemName)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, ErrDuplicateSystemName
	}

	typeInfo, err := s.repo.GetFieldTypeInfo(ctx, input.FieldType)
	if err != nil {
		return 0, err
	}

	record := CreateFieldRecord{
		FieldName:            input.FieldName,
		Description:          input.Description,
		SystemName:           input.SystemName,
		FieldTypeID:          typeInfo.ID,
		Enabled:              input.Enabled,
		IsRequired:           input.IsRequired,
		DefaultValue:         input.DefaultValue,
		AppliesToAllProjects: input.AppliesToAllProjects,
	}

	// Types that don't support a default value or a required flag have
	// those attributes dropped rather than stored inert.
	if !typeInfo.SupportsDefaultValue {
		record.DefaultValue = ""
	}
	if !typeInfo.SupportsIsRequired {
		record.IsRequired = false
	}

	fieldID, err := s.repo.CreateField(ctx, record)
	if err != nil {
		return 0, err
	}

	if !input.AppliesToAllProjects && len(input.Projects) > 0 {
		if err := s.assignProjects(ctx, fieldID, input.Projects); err != nil {
			return fieldID, err
		}
	}

	s.logger.Info("custom field added",
		"field_id", fieldID,
		"field_name", input.FieldName,
		"system_name", input.SystemName,
	)
	return fieldID, nil
}

// assignProjects resolves each project name and links the field to them as
// one batch. The field itself stays in place if anything here fails.
func (s *Service) assignProjects(ctx context.Context, fieldID int64, names []string) error {
	projectIDs := make([]int64, 0, len(names))

	for _, name := range names {
		projectID, err := s.projects.GetProjectIDByName(ctx, name)
		if err != nil {
			if errors.Is(err, projects.ErrProjectNotFound) {
				return &ProjectInvalidError{Name: name}
			}
			return err
		}
		projectIDs = append(projectIDs, projectID)
	}

	if err := s.repo.AssignFieldToProjects(ctx, fieldID, projectIDs); err != nil {
		return fmt.Errorf("assign custom field %d to projects: %w", fieldID, err)
	}
	return nil
}

// MoveField moves a custom field one step up or down in the ordering by
// swapping positions with its neighbor. Unknown ids and out-of-range moves
// are non-error outcomes (ErrFieldNotFound, ErrInvalidMove); a failed move
// leaves every position unchanged.
func (s *Service) MoveField(ctx context.Context, fieldID int64, direction MoveDirection) error {
	if !direction.IsValid() {
		return fmt.Errorf("invalid move direction: %s", direction)
	}
	return s.repo.MoveField(ctx, fieldID, direction)
}

// ListAllFields returns every field ordered by position.
func (s *Service) ListAllFields(ctx context.Context) ([]domain.CustomField, error) {
	return s.repo.ListAllFields(ctx)
}

// ListFieldsForProject returns the fields visible to a project: global
// fields plus fields explicitly assigned to it.
func (s *Service) ListFieldsForProject(ctx context.Context, projectID int64) ([]domain.CustomField, error) {
	return s.repo.ListFieldsForProject(ctx, projectID)
}
