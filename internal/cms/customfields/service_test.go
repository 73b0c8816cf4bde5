package customfields

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/mharte/caseflow/internal/cms/projects"
	"github.com/mharte/caseflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepository implements Repository for testing.
type mockRepository struct {
	fieldNames    map[string]bool
	systemNames   map[string]bool
	typeInfo      map[domain.FieldType]*domain.FieldTypeInfo
	created       []CreateFieldRecord
	assigned      map[int64][]int64
	nextID        int64
	createErr     error
	assignErr     error
	moveErr       error
	moveCalls     int
	moveDirection MoveDirection
	listAll       []domain.CustomField
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		fieldNames:  make(map[string]bool),
		systemNames: make(map[string]bool),
		assigned:    make(map[int64][]int64),
		typeInfo: map[domain.FieldType]*domain.FieldTypeInfo{
			domain.FieldTypeString: {ID: 5, SupportsDefaultValue: true, SupportsIsRequired: true},
			domain.FieldTypeUser:   {ID: 8, SupportsDefaultValue: false, SupportsIsRequired: false},
		},
		nextID: 10,
	}
}

func (m *mockRepository) FieldNameExists(_ context.Context, fieldName string) (bool, error) {
	return m.fieldNames[fieldName], nil
}

func (m *mockRepository) SystemNameExists(_ context.Context, systemName string) (bool, error) {
	return m.systemNames[systemName], nil
}

func (m *mockRepository) GetFieldTypeInfo(_ context.Context, fieldType domain.FieldType) (*domain.FieldTypeInfo, error) {
	info, ok := m.typeInfo[fieldType]
	if !ok {
		return nil, ErrUnknownFieldType
	}
	return info, nil
}

func (m *mockRepository) CreateField(_ context.Context, record CreateFieldRecord) (int64, error) {
	if m.createErr != nil {
		return 0, m.createErr
	}
	m.created = append(m.created, record)
	m.nextID++
	return m.nextID, nil
}

func (m *mockRepository) AssignFieldToProjects(_ context.Context, fieldID int64, projectIDs []int64) error {
	if m.assignErr != nil {
		return m.assignErr
	}
	m.assigned[fieldID] = projectIDs
	return nil
}

func (m *mockRepository) MoveField(_ context.Context, _ int64, direction MoveDirection) error {
	if m.moveErr != nil {
		return m.moveErr
	}
	m.moveCalls++
	m.moveDirection = direction
	return nil
}

func (m *mockRepository) ListAllFields(_ context.Context) ([]domain.CustomField, error) {
	return m.listAll, nil
}

func (m *mockRepository) ListFieldsForProject(_ context.Context, _ int64) ([]domain.CustomField, error) {
	return nil, nil
}

// mockProjects implements projects.Repository for testing.
type mockProjects struct {
	ids map[string]int64
}

func (m *mockProjects) GetProjectIDByName(_ context.Context, name string) (int64, error) {
	if id, ok := m.ids[name]; ok {
		return id, nil
	}
	return 0, projects.ErrProjectNotFound
}

func (m *mockProjects) GetProjectByID(_ context.Context, _ int64) (*domain.Project, error) {
	return nil, projects.ErrProjectNotFound
}

func (m *mockProjects) ListProjects(_ context.Context) ([]domain.Project, error) {
	return nil, nil
}

func newTestService(repo Repository, projectsRepo projects.Repository) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, projectsRepo, logger)
}

func TestAddField_Success(t *testing.T) {
	repo := newMockRepository()
	service := newTestService(repo, &mockProjects{})

	id, err := service.AddField(context.Background(), AddFieldInput{
		FieldName:            "Severity",
		SystemName:           "severity",
		FieldType:            domain.FieldTypeString,
		Enabled:              true,
		IsRequired:           true,
		DefaultValue:         "medium",
		AppliesToAllProjects: true,
	})

	require.NoError(t, err)
	assert.NotZero(t, id)
	require.Len(t, repo.created, 1)
	assert.Equal(t, int64(5), repo.created[0].FieldTypeID)
	assert.Equal(t, "medium", repo.created[0].DefaultValue)
	assert.True(t, repo.created[0].IsRequired)
}

func TestAddField_DuplicateFieldName(t *testing.T) {
	repo := newMockRepository()
	repo.fieldNames["Severity"] = true
	service := newTestService(repo, &mockProjects{})

	_, err := service.AddField(context.Background(), AddFieldInput{
		FieldName:  "Severity",
		SystemName: "severity",
		FieldType:  domain.FieldTypeString,
	})

	assert.ErrorIs(t, err, ErrDuplicateFieldName)
	assert.Empty(t, repo.created, "nothing may be inserted on a duplicate")
}

func TestAddField_DuplicateSystemName(t *testing.T) {
	repo := newMockRepository()
	repo.systemNames["severity"] = true
	service := newTestService(repo, &mockProjects{})

	_, err := service.AddField(context.Background(), AddFieldInput{
		FieldName:  "Severity",
		SystemName: "severity",
		FieldType:  domain.FieldTypeString,
	})

	assert.ErrorIs(t, err, ErrDuplicateSystemName)
	assert.Empty(t, repo.created)
}

func TestAddField_UnknownFieldType(t *testing.T) {
	repo := newMockRepository()
	service := newTestService(repo, &mockProjects{})

	_, err := service.AddField(context.Background(), AddFieldInput{
		FieldName:  "Severity",
		SystemName: "severity",
		FieldType:  domain.FieldType("Telepathy"),
	})

	assert.ErrorIs(t, err, ErrUnknownFieldType)
	assert.Empty(t, repo.created)
}

func TestAddField_DropsUnsupportedAttributes(t *testing.T) {
	repo := newMockRepository()
	service := newTestService(repo, &mockProjects{})

	// The User type supports neither a default value nor a required flag.
	_, err := service.AddField(context.Background(), AddFieldInput{
		FieldName:            "Owner",
		SystemName:           "owner",
		FieldType:            domain.FieldTypeUser,
		IsRequired:           true,
		DefaultValue:         "admin",
		AppliesToAllProjects: true,
	})

	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.Empty(t, repo.created[0].DefaultValue)
	assert.False(t, repo.created[0].IsRequired)
}

func TestAddField_AssignsProjects(t *testing.T) {
	repo := newMockRepository()
	projectsRepo := &mockProjects{ids: map[string]int64{"apollo": 7, "gemini": 9}}
	service := newTestService(repo, projectsRepo)

	id, err := service.AddField(context.Background(), AddFieldInput{
		FieldName:  "Severity",
		SystemName: "severity",
		FieldType:  domain.FieldTypeString,
		Projects:   []string{"apollo", "gemini"},
	})

	require.NoError(t, err)
	assert.Equal(t, []int64{7, 9}, repo.assigned[id])
}

func TestAddField_InvalidProjectKeepsField(t *testing.T) {
	repo := newMockRepository()
	projectsRepo := &mockProjects{ids: map[string]int64{"apollo": 7}}
	service := newTestService(repo, projectsRepo)

	id, err := service.AddField(context.Background(), AddFieldInput{
		FieldName:  "Severity",
		SystemName: "severity",
		FieldType:  domain.FieldTypeString,
		Projects:   []string{"apollo", "no-such-project"},
	})

	var projectErr *ProjectInvalidError
	require.ErrorAs(t, err, &projectErr)
	assert.Equal(t, "no-such-project", projectErr.Name)
	assert.Equal(t, "Project 'no-such-project' is not valid", projectErr.Error())

	// The field row stays: assignment failure does not roll the field back.
	assert.NotZero(t, id)
	assert.Len(t, repo.created, 1)
	assert.Empty(t, repo.assigned)
}

func TestAddField_GlobalFieldSkipsAssignment(t *testing.T) {
	repo := newMockRepository()
	service := newTestService(repo, &mockProjects{})

	_, err := service.AddField(context.Background(), AddFieldInput{
		FieldName:            "Severity",
		SystemName:           "severity",
		FieldType:            domain.FieldTypeString,
		AppliesToAllProjects: true,
		Projects:             []string{"ignored"},
	})

	require.NoError(t, err)
	assert.Empty(t, repo.assigned)
}

func TestMoveField_ValidatesDirection(t *testing.T) {
	repo := newMockRepository()
	service := newTestService(repo, &mockProjects{})

	err := service.MoveField(context.Background(), 1, MoveDirection("sideways"))
	require.Error(t, err)
	assert.Zero(t, repo.moveCalls)

	require.NoError(t, service.MoveField(context.Background(), 1, MoveUp))
	assert.Equal(t, 1, repo.moveCalls)
	assert.Equal(t, MoveUp, repo.moveDirection)
}

func TestAddField_PropagatesStorageFailure(t *testing.T) {
	repo := newMockRepository()
	repo.createErr = errors.New("database unavailable")
	service := newTestService(repo, &mockProjects{})

	_, err := service.AddField(context.Background(), AddFieldInput{
		FieldName:  "Severity",
		SystemName: "severity",
		FieldType:  domain.FieldTypeString,
	})

	assert.ErrorContains(t, err, "database unavailable")
}
