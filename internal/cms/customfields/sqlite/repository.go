// Package sqlite provides the sqlite implementation of the custom fields
// repository. Every statement goes through the fault-isolating query gate;
// the position swap runs inside one gate transaction.
package sqlite

import (
	"context"
	"database/sql"

	"github.com/mharte/caseflow/internal/cms/customfields"
	"github.com/mharte/caseflow/internal/domain"
	"github.com/mharte/caseflow/internal/pkg/safedb"
)

// Repository implements customfields.Repository over the query gate.
type Repository struct {
	gate *safedb.Gate
}

// NewRepository creates a new sqlite custom fields repository.
func NewRepository(gate *safedb.Gate) *Repository {
	return &Repository{gate: gate}
}

// FieldNameExists checks if a field name is already in use.
// Case-insensitive match.
func (r *Repository) FieldNameExists(ctx context.Context, fieldName string) (bool, error) {
	const query = `SELECT 1 FROM tc_custom_fields WHERE LOWER(field_name) = LOWER(?) LIMIT 1`

	var one int
	found, err := r.gate.QueryRow(ctx, "check custom field name exists", query, []any{fieldName}, &one)
	if err != nil {
		return false, err
	}
	return found, nil
}

// SystemNameExists checks if a system name is already in use.
// Case-insensitive match.
func (r *Repository) SystemNameExists(ctx context.Context, systemName string) (bool, error) {
	const query = `SELECT 1 FROM tc_custom_fields WHERE LOWER(system_name) = LOWER(?) LIMIT 1`

	var one int
	found, err := r.gate.QueryRow(ctx, "check custom field system name exists", query, []any{systemName}, &one)
	if err != nil {
		return false, err
	}
	return found, nil
}

// GetFieldTypeInfo resolves a field type name to (id, supports_default,
// supports_required).
func (r *Repository) GetFieldTypeInfo(ctx context.Context, fieldType domain.FieldType) (*domain.FieldTypeInfo, error) {
	const query = `
		SELECT id, supports_default_value, supports_is_required
		FROM tc_custom_field_types
		WHERE name = ?
	`

	var info domain.FieldTypeInfo
	found, err := r.gate.QueryRow(ctx, "get custom field type info", query, []any{string(fieldType)},
		&info.ID, &info.SupportsDefaultValue, &info.SupportsIsRequired)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, customfields.ErrUnknownFieldType
	}
	return &info, nil
}

// CreateField inserts the field at position MAX(position)+1. The position
// read and the insert run in one transaction so two concurrent adds cannot
// claim the same position.
func (r *Repository) CreateField(ctx context.Context, record customfields.CreateFieldRecord) (int64, error) {
	const maxQuery = `SELECT MAX(position) FROM tc_custom_fields`
	const insertQuery = `
		INSERT INTO tc_custom_fields(
			field_name, description, system_name, field_type_id,
			entry_type, enabled, position, is_required,
			default_value, applies_to_all_projects)
		VALUES(?,?,?,?,?,?,?,?,?,?)
	`

	var fieldID int64
	err := r.gate.WithTx(ctx, "add custom field", func(tx *safedb.Tx) error {
		// MAX() always yields one row; NULL means the table is empty.
		var maxPosition sql.NullInt64
		if _, err := tx.QueryRow(maxQuery, nil, &maxPosition); err != nil {
			return err
		}

		newPosition := int64(1)
		if maxPosition.Valid {
			newPosition = maxPosition.Int64 + 1
		}

		id, err := tx.Insert(insertQuery,
			record.FieldName, record.Description, record.SystemName, record.FieldTypeID,
			string(domain.EntryUser), record.Enabled, newPosition, record.IsRequired,
			record.DefaultValue, record.AppliesToAllProjects)
		if err != nil {
			return err
		}

		fieldID = id
		return nil
	})
	if err != nil {
		return 0, err
	}
	return fieldID, nil
}

// AssignFieldToProjects links the field to each project id as a single
// all-or-nothing batch.
func (r *Repository) AssignFieldToProjects(ctx context.Context, fieldID int64, projectIDs []int64) error {
	const query = `INSERT INTO tc_custom_field_projects(field_id, project_id) VALUES (?, ?)`

	rowSets := make([][]any, 0, len(projectIDs))
	for _, projectID := range projectIDs {
		rowSets = append(rowSets, []any{fieldID, projectID})
	}

	return r.gate.BulkInsert(ctx, "assign custom field to projects", query, rowSets)
}

// MoveField swaps the field's position with the neighbor in the given
// direction. The read-locate-swap sequence runs in one transaction under
// the gate's serializing lock, so no other move can interleave and a
// failure cannot commit only one side of the swap.
func (r *Repository) MoveField(ctx context.Context, fieldID int64, direction customfields.MoveDirection) error {
	const positionQuery = `SELECT position FROM tc_custom_fields WHERE id = ?`
	const countQuery = `SELECT COUNT(*) FROM tc_custom_fields`
	const occupantQuery = `SELECT id FROM tc_custom_fields WHERE position = ?`
	const swapQuery = `
		UPDATE tc_custom_fields
		SET position = CASE
			WHEN id = ? THEN ?
			WHEN id = ? THEN ?
		END
		WHERE id IN (?, ?)
	`

	return r.gate.WithTx(ctx, "move custom field", func(tx *safedb.Tx) error {
		var current int
		found, err := tx.QueryRow(positionQuery, []any{fieldID}, &current)
		if err != nil {
			return err
		}
		if !found {
			return customfields.ErrFieldNotFound
		}

		var total int
		if _, err := tx.QueryRow(countQuery, nil, &total); err != nil {
			return err
		}

		target := current + 1
		if direction == customfields.MoveUp {
			target = current - 1
		}

		// Moving the first field up or the last field down is rejected,
		// not clamped.
		if target < 1 || target > total {
			return customfields.ErrInvalidMove
		}

		var targetID int64
		found, err = tx.QueryRow(occupantQuery, []any{target}, &targetID)
		if err != nil {
			return err
		}
		// A gap at the target position fails the move; the store does not
		// renumber on its own.
		if !found {
			return customfields.ErrInvalidMove
		}

		if _, err := tx.Exec(swapQuery,
			fieldID, target, targetID, current, fieldID, targetID); err != nil {
			return err
		}
		return nil
	})
}

// ListAllFields returns every custom field ordered by position. Non-global
// fields carry their resolved assigned projects.
func (r *Repository) ListAllFields(ctx context.Context) ([]domain.CustomField, error) {
	const query = `
		SELECT
			cf.id,
			cf.field_name,
			cf.description,
			cf.system_name,
			ft.name AS field_type_name,
			cf.entry_type,
			cf.enabled,
			cf.position,
			cf.is_required,
			cf.default_value,
			cf.applies_to_all_projects
		FROM tc_custom_fields AS cf
		LEFT JOIN tc_custom_field_types AS ft ON cf.field_type_id = ft.id
		ORDER BY cf.position
	`

	fields := make([]domain.CustomField, 0)
	err := r.gate.Query(ctx, "list all custom fields", query, nil, func(rows *sql.Rows) error {
		var field domain.CustomField
		if err := rows.Scan(
			&field.ID,
			&field.FieldName,
			&field.Description,
			&field.SystemName,
			&field.FieldType,
			&field.EntryType,
			&field.Enabled,
			&field.Position,
			&field.IsRequired,
			&field.DefaultValue,
			&field.AppliesToAllProjects,
		); err != nil {
			return err
		}
		fields = append(fields, field)
		return nil
	})
	if err != nil {
		return nil, err
	}

	assigned, err := r.assignedProjects(ctx)
	if err != nil {
		return nil, err
	}

	for i := range fields {
		if !fields[i].AppliesToAllProjects {
			fields[i].AssignedProjects = assigned[fields[i].ID]
		}
	}
	return fields, nil
}

// assignedProjects resolves every field-to-project link in one pass. Each
// project name travels as its own column; names are unconstrained TEXT and
// must never be reassembled out of a concatenated blob.
func (r *Repository) assignedProjects(ctx context.Context) (map[int64][]domain.ProjectRef, error) {
	const query = `
		SELECT cfp.field_id, p.id, p.name
		FROM tc_custom_field_projects AS cfp
		JOIN prj_projects AS p ON cfp.project_id = p.id
		ORDER BY cfp.field_id, p.id
	`

	assigned := make(map[int64][]domain.ProjectRef)
	err := r.gate.Query(ctx, "list custom field projects", query, nil, func(rows *sql.Rows) error {
		var fieldID int64
		var ref domain.ProjectRef
		if err := rows.Scan(&fieldID, &ref.ID, &ref.Name); err != nil {
			return err
		}
		assigned[fieldID] = append(assigned[fieldID], ref)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return assigned, nil
}

// ListFieldsForProject returns global fields plus fields explicitly
// assigned to the project, ordered by position.
func (r *Repository) ListFieldsForProject(ctx context.Context, projectID int64) ([]domain.CustomField, error) {
	const query = `
		SELECT
			cf.id,
			cf.field_name,
			cf.description,
			cf.system_name,
			ft.name AS field_type_name,
			cf.entry_type,
			cf.enabled,
			cf.position,
			cf.is_required,
			cf.default_value,
			cf.applies_to_all_projects
		FROM tc_custom_fields AS cf
		LEFT JOIN tc_custom_field_projects AS cfp
			ON cf.id = cfp.field_id AND cfp.project_id = ?
		LEFT JOIN tc_custom_field_types AS ft ON cf.field_type_id = ft.id
		WHERE cf.applies_to_all_projects = 1 OR cfp.project_id IS NOT NULL
		ORDER BY cf.position
	`

	fields := make([]domain.CustomField, 0)
	err := r.gate.Query(ctx, "list project custom fields", query, []any{projectID}, func(rows *sql.Rows) error {
		var field domain.CustomField
		if err := rows.Scan(
			&field.ID,
			&field.FieldName,
			&field.Description,
			&field.SystemName,
			&field.FieldType,
			&field.EntryType,
			&field.Enabled,
			&field.Position,
			&field.IsRequired,
			&field.DefaultValue,
			&field.AppliesToAllProjects,
		); err != nil {
			return err
		}
		fields = append(fields, field)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fields, nil
}
