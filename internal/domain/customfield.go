package domain

// FieldType represents the data type of a test-case custom field.
type FieldType string

// Custom field types. Each maps to a row in tc_custom_field_types that
// declares whether the type supports default values and required flags.
const (
	FieldTypeCheckbox FieldType = "Checkbox"
	FieldTypeDate     FieldType = "Date"
	FieldTypeDropdown FieldType = "Dropdown"
	FieldTypeInteger  FieldType = "Integer"
	FieldTypeString   FieldType = "String"
	FieldTypeText     FieldType = "Text"
	FieldTypeURL      FieldType = "Url"
	FieldTypeUser     FieldType = "User"
)

// IsValid checks if the field type is one of the known types.
func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeCheckbox, FieldTypeDate, FieldTypeDropdown, FieldTypeInteger,
		FieldTypeString, FieldTypeText, FieldTypeURL, FieldTypeUser:
		return true
	}
	return false
}

// EntryType distinguishes built-in fields from user-defined ones.
type EntryType string

// Entry types.
const (
	EntrySystem EntryType = "system"
	EntryUser   EntryType = "user"
)

// ProjectRef is a resolved (id, name) pair for a project a custom field is
// assigned to.
type ProjectRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CustomField represents a test-case custom field definition.
//
// Position is the 1-based rank of the field in its display ordering. The
// store guarantees that the positions of N fields are exactly {1..N}: unique,
// contiguous, no gaps. Callers never set Position directly.
type CustomField struct {
	ID                   int64        `json:"id"`
	FieldName            string       `json:"field_name"`
	Description          string       `json:"description"`
	SystemName           string       `json:"system_name"`
	FieldType            FieldType    `json:"field_type"`
	EntryType            EntryType    `json:"entry_type"`
	Enabled              bool         `json:"enabled"`
	Position             int          `json:"position"`
	IsRequired           bool         `json:"is_required"`
	DefaultValue         string       `json:"default_value"`
	AppliesToAllProjects bool         `json:"applies_to_all_projects"`
	AssignedProjects     []ProjectRef `json:"assigned_projects,omitempty"`
}

// FieldTypeInfo is the resolved capability triple for a field type.
type FieldTypeInfo struct {
	ID                   int64
	SupportsDefaultValue bool
	SupportsIsRequired   bool
}

// Project represents a project in the content management store.
type Project struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
