package model

// Status classifies the outcome of a structural validation.
type Status string

// Validation statuses. StatusValid is the only passing status; the others
// name the reason the modified file was rejected.
const (
	StatusValid            Status = "valid"
	StatusStructureChanged Status = "structure_changed"
	StatusSyntaxError      Status = "syntax_error"
	StatusValidationError  Status = "validation_error"
)

// ScopeKind identifies the kind of scope a docstring belongs to.
type ScopeKind string

const (
	ScopeModule   ScopeKind = "module"
	ScopeFunction ScopeKind = "function"
	ScopeClass    ScopeKind = "class"
)

// DocChange records one scope's docstring difference between two versions of
// a file. A nil Before means the docstring was added, a nil After that it was
// removed. Absent is distinct from empty.
type DocChange struct {
	Kind          ScopeKind
	QualifiedName string
	Before        *string
	After         *string
}

// ValidationOutcome is the result of comparing two versions of a file.
type ValidationOutcome struct {
	Passed     bool
	Status     Status
	Reason     string
	DocChanges []DocChange
}
