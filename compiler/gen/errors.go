package gen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/syssam/tabula/schema/annotation"
)

// Sentinel errors for common failure cases.
var (
	// ErrTranslation matches every translation error.
	ErrTranslation = errors.New("tabula: translation failed")
	// ErrInvalidConfig indicates a configuration error.
	ErrInvalidConfig = errors.New("tabula: invalid configuration")
)

// ErrorKind classifies translation errors.
type ErrorKind uint8

// Error kinds.
const (
	// PathError reports a nested path that is missing or does not denote
	// the expected fields.
	PathError ErrorKind = iota + 1
	// NameError reports an empty, reserved or redundant name.
	NameError
	// TypeError reports an unsupported or incompatible value or result type.
	TypeError
	// ValueError reports a value that fails to parse, or is null where null
	// is not allowed.
	ValueError
	// InapplicableConstraint reports a constraint that is not valid for the
	// resolved type of a field.
	InapplicableConstraint
	// UnsatisfiableConstraint reports a constraint anchored at an extremum
	// of its type.
	UnsatisfiableConstraint
	// ConflictingConstraints reports a merged constraint set that no value
	// satisfies.
	ConflictingConstraints
	// DefaultViolation reports a default value rejected by the constraints
	// of its field.
	DefaultViolation
	// MutualExclusion reports two annotations that cannot coexist.
	MutualExclusion
	// DuplicateAnnotation reports an annotation applied twice.
	DuplicateAnnotation
	// KeyDeductionFailure reports a table whose keys cannot be deduced.
	KeyDeductionFailure
	// ColumnAssignmentFailure reports fields that cannot be laid out.
	ColumnAssignmentFailure
	// NameCollision reports a table, field or key name used twice.
	NameCollision
	// IneligibleType reports a type that cannot be translated into a table.
	IneligibleType
	// ReferenceCycle reports a type that requires itself, directly or
	// through other types, before its translation is complete.
	ReferenceCycle
)

var kindErrs = [...]error{
	PathError:               errors.New("path error"),
	NameError:               errors.New("name error"),
	TypeError:               errors.New("type error"),
	ValueError:              errors.New("value error"),
	InapplicableConstraint:  errors.New("inapplicable constraint"),
	UnsatisfiableConstraint: errors.New("unsatisfiable constraint"),
	ConflictingConstraints:  errors.New("conflicting constraints"),
	DefaultViolation:        errors.New("default violation"),
	MutualExclusion:         errors.New("mutually exclusive annotations"),
	DuplicateAnnotation:     errors.New("duplicate annotation"),
	KeyDeductionFailure:     errors.New("key deduction failure"),
	ColumnAssignmentFailure: errors.New("column assignment failure"),
	NameCollision:           errors.New("name collision"),
	IneligibleType:          errors.New("ineligible type"),
	ReferenceCycle:          errors.New("reference cycle"),
}

// Per-kind sentinels, usable with errors.Is.
var (
	ErrPath                    = kindErrs[PathError]
	ErrName                    = kindErrs[NameError]
	ErrType                    = kindErrs[TypeError]
	ErrValue                   = kindErrs[ValueError]
	ErrInapplicableConstraint  = kindErrs[InapplicableConstraint]
	ErrUnsatisfiableConstraint = kindErrs[UnsatisfiableConstraint]
	ErrConflictingConstraints  = kindErrs[ConflictingConstraints]
	ErrDefaultViolation        = kindErrs[DefaultViolation]
	ErrMutualExclusion         = kindErrs[MutualExclusion]
	ErrDuplicateAnnotation     = kindErrs[DuplicateAnnotation]
	ErrKeyDeduction            = kindErrs[KeyDeductionFailure]
	ErrColumnAssignment        = kindErrs[ColumnAssignmentFailure]
	ErrNameCollision           = kindErrs[NameCollision]
	ErrIneligibleType          = kindErrs[IneligibleType]
	ErrReferenceCycle          = kindErrs[ReferenceCycle]
)

// String implements the fmt.Stringer interface.
func (k ErrorKind) String() string {
	if k > 0 && int(k) < len(kindErrs) {
		return kindErrs[k].Error()
	}
	return fmt.Sprintf("ErrorKind(%d)", k)
}

// Error is a translation diagnostic. Member-scope errors name the member and
// optionally a nested path; type-scope errors leave both empty.
type Error struct {
	Kind        ErrorKind
	Type        string   // Source type name.
	Member      string   // Member name, empty for type-scope errors.
	Path        string   // Nested path within the member, if any.
	Annotations []string // Display names of the annotations involved.
	Reason      string
	Cause       error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("tabula: ")
	b.WriteString(e.Kind.String())
	b.WriteString(" in type ")
	b.WriteString(e.Type)
	if e.Member != "" {
		b.WriteString("\n  member: ")
		b.WriteString(e.Member)
		if e.Path != "" {
			fmt.Fprintf(&b, " (path %q)", e.Path)
		}
	}
	if len(e.Annotations) > 0 {
		b.WriteString("\n  annotation: ")
		for i, a := range e.Annotations {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("[" + a + "]")
		}
	}
	if e.Reason != "" {
		b.WriteString("\n  reason: ")
		b.WriteString(e.Reason)
	}
	if e.Cause != nil {
		b.WriteString("\n  caused by: ")
		b.WriteString(strings.ReplaceAll(e.Cause.Error(), "\n", "\n  "))
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches ErrTranslation or the sentinel of
// the error kind.
func (e *Error) Is(target error) bool {
	return target == ErrTranslation || (e.Kind > 0 && int(e.Kind) < len(kindErrs) && target == kindErrs[e.Kind])
}

// IsTranslationError reports whether the error is a translation Error.
func IsTranslationError(err error) bool {
	var terr *Error
	return errors.As(err, &terr)
}

// KindOf returns the kind of the outermost translation error in err.
func KindOf(err error) (ErrorKind, bool) {
	var terr *Error
	if !errors.As(err, &terr) {
		return 0, false
	}
	return terr.Kind, true
}

// memberScope builds diagnostics for one member of a type.
type memberScope struct {
	typ    string
	member string
}

func (s memberScope) errorf(kind ErrorKind, path string, kinds []annotation.Kind, format string, args ...any) *Error {
	return &Error{
		Kind:        kind,
		Type:        s.typ,
		Member:      s.member,
		Path:        path,
		Annotations: annotation.Names(kinds...),
		Reason:      fmt.Sprintf(format, args...),
	}
}

// typeError builds a type-scope diagnostic. kinds may be empty for failures
// that no single annotation caused.
func typeError(typ string, kind ErrorKind, kinds []annotation.Kind, format string, args ...any) *Error {
	return &Error{
		Kind:        kind,
		Type:        typ,
		Annotations: annotation.Names(kinds...),
		Reason:      fmt.Sprintf(format, args...),
	}
}

// annots is shorthand for an annotation kind list.
func annots(ks ...annotation.Kind) []annotation.Kind { return ks }

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("tabula: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("tabula: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}
