package provenance

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrConflict marks an attempt to record two ranges under one ID.
	ErrConflict = errors.New("provenance conflict")
	// ErrTemplate marks every template contract violation.
	ErrTemplate = errors.New("template contract violation")
)

func conflictError(id ID, have, got Lines) error {
	err := errors.AssertionFailedf("duplicate fragment %s: already at lines %s, got %s", id, have, got)
	return errors.Mark(err, ErrConflict)
}

// TemplateReason says which part of the template contract was broken.
type TemplateReason uint8

const (
	// MissingSection: the template names a placeholder nobody generated.
	MissingSection TemplateReason = iota + 1
	// UnusedSection: a generated section has no placeholder.
	UnusedSection
	// DuplicatePlaceholder: the template uses one placeholder twice.
	DuplicatePlaceholder
	// UnterminatedPlaceholder: the template ends inside a placeholder name.
	UnterminatedPlaceholder
)

func (r TemplateReason) String() string {
	switch r {
	case MissingSection:
		return "missing section"
	case UnusedSection:
		return "unused section"
	case DuplicatePlaceholder:
		return "duplicate placeholder"
	case UnterminatedPlaceholder:
		return "unterminated placeholder"
	}
	return "unknown"
}

// TemplateError reports a mismatch between a template and the sections given to Expand.
type TemplateError struct {
	Reason TemplateReason
	Name   string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template: %s %q", e.Reason, e.Name)
}

// Is lets errors.Is(err, ErrTemplate) match any TemplateError.
func (e *TemplateError) Is(target error) bool {
	return target == ErrTemplate
}
