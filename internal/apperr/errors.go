// Package apperr defines the typed error kinds returned by the template registry
// and policy factory. Callers branch on Kind, never on message text.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	Unauthorized               Kind = "UNAUTHORIZED"
	InvalidInput               Kind = "INVALID_INPUT"
	InvalidParameterValue      Kind = "INVALID_PARAMETER_VALUE"
	InvalidTemplateStatus      Kind = "INVALID_TEMPLATE_STATUS"
	NotFound                   Kind = "NOT_FOUND"
	UpdateTooSoon              Kind = "UPDATE_TOO_SOON"
	TemplateValidationFailed   Kind = "TEMPLATE_VALIDATION_FAILED"
	Overflow                   Kind = "OVERFLOW"
	Underflow                  Kind = "UNDERFLOW"
	DivisionByZero             Kind = "DIVISION_BY_ZERO"
	InvalidPaginationParams    Kind = "INVALID_PAGINATION_PARAMS"
	ThresholdTooLow            Kind = "THRESHOLD_TOO_LOW"
	GovernanceApprovalRequired Kind = "GOVERNANCE_APPROVAL_REQUIRED"
	Paused                     Kind = "PAUSED"
	Internal                   Kind = "INTERNAL"
)

// Issue is one finding of an aggregated validation run.
type Issue struct {
	Kind   Kind   `json:"kind"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type Error struct {
	Kind   Kind
	Field  string
	Reason string
	Issues []Issue
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Field != "" {
		fmt.Fprintf(&b, " (%s)", e.Field)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if len(e.Issues) > 0 {
		fmt.Fprintf(&b, " [%d issues]", len(e.Issues))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error carrying the same kind, so sentinels such as
// ErrNotFound work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Field == "" && t.Reason == ""
}

var (
	ErrUnauthorized               = &Error{Kind: Unauthorized}
	ErrInvalidInput               = &Error{Kind: InvalidInput}
	ErrInvalidParameterValue      = &Error{Kind: InvalidParameterValue}
	ErrInvalidTemplateStatus      = &Error{Kind: InvalidTemplateStatus}
	ErrNotFound                   = &Error{Kind: NotFound}
	ErrUpdateTooSoon              = &Error{Kind: UpdateTooSoon}
	ErrTemplateValidationFailed   = &Error{Kind: TemplateValidationFailed}
	ErrOverflow                   = &Error{Kind: Overflow}
	ErrUnderflow                  = &Error{Kind: Underflow}
	ErrDivisionByZero             = &Error{Kind: DivisionByZero}
	ErrInvalidPaginationParams    = &Error{Kind: InvalidPaginationParams}
	ErrThresholdTooLow            = &Error{Kind: ThresholdTooLow}
	ErrGovernanceApprovalRequired = &Error{Kind: GovernanceApprovalRequired}
	ErrPaused                     = &Error{Kind: Paused}
)

func New(kind Kind, field, reason string) *Error {
	return &Error{Kind: kind, Field: field, Reason: reason}
}

func Newf(kind Kind, field, format string, args ...any) *Error {
	return &Error{Kind: kind, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Wrap marks an infrastructure failure. Errors that already carry a kind pass through.
func Wrap(err error, reason string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: Internal, Reason: reason, Err: err}
}

// KindOf returns the kind carried by err, or Internal for foreign errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Aggregate collects issues and reports them as a single TemplateValidationFailed error.
type Aggregate struct {
	issues []Issue
}

func (a *Aggregate) Add(err error) {
	if err == nil {
		return
	}
	var e *Error
	if errors.As(err, &e) {
		if len(e.Issues) > 0 {
			a.issues = append(a.issues, e.Issues...)
			return
		}
		a.issues = append(a.issues, Issue{Kind: e.Kind, Field: e.Field, Reason: e.Reason})
		return
	}
	a.issues = append(a.issues, Issue{Kind: Internal, Reason: err.Error()})
}

func (a *Aggregate) Issues() []Issue { return a.issues }

// First returns the first recorded issue as a plain error, or nil.
func (a *Aggregate) First() error {
	if len(a.issues) == 0 {
		return nil
	}
	i := a.issues[0]
	return &Error{Kind: i.Kind, Field: i.Field, Reason: i.Reason}
}

// Err returns the aggregated failure, or nil when nothing was recorded.
func (a *Aggregate) Err() error {
	if len(a.issues) == 0 {
		return nil
	}
	return &Error{
		Kind:   TemplateValidationFailed,
		Reason: fmt.Sprintf("%d validation issues", len(a.issues)),
		Issues: append([]Issue(nil), a.issues...),
	}
}
