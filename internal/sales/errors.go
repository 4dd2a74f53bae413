package sales

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a sale with the given ID is not found.
var ErrNotFound = errors.New("sale not found")

// ErrEmptyID is returned when trying to store a sale with an empty ID.
var ErrEmptyID = errors.New("empty sale ID")

// ErrDuplicateSaleNumber is returned by storage when another sale already
// holds the same sale number.
var ErrDuplicateSaleNumber = errors.New("sale number already exists")

// Violation is a single failed rule.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports invalid input. It carries every failed rule, not
// only the first one.
type ValidationError struct {
	Entity     string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return e.Entity + " validation failed: " + strings.Join(msgs, ", ")
}

// Messages returns the violation messages in rule order.
func (e *ValidationError) Messages() []string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return msgs
}

func newValidationError(entity string, violations []Violation) error {
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Entity: entity, Violations: violations}
}

// DomainErrorKind identifies which business rule was broken.
type DomainErrorKind string

const (
	KindAlreadyCancelled      DomainErrorKind = "already_cancelled"
	KindQuantityLimitExceeded DomainErrorKind = "quantity_limit_exceeded"
)

// DomainError reports a business rule violation tied to the sale's state.
type DomainError struct {
	Kind    DomainErrorKind
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError of the same kind, so the sentinels below work
// with errors.Is regardless of the message.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrAlreadyCancelled      = &DomainError{Kind: KindAlreadyCancelled, Message: "sale is already cancelled"}
	ErrQuantityLimitExceeded = &DomainError{Kind: KindQuantityLimitExceeded, Message: "quantity limit exceeded"}
)
