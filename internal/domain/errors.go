package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuery signals a malformed operation input.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrEmptyConjunction signals a conjunction without filters.
	ErrEmptyConjunction = errors.New("conjunction requires at least one filter")
	// ErrConstraintViolation signals a single-document write that touched more than one document.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrPlanUnavailable signals that the store produced no execution statistics.
	ErrPlanUnavailable = errors.New("execution statistics unavailable")
	// ErrNoMatch signals that a write matched nothing (used by outer layers; the catalog reports zero counts instead).
	ErrNoMatch = errors.New("no document matched")
)

// Operation names carried by QueryError.
const (
	OpFindByField       = "findByField"
	OpFindByComparison  = "findByComparison"
	OpFindByConjunction = "findByConjunction"
	OpUpdateOneField    = "updateOneField"
	OpDeleteOne         = "deleteOne"
	OpFindProjected     = "findProjected"
	OpFindSorted        = "findSorted"
	OpFindPage          = "findPage"
	OpAggregate         = "aggregate"
	OpCreateIndex       = "createIndex"
	OpExplain           = "explain"
	OpConnect           = "connect"
	OpClose             = "close"
)

// QueryError is the single error kind returned by catalog operations.
type QueryError struct {
	Op    string
	Input string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s(%s): %v", e.Op, e.Input, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// NewQueryError creates a QueryError; input is rendered with %v.
func NewQueryError(op string, input any, err error) error {
	return &QueryError{Op: op, Input: fmt.Sprint(input), Err: err}
}

// AsQueryError extracts a QueryError from err's chain.
func AsQueryError(err error) (*QueryError, bool) {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe, true
	}
	return nil, false
}
