package bookstore

import "github.com/kailas-cloud/bookstore/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidQuery        = domain.ErrInvalidQuery
	ErrEmptyConjunction    = domain.ErrEmptyConjunction
	ErrConstraintViolation = domain.ErrConstraintViolation
	ErrPlanUnavailable     = domain.ErrPlanUnavailable
)

// QueryError is the error kind returned by catalog operations.
type QueryError = domain.QueryError
