package chi

import (
	"github.com/kailas-cloud/bookstore/internal/domain/document"
	"github.com/kailas-cloud/bookstore/internal/domain/explain"
	"github.com/kailas-cloud/bookstore/internal/usecase/bookstore"
)

// ErrorCode is a machine-readable error code.
type ErrorCode string

// Error codes returned in ErrorResponse.
const (
	ErrorCodeBadRequest          ErrorCode = "bad_request"
	ErrorCodeInvalidQuery        ErrorCode = "invalid_query"
	ErrorCodeUnauthorized        ErrorCode = "unauthorized"
	ErrorCodeNotFound            ErrorCode = "not_found"
	ErrorCodeConstraintViolation ErrorCode = "constraint_violation"
	ErrorCodePlanUnavailable     ErrorCode = "plan_unavailable"
	ErrorCodeInternalError       ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// BooksResponse lists documents.
type BooksResponse struct {
	Items []document.Document `json:"items"`
	Count int                 `json:"count"`
}

// UpdatePriceRequest is the body of PATCH /books/{title}/price.
type UpdatePriceRequest struct {
	Price *float64 `json:"price"`
}

// UpdateResponse reports an update.
type UpdateResponse struct {
	Matched  int64 `json:"matched"`
	Modified int64 `json:"modified"`
}

// DeleteResponse reports a delete.
type DeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

// CreateIndexRequest is the body of POST /indexes. A field prefixed with
// "-" is indexed descending.
type CreateIndexRequest struct {
	Fields []string `json:"fields"`
	Name   string   `json:"name,omitempty"`
	Unique bool     `json:"unique,omitempty"`
}

// CreateIndexResponse returns the created index name.
type CreateIndexResponse struct {
	Name string `json:"name"`
}

// GenreAveragesResponse lists average prices per genre.
type GenreAveragesResponse struct {
	Items []bookstore.GenreAverage `json:"items"`
}

// TopAuthorsResponse lists authors by book count.
type TopAuthorsResponse struct {
	Items []bookstore.AuthorCount `json:"items"`
}

// DecadesResponse lists book counts per decade.
type DecadesResponse struct {
	Items []bookstore.DecadeCount `json:"items"`
}

// ExplainResponse wraps execution statistics.
type ExplainResponse struct {
	Filter string        `json:"filter"`
	Stats  explain.Stats `json:"stats"`
}

// HealthResponse reports service health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
