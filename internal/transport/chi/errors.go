package chi

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bookstore/internal/db"
	"github.com/kailas-cloud/bookstore/internal/domain"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyConjunction,
		domain.ErrInvalidQuery,
		domain.ErrNoMatch,
		domain.ErrConstraintViolation,
		domain.ErrPlanUnavailable,
		db.ErrIndexExists,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// invalidQueryHandler reports malformed input with the failing operation and input.
func invalidQueryHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrInvalidQuery) && !errors.Is(err, domain.ErrEmptyConjunction) {
		return false
	}
	if qe, ok := domain.AsQueryError(err); ok {
		msg = qe.Error()
	}
	writeError(w, http.StatusBadRequest, ErrorCodeInvalidQuery, msg)
	return true
}

var errNotPositive = errors.New("must be a positive integer")

func parsePositive(raw string) (int64, error) {
	n, err := parseDecimal(raw)
	if err != nil || n <= 0 {
		return 0, errNotPositive
	}
	return n, nil
}

func joinFields(fields []string) string {
	return strings.Join(fields, ",")
}
