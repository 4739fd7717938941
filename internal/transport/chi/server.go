// Package chi exposes the book catalog over HTTP.
package chi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bookstore/internal/db"
	"github.com/kailas-cloud/bookstore/internal/domain"
	"github.com/kailas-cloud/bookstore/internal/domain/aggregate"
	"github.com/kailas-cloud/bookstore/internal/domain/document"
	"github.com/kailas-cloud/bookstore/internal/domain/index"
	"github.com/kailas-cloud/bookstore/internal/domain/query/filter"
	"github.com/kailas-cloud/bookstore/internal/domain/query/sortspec"
	"github.com/kailas-cloud/bookstore/internal/usecase/bookstore"
	"github.com/kailas-cloud/bookstore/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/bookstore/internal/usecase/health"
)

const (
	defaultPageSize   = 20
	defaultTopAuthors = 1
)

// Server serves the catalog HTTP API.
type Server struct {
	catalog         *catalog.Executor
	health          *healthuc.Service
	logger          *zap.Logger
	defaultPageSize int64
	maxPageSize     int64
	topAuthors      int64
	errorHandlers   []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(exec *catalog.Executor, health *healthuc.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		catalog:         exec,
		health:          health,
		logger:          logger,
		defaultPageSize: defaultPageSize,
		topAuthors:      defaultTopAuthors,
	}
	s.errorHandlers = []errorHandler{
		invalidQueryHandler,
		sentinelHandler(domain.ErrNoMatch, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrConstraintViolation, http.StatusConflict, ErrorCodeConstraintViolation),
		sentinelHandler(db.ErrIndexExists, http.StatusConflict, ErrorCodeConstraintViolation),
		sentinelHandler(domain.ErrPlanUnavailable, http.StatusUnprocessableEntity, ErrorCodePlanUnavailable),
	}
	return s
}

// WithPagination sets the default and maximum page size of GET /books.
func (s *Server) WithPagination(defaultSize, maxSize int) *Server {
	if defaultSize > 0 {
		s.defaultPageSize = int64(defaultSize)
	}
	if maxSize > 0 {
		s.maxPageSize = int64(maxSize)
	}
	return s
}

// WithTopAuthors sets the default number of rows of GET /stats/authors/top.
func (s *Server) WithTopAuthors(n int) *Server {
	if n > 0 {
		s.topAuthors = int64(n)
	}
	return s
}

// Mount registers the API routes on r.
func (s *Server) Mount(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/books", func(r chi.Router) {
		r.Get("/", s.ListBooks)
		r.Delete("/{title}", s.DeleteBook)
		r.Patch("/{title}/price", s.UpdatePrice)
	})
	r.Route("/stats", func(r chi.Router) {
		r.Get("/genres/average-price", s.GenreAverages)
		r.Get("/authors/top", s.TopAuthors)
		r.Get("/decades", s.Decades)
	})
	r.Post("/indexes", s.CreateIndex)
	r.Get("/explain", s.Explain)
}

// ListBooks handles GET /books.
func (s *Server) ListBooks(w http.ResponseWriter, r *http.Request) {
	q, err := parseBookQuery(r.URL.Query(), s.defaultPageSize, s.maxPageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	docs, err := s.findBooks(r, q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BooksResponse{Items: docs, Count: len(docs)})
}

// findBooks picks the catalog operation matching the query shape.
func (s *Server) findBooks(r *http.Request, q bookQuery) ([]document.Document, error) {
	ctx := r.Context()
	switch {
	case !q.projection.IsZero():
		return s.catalog.FindProjected(ctx, q.filter, q.projection)
	case q.paged:
		return s.catalog.FindPage(ctx, q.filter, q.sort, q.page)
	case !q.sort.IsZero():
		return s.catalog.FindSorted(ctx, q.filter, q.sort)
	}

	switch len(q.conds) {
	case 0:
		return s.catalog.FindPage(ctx, filter.All(), sortspec.Spec{}, q.page)
	case 1:
		c := q.conds[0]
		if c.Kind() == filter.KindEq {
			return s.catalog.FindByField(ctx, c.Field(), c.Value())
		}
		return s.catalog.FindByComparison(ctx, c.Field(), string(c.Op()), c.Value())
	default:
		return s.catalog.FindByConjunction(ctx, q.conds)
	}
}

// UpdatePrice handles PATCH /books/{title}/price.
func (s *Server) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	var req UpdatePriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Price == nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "price is required")
		return
	}

	f, err := filter.Eq(document.FieldTitle, chi.URLParam(r, "title"))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	res, err := s.catalog.UpdateOneField(r.Context(), f, document.FieldPrice, *req.Price)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if res.NoMatch() {
		s.handleDomainError(w, domain.ErrNoMatch)
		return
	}
	writeJSON(w, http.StatusOK, UpdateResponse{Matched: res.Matched, Modified: res.Modified})
}

// DeleteBook handles DELETE /books/{title}.
func (s *Server) DeleteBook(w http.ResponseWriter, r *http.Request) {
	f, err := filter.Eq(document.FieldTitle, chi.URLParam(r, "title"))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	deleted, err := s.catalog.DeleteOne(r.Context(), f)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if deleted == 0 {
		s.handleDomainError(w, domain.ErrNoMatch)
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Deleted: deleted})
}

// GenreAverages handles GET /stats/genres/average-price.
func (s *Server) GenreAverages(w http.ResponseWriter, r *http.Request) {
	rows, ok := s.aggregate(w, r, aggregate.AveragePriceByGenre)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, GenreAveragesResponse{Items: bookstore.GenreAverages(rows)})
}

// TopAuthors handles GET /stats/authors/top?limit=N.
func (s *Server) TopAuthors(w http.ResponseWriter, r *http.Request) {
	n := s.topAuthors
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := parsePositive(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "limit: "+err.Error())
			return
		}
		n = v
	}

	rows, ok := s.aggregate(w, r, func() (aggregate.Pipeline, error) { return aggregate.TopAuthors(n) })
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, TopAuthorsResponse{Items: bookstore.AuthorCounts(rows)})
}

// Decades handles GET /stats/decades.
func (s *Server) Decades(w http.ResponseWriter, r *http.Request) {
	rows, ok := s.aggregate(w, r, aggregate.CountByDecade)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, DecadesResponse{Items: bookstore.DecadeCounts(rows)})
}

func (s *Server) aggregate(
	w http.ResponseWriter, r *http.Request, build func() (aggregate.Pipeline, error),
) ([]document.Document, bool) {
	p, err := build()
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return nil, false
	}
	rows, err := s.catalog.Aggregate(r.Context(), p)
	if err != nil {
		s.handleDomainError(w, err)
		return nil, false
	}
	return rows, true
}

// CreateIndex handles POST /indexes.
func (s *Server) CreateIndex(w http.ResponseWriter, r *http.Request) {
	var req CreateIndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	keys, err := parseKeys(joinFields(req.Fields))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "fields: "+err.Error())
		return
	}
	var opts []index.Option
	if req.Name != "" {
		opts = append(opts, index.WithName(req.Name))
	}
	if req.Unique {
		opts = append(opts, index.Unique())
	}
	spec, err := index.New(keys, opts...)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	name, err := s.catalog.CreateIndex(r.Context(), spec)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateIndexResponse{Name: name})
}

// Explain handles GET /explain with the same filter parameters as GET /books.
func (s *Server) Explain(w http.ResponseWriter, r *http.Request) {
	q, err := parseBookQuery(r.URL.Query(), s.defaultPageSize, s.maxPageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	stats, err := s.catalog.Explain(r.Context(), q.filter)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ExplainResponse{Filter: q.filter.String(), Stats: stats})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
