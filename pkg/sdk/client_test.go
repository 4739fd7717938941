package bookstore

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func newMemoryClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	c, err := New(context.Background(), append([]Option{WithMemory()}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	if _, err := c.Seed(context.Background(), SeedOptions{Fixtures: true}); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return c
}

func TestNew_NoDriver(t *testing.T) {
	_, err := New(context.Background())
	if err == nil {
		t.Fatal("expected error when no store provided")
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := &clientConfig{driver: "unknown"}
	_, err := createStore(context.Background(), cfg)
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}

	WithMongo("mongodb://localhost:27017", "plp_bookstore", "books").apply(cfg)
	if cfg.driver != driverMongo {
		t.Errorf("driver = %q, want mongo", cfg.driver)
	}
	if cfg.uri != "mongodb://localhost:27017" || cfg.database != "plp_bookstore" || cfg.collection != "books" {
		t.Errorf("mongo target = %s %s.%s", cfg.uri, cfg.database, cfg.collection)
	}

	WithAppName("reports").apply(cfg)
	if cfg.appName != "reports" {
		t.Errorf("appName = %q, want reports", cfg.appName)
	}

	WithTimeouts(3*time.Second, 7*time.Second).apply(cfg)
	if cfg.connectTimeout != 3*time.Second || cfg.operationTimeout != 7*time.Second {
		t.Errorf("timeouts = (%v, %v), want (3s, 7s)", cfg.connectTimeout, cfg.operationTimeout)
	}

	cfg2 := &clientConfig{}
	WithMemory().apply(cfg2)
	if cfg2.driver != driverMemory {
		t.Errorf("driver = %q, want memory", cfg2.driver)
	}

	logger := slog.Default()
	WithLogger(logger).apply(cfg2)
	if cfg2.logger != logger {
		t.Error("expected logger to be set")
	}

	reg := prometheus.NewRegistry()
	WithPrometheus(reg).apply(cfg2)
	if cfg2.metricsReg != reg {
		t.Error("expected metricsReg to be set")
	}
}

func TestClient_Close_NilStore(t *testing.T) {
	c := &Client{store: nil}
	if err := c.Close(context.Background()); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestClient_Find(t *testing.T) {
	c := newMemoryClient(t)
	ctx := context.Background()

	tests := []struct {
		name string
		b    *FilterBuilder
		want int
	}{
		{"equality", Where().Eq(FieldGenre, "Fantasy"), 6},
		{"comparison", Where().Gt(FieldPublishedYear, 2012), 8},
		{"conjunction", Where().Eq(FieldGenre, "Fantasy").Gt(FieldPublishedYear, 2010), 3},
		{"no match", Where().Eq(FieldAuthor, "Nobody"), 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			books, err := c.Find(ctx, tc.b)
			if err != nil {
				t.Fatalf("Find: %v", err)
			}
			if len(books) != tc.want {
				t.Errorf("got %d books, want %d", len(books), tc.want)
			}
		})
	}
}

func TestClient_Find_NoConditions(t *testing.T) {
	c := newMemoryClient(t)

	_, err := c.Find(context.Background(), Where())
	if !errors.Is(err, ErrEmptyConjunction) {
		t.Fatalf("err = %v, want ErrEmptyConjunction", err)
	}
	var qe *QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("expected *QueryError, got %T", err)
	}
}

func TestClient_Find_InvalidField(t *testing.T) {
	c := newMemoryClient(t)

	_, err := c.Find(context.Background(), Where().Eq("", "x"))
	if !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("err = %v, want ErrInvalidQuery", err)
	}
}

func TestClient_List(t *testing.T) {
	c := newMemoryClient(t)
	ctx := context.Background()

	books, err := c.List(ctx, 1, 5, "-"+FieldPrice)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(books) != 5 {
		t.Fatalf("got %d books, want 5", len(books))
	}
	if books[0].Title != "Project Hail Mary" {
		t.Errorf("first = %q, want Project Hail Mary", books[0].Title)
	}

	last, err := c.List(ctx, 4, 5)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(last) != 1 {
		t.Errorf("last page has %d books, want 1", len(last))
	}

	if _, err := c.List(ctx, 0, 5); !errors.Is(err, ErrInvalidQuery) {
		t.Errorf("page 0: err = %v, want ErrInvalidQuery", err)
	}
}

func TestClient_UpdateAndDelete(t *testing.T) {
	c := newMemoryClient(t)
	ctx := context.Background()

	res, err := c.UpdatePrice(ctx, "Dune", 9.99)
	if err != nil {
		t.Fatalf("UpdatePrice: %v", err)
	}
	if res.Matched != 1 || res.Modified != 1 {
		t.Errorf("result = %+v, want 1/1", res)
	}

	res, err = c.UpdatePrice(ctx, "Missing", 1)
	if err != nil {
		t.Fatalf("UpdatePrice: %v", err)
	}
	if !res.NoMatch() {
		t.Errorf("expected no match, got %+v", res)
	}

	n, err := c.Delete(ctx, "Dune")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
	if n, _ := c.Delete(ctx, "Dune"); n != 0 {
		t.Errorf("second delete = %d, want 0", n)
	}
}

func TestClient_IndexAndExplain(t *testing.T) {
	c := newMemoryClient(t)
	ctx := context.Background()

	before, err := c.Explain(ctx, Where().Eq(FieldTitle, "Dune"))
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if before.Stage != "COLLSCAN" {
		t.Errorf("stage before index = %q, want COLLSCAN", before.Stage)
	}

	name, err := c.CreateIndex(ctx, FieldTitle)
	if err != nil {
		t.Fatalf("CreateIndex: %v", err)
	}
	if name != "title_1" {
		t.Errorf("name = %q, want title_1", name)
	}

	after, err := c.Explain(ctx, Where().Eq(FieldTitle, "Dune"))
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if after.Stage != "IXSCAN" || after.TotalDocsExamined != 1 {
		t.Errorf("stats after index = %+v, want IXSCAN examining 1", after)
	}
}

func TestClient_Aggregations(t *testing.T) {
	c := newMemoryClient(t)
	ctx := context.Background()

	avgs, err := c.AveragePriceByGenre(ctx)
	if err != nil {
		t.Fatalf("AveragePriceByGenre: %v", err)
	}
	if len(avgs) != 5 {
		t.Errorf("got %d genres, want 5", len(avgs))
	}

	top, err := c.TopAuthors(ctx, 1)
	if err != nil {
		t.Fatalf("TopAuthors: %v", err)
	}
	if len(top) != 1 || top[0].Author != "Andy Weir" || top[0].TotalBooks != 2 {
		t.Errorf("top = %+v, want [{Andy Weir 2}]", top)
	}

	decades, err := c.CountByDecade(ctx)
	if err != nil {
		t.Fatalf("CountByDecade: %v", err)
	}
	if len(decades) != 8 {
		t.Errorf("got %d decades, want 8", len(decades))
	}
}

func TestClient_Walkthrough(t *testing.T) {
	c := newMemoryClient(t)

	report, err := c.Walkthrough(context.Background(), DefaultWalkthroughParams())
	if err != nil {
		t.Fatalf("Walkthrough: %v", err)
	}
	if len(report.ByGenre) != 6 {
		t.Errorf("by genre = %d, want 6", len(report.ByGenre))
	}
	if report.Deleted != 1 {
		t.Errorf("deleted = %d, want 1", report.Deleted)
	}
	if report.TitlePlan.Stage != "IXSCAN" {
		t.Errorf("title plan = %q, want IXSCAN", report.TitlePlan.Stage)
	}
}

func TestClient_Walkthrough_PartialParams(t *testing.T) {
	c := newMemoryClient(t)

	report, err := c.Walkthrough(context.Background(), WalkthroughParams{
		Genre:       "Mystery",
		DeleteTitle: "Dune",
	})
	if err != nil {
		t.Fatalf("Walkthrough: %v", err)
	}
	if len(report.ByGenre) != 3 {
		t.Errorf("by genre = %d, want 3 mysteries", len(report.ByGenre))
	}
	if report.Deleted != 1 {
		t.Errorf("deleted = %d, want 1", report.Deleted)
	}
	if len(report.Page) != 5 {
		t.Errorf("page = %d books, want default page size 5", len(report.Page))
	}
}

func TestDefaultWalkthroughParams(t *testing.T) {
	p := DefaultWalkthroughParams()
	if p.Genre != "Fantasy" || p.PageNumber != 2 || p.PageSize != 5 || p.NewPrice != 10.99 {
		t.Errorf("unexpected defaults: %+v", p)
	}
}

func TestClient_HealthAfterClose(t *testing.T) {
	c := newMemoryClient(t)
	ctx := context.Background()

	if got := c.Health(ctx); got.Status != "ok" || got.Checks["database"] != "ok" {
		t.Errorf("health = %+v, want ok", got)
	}
	if err := c.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := c.Health(ctx); got.Status != "error" {
		t.Errorf("health after close = %q, want error", got.Status)
	}
	if err := c.Ping(ctx); err == nil {
		t.Error("expected ping error after close")
	}
}

func TestClient_SeedGenerated(t *testing.T) {
	c, err := New(context.Background(), WithMemory())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := c.Seed(context.Background(), SeedOptions{Random: 4, Seed: 7})
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if res.Generated != 4 || len(res.IDs) != 4 {
		t.Errorf("result = %+v, want 4 generated", res)
	}
}

func TestObserver_NilSafe(t *testing.T) {
	var obs *observer
	obs.observe("test", time.Now(), nil)
	obs.observe("test", time.Now(), errors.New("err"))
}

func TestObserver_WithPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	obs.observe("find", time.Now().Add(-10*time.Millisecond), nil)
	obs.observe("find", time.Now(), errors.New("fail"))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	found := false
	for _, f := range families {
		if f.GetName() == "bookstore_sdk_operations_total" {
			found = true
			if len(f.GetMetric()) != 2 {
				t.Errorf("expected 2 metric samples, got %d", len(f.GetMetric()))
			}
		}
	}
	if !found {
		t.Error("bookstore_sdk_operations_total not found")
	}
}

func TestObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	second, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("second newObserver: %v", err)
	}
	if first.metrics.operations != second.metrics.operations {
		t.Error("expected the second observer to reuse the registered counter")
	}
}

func TestObserver_WithLogger(t *testing.T) {
	obs, err := newObserver(slog.Default(), nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	obs.observe("find", time.Now(), nil)
	obs.observe("find", time.Now(), errors.New("test error"))
}
