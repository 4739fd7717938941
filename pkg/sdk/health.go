package bookstore

import (
	"context"

	"github.com/samber/lo"

	healthuc "github.com/kailas-cloud/bookstore/internal/usecase/health"
)

// HealthStatus represents the database health.
type HealthStatus struct {
	Status string            // "ok", "error"
	Checks map[string]string // component → "ok"/"error"
}

// Health checks the database.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.health.Check(ctx)
	return HealthStatus{
		Status: string(report.Status),
		Checks: lo.MapValues(report.Checks, func(v healthuc.CheckResult, _ string) string { return string(v) }),
	}
}
