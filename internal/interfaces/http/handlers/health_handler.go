package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/druglike/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/druglike/pkg/errors"
	"github.com/turtacn/druglike/pkg/types/common"
)

// HealthChecker is implemented by components that can report their health.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

type checkerFunc struct {
	name     string
	fn       func(ctx context.Context) error
	optional bool
}

func (c checkerFunc) Name() string                    { return c.name }
func (c checkerFunc) Check(ctx context.Context) error { return c.fn(ctx) }

// CheckerFunc adapts fn to a HealthChecker.  A failure marks the service down.
func CheckerFunc(name string, fn func(ctx context.Context) error) HealthChecker {
	return checkerFunc{name: name, fn: fn}
}

// OptionalChecker adapts fn to a HealthChecker whose failure only degrades
// the service, e.g. the descriptor cache.
func OptionalChecker(name string, fn func(ctx context.Context) error) HealthChecker {
	return checkerFunc{name: name, fn: fn, optional: true}
}

func isOptional(c HealthChecker) bool {
	cf, ok := c.(checkerFunc)
	return ok && cf.optional
}

// DatasetChecker reports down until the dataset has been loaded once.
func DatasetChecker(svc ScreeningService) HealthChecker {
	return CheckerFunc("dataset", func(context.Context) error {
		if !svc.Ready() {
			return errors.New(errors.ErrCodeServiceUnavailable, "dataset not loaded")
		}
		return nil
	})
}

// HealthHandler serves liveness, readiness and detailed health.
type HealthHandler struct {
	checkers []HealthChecker
	version  string
	startAt  time.Time
	metrics  *prometheus.AppMetrics
	timeout  time.Duration
}

// NewHealthHandler creates a HealthHandler.  metrics may be nil.
func NewHealthHandler(version string, metrics *prometheus.AppMetrics, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{
		checkers: checkers,
		version:  version,
		startAt:  time.Now(),
		metrics:  metrics,
		timeout:  5 * time.Second,
	}
}

// RegisterRoutes registers the health routes on rg.
func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/healthz", h.Liveness)
	rg.GET("/readyz", h.Readiness)
	rg.GET("/healthz/detail", h.Detailed)
}

// LivenessResponse is the response for the liveness check.
type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// Liveness handles GET /healthz.  It never checks dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, LivenessResponse{
		Status:  "alive",
		Version: h.version,
		Uptime:  time.Since(h.startAt).Truncate(time.Second).String(),
	})
}

// Readiness handles GET /readyz.  It returns 503 only when a required
// component is down; a degraded optional component stays ready.
func (h *HealthHandler) Readiness(c *gin.Context) {
	report := h.report(c.Request.Context())
	c.JSON(statusFor(report.Status), report)
}

// Detailed handles GET /healthz/detail and always returns the full report
// with 200 so operators can inspect a failing instance.
func (h *HealthHandler) Detailed(c *gin.Context) {
	c.JSON(http.StatusOK, h.report(c.Request.Context()))
}

func statusFor(s common.HealthStatus) int {
	if s == common.HealthDown {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func (h *HealthHandler) report(ctx context.Context) common.HealthReport {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	components := h.checkAll(ctx)
	return common.HealthReport{
		Status:     common.Aggregate(components),
		Version:    h.version,
		Components: components,
		Timestamp:  common.NewTimestamp(),
	}
}

// checkAll runs all checkers concurrently.  Results keep registration order.
func (h *HealthHandler) checkAll(ctx context.Context) []common.ComponentHealth {
	results := make([]common.ComponentHealth, len(h.checkers))
	var wg sync.WaitGroup
	for i, checker := range h.checkers {
		wg.Add(1)
		go func(i int, c HealthChecker) {
			defer wg.Done()
			start := time.Now()
			err := c.Check(ctx)
			ch := common.ComponentHealth{
				Name:    c.Name(),
				Status:  common.HealthUp,
				Latency: time.Since(start),
			}
			if err != nil {
				ch.Status = common.HealthDown
				if isOptional(c) {
					ch.Status = common.HealthDegraded
				}
				ch.Message = err.Error()
			}
			if h.metrics != nil {
				prometheus.RecordHealth(h.metrics, ch.Name, err == nil)
			}
			results[i] = ch
		}(i, checker)
	}
	wg.Wait()
	return results
}
