package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats represents database connection pool statistics.
type PoolStats struct {
	TotalConns      int32  `json:"total_conns"`
	IdleConns       int32  `json:"idle_conns"`
	AcquiredConns   int32  `json:"acquired_conns"`
	MaxConns        int32  `json:"max_conns"`
	AcquireCount    int64  `json:"acquire_count"`
	AcquireDuration string `json:"acquire_duration"`
	Healthy         bool   `json:"healthy"`
}

// GetPoolStats returns connection pool statistics.
func GetPoolStats(pool *pgxpool.Pool) *PoolStats {
	stat := pool.Stat()
	return &PoolStats{
		TotalConns:      stat.TotalConns(),
		IdleConns:       stat.IdleConns(),
		AcquiredConns:   stat.AcquiredConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		AcquireDuration: stat.AcquireDuration().String(),
		Healthy:         stat.TotalConns() > 0,
	}
}

// HealthReport builds the status code and body for a health probe.
// stats may be nil when the clinic runs on in-memory storage.
func HealthReport(pingErr error, stats *PoolStats, storage string) (int, map[string]interface{}) {
	body := map[string]interface{}{"storage": storage}
	if stats != nil {
		body["pool"] = stats
	}
	if pingErr != nil {
		if stats != nil {
			stats.Healthy = false
		}
		body["status"] = "unhealthy"
		body["error"] = pingErr.Error()
		return http.StatusServiceUnavailable, body
	}
	body["status"] = "healthy"
	return http.StatusOK, body
}

// HealthHandler returns a handler for the database health check endpoint.
// A nil pool reports the in-memory store as healthy.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		if pool == nil {
			code, body := HealthReport(nil, nil, "memory")
			return c.JSON(code, body)
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		err := pool.Ping(ctx)
		code, body := HealthReport(err, GetPoolStats(pool), "postgres")
		return c.JSON(code, body)
	}
}
