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
}

func GetPoolStats(pool *pgxpool.Pool) *PoolStats {
	stat := pool.Stat()
	return &PoolStats{
		TotalConns:      stat.TotalConns(),
		IdleConns:       stat.IdleConns(),
		AcquiredConns:   stat.AcquiredConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		AcquireDuration: stat.AcquireDuration().String(),
	}
}

// Probe describes a backing store for the /health/db endpoint. Ping may be
// nil for stores that cannot fail, Details may be nil.
type Probe struct {
	Driver  string
	Ping    func(ctx context.Context) error
	Details func() interface{}
}

// PoolProbe builds a Probe for a pgx pool.
func PoolProbe(pool *pgxpool.Pool) Probe {
	return Probe{
		Driver:  "postgres",
		Ping:    pool.Ping,
		Details: func() interface{} { return GetPoolStats(pool) },
	}
}

// HealthHandler pings the store with a five second budget.
func HealthHandler(p Probe) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		body := map[string]interface{}{"driver": p.Driver}
		if p.Details != nil {
			body["details"] = p.Details()
		}

		if p.Ping != nil {
			if err := p.Ping(ctx); err != nil {
				body["status"] = "unhealthy"
				body["error"] = err.Error()
				return c.JSON(http.StatusServiceUnavailable, body)
			}
		}

		body["status"] = "healthy"
		return c.JSON(http.StatusOK, body)
	}
}
