package handlers

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Pinger checks reachability of a dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RedisPinger adapts redis.Client to Pinger.
type RedisPinger struct {
	client *redis.Client
}

// NewRedisPinger creates a new Redis pinger.
func NewRedisPinger(client *redis.Client) *RedisPinger {
	return &RedisPinger{client: client}
}

func (r *RedisPinger) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// PostgresPinger adapts pgxpool.Pool to Pinger.
type PostgresPinger struct {
	pool *pgxpool.Pool
}

// NewPostgresPinger creates a new Postgres pinger.
func NewPostgresPinger(pool *pgxpool.Pool) *PostgresPinger {
	return &PostgresPinger{pool: pool}
}

func (p *PostgresPinger) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// HealthHandler reports service and dependency health.
type HealthHandler struct {
	redis    Pinger
	database Pinger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(redis, database Pinger) *HealthHandler {
	return &HealthHandler{redis: redis, database: database}
}

// HealthResponse is the response for the health check endpoint.
type HealthResponse struct {
	Body struct {
		Status   string `json:"status"`
		Redis    string `json:"redis"`
		Database string `json:"database"`
	}
}

// Check reports the health of the service and its dependencies. A cache
// outage degrades the service rather than taking it down, so Redis being
// unhealthy still reports degraded, not down.
func (h *HealthHandler) Check(ctx context.Context, _ *struct{}) (*HealthResponse, error) {
	resp := &HealthResponse{}
	resp.Body.Status = "ok"

	if err := h.redis.Ping(ctx); err != nil {
		resp.Body.Redis = "unhealthy"
		resp.Body.Status = "degraded"
	} else {
		resp.Body.Redis = "healthy"
	}

	if err := h.database.Ping(ctx); err != nil {
		resp.Body.Database = "unhealthy"
		resp.Body.Status = "degraded"
	} else {
		resp.Body.Database = "healthy"
	}

	return resp, nil
}
