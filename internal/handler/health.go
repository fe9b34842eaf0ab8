package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/hrforge/advance-engine/pkg/response"
)

const probeTimeout = 5 * time.Second

type HealthHandler struct {
	db    *sqlx.DB
	redis *redis.Client
}

func NewHealthHandler(db *sqlx.DB, redis *redis.Client) *HealthHandler {
	return &HealthHandler{
		db:    db,
		redis: redis,
	}
}

type probeResult struct {
	Healthy bool              `json:"healthy"`
	Checks  map[string]string `json:"checks,omitempty"`
	Time    time.Time         `json:"time"`
}

// Health reports process liveness only. Dependency state belongs to Ready;
// a liveness probe that fans out to Postgres would restart the wrong thing.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, probeResult{Healthy: true, Time: time.Now()})
}

// Ready probes every dependency the advance workflow needs and reports each
// one by name, so a failing probe names the culprit instead of a bare 503.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	result := probeResult{
		Healthy: true,
		Checks:  map[string]string{},
		Time:    time.Now(),
	}

	probes := map[string]func(context.Context) error{
		"postgres": h.db.PingContext,
		"redis": func(ctx context.Context) error {
			return h.redis.Ping(ctx).Err()
		},
	}

	for name, probe := range probes {
		if err := probe(ctx); err != nil {
			result.Healthy = false
			result.Checks[name] = err.Error()
			continue
		}
		result.Checks[name] = "ok"
	}

	if !result.Healthy {
		response.ErrorWithDetails(w, http.StatusServiceUnavailable, "Service not ready", nil, result)
		return
	}

	response.Success(w, result)
}
