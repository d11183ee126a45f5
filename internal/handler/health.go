package handler

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Health reports liveness plus the state of the two hard dependencies.
type Health struct {
	db  *sql.DB
	rdb *redis.Client
}

func NewHealth(db *sql.DB, rdb *redis.Client) *Health {
	return &Health{db: db, rdb: rdb}
}

func (h *Health) Check(c echo.Context) error {
	ctx := c.Request().Context()

	dbOK := h.db != nil && h.db.PingContext(ctx) == nil
	redisOK := h.rdb != nil && h.rdb.Ping(ctx).Err() == nil

	status := http.StatusOK
	overall := "ok"
	if !dbOK {
		status = http.StatusServiceUnavailable
	}
	if !dbOK || !redisOK {
		overall = "degraded"
	}
	return c.JSON(status, echo.Map{
		"status": overall,
		"db":     dbOK,
		"redis":  redisOK,
	})
}
