package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type HealthHandler struct {
	ledger *sqlx.DB
	legacy *sqlx.DB
}

func NewHealthHandler(ledger, legacy *sqlx.DB) *HealthHandler {
	return &HealthHandler{ledger: ledger, legacy: legacy}
}

func (h *HealthHandler) Live(c *gin.Context) {
	c.Status(http.StatusOK)
}

// Ready checks both pools. The legacy catalog being down makes the
// service degraded, not dead, but readiness should still flag it.
func (h *HealthHandler) Ready(c *gin.Context) {
	status := gin.H{"ledger": "ok", "legacy": "ok"}
	code := http.StatusOK

	if err := h.ledger.PingContext(c.Request.Context()); err != nil {
		status["ledger"] = err.Error()
		code = http.StatusServiceUnavailable
	}
	if err := h.legacy.PingContext(c.Request.Context()); err != nil {
		status["legacy"] = err.Error()
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, status)
}

func (h *HealthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/health/live", h.Live)
	r.GET("/health/ready", h.Ready)
}
