package sweep

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unilib/portal-api/internal/handler"
	"github.com/unilib/portal-api/internal/middleware"
	"github.com/unilib/portal-api/internal/worker"
)

// Handler exposes the on-demand sweep trigger for the back office.
type Handler struct {
	scheduler *worker.OverdueScheduler
}

func NewHandler(scheduler *worker.OverdueScheduler) *Handler {
	return &Handler{scheduler: scheduler}
}

func (h *Handler) Run(c *gin.Context) {
	summary, err := h.scheduler.Sweep(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(summary))
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	sweeps := r.Group("/sweeps")
	sweeps.Use(auth.Authenticate(), auth.RequireRole(middleware.RoleLibrarian, middleware.RoleAdmin))
	{
		sweeps.POST("", h.Run)
	}
}
