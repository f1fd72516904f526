package reservation

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/unilib/portal-api/internal/handler"
	"github.com/unilib/portal-api/internal/middleware"
	"github.com/unilib/portal-api/internal/model"
	"github.com/unilib/portal-api/internal/service/reservation"
)

type Handler struct {
	service *reservation.Service
}

func NewHandler(service *reservation.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateReservation(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("caller not identified"))
		return
	}

	var req model.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	dto, err := h.service.CreateReservation(c.Request.Context(), userID, req.Item, req.PickupDate)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(dto))
}

func (h *Handler) ListMine(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("caller not identified"))
		return
	}

	reservations, err := h.service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(reservations))
}

func (h *Handler) List(c *gin.Context) {
	status := model.ReservationStatus(c.Query("status"))

	reservations, err := h.service.List(c.Request.Context(), status)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(reservations))
}

func (h *Handler) Attend(c *gin.Context) {
	h.transition(c, model.ReservationStatusFulfilled)
}

func (h *Handler) Cancel(c *gin.Context) {
	h.transition(c, model.ReservationStatusCancelled)
}

func (h *Handler) Complete(c *gin.Context) {
	h.transition(c, model.ReservationStatusCompleted)
}

func (h *Handler) Renew(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid reservation ID"))
		return
	}

	res, err := h.service.Renew(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(res))
}

func (h *Handler) transition(c *gin.Context, target model.ReservationStatus) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid reservation ID"))
		return
	}

	res, err := h.service.Transition(c.Request.Context(), id, target)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(res))
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	reservations := r.Group("/reservations")
	reservations.Use(auth.Authenticate())
	{
		reservations.POST("", h.CreateReservation)
		reservations.GET("/mine", h.ListMine)

		staff := reservations.Group("")
		staff.Use(auth.RequireRole(middleware.RoleLibrarian, middleware.RoleAdmin))
		{
			staff.GET("", h.List)
			staff.PATCH("/:id/attend", h.Attend)
			staff.PATCH("/:id/cancel", h.Cancel)
			staff.PATCH("/:id/complete", h.Complete)
			staff.PATCH("/:id/renew", h.Renew)
		}
	}
}
