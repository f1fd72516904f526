package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/unilib/portal-api/internal/handler"
	reservationHandler "github.com/unilib/portal-api/internal/handler/reservation"
	sweepHandler "github.com/unilib/portal-api/internal/handler/sweep"
	"github.com/unilib/portal-api/internal/middleware"
)

type Config struct {
	RateLimit rate.Limit
	RateBurst int
}

type Router struct {
	engine       *gin.Engine
	auth         *middleware.AuthMiddleware
	reservationH *reservationHandler.Handler
	sweepH       *sweepHandler.Handler
	healthH      *handler.HealthHandler
	config       Config
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	reservationH *reservationHandler.Handler,
	sweepH *sweepHandler.Handler,
	healthH *handler.HealthHandler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	return &Router{
		engine:       gin.New(),
		auth:         auth,
		reservationH: reservationH,
		sweepH:       sweepH,
		healthH:      healthH,
		config:       config,
	}
}

func (r *Router) Setup() {
	handler.RegisterValidations()

	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Logger())
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.ErrorHandler())

	if r.config.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(r.config.RateLimit, r.config.RateBurst)
		r.engine.Use(limiter.Middleware())
	}

	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	root := r.engine.Group("")
	r.healthH.RegisterRoutes(root)

	api := r.engine.Group("/api/v1")
	r.reservationH.RegisterRoutes(api, r.auth)
	r.sweepH.RegisterRoutes(api, r.auth)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
