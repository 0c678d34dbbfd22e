package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/Zakyahmed/SaveEat-New/docs"
	"github.com/Zakyahmed/SaveEat-New/internal/api/handler"
	"github.com/Zakyahmed/SaveEat-New/internal/api/middleware"
	"github.com/Zakyahmed/SaveEat-New/internal/core/domain"
	"github.com/Zakyahmed/SaveEat-New/internal/core/service"
)

// Deps are the stores and readiness checks the facade is built on.
type Deps struct {
	Sessions *service.SessionStore
	Data     *service.DataStore
	Profiles *service.ProfileManager
	// Ready lists the dependencies /health/ready pings, by name.
	Ready map[string]handler.Pinger
	Log   zerolog.Logger
	// Registry receives the facade HTTP metrics. Nil means the default
	// Prometheus registry, where the core metrics also live.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	promCfg := echoprometheus.MiddlewareConfig{Subsystem: "saveeat_facade"}
	var gatherer prometheus.Gatherer
	if d.Registry != nil {
		promCfg.Registerer = d.Registry
		gatherer = d.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(promCfg))

	// --- Operational routes (no session required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(d.Ready).Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Session ---
	sessionHandler := handler.NewSessionHandler(d.Sessions, d.Data, d.Log)
	requireSession := middleware.RequireSession(d.Sessions)

	e.POST("/session/login", sessionHandler.Login)
	e.POST("/session/register", sessionHandler.Register)
	e.POST("/session/logout", sessionHandler.Logout)
	e.GET("/session", sessionHandler.Current, requireSession)
	e.POST("/session/refresh", sessionHandler.Refresh, requireSession)

	// --- Profile ---
	profileHandler := handler.NewProfileHandler(d.Profiles)
	profile := e.Group("/profile", requireSession)
	profile.GET("", profileHandler.Get)
	profile.PUT("", profileHandler.Save)

	// --- Listings ---
	listingHandler := handler.NewListingHandler(d.Data)
	restaurantOnly := middleware.RBAC(domain.RoleRestaurant)
	listings := e.Group("/listings", requireSession)
	listings.GET("", listingHandler.List)
	listings.GET("/available", listingHandler.AvailableNow)
	listings.GET("/mine", listingHandler.Mine, restaurantOnly)
	listings.GET("/search", listingHandler.Search)
	listings.GET("/:id", listingHandler.Get)
	listings.GET("/:id/actions", listingHandler.Actions, restaurantOnly)
	listings.POST("", listingHandler.Create, restaurantOnly)
	listings.PUT("/:id", listingHandler.Update, restaurantOnly)
	listings.DELETE("/:id", listingHandler.Delete, restaurantOnly)

	// --- Reservations ---
	reservationHandler := handler.NewReservationHandler(d.Data)
	reservations := e.Group("/reservations", requireSession)
	reservations.GET("", reservationHandler.List)
	reservations.POST("", reservationHandler.Create, middleware.RBAC(domain.RoleAssociation))
	reservations.GET("/:id/actions", reservationHandler.Actions)
	reservations.POST("/:id/transitions", reservationHandler.Transition)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
