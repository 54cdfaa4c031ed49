package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	handlers "github.com/wekeepgrowing/ticket-payment/internal/adapter/handler/http"
	"github.com/wekeepgrowing/ticket-payment/internal/config"
	"github.com/wekeepgrowing/ticket-payment/internal/middleware/auth"
	"github.com/wekeepgrowing/ticket-payment/pkg/logger"
	"go.uber.org/zap"
)

// Services are the use cases the HTTP routes call into.
type Services struct {
	Checkout handlers.CheckoutMethod
	Refunds  handlers.RefundMethod
	Settings handlers.SettingsStore
}

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	echo     *echo.Echo
	services Services
}

func NewServer(cfg *config.Config, zapLogger *zap.Logger, services Services) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewRequestValidator()
	logger.WithEchoLogger(e, zapLogger)

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(logger.NewEchoRequestLogger(zapLogger))
	e.Use(middleware.BodyLimit("64K"))
	if cfg.Service.ClientURL != "" {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: []string{cfg.Service.ClientURL},
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		}))
	}

	s := &Server{
		config:   cfg,
		logger:   zapLogger,
		echo:     e,
		services: services,
	}
	s.setupRoutes()
	return s
}

func (s *Server) Start() error {
	addr := s.config.Server.HTTP.Addr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	checkoutHandler := handlers.NewCheckoutHandler(s.services.Checkout, s.logger)
	refundHandler := handlers.NewRefundHandler(s.services.Refunds, s.logger)
	settingsHandler := handlers.NewSettingsHandler(s.services.Settings, s.logger)

	v1 := s.echo.Group("/api/v1")

	// Buyer routes, the payment token is the capability
	checkout := v1.Group("/checkout/:token")
	checkout.GET("/widget", checkoutHandler.GetWidget)
	checkout.POST("", checkoutHandler.Checkout)
	checkout.POST("/cancel", checkoutHandler.Cancel)

	if s.config.Service.JWTSecret == "" {
		s.logger.Warn("service.jwt_secret is empty, operator routes are disabled")
		return
	}

	operator := v1.Group("/operator", auth.JWTMiddleware(auth.JWTConfig{
		Secret: s.config.Service.JWTSecret,
		Logger: s.logger,
		Role:   auth.RoleOperator,
	}))
	operator.POST("/payments/:token/refund", refundHandler.Refund)
	operator.POST("/payments/refund", refundHandler.RefundAll)
	operator.GET("/settings", settingsHandler.GetSettings)
	operator.PUT("/settings", settingsHandler.UpdateSettings)
}
