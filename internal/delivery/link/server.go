// Package link hosts the loopback listener that feeds inbound deep links
// into the dispatcher. The platform shell forwards every URL the OS hands it
// (custom-scheme or universal link) to this listener.
package link

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"campus/config"
	"campus/internal/delivery"
	deliverymiddleware "campus/internal/delivery/middleware"
	"campus/internal/domain/lifecycle"
	"campus/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// ServerParams holds dependencies for the link server, injected by Fx.
type ServerParams struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
	Links  usecase.LinkUsecase
}

type linkServer struct {
	cfg    *config.Config
	logger *slog.Logger
	links  usecase.LinkUsecase
	server *echo.Echo
}

// NewServer builds the loopback link listener. The handler is registered
// here, before Serve ever runs, so the cold-start URL can never race an
// unregistered handler.
func NewServer(params ServerParams) (delivery.Delivery, error) {
	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.Validator = newValidator()
	echoServer.Use(middleware.Recover())
	echoServer.Use(deliverymiddleware.NewRequestIDMiddleware(params.Logger).Process)
	echoServer.Use(deliverymiddleware.NewLoggerMiddleware(params.Logger, params.Config).Handle)

	srv := &linkServer{
		cfg:    params.Config,
		logger: params.Logger,
		links:  params.Links,
		server: echoServer,
	}
	echoServer.POST("/links", srv.handleLink)

	params.Append(fx.Hook{
		OnStop: srv.stop,
	})

	return srv, nil
}

// Serve dispatches the cold-start URL, then blocks serving live URL events.
func (s *linkServer) Serve(ctx context.Context) error {
	if initial := s.cfg.Links.InitialURL; initial != "" {
		s.logger.Info("Dispatching cold-start link")
		s.links.HandleURL(ctx, initial)
	}

	hostPort := net.JoinHostPort("127.0.0.1", strconv.Itoa(s.cfg.Links.ListenPort))
	s.logger.Info("Starting link listener", slog.String("hostPort", hostPort))
	if err := s.server.Start(hostPort); err != nil {
		return errors.Wrap(err, "failed to serve link listener")
	}

	return nil
}

func (s *linkServer) stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()

	s.logger.Info("Shutting down link listener")

	return errors.WithStack(s.server.Shutdown(shutdownCtx))
}

// linkRequest is one forwarded URL event from the platform shell.
type linkRequest struct {
	URL string `json:"url" validate:"required"`
}

// handleLink accepts a URL event and funnels it through the dispatcher.
// Unrecognized URLs are still 202: the dispatcher's no-op is not an error
// the shell can act on.
func (s *linkServer) handleLink(c echo.Context) error {
	var req linkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "url is required")
	}

	s.links.HandleURL(c.Request().Context(), req.URL)

	return c.NoContent(http.StatusAccepted)
}
