package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/toyz/bindgraph/internal/errors"
	"github.com/toyz/bindgraph/internal/session"
	"github.com/toyz/bindgraph/internal/source"
	"github.com/toyz/bindgraph/internal/utils"
	"github.com/toyz/bindgraph/internal/validation"
)

// ValidateResponse is the body returned by POST /v1/validate
type ValidateResponse struct {
	Clean       bool                    `json:"clean"`
	Components  []string                `json:"components"`
	Diagnostics []validation.Diagnostic `json:"diagnostics"`
}

// ErrorResponse is returned for requests that carry no valid manifest
type ErrorResponse struct {
	Error       string   `json:"error"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// MaxManifestSize bounds the body of a validation request
const MaxManifestSize = "4M"

// Server exposes validation over HTTP. Every request is processed in its own
// session, so requests never share declarations.
type Server struct {
	echo     *echo.Echo
	registry *prometheus.Registry
	metrics  *metrics
	config   session.Config
	log      *utils.DiagnosticSystem
}

// New creates a server validating with the given processor settings
func New(config session.Config, log *utils.DiagnosticSystem) *Server {
	if log == nil {
		log = utils.NewSilentDiagnostics()
	}
	reg := prometheus.NewRegistry()
	s := &Server{
		echo:     echo.New(),
		registry: reg,
		metrics:  newMetrics(reg),
		config:   config,
		log:      log,
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())
	s.echo.Use(middleware.BodyLimit(MaxManifestSize))

	s.echo.GET("/healthz", s.health)
	s.echo.POST("/v1/validate", s.validate)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	return s
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown is called
func (s *Server) Start(addr string) error {
	s.log.Info("Serving validation API on %s", addr)
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) validate(c echo.Context) error {
	start := time.Now()
	defer func() {
		s.metrics.validationDuration.Observe(time.Since(start).Seconds())
	}()

	manifest, err := source.Decode(c.Request().Body, "")
	if err != nil {
		s.metrics.validationsTotal.WithLabelValues("invalid").Inc()
		return c.JSON(http.StatusBadRequest, errorResponse(err))
	}
	src, err := source.FromManifests(manifest)
	if err != nil {
		s.metrics.validationsTotal.WithLabelValues("invalid").Inc()
		return c.JSON(http.StatusBadRequest, errorResponse(err))
	}

	sink := &validation.CollectingSink{}
	processor := session.NewProcessor(s.config, sink, nil, s.log)
	result := processor.Round(src)
	processor.Finish()

	resp := ValidateResponse{
		Clean:       !sink.HasErrors(),
		Components:  append([]string{}, result.Processed...),
		Diagnostics: append([]validation.Diagnostic{}, sink.Diagnostics...),
	}
	for _, d := range resp.Diagnostics {
		s.metrics.diagnosticsTotal.WithLabelValues(d.Level).Inc()
	}
	outcome := "clean"
	if !resp.Clean {
		outcome = "failed"
	}
	s.metrics.validationsTotal.WithLabelValues(outcome).Inc()
	s.log.Verbose("%s validated %d component(s): %s",
		c.Response().Header().Get(echo.HeaderXRequestID), len(resp.Components), outcome)
	return c.JSON(http.StatusOK, resp)
}

func errorResponse(err error) ErrorResponse {
	resp := ErrorResponse{Error: err.Error()}
	if be, ok := err.(errors.BindgraphError); ok {
		resp.Suggestions = be.Suggestions()
	}
	return resp
}
