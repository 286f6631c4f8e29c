package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"horse.fit/glossa/internal/auth"
	"horse.fit/glossa/internal/db"
	"horse.fit/glossa/internal/progress"
	"horse.fit/glossa/internal/runlog"
	"horse.fit/glossa/internal/settings"
	"horse.fit/glossa/internal/stats"
	"horse.fit/glossa/internal/translator"
)

type Options struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Deps bundles the stores and services the handlers work against.
type Deps struct {
	Pool      *db.Pool
	Queue     *translator.Queue
	Progress  *progress.Store
	Logs      *runlog.Store
	Stats     *stats.Store
	LogSource stats.LogSource
	Settings  *settings.Store
	Tokens    *auth.TokenChecker
}

type Server struct {
	pool      *db.Pool
	queue     *translator.Queue
	progress  *progress.Store
	logs      *runlog.Store
	stats     *stats.Store
	logSource stats.LogSource
	settings  *settings.Store
	tokens    *auth.TokenChecker
	logger    zerolog.Logger
	opts      Options
}

func NewServer(deps Deps, logger zerolog.Logger, opts Options) *Server {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "0.0.0.0"
	}
	port := opts.Port
	if port <= 0 {
		port = 8090
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	return &Server{
		pool:      deps.Pool,
		queue:     deps.Queue,
		progress:  deps.Progress,
		logs:      deps.Logs,
		stats:     deps.Stats,
		logSource: deps.LogSource,
		settings:  deps.Settings,
		tokens:    deps.Tokens,
		logger:    logger,
		opts: Options{
			Host:            host,
			Port:            port,
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
		},
	}
}

func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       3600,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Err(v.Error).
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("remote_ip", v.RemoteIP).
					Str("request_id", v.RequestID).
					Msg("http request failed")
				return nil
			}

			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))

	api := e.Group("/api/v1")
	api.GET("/health", s.handleHealth)

	guarded := api.Group("", s.requireToken())
	guarded.POST("/translate", s.handleTranslate)
	guarded.GET("/translate/progress", s.handleTranslationProgress)
	guarded.GET("/logs/latest", s.handleLatestLog)
	guarded.GET("/logs/:log_uuid", s.handleLogByUUID)
	guarded.DELETE("/logs", s.handleClearLogs)
	guarded.GET("/stats", s.handleStats)
	guarded.POST("/stats/sync", s.handleStatsSync)
	guarded.POST("/stats/reset", s.handleStatsReset)
	guarded.GET("/settings", s.handleGetSettings)
	guarded.PUT("/settings", s.handleUpdateSettings)

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", addr).Msg("glossa web server started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}

	s.queue.Wait()
	s.logger.Info().Msg("glossa web server stopped")
	return nil
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		switch v := he.Message.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				message = v
			}
		default:
			if text := strings.TrimSpace(http.StatusText(status)); text != "" {
				message = text
			}
		}
	} else if err != nil {
		message = err.Error()
	}

	if status >= 500 {
		_ = internalError(c, "Internal server error")
		return
	}
	_ = fail(c, status, message, nil)
}

func (s *Server) handleHealth(c echo.Context) error {
	database := "ok"
	if sqlDB := s.pool.DB(); sqlDB != nil {
		if err := sqlDB.PingContext(c.Request().Context()); err != nil {
			database = "unavailable"
		}
	}
	return success(c, map[string]any{
		"service":  "glossa",
		"database": database,
		"time":     time.Now().UTC(),
	})
}
