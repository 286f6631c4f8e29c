package httpapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"horse.fit/glossa/internal/db"
)

func (s *Server) handleLatestLog(c echo.Context) error {
	entry, err := s.logs.GetLatest(c.Request().Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("load latest log failed")
		return internalError(c, "Failed to load latest log")
	}
	if entry == nil {
		return failNotFound(c, "No log entries exist")
	}
	return success(c, entry)
}

func (s *Server) handleLogByUUID(c echo.Context) error {
	logUUID := strings.TrimSpace(c.Param("log_uuid"))
	if logUUID == "" {
		return failNotFound(c, "Log entry does not exist")
	}

	entry, err := s.logs.GetByUUID(c.Request().Context(), logUUID)
	if err != nil {
		if db.IsNoRows(err) {
			return failNotFound(c, "Log entry does not exist")
		}
		s.logger.Error().Err(err).Str("log_uuid", logUUID).Msg("load log failed")
		return internalError(c, "Failed to load log")
	}
	return success(c, entry)
}

func (s *Server) handleClearLogs(c echo.Context) error {
	if err := s.logs.ClearAll(c.Request().Context()); err != nil {
		s.logger.Error().Err(err).Msg("clear logs failed")
		return internalError(c, "Failed to clear logs")
	}
	return success(c, map[string]any{
		"message": "All log entries removed",
	})
}
