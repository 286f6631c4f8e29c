package httpapi

import (
	"github.com/labstack/echo/v4"
)

func (s *Server) handleStats(c echo.Context) error {
	snap, err := s.stats.Get(c.Request().Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("load stats failed")
		return internalError(c, "Failed to load stats")
	}
	return success(c, snap)
}

func (s *Server) handleStatsSync(c echo.Context) error {
	snap, err := s.stats.RecomputeFromLogs(c.Request().Context(), s.logSource)
	if err != nil {
		s.logger.Error().Err(err).Msg("recompute stats failed")
		return internalError(c, "Failed to sync stats with logs")
	}
	return success(c, snap)
}

func (s *Server) handleStatsReset(c echo.Context) error {
	if err := s.stats.Reset(c.Request().Context()); err != nil {
		s.logger.Error().Err(err).Msg("reset stats failed")
		return internalError(c, "Failed to reset stats")
	}
	snap, err := s.stats.Get(c.Request().Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("load stats failed")
		return internalError(c, "Failed to load stats")
	}
	return success(c, snap)
}
