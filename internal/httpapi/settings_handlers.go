package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"horse.fit/glossa/internal/settings"
)

type updateSettingsRequest struct {
	APIKey *string `json:"api_key"`
	Model  string  `json:"model"`
}

func (s *Server) handleGetSettings(c echo.Context) error {
	view, err := s.settings.Get(c.Request().Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("load settings failed")
		return internalError(c, "Failed to load settings")
	}
	return success(c, view)
}

func (s *Server) handleUpdateSettings(c echo.Context) error {
	var req updateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body", nil)
	}

	view, err := s.settings.Update(c.Request().Context(), settings.UpdateParams{
		APIKey: req.APIKey,
		Model:  req.Model,
	})
	if err != nil {
		var unsupported *settings.ErrUnsupportedModel
		if errors.As(err, &unsupported) {
			return failValidation(c, map[string]string{
				"model": unsupported.Error(),
			})
		}
		s.logger.Error().Err(err).Msg("update settings failed")
		return internalError(c, "Failed to update settings")
	}
	return success(c, view)
}
