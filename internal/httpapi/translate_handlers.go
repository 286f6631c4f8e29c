package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"horse.fit/glossa/internal/db"
	"horse.fit/glossa/internal/translator"
)

type translateRequest struct {
	SetID          int64  `json:"set_id"`
	TargetLanguage string `json:"target_language"`
}

func (s *Server) handleTranslate(c echo.Context) error {
	var req translateRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body", nil)
	}

	fieldErrors := map[string]string{}
	if req.SetID <= 0 {
		fieldErrors["set_id"] = "must be a positive integer"
	}
	if strings.TrimSpace(req.TargetLanguage) == "" {
		fieldErrors["target_language"] = "is required"
	}
	if len(fieldErrors) > 0 {
		return failValidation(c, fieldErrors)
	}

	err := s.queue.Enqueue(c.Request().Context(), req.SetID, strings.TrimSpace(req.TargetLanguage))
	switch {
	case err == nil:
		return accepted(c, map[string]any{
			"state":   "enqueued",
			"message": "Translation enqueued!",
		})
	case errors.Is(err, translator.ErrAlreadyRunning):
		return success(c, map[string]any{
			"state":   "already_running",
			"message": "Another translation is in action!",
		})
	case db.IsNoRows(err):
		return failNotFound(c, "Translation set does not exist")
	default:
		s.logger.Error().Err(err).Int64("set_id", req.SetID).Msg("enqueue translation failed")
		return internalError(c, "Failed to enqueue translation")
	}
}

func (s *Server) handleTranslationProgress(c echo.Context) error {
	projectID, err1 := strconv.ParseInt(c.QueryParam("project_id"), 10, 64)
	setID, err2 := strconv.ParseInt(c.QueryParam("set_id"), 10, 64)
	if err1 != nil || err2 != nil || projectID <= 0 || setID <= 0 {
		return failValidation(c, map[string]string{
			"project_id": "must be a positive integer",
			"set_id":     "must be a positive integer",
		})
	}

	record := s.progress.Read(c.Request().Context(), projectID, setID)

	// A completed record is consumed by the poller that sees it; the next
	// poll starts from the zero record again.
	if record.Completed {
		s.progress.Delete(projectID, setID)
	}

	return success(c, record)
}
