package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// jsend-style envelope: "success" carries data, "fail" carries a message the
// caller can act on, "error" means the fault is on our side.
type jsendResponse struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func success(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, jsendResponse{
		Status: "success",
		Data:   data,
	})
}

// accepted acknowledges work that continues in the background, like an
// enqueued translation run.
func accepted(c echo.Context, data any) error {
	return c.JSON(http.StatusAccepted, jsendResponse{
		Status: "success",
		Data:   data,
	})
}

func fail(c echo.Context, code int, message string, data any) error {
	return c.JSON(code, jsendResponse{
		Status:  "fail",
		Message: message,
		Data:    data,
	})
}

func failValidation(c echo.Context, fieldErrors map[string]string) error {
	return fail(c, http.StatusBadRequest, "Validation failed", map[string]any{
		"validation_errors": fieldErrors,
	})
}

func failNotFound(c echo.Context, message string) error {
	return fail(c, http.StatusNotFound, message, nil)
}

func internalError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, jsendResponse{
		Status:  "error",
		Message: message,
	})
}
