package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func renderJSON(t *testing.T, write func(echo.Context) error) (int, map[string]any) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	if err := write(e.NewContext(req, rec)); err != nil {
		t.Fatalf("write response: %v", err)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rec.Code, body
}

func TestEnvelope_SuccessAndAccepted(t *testing.T) {
	t.Parallel()

	code, body := renderJSON(t, func(c echo.Context) error {
		return success(c, map[string]any{"ok": true})
	})
	if code != http.StatusOK || body["status"] != "success" {
		t.Fatalf("unexpected success envelope: code=%d body=%v", code, body)
	}

	code, body = renderJSON(t, func(c echo.Context) error {
		return accepted(c, map[string]any{"state": "enqueued"})
	})
	if code != http.StatusAccepted || body["status"] != "success" {
		t.Fatalf("unexpected accepted envelope: code=%d body=%v", code, body)
	}
}

func TestEnvelope_FailCarriesMessageAndData(t *testing.T) {
	t.Parallel()

	code, body := renderJSON(t, func(c echo.Context) error {
		return failValidation(c, map[string]string{"set_id": "must be a positive integer"})
	})
	if code != http.StatusBadRequest || body["status"] != "fail" {
		t.Fatalf("unexpected fail envelope: code=%d body=%v", code, body)
	}
	data, ok := body["data"].(map[string]any)
	if !ok || data["validation_errors"] == nil {
		t.Fatalf("expected validation errors in data, got %v", body["data"])
	}

	code, body = renderJSON(t, func(c echo.Context) error {
		return failNotFound(c, "Translation set does not exist")
	})
	if code != http.StatusNotFound || body["message"] != "Translation set does not exist" {
		t.Fatalf("unexpected not-found envelope: code=%d body=%v", code, body)
	}
	if _, present := body["data"]; present {
		t.Fatalf("not-found envelope must omit empty data, got %v", body)
	}
}

func TestEnvelope_InternalError(t *testing.T) {
	t.Parallel()

	code, body := renderJSON(t, func(c echo.Context) error {
		return internalError(c, "Failed to load stats")
	})
	if code != http.StatusInternalServerError || body["status"] != "error" {
		t.Fatalf("unexpected error envelope: code=%d body=%v", code, body)
	}
	if _, present := body["code"]; present {
		t.Fatalf("error envelope must not carry a code field, got %v", body)
	}
}
