package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"horse.fit/glossa/internal/progress"
)

func newProgressServer(store *progress.Store) *Server {
	return NewServer(Deps{Progress: store}, zerolog.Nop(), Options{})
}

func getProgress(s *Server, query string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/translate/progress?"+query, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = s.handleTranslationProgress(c)
	return rec
}

func decodeProgressData(t *testing.T, rec *httptest.ResponseRecorder) progress.Record {
	t.Helper()

	var envelope struct {
		Status string          `json:"status"`
		Data   progress.Record `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Status != "success" {
		t.Fatalf("unexpected status: %q", envelope.Status)
	}
	return envelope.Data
}

func TestTranslationProgress_MissingRecordReadsAsZero(t *testing.T) {
	t.Parallel()

	s := newProgressServer(progress.NewStore())

	rec := getProgress(s, "project_id=3&set_id=9")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	record := decodeProgressData(t, rec)
	if record.Translated != 0 || record.Total != 0 || record.Completed {
		t.Fatalf("unexpected record: %+v", record)
	}
}

func TestTranslationProgress_CompletedRecordIsConsumed(t *testing.T) {
	t.Parallel()

	store := progress.NewStore()
	store.Write(3, 9, 120, 120, true, 7)
	s := newProgressServer(store)

	rec := getProgress(s, "project_id=3&set_id=9")
	record := decodeProgressData(t, rec)
	if !record.Completed || record.Translated != 120 {
		t.Fatalf("unexpected record: %+v", record)
	}

	rec = getProgress(s, "project_id=3&set_id=9")
	record = decodeProgressData(t, rec)
	if record.Completed || record.Translated != 0 {
		t.Fatalf("expected consumed record to read as zero, got %+v", record)
	}
}

func TestTranslationProgress_RejectsInvalidParams(t *testing.T) {
	t.Parallel()

	s := newProgressServer(progress.NewStore())

	for _, query := range []string{"", "project_id=3", "project_id=abc&set_id=9", "project_id=0&set_id=9"} {
		rec := getProgress(s, query)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("query %q: expected 400, got %d", query, rec.Code)
		}
	}
}
