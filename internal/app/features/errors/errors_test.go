package errors_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	uierrors "github.com/dalemusser/shiftboard/internal/app/features/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewHandler(t *testing.T) {
	if uierrors.NewHandler() == nil {
		t.Fatal("NewHandler() returned nil")
	}
}

func TestLogJSONError(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	el := uierrors.NewErrorLogger(zap.New(core))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/events/x/kiosk/search", nil)
	el.LogJSONError(rec, req, "search failed", errors.New("boom"), http.StatusInternalServerError, `Search "failed".`)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["error"] != `Search "failed".` {
		t.Errorf("body = %v", body)
	}
	if logs.Len() != 1 || logs.All()[0].Message != "search failed" {
		t.Errorf("expected one logged error, got %v", logs.All())
	}
}
