package folioapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestErrorKindStatus(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want int
	}{
		{KindBadRequest, http.StatusBadRequest},
		{KindStore, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindUpstream, http.StatusInternalServerError},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.kind.status(); got != tt.want {
			t.Errorf("status(%d) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func errorResponse(t *testing.T, err error) (int, map[string]any) {
	t.Helper()
	a := New(Config{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := a.Echo.NewContext(req, rec)

	a.httpErrorHandler(err, c)

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	return rec.Code, body
}

func TestHTTPErrorHandlerEnumeratesDetails(t *testing.T) {
	code, body := errorResponse(t, badRequest("Validation failed", "title is required", "description is required"))
	if code != http.StatusBadRequest {
		t.Errorf("code = %d, want 400", code)
	}
	if body["error"] != "Validation failed" {
		t.Errorf("error = %v, want Validation failed", body["error"])
	}
	details, ok := body["details"].([]any)
	if !ok || len(details) != 2 {
		t.Fatalf("details = %v, want both fields reported", body["details"])
	}
}

func TestHTTPErrorHandlerNotFound(t *testing.T) {
	code, body := errorResponse(t, notFound("Blog not found"))
	if code != http.StatusNotFound {
		t.Errorf("code = %d, want 404", code)
	}
	if body["error"] != "Blog not found" {
		t.Errorf("error = %v, want Blog not found", body["error"])
	}
	if _, present := body["details"]; present {
		t.Error("not-found responses should not carry details")
	}
}

func TestHTTPErrorHandlerHidesInternalDetail(t *testing.T) {
	code, body := errorResponse(t, internal(errors.New("password=hunter2")))
	if code != http.StatusInternalServerError {
		t.Errorf("code = %d, want 500", code)
	}
	if body["error"] != "Internal server error" {
		t.Errorf("error = %v, want generic message", body["error"])
	}
	if msg, _ := body["error"].(string); strings.Contains(msg, "hunter2") {
		t.Error("internal detail leaked into the response")
	}
}

func TestHTTPErrorHandlerUpstream(t *testing.T) {
	code, body := errorResponse(t, upstream("Server error during file upload", errors.New("connection refused")))
	if code != http.StatusInternalServerError {
		t.Errorf("code = %d, want 500", code)
	}
	if body["error"] != "Server error during file upload" {
		t.Errorf("error = %v", body["error"])
	}
	if msg, _ := body["error"].(string); strings.Contains(msg, "connection refused") {
		t.Error("upstream cause leaked into the response")
	}
}

func TestHTTPErrorHandlerStoreViolation(t *testing.T) {
	code, body := errorResponse(t, storeError([]string{"title must be a string"}))
	if code != http.StatusBadRequest {
		t.Errorf("code = %d, want 400", code)
	}
	if _, present := body["details"]; !present {
		t.Error("store violations should carry per-field details")
	}
}

func TestHTTPErrorHandlerUnknownRoute(t *testing.T) {
	code, body := errorResponse(t, echo.NewHTTPError(http.StatusNotFound))
	if code != http.StatusNotFound {
		t.Errorf("code = %d, want 404", code)
	}
	if body["error"] != "Route not found" {
		t.Errorf("error = %v, want Route not found", body["error"])
	}
}

func TestErrorWrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := upstream("upload failed", cause)
	if !errors.Is(err, cause) {
		t.Error("Error should unwrap to its cause")
	}
}
