package server

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWithRecover_ConvertsPanicToInternalServerError(t *testing.T) {
	s := &Server{logger: slog.Default()}
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/anything", nil)

	s.withRecover(panicking).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if got := rec.Body.String(); got == "" || got[0] != '{' {
		t.Errorf("expected a JSON error body, got %q", got)
	}
}

func TestWithRecover_PassesThroughNonPanickingHandler(t *testing.T) {
	s := &Server{logger: slog.Default()}
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/anything", nil)

	s.withRecover(ok).ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("expected the wrapped handler's status to pass through, got %d", rec.Code)
	}
}
