package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"chatcalc/internal/calculator"
	"chatcalc/internal/expr"
	"chatcalc/internal/observability"
	"chatcalc/internal/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	observability.Logger = zap.NewNop()

	registry := session.NewRegistry(0)
	ev, err := expr.New(expr.Options{})
	if err != nil {
		t.Fatalf("creating evaluator: %v", err)
	}
	if err := calculator.InitMetrics(registry); err != nil {
		t.Fatalf("initializing calculator metrics: %v", err)
	}

	return NewRouter(calculator.NewHandlers(registry, ev))
}

func press(t *testing.T, router http.Handler, userID, button string) *httptest.ResponseRecorder {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"button": button})
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/calculator/%s/press", userID), bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestNewRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	if body := w.Body.String(); body != "ok" {
		t.Fatalf("expected body %q, got %q", "ok", body)
	}
}

func TestPressSequenceEvaluates(t *testing.T) {
	router := newTestRouter(t)

	for _, b := range []string{"num_2", "op_+", "num_3", "op_*", "num_4"} {
		w := press(t, router, "alice", b)
		if w.Code != http.StatusOK {
			t.Fatalf("press %q: expected status %d, got %d", b, http.StatusOK, w.Code)
		}
	}

	w := press(t, router, "alice", "calculate")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	requestID := w.Result().Header.Get("X-Request-ID")
	if requestID == "" {
		t.Fatal("expected X-Request-ID header to be set")
	}
	if _, err := uuid.Parse(requestID); err != nil {
		t.Fatalf("expected valid UUID in X-Request-ID, got %q: %v", requestID, err)
	}

	var payload map[string]any
	if err := json.NewDecoder(w.Result().Body).Decode(&payload); err != nil {
		t.Fatalf("decoding JSON response: %v", err)
	}
	if got := payload["result"]; got != "14" {
		t.Fatalf("expected result %q, got %#v", "14", got)
	}
	if got := payload["expression"]; got != "2+3*4" {
		t.Fatalf("expected expression %q, got %#v", "2+3*4", got)
	}
}

func TestPressIsolatesUsers(t *testing.T) {
	router := newTestRouter(t)

	press(t, router, "alice", "num_1")
	press(t, router, "bob", "num_9")

	req := httptest.NewRequest(http.MethodGet, "/calculator/alice/display", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var payload map[string]any
	if err := json.NewDecoder(w.Result().Body).Decode(&payload); err != nil {
		t.Fatalf("decoding JSON response: %v", err)
	}
	if got := payload["display"]; got != "1" {
		t.Fatalf("expected alice's display %q, got %#v", "1", got)
	}
}

func TestEvaluateErrorReturnsClassifiedKind(t *testing.T) {
	router := newTestRouter(t)

	for _, b := range []string{"num_5", "op_/", "num_0"} {
		press(t, router, "carol", b)
	}

	w := press(t, router, "carol", "calculate")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, w.Code)
	}

	var payload map[string]any
	if err := json.NewDecoder(w.Result().Body).Decode(&payload); err != nil {
		t.Fatalf("decoding JSON response: %v", err)
	}
	if got := payload["error_kind"]; got != "division_by_zero" {
		t.Fatalf("expected error_kind division_by_zero, got %#v", got)
	}
	if got := payload["expression"]; got != "5/0" {
		t.Fatalf("expected buffer to survive the failure, got %#v", got)
	}
}

func TestInputEvaluatesOrAdoptsText(t *testing.T) {
	router := newTestRouter(t)

	send := func(text string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]string{"text": text})
		req := httptest.NewRequest(http.MethodPost, "/calculator/dave/input", bytes.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := send("sqrt(16)+1")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var payload map[string]any
	if err := json.NewDecoder(w.Result().Body).Decode(&payload); err != nil {
		t.Fatalf("decoding JSON response: %v", err)
	}
	if got := payload["result"]; got != "5" {
		t.Fatalf("expected result %q, got %#v", "5", got)
	}

	// Incomplete text is adopted as the working buffer.
	w = send("2+3*")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	payload = map[string]any{}
	if err := json.NewDecoder(w.Result().Body).Decode(&payload); err != nil {
		t.Fatalf("decoding JSON response: %v", err)
	}
	if _, ok := payload["result"]; ok {
		t.Fatal("did not expect a result for incomplete input")
	}
	if got := payload["expression"]; got != "2+3*" {
		t.Fatalf("expected adopted buffer, got %#v", got)
	}
}

func TestClearSessionStartsFresh(t *testing.T) {
	router := newTestRouter(t)

	press(t, router, "erin", "num_8")

	req := httptest.NewRequest(http.MethodDelete, "/calculator/erin/session", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/calculator/erin/display", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var payload map[string]any
	if err := json.NewDecoder(w.Result().Body).Decode(&payload); err != nil {
		t.Fatalf("decoding JSON response: %v", err)
	}
	if got := payload["display"]; got != "0" {
		t.Fatalf("expected a fresh display, got %#v", got)
	}
}

func TestUnknownRouteReturnsJSONError(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
	var payload map[string]string
	if err := json.NewDecoder(w.Result().Body).Decode(&payload); err != nil {
		t.Fatalf("decoding JSON response: %v", err)
	}
	if payload["error"] != "not found" {
		t.Fatalf("expected JSON error body, got %#v", payload)
	}
}
