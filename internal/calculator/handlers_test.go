package calculator

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"chatcalc/internal/expr"
	"chatcalc/internal/observability"
	"chatcalc/internal/session"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newTestHandlers(t *testing.T) (http.Handler, *session.Registry) {
	t.Helper()

	observability.Logger = zap.NewNop()

	registry := session.NewRegistry(0)
	ev, err := expr.New(expr.Options{})
	if err != nil {
		t.Fatalf("creating evaluator: %v", err)
	}
	if err := InitMetrics(registry); err != nil {
		t.Fatalf("initializing metrics: %v", err)
	}

	r := chi.NewRouter()
	NewHandlers(registry, ev).RegisterRoutes(r)
	return r, registry
}

func pressButton(t *testing.T, router http.Handler, userID, button string) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(PressRequest{Button: button})
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/calculator/"+userID+"/press", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(w.Result().Body).Decode(&v); err != nil {
		t.Fatalf("decoding JSON response: %v", err)
	}
	return v
}

func TestPressUpdatesDisplay(t *testing.T) {
	router, _ := newTestHandlers(t)

	w := pressButton(t, router, "alice", "num_5")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	resp := decodeBody[DisplayResponse](t, w)
	if resp.Display != "5" || resp.Expression != "5" {
		t.Fatalf("unexpected response %#v", resp)
	}

	w = pressButton(t, router, "alice", "op_+")
	resp = decodeBody[DisplayResponse](t, w)
	if resp.Expression != "5+" {
		t.Fatalf("expected %q, got %q", "5+", resp.Expression)
	}
}

func TestCalculateChainsIntoNextExpression(t *testing.T) {
	router, _ := newTestHandlers(t)

	for _, b := range []string{"num_7", "op_*", "num_2"} {
		pressButton(t, router, "bob", b)
	}

	w := pressButton(t, router, "bob", "calculate")
	resp := decodeBody[ResultResponse](t, w)
	if resp.Result != "14" {
		t.Fatalf("expected result %q, got %q", "14", resp.Result)
	}
	if resp.Display != "14" {
		t.Fatalf("expected display %q, got %q", "14", resp.Display)
	}

	// The result seeds the next expression.
	pressButton(t, router, "bob", "op_+")
	pressButton(t, router, "bob", "num_2")
	w = pressButton(t, router, "bob", "calculate")
	resp = decodeBody[ResultResponse](t, w)
	if resp.Result != "16" {
		t.Fatalf("expected chained result %q, got %q", "16", resp.Result)
	}
}

func TestFunctionButtonAutoCloses(t *testing.T) {
	router, _ := newTestHandlers(t)

	pressButton(t, router, "carol", "func_sqrt")
	pressButton(t, router, "carol", "num_9")

	w := pressButton(t, router, "carol", "calculate")
	resp := decodeBody[ResultResponse](t, w)
	if resp.Result != "3" {
		t.Fatalf("expected result %q, got %q", "3", resp.Result)
	}
}

func TestConstantButtonInsertsLiteral(t *testing.T) {
	router, _ := newTestHandlers(t)

	pressButton(t, router, "dave", "const_pi")

	w := pressButton(t, router, "dave", "calculate")
	resp := decodeBody[ResultResponse](t, w)
	if resp.Result != "3.141592653589793" {
		t.Fatalf("expected pi, got %q", resp.Result)
	}
}

func TestPressRejectsUnknownButtons(t *testing.T) {
	router, _ := newTestHandlers(t)

	for _, b := range []string{"nope", "func_system", "const_tau"} {
		w := pressButton(t, router, "erin", b)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("button %q: expected status %d, got %d", b, http.StatusBadRequest, w.Code)
		}
	}

	// A rejected press must not disturb the session.
	req := httptest.NewRequest(http.MethodGet, "/calculator/erin/display", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	resp := decodeBody[DisplayResponse](t, w)
	if resp.Display != "0" {
		t.Fatalf("expected untouched display, got %q", resp.Display)
	}
}

func TestPressRejectsMalformedBody(t *testing.T) {
	router, _ := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/calculator/frank/press", bytes.NewReader([]byte("{")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestEvaluateFailureKeepsBuffer(t *testing.T) {
	router, registry := newTestHandlers(t)

	for _, b := range []string{"func_sqrt", "op_-", "num_1"} {
		pressButton(t, router, "grace", b)
	}

	w := pressButton(t, router, "grace", "calculate")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, w.Code)
	}

	resp := decodeBody[EvalErrorResponse](t, w)
	if resp.ErrorKind != "domain" {
		t.Fatalf("expected domain error, got %q (%s)", resp.ErrorKind, resp.Error)
	}
	if got := registry.Get("grace").Expression(); got != "sqrt(-1" {
		t.Fatalf("expected buffer to survive, got %q", got)
	}
}

func TestClearAllButtonDiscardsResult(t *testing.T) {
	router, registry := newTestHandlers(t)

	pressButton(t, router, "henry", "num_9")
	pressButton(t, router, "henry", "calculate")
	pressButton(t, router, "henry", "clear_all")

	if _, ok := registry.Get("henry").LastResult(); ok {
		t.Fatal("expected last result to be discarded")
	}

	w := pressButton(t, router, "henry", "op_+")
	resp := decodeBody[DisplayResponse](t, w)
	if resp.Expression != "" {
		t.Fatalf("expected no chaining after clear_all, got %q", resp.Expression)
	}
}
