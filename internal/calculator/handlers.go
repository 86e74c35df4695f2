package calculator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"chatcalc/internal/expr"
	"chatcalc/internal/observability"
	"chatcalc/internal/session"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// Handlers binds the session registry and the expression evaluator to the
// HTTP surface. Button identifiers are decoded into symbolic operations
// here, at the delivery boundary.
type Handlers struct {
	registry *session.Registry
	eval     *expr.Evaluator
}

func NewHandlers(registry *session.Registry, eval *expr.Evaluator) *Handlers {
	return &Handlers{registry: registry, eval: eval}
}

// Press handles POST /calculator/{userID}/press: one keypad button.
func (h *Handlers) Press(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)
	userID := chi.URLParam(r, "userID")

	ctx, span := tracer.Start(ctx, "calculator.press",
		trace.WithAttributes(
			attribute.String("calculator.user_id", userID),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req PressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "press", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	op, err := ParseButton(req.Button)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "press", "unknown button", err, http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(
		attribute.String("calculator.button", req.Button),
		attribute.String("calculator.operation", op.Kind.String()),
	)

	sess := h.registry.Get(userID)

	if op.Kind == OpEvaluate {
		h.evaluate(ctx, span, logger, w, userID, requestID, sess)
		return
	}

	if err := h.applyEdit(sess, op); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "press", "unknown button", err, http.StatusBadRequest, w)
		return
	}

	opsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op.Kind.String())))
	span.SetStatus(codes.Ok, "")

	logger.Info("edit applied",
		zap.String("user_id", userID),
		zap.String("button", req.Button),
		zap.String("operation", op.Kind.String()),
		zap.String("request_id", requestID),
	)

	writeJSON(w, http.StatusOK, DisplayResponse{
		UserID:     userID,
		Display:    sess.DisplayText(),
		Expression: sess.Expression(),
	})
}

// Input handles POST /calculator/{userID}/input: a typed expression. Text
// that evaluates cleanly returns its result immediately; anything else is
// adopted as the session's buffer so the user can keep editing it.
func (h *Handlers) Input(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)
	userID := chi.URLParam(r, "userID")

	ctx, span := tracer.Start(ctx, "calculator.input",
		trace.WithAttributes(
			attribute.String("calculator.user_id", userID),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req InputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "input", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	sess := h.registry.Get(userID)
	opsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "input")))

	start := time.Now()
	result, err := h.eval.Evaluate(req.Text)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0
	evalHistogram.Record(ctx, elapsed, metric.WithAttributes(attribute.String("operation", "input")))

	if err == nil {
		sess.SetResult(result)
		resultGauge.Record(ctx, result, metric.WithAttributes(attribute.String("operation", "input")))
		span.SetAttributes(attribute.Float64("calculator.result", result))
		span.SetStatus(codes.Ok, "")

		logger.Info("input evaluated",
			zap.String("user_id", userID),
			zap.Float64("result", result),
			zap.String("request_id", requestID),
			zap.Float64("duration_ms", elapsed),
		)

		writeJSON(w, http.StatusOK, ResultResponse{
			UserID:     userID,
			Expression: req.Text,
			Result:     expr.CanonicalText(result),
			Display:    sess.DisplayText(),
		})
		return
	}

	// Not directly computable: keep it as the working buffer, unless it
	// cannot even fit.
	if !sess.SetExpression(req.Text) {
		kind := string(expr.KindTooLong)
		tooLong := fmt.Errorf("input longer than %d characters", h.eval.MaxLength())
		span.RecordError(tooLong)
		span.SetStatus(codes.Error, tooLong.Error())
		errorCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", "input"),
			attribute.String("error_kind", kind),
		))

		logger.Warn("input rejected",
			zap.String("user_id", userID),
			zap.String("error_kind", kind),
			zap.String("request_id", requestID),
		)

		writeJSON(w, http.StatusUnprocessableEntity, EvalErrorResponse{
			UserID:     userID,
			Error:      tooLong.Error(),
			ErrorKind:  kind,
			Expression: sess.Expression(),
			Display:    sess.DisplayText(),
		})
		return
	}

	span.SetStatus(codes.Ok, "")
	logger.Info("input adopted as buffer",
		zap.String("user_id", userID),
		zap.String("request_id", requestID),
	)

	writeJSON(w, http.StatusOK, DisplayResponse{
		UserID:     userID,
		Display:    sess.DisplayText(),
		Expression: sess.Expression(),
	})
}

// Display handles GET /calculator/{userID}/display.
func (h *Handlers) Display(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	sess := h.registry.Get(userID)

	writeJSON(w, http.StatusOK, DisplayResponse{
		UserID:     userID,
		Display:    sess.DisplayText(),
		Expression: sess.Expression(),
	})
}

// ClearSession handles DELETE /calculator/{userID}/session: drops the
// session entirely, not just its buffer.
func (h *Handlers) ClearSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")

	h.registry.Clear(userID)
	opsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "clear_session")))

	observability.LoggerWithTrace(ctx).Info("session cleared",
		zap.String("user_id", userID),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	w.WriteHeader(http.StatusNoContent)
}

// evaluate runs the validate→evaluate→chain flow for the "=" button.
func (h *Handlers) evaluate(ctx context.Context, span trace.Span, logger *zap.Logger, w http.ResponseWriter, userID, requestID string, sess *session.Session) {
	text := sess.Expression()
	span.SetAttributes(attribute.String("calculator.expression", text))

	attrs := metric.WithAttributes(attribute.String("operation", "evaluate"))
	opsCounter.Add(ctx, 1, attrs)

	start := time.Now()
	result, err := h.eval.Evaluate(text)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0
	evalHistogram.Record(ctx, elapsed, attrs)

	if err != nil {
		kind := string(expr.KindOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		errorCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", "evaluate"),
			attribute.String("error_kind", kind),
		))

		logger.Warn("evaluation rejected",
			zap.String("user_id", userID),
			zap.String("error_kind", kind),
			zap.Error(err),
			zap.String("request_id", requestID),
		)

		writeJSON(w, http.StatusUnprocessableEntity, EvalErrorResponse{
			UserID:     userID,
			Error:      err.Error(),
			ErrorKind:  kind,
			Expression: text,
			Display:    sess.DisplayText(),
		})
		return
	}

	sess.SetResult(result)
	resultGauge.Record(ctx, result, attrs)

	span.AddEvent("computation.complete", trace.WithAttributes(
		attribute.Float64("result", result),
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetAttributes(attribute.Float64("calculator.result", result))
	span.SetStatus(codes.Ok, "")

	logger.Info("expression evaluated",
		zap.String("user_id", userID),
		zap.String("expression", text),
		zap.Float64("result", result),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	writeJSON(w, http.StatusOK, ResultResponse{
		UserID:     userID,
		Expression: text,
		Result:     expr.CanonicalText(result),
		Display:    sess.DisplayText(),
	})
}

// applyEdit dispatches one non-evaluate symbolic operation to the session.
func (h *Handlers) applyEdit(sess *session.Session, op Op) error {
	switch op.Kind {
	case OpDigit:
		sess.AppendDigit(op.Digit)
	case OpDecimalPoint:
		sess.AppendDecimalPoint()
	case OpOperator:
		sess.AppendOperator(op.Operator)
	case OpFunction:
		if !h.eval.IsFunction(op.Name) {
			return fmt.Errorf("unknown function %q", op.Name)
		}
		sess.AppendFunction(op.Name)
	case OpConstant:
		literal, ok := h.eval.ConstantText(op.Name)
		if !ok {
			return fmt.Errorf("unknown constant %q", op.Name)
		}
		sess.AppendConstant(literal)
	case OpParen:
		sess.AppendParen(op.Open)
	case OpClearEntry:
		sess.ClearEntry()
	case OpClearAll:
		sess.ClearAll()
	case OpBackspace:
		sess.Backspace()
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
