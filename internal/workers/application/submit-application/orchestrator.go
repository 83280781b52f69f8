// internal/workers/application/submit-application/orchestrator.go
package submitapplication

import (
	"context"
	"fmt"
	"time"

	commonerrors "maritime-intake/internal/common/errors"
	"maritime-intake/internal/common/logger"
	"maritime-intake/internal/common/metrics"
	"maritime-intake/internal/common/observability"
	"maritime-intake/internal/models"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Orchestrator sequences one submission: validate, issue a tracking code, then
// hand off to the backend. It holds no per-submission state.
type Orchestrator struct {
	checker FormChecker
	issuer  CodeIssuer
	backend Backend
	obs     *observability.Observability
	logger  logger.Logger
}

func NewOrchestrator(checker FormChecker, issuer CodeIssuer, backend Backend, obs *observability.Observability, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		checker: checker,
		issuer:  issuer,
		backend: backend,
		obs:     obs,
		logger:  logger.ForComponent(log, "orchestrator").WithFields(map[string]interface{}{"backend": backend.Name()}),
	}
}

// Submit never returns nil. A rejected outcome carries the reason and the
// underlying error; an accepted one carries the tracking code.
func (o *Orchestrator) Submit(ctx context.Context, form *models.ApplicationFormInput) *Outcome {
	start := time.Now()
	metrics.SubmissionsInFlight.Inc()
	defer metrics.SubmissionsInFlight.Dec()

	ctx, span := o.obs.StartSpan(ctx, "submit-application", attribute.String("backend", o.backend.Name()))
	defer span.End()

	outcome := o.submit(ctx, form)

	if outcome.Accepted() {
		span.SetAttributes(attribute.String("tracking_code", outcome.TrackingCode))
		span.SetStatus(codes.Ok, "")
	} else {
		span.RecordError(outcome.Err)
		span.SetStatus(codes.Error, outcome.Reason)
	}
	o.record(ctx, outcome, time.Since(start))
	return outcome
}

func (o *Orchestrator) submit(ctx context.Context, form *models.ApplicationFormInput) *Outcome {
	if form == nil {
		return rejected("", commonerrors.NewApplicationValidationFailedError("empty submission"))
	}

	if err := o.checker.Check(form); err != nil {
		return rejected("", err)
	}

	code, err := o.issuer.Issue(ctx)
	if err != nil {
		return rejected("", err)
	}

	result, err := o.backend.Process(ctx, code, form)
	if err != nil {
		return rejected(code, err)
	}

	return &Outcome{
		Status:       StatusAccepted,
		TrackingCode: code,
		Warnings:     result.Warnings,
		Simulated:    result.Simulated,
		Notification: result.Notification,
	}
}

func (o *Orchestrator) record(ctx context.Context, outcome *Outcome, elapsed time.Duration) {
	reason := "none"
	if code := outcome.Code(); code != "" {
		reason = string(code)
	}
	metrics.SubmissionsTotal.WithLabelValues(string(outcome.Status), reason).Inc()
	metrics.SubmissionDuration.WithLabelValues(o.backend.Name()).Observe(elapsed.Seconds())
	o.obs.RecordSubmission(ctx, string(outcome.Status), elapsed)

	fields := map[string]interface{}{
		"trackingCode": outcome.TrackingCode,
		"durationMs":   elapsed.Milliseconds(),
	}

	switch {
	case outcome.Accepted():
		fields["warnings"] = len(outcome.Warnings)
		fields["simulated"] = outcome.Simulated
		o.logger.Info("submission accepted", fields)
	case commonerrors.GetErrorCategory(outcome.Code()) == "VALIDATION":
		fields["reason"] = outcome.Reason
		o.logger.Info("submission rejected by validation", fields)
	default:
		fields["reason"] = outcome.Reason
		fields["errorCode"] = string(outcome.Code())
		fields["error"] = outcome.Err
		o.logger.Error("submission rejected", fields)
	}
}

// Wait blocks until background notification tasks have finished or ctx ends.
func (o *Orchestrator) Wait(ctx context.Context) error {
	if w, ok := o.backend.(interface{ Wait(context.Context) error }); ok {
		return w.Wait(ctx)
	}
	return nil
}

func (o *Orchestrator) BackendName() string {
	return o.backend.Name()
}

func rejected(code string, err error) *Outcome {
	return &Outcome{
		Status:       StatusRejected,
		TrackingCode: code,
		Reason:       reasonFor(err),
		Err:          err,
	}
}

// reasonFor turns an error into an actionable sentence for the caller.
func reasonFor(err error) string {
	stdErr, ok := commonerrors.AsStandardError(err)
	if !ok {
		return fmt.Sprintf("submission failed: %v", err)
	}

	switch stdErr.Code {
	case commonerrors.ErrCodeMissingRequiredAttachment:
		return fmt.Sprintf("required attachment missing: %v", stdErr.Metadata["field"])
	case commonerrors.ErrCodeApplicationValidationFailed:
		return fmt.Sprintf("application is incomplete or invalid: %s", stdErr.Details)
	case commonerrors.ErrCodeStorageUploadFailed:
		return fmt.Sprintf("attachment upload failed: %s", stdErr.Details)
	case commonerrors.ErrCodeDuplicateTrackingCode:
		return fmt.Sprintf("could not persist application: tracking code already in use (%s)", stdErr.Details)
	case commonerrors.ErrCodeDatabaseInsertFailed, commonerrors.ErrCodeDatabaseConnectionFailed:
		return fmt.Sprintf("could not persist application: %s", stdErr.Details)
	default:
		return fmt.Sprintf("submission failed: %s", stdErr.Details)
	}
}
