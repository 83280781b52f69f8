// internal/workers/application/submit-application/live.go
package submitapplication

import (
	"context"
	"fmt"
	"sync"
	"time"

	commonerrors "maritime-intake/internal/common/errors"
	"maritime-intake/internal/common/logger"
	"maritime-intake/internal/common/metrics"
	"maritime-intake/internal/common/observability"
	"maritime-intake/internal/models"
	attachmentstore "maritime-intake/internal/workers/application/attachment-store"
	createapplicationrecord "maritime-intake/internal/workers/application/create-application-record"
	sendnotification "maritime-intake/internal/workers/application/send-notification"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// LiveBackend uploads the attachments, inserts the record and dispatches the
// notification in the background.
type LiveBackend struct {
	config     *Config
	store      attachmentstore.Store
	repository createapplicationrecord.Repository
	dispatcher sendnotification.Dispatcher
	observer   NotificationObserver
	obs        *observability.Observability
	logger     logger.Logger
	newID      func() string
	now        func() time.Time

	inflight sync.WaitGroup
}

type LiveOption func(*LiveBackend)

// WithNotificationObserver is called once per dispatched notification, after
// the report has been captured.
func WithNotificationObserver(fn NotificationObserver) LiveOption {
	return func(b *LiveBackend) { b.observer = fn }
}

func WithClock(now func() time.Time) LiveOption {
	return func(b *LiveBackend) { b.now = now }
}

func WithIDGenerator(fn func() string) LiveOption {
	return func(b *LiveBackend) { b.newID = fn }
}

func NewLiveBackend(
	config *Config,
	store attachmentstore.Store,
	repository createapplicationrecord.Repository,
	dispatcher sendnotification.Dispatcher,
	obs *observability.Observability,
	log logger.Logger,
	opts ...LiveOption,
) *LiveBackend {
	b := &LiveBackend{
		config:     config,
		store:      store,
		repository: repository,
		dispatcher: dispatcher,
		obs:        obs,
		logger:     logger.ForComponent(log, "live-backend"),
		newID:      func() string { return uuid.New().String() },
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *LiveBackend) Name() string {
	return BackendLive
}

func (b *LiveBackend) Process(ctx context.Context, trackingCode string, form *models.ApplicationFormInput) (*BackendResult, error) {
	log := b.logger.WithFields(map[string]interface{}{"trackingCode": trackingCode})

	passportRef, pictureRef, err := b.uploadRequired(ctx, trackingCode, form)
	if err != nil {
		return nil, err
	}

	additionalRefs, warnings := b.uploadAdditional(ctx, trackingCode, form.Files.AdditionalDocs)

	record := models.NewApplicationRecord(b.newID(), trackingCode, form, passportRef, pictureRef, additionalRefs, b.now())
	if err := b.persist(ctx, record); err != nil {
		return nil, err
	}

	log.Info("application persisted", map[string]interface{}{
		"applicationId": record.ID,
		"documents":     2 + len(additionalRefs),
	})

	return &BackendResult{
		Warnings:     warnings,
		Notification: b.notify(models.NewNotificationPayload(record)),
	}, nil
}

// uploadRequired uploads passport and picture concurrently. The first failure
// cancels the other upload.
func (b *LiveBackend) uploadRequired(ctx context.Context, trackingCode string, form *models.ApplicationFormInput) (string, string, error) {
	var passportRef, pictureRef string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ref, err := b.upload(gctx, form.Files.Passport, attachmentstore.CategoryPassport, trackingCode)
		passportRef = ref
		return err
	})
	g.Go(func() error {
		ref, err := b.upload(gctx, form.Files.PersonalPicture, attachmentstore.CategoryProfile, trackingCode)
		pictureRef = ref
		return err
	})
	if err := g.Wait(); err != nil {
		return "", "", err
	}
	return passportRef, pictureRef, nil
}

// uploadAdditional is best-effort. Locators keep the input order; every
// failed document becomes a warning.
func (b *LiveBackend) uploadAdditional(ctx context.Context, trackingCode string, docs []models.Attachment) ([]string, []string) {
	if len(docs) == 0 {
		return []string{}, nil
	}

	refs := make([]string, len(docs))
	errs := make([]error, len(docs))

	var g errgroup.Group
	if b.config.UploadParallel > 0 {
		g.SetLimit(b.config.UploadParallel)
	}
	for i := range docs {
		g.Go(func() error {
			refs[i], errs[i] = b.upload(ctx, &docs[i], attachmentstore.CategoryAdditional, trackingCode)
			return nil
		})
	}
	_ = g.Wait()

	uploaded := make([]string, 0, len(docs))
	var warnings []string
	for i := range docs {
		if errs[i] != nil {
			warnings = append(warnings, fmt.Sprintf("additional document %q was not uploaded", docs[i].Filename))
			b.logger.Warn("optional attachment upload failed", map[string]interface{}{
				"trackingCode": trackingCode,
				"filename":     docs[i].Filename,
				"index":        i,
				"error":        errs[i],
			})
			continue
		}
		uploaded = append(uploaded, refs[i])
	}
	return uploaded, warnings
}

func (b *LiveBackend) upload(ctx context.Context, file *models.Attachment, category attachmentstore.Category, trackingCode string) (string, error) {
	ctx, span := b.obs.StartSpan(ctx, "upload-attachment", attribute.String("category", string(category)))
	defer span.End()

	if b.config.UploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.config.UploadTimeout)
		defer cancel()
	}

	start := time.Now()
	ref, err := b.store.Upload(ctx, file, category, trackingCode)
	status := "success"
	if err != nil {
		status = "failed"
		span.RecordError(err)
		if _, ok := commonerrors.AsStandardError(err); !ok {
			err = commonerrors.NewStorageUploadFailedError(string(category), err)
		}
	}
	metrics.UploadsTotal.WithLabelValues(string(category), status).Inc()
	b.obs.RecordStep(ctx, "upload", status, time.Since(start))
	return ref, err
}

func (b *LiveBackend) persist(ctx context.Context, record *models.ApplicationRecord) error {
	ctx, span := b.obs.StartSpan(ctx, "persist-record")
	defer span.End()

	if b.config.PersistTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.config.PersistTimeout)
		defer cancel()
	}

	start := time.Now()
	err := b.repository.Insert(ctx, record)
	status := "success"
	if err != nil {
		status = "failed"
		span.RecordError(err)
		if _, ok := commonerrors.AsStandardError(err); !ok {
			err = commonerrors.NewDatabaseInsertFailedError(err)
		}
	}
	b.obs.RecordStep(ctx, "persist", status, time.Since(start))
	return err
}

// notify runs the dispatcher once, detached from the request context, and
// publishes the captured report on the returned channel.
func (b *LiveBackend) notify(payload *models.NotificationPayload) <-chan *models.NotificationReport {
	ch := make(chan *models.NotificationReport, 1)

	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		defer close(ch)

		ctx := context.Background()
		if b.config.NotifyTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, b.config.NotifyTimeout)
			defer cancel()
		}

		start := time.Now()
		report, err := b.dispatch(ctx, payload)
		b.obs.RecordStep(ctx, "notify", string(report.Status), time.Since(start))

		fields := map[string]interface{}{
			"trackingCode": payload.TrackingCode,
			"status":       string(report.Status),
			"attempted":    report.Attempted(),
		}
		if err != nil {
			fields["error"] = err
			b.logger.Warn("notification degraded", fields)
		} else {
			b.logger.Info("notification delivered", fields)
		}

		if b.observer != nil {
			b.observer(report, err)
		}
		ch <- report
	}()

	return ch
}

func (b *LiveBackend) dispatch(ctx context.Context, payload *models.NotificationPayload) (report *models.NotificationReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = commonerrors.NewNotificationSendFailedError("dispatch", fmt.Errorf("panic: %v", r))
			report = nil
		}
		if report == nil {
			report = &models.NotificationReport{
				TrackingCode: payload.TrackingCode,
				Status:       models.NotificationStatusFailed,
				Messages:     []models.MessageResult{},
				CompletedAt:  b.now().UTC(),
			}
			if err != nil {
				report.Error = err.Error()
			}
		}
	}()

	if b.dispatcher == nil {
		return nil, commonerrors.NewNotificationUnavailableError("no dispatcher configured")
	}
	return b.dispatcher.Notify(ctx, payload)
}

// Wait blocks until every notification task has finished or ctx ends.
func (b *LiveBackend) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
