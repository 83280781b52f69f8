// internal/workers/application/submit-application/orchestrator_test.go
package submitapplication

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	commonerrors "maritime-intake/internal/common/errors"
	"maritime-intake/internal/common/logger"
	"maritime-intake/internal/common/observability"
	"maritime-intake/internal/models"
	attachmentstore "maritime-intake/internal/workers/application/attachment-store"
	sendnotification "maritime-intake/internal/workers/application/send-notification"
	trackingcode "maritime-intake/internal/workers/application/tracking-code"
	validateapplicationdata "maritime-intake/internal/workers/application/validate-application-data"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Fakes
// ==========================

type fakeStore struct {
	mu      sync.Mutex
	calls   []attachmentstore.Category
	fail    map[string]error
	delay   time.Duration
	started chan struct{}
}

func (s *fakeStore) Upload(ctx context.Context, file *models.Attachment, category attachmentstore.Category, trackingCode string) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, category)
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", commonerrors.NewStorageUploadFailedError(string(category), ctx.Err())
		}
	}
	if err := s.fail[file.Filename]; err != nil {
		return "", commonerrors.NewStorageUploadFailedError(string(category), err)
	}
	return fmt.Sprintf("https://storage.example/%s/%s/%s", trackingCode, category, file.Filename), nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type fakeRepository struct {
	mu      sync.Mutex
	records []*models.ApplicationRecord
	err     error
}

func (r *fakeRepository) Insert(_ context.Context, record *models.ApplicationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return r.err
}

func (r *fakeRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

type fakeDispatcher struct {
	calls    atomic.Int32
	payloads chan *models.NotificationPayload
	err      error
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{payloads: make(chan *models.NotificationPayload, 64)}
}

func (d *fakeDispatcher) Notify(_ context.Context, payload *models.NotificationPayload) (*models.NotificationReport, error) {
	d.calls.Add(1)
	d.payloads <- payload
	report := &models.NotificationReport{TrackingCode: payload.TrackingCode, Status: models.NotificationStatusSent}
	if d.err != nil {
		report.Status = models.NotificationStatusFailed
		report.Error = d.err.Error()
	}
	return report, d.err
}

// recordingSES counts the emails a real MailDispatcher hands to SES.
type recordingSES struct {
	mu  sync.Mutex
	to  []string
	err error
}

func (s *recordingSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	s.mu.Lock()
	s.to = append(s.to, in.Destination.ToAddresses...)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("m-1")}, nil
}

func (s *recordingSES) recipients() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.to...)
}

// ==========================
// Test Helper Functions
// ==========================

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

func newTestLogger(t *testing.T) logger.Logger {
	return &testLogger{t: t}
}

var frozenClock = func() time.Time { return time.Date(2025, 3, 7, 9, 15, 0, 0, time.UTC) }

func createTestConfig() *Config {
	return &Config{
		SimulatedDelay: 50 * time.Millisecond,
		UploadTimeout:  time.Second,
		PersistTimeout: time.Second,
		NotifyTimeout:  time.Second,
		UploadParallel: 2,
		JobTimeout:     5 * time.Second,
	}
}

func createTestInput() models.FormBuilder {
	return models.NewFormBuilder().
		WithProgram(models.ProgramTypeShortCourse, "", []string{"Basic Training (PST, FPFF, EFA, PSSR)"}).
		WithSchedule("2025-09-01", "Part-time", "Blended").
		WithIdentity("Joseph", "K.", "Mensah", "1995-06-30", "Ghanaian").
		WithContact("joseph@example.com", "+233201234567", "+233201234567").
		WithSeaService(true, "18 months as deck rating").
		WithPassport(models.Attachment{Filename: "passport.pdf", ContentType: "application/pdf", Content: []byte("pdf")}).
		WithPersonalPicture(models.Attachment{Filename: "photo.png", ContentType: "image/png", Content: []byte("png")})
}

// sequentialSuffix yields 0,1,2,... so codes differ only in the random part.
func sequentialSuffix() func(int) int {
	var mu sync.Mutex
	next := 0
	return func(n int) int {
		mu.Lock()
		defer mu.Unlock()
		v := next % n
		next++
		return v
	}
}

type harness struct {
	store      *fakeStore
	repository *fakeRepository
	dispatcher *fakeDispatcher
	reports    chan *models.NotificationReport
	live       *LiveBackend
	orch       *Orchestrator
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store:      &fakeStore{fail: map[string]error{}},
		repository: &fakeRepository{},
		dispatcher: newFakeDispatcher(),
		reports:    make(chan *models.NotificationReport, 64),
	}
	log := newTestLogger(t)

	h.live = NewLiveBackend(createTestConfig(), h.store, h.repository, h.dispatcher, observability.NewNoop(), log,
		WithClock(frozenClock),
		WithNotificationObserver(func(r *models.NotificationReport, _ error) { h.reports <- r }),
	)
	h.orch = newOrchestrator(t, h.live)
	return h
}

func newOrchestrator(t *testing.T, backend Backend) *Orchestrator {
	log := newTestLogger(t)
	generator := trackingcode.NewGenerator("AAMOI", trackingcode.WithClock(frozenClock), trackingcode.WithRandom(sequentialSuffix()))
	issuer := trackingcode.NewIssuer(&trackingcode.Config{MaxAttempts: 3}, generator, trackingcode.NewMemoryRegistry(time.Hour), log)
	validator := validateapplicationdata.NewValidator(models.DefaultCatalog(), log)
	return NewOrchestrator(validator, issuer, backend, observability.NewNoop(), log)
}

func awaitReport(t *testing.T, ch <-chan *models.NotificationReport) *models.NotificationReport {
	t.Helper()
	select {
	case r, ok := <-ch:
		require.True(t, ok, "notification channel closed without a report")
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("notification report not delivered")
		return nil
	}
}

// ==========================
// Submission outcomes
// ==========================

func TestSubmit_Accepted(t *testing.T) {
	h := newHarness(t)
	form := createTestInput().
		WithAdditionalDoc(models.Attachment{Filename: "stcw.pdf", Content: []byte("1")}).
		WithAdditionalDoc(models.Attachment{Filename: "medical.pdf", Content: []byte("2")}).
		Build()

	outcome := h.orch.Submit(context.Background(), &form)

	require.True(t, outcome.Accepted(), outcome.Reason)
	assert.Regexp(t, `^AAMOI-20250307-\d{4}$`, outcome.TrackingCode)
	assert.True(t, trackingcode.Valid(outcome.TrackingCode))
	assert.Empty(t, outcome.Warnings)
	assert.False(t, outcome.Simulated)
	assert.NoError(t, outcome.Err)

	report := awaitReport(t, outcome.Notification)
	assert.Equal(t, models.NotificationStatusSent, report.Status)
	assert.Equal(t, int32(1), h.dispatcher.calls.Load())

	assert.Equal(t, 4, h.store.count())
	require.Equal(t, 1, h.repository.count())
	record := h.repository.records[0]
	assert.Equal(t, outcome.TrackingCode, record.TrackingNumber)
	assert.Contains(t, record.PassportDocumentRef, "/passport/passport.pdf")
	assert.Contains(t, record.PersonalPictureRef, "/profile/photo.png")
	require.Len(t, record.AdditionalDocumentRefs, 2)
	assert.Contains(t, record.AdditionalDocumentRefs[0], "stcw.pdf")
	assert.Contains(t, record.AdditionalDocumentRefs[1], "medical.pdf")
	assert.Equal(t, frozenClock(), record.CreatedAt)

	payload := <-h.dispatcher.payloads
	assert.Equal(t, outcome.TrackingCode, payload.TrackingCode)
	assert.Equal(t, "Joseph K. Mensah", payload.ApplicantName)
	assert.Len(t, payload.DocumentLocators, 4)
}

func TestSubmit_AcceptedSendsAdminAndApplicantEmails(t *testing.T) {
	sesClient := &recordingSES{}
	dispatcher := sendnotification.New(&sendnotification.Config{
		EmailEnabled: true,
		FromEmail:    "admissions@aamoi.edu",
		AdminEmail:   "registrar@aamoi.edu",
	}, sesClient, nil, newTestLogger(t))

	live := NewLiveBackend(createTestConfig(), &fakeStore{}, &fakeRepository{}, dispatcher, observability.NewNoop(), newTestLogger(t))
	form := createTestInput().Build()

	outcome := newOrchestrator(t, live).Submit(context.Background(), &form)
	require.True(t, outcome.Accepted())

	report := awaitReport(t, outcome.Notification)
	assert.Equal(t, 2, report.Attempted())
	assert.ElementsMatch(t, []string{"registrar@aamoi.edu", "joseph@example.com"}, sesClient.recipients())
}

func TestSubmit_RequiredUploadFailureRejects(t *testing.T) {
	tests := []struct {
		name     string
		filename string
	}{
		{name: "passport upload fails", filename: "passport.pdf"},
		{name: "picture upload fails", filename: "photo.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.store.fail[tt.filename] = errors.New("i/o timeout")
			form := createTestInput().Build()

			outcome := h.orch.Submit(context.Background(), &form)

			assert.False(t, outcome.Accepted())
			assert.Equal(t, StatusRejected, outcome.Status)
			assert.Contains(t, outcome.Reason, "upload")
			assert.Equal(t, commonerrors.ErrCodeStorageUploadFailed, outcome.Code())
			assert.Nil(t, outcome.Notification)
			assert.Equal(t, 0, h.repository.count())
			assert.Equal(t, int32(0), h.dispatcher.calls.Load())
		})
	}
}

func TestSubmit_InsertFailureRejects(t *testing.T) {
	h := newHarness(t)
	h.repository.err = commonerrors.NewDatabaseInsertFailedError(errors.New(`pq: new row for relation "applications" violates check constraint`))
	form := createTestInput().Build()

	outcome := h.orch.Submit(context.Background(), &form)

	assert.False(t, outcome.Accepted())
	assert.Contains(t, outcome.Reason, "persist")
	assert.Contains(t, outcome.Reason, "check constraint")
	assert.Equal(t, commonerrors.ErrCodeDatabaseInsertFailed, outcome.Code())
	assert.Equal(t, 1, h.repository.count())
	assert.Equal(t, int32(0), h.dispatcher.calls.Load())
	require.NoError(t, h.live.Wait(context.Background()))
	assert.Equal(t, int32(0), h.dispatcher.calls.Load())
}

func TestSubmit_UntypedRepositoryErrorRejects(t *testing.T) {
	h := newHarness(t)
	h.repository.err = errors.New("connection reset by peer")
	form := createTestInput().Build()

	outcome := h.orch.Submit(context.Background(), &form)
	assert.Equal(t, commonerrors.ErrCodeDatabaseInsertFailed, outcome.Code())
	assert.Contains(t, outcome.Reason, "persist")
}

func TestSubmit_NotificationFailureKeepsAcceptance(t *testing.T) {
	sesClient := &recordingSES{err: errors.New("Throttling: Maximum sending rate exceeded")}
	dispatcher := sendnotification.New(&sendnotification.Config{
		EmailEnabled: true,
		FromEmail:    "admissions@aamoi.edu",
		AdminEmail:   "registrar@aamoi.edu",
	}, sesClient, nil, newTestLogger(t))

	var observed atomic.Value
	live := NewLiveBackend(createTestConfig(), &fakeStore{}, &fakeRepository{}, dispatcher, observability.NewNoop(), newTestLogger(t),
		WithNotificationObserver(func(_ *models.NotificationReport, err error) { observed.Store(err) }),
	)
	form := createTestInput().Build()

	outcome := newOrchestrator(t, live).Submit(context.Background(), &form)

	require.True(t, outcome.Accepted())
	assert.NotEmpty(t, outcome.TrackingCode)

	report := awaitReport(t, outcome.Notification)
	assert.True(t, report.Degraded())
	assert.Equal(t, models.NotificationStatusFailed, report.Status)
	assert.Equal(t, 2, report.Attempted())
	assert.Len(t, sesClient.recipients(), 2)

	err, _ := observed.Load().(error)
	assert.True(t, commonerrors.HasCode(err, commonerrors.ErrCodeNotificationSendFailed))
}

func TestSubmit_NotificationUnavailableKeepsAcceptance(t *testing.T) {
	dispatcher := sendnotification.New(&sendnotification.Config{}, nil, nil, newTestLogger(t))
	live := NewLiveBackend(createTestConfig(), &fakeStore{}, &fakeRepository{}, dispatcher, observability.NewNoop(), newTestLogger(t))
	form := createTestInput().Build()

	outcome := newOrchestrator(t, live).Submit(context.Background(), &form)

	require.True(t, outcome.Accepted())
	report := awaitReport(t, outcome.Notification)
	assert.Equal(t, models.NotificationStatusUnavailable, report.Status)
}

func TestSubmit_SimulatedBackendMakesNoCalls(t *testing.T) {
	store := &fakeStore{}
	repository := &fakeRepository{}
	dispatcher := newFakeDispatcher()

	cfg := createTestConfig()
	cfg.SimulatedDelay = 80 * time.Millisecond
	orch := newOrchestrator(t, NewSimulatedBackend(cfg, newTestLogger(t)))
	form := createTestInput().Build()

	start := time.Now()
	outcome := orch.Submit(context.Background(), &form)
	elapsed := time.Since(start)

	require.True(t, outcome.Accepted())
	assert.True(t, outcome.Simulated)
	assert.Regexp(t, `^AAMOI-20250307-\d{4}$`, outcome.TrackingCode)
	assert.GreaterOrEqual(t, elapsed, 80*time.Millisecond)
	assert.Equal(t, BackendSimulated, orch.BackendName())

	report := awaitReport(t, outcome.Notification)
	assert.Equal(t, models.NotificationStatusSkipped, report.Status)
	assert.False(t, report.Degraded())

	assert.Equal(t, 0, store.count())
	assert.Equal(t, 0, repository.count())
	assert.Equal(t, int32(0), dispatcher.calls.Load())
}

func TestSubmit_Simulated_ContextCancelled(t *testing.T) {
	cfg := createTestConfig()
	cfg.SimulatedDelay = time.Minute
	orch := newOrchestrator(t, NewSimulatedBackend(cfg, newTestLogger(t)))
	form := createTestInput().Build()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	outcome := orch.Submit(ctx, &form)
	assert.False(t, outcome.Accepted())
	assert.Equal(t, commonerrors.ErrCodeInternalError, outcome.Code())
}

// ==========================
// Property Tests
// ==========================

func TestSubmit_MissingRequiredAttachment_NoExternalCalls(t *testing.T) {
	tests := []struct {
		name  string
		form  func() models.ApplicationFormInput
		field string
	}{
		{
			name: "no passport",
			form: func() models.ApplicationFormInput {
				f := createTestInput().Build()
				f.Files.Passport = nil
				return f
			},
			field: "passport",
		},
		{
			name: "no picture",
			form: func() models.ApplicationFormInput {
				f := createTestInput().Build()
				f.Files.PersonalPicture = nil
				return f
			},
			field: "personal_picture",
		},
		{
			name: "neither",
			form: func() models.ApplicationFormInput {
				f := createTestInput().Build()
				f.Files.Passport = nil
				f.Files.PersonalPicture = nil
				return f
			},
			field: "passport",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			form := tt.form()

			outcome := h.orch.Submit(context.Background(), &form)

			assert.False(t, outcome.Accepted())
			assert.Empty(t, outcome.TrackingCode)
			assert.Equal(t, commonerrors.ErrCodeMissingRequiredAttachment, outcome.Code())
			assert.Contains(t, outcome.Reason, tt.field)
			assert.Equal(t, 0, h.store.count())
			assert.Equal(t, 0, h.repository.count())
			assert.Equal(t, int32(0), h.dispatcher.calls.Load())
		})
	}
}

func TestSubmit_InvalidForm_NoExternalCalls(t *testing.T) {
	h := newHarness(t)
	form := createTestInput().WithProgram(models.ProgramTypeCoC, "", nil).Build()

	outcome := h.orch.Submit(context.Background(), &form)

	assert.Equal(t, commonerrors.ErrCodeApplicationValidationFailed, outcome.Code())
	assert.Contains(t, outcome.Reason, "coc_program")
	assert.Equal(t, 0, h.store.count())
	assert.Equal(t, 0, h.repository.count())
}

func TestSubmit_NilForm(t *testing.T) {
	h := newHarness(t)
	outcome := h.orch.Submit(context.Background(), nil)
	assert.Equal(t, commonerrors.ErrCodeApplicationValidationFailed, outcome.Code())
}

func TestSubmit_OptionalUploadFailureBecomesWarning(t *testing.T) {
	h := newHarness(t)
	h.store.fail["medical.pdf"] = errors.New("403 Forbidden")
	form := createTestInput().
		WithAdditionalDoc(models.Attachment{Filename: "stcw.pdf", Content: []byte("1")}).
		WithAdditionalDoc(models.Attachment{Filename: "medical.pdf", Content: []byte("2")}).
		WithAdditionalDoc(models.Attachment{Filename: "seabook.pdf", Content: []byte("3")}).
		Build()

	outcome := h.orch.Submit(context.Background(), &form)

	require.True(t, outcome.Accepted())
	require.Len(t, outcome.Warnings, 1)
	assert.Contains(t, outcome.Warnings[0], "medical.pdf")

	record := h.repository.records[0]
	require.Len(t, record.AdditionalDocumentRefs, 2)
	assert.True(t, strings.HasSuffix(record.AdditionalDocumentRefs[0], "stcw.pdf"))
	assert.True(t, strings.HasSuffix(record.AdditionalDocumentRefs[1], "seabook.pdf"))

	awaitReport(t, outcome.Notification)
}

func TestSubmit_NotificationOncePerInsert(t *testing.T) {
	h := newHarness(t)
	const n = 5

	for i := 0; i < n; i++ {
		form := createTestInput().Build()
		outcome := h.orch.Submit(context.Background(), &form)
		require.True(t, outcome.Accepted())
	}
	h.repository.err = commonerrors.NewDatabaseInsertFailedError(errors.New("boom"))
	form := createTestInput().Build()
	assert.False(t, h.orch.Submit(context.Background(), &form).Accepted())

	require.NoError(t, h.orch.Wait(context.Background()))
	assert.Equal(t, n+1, h.repository.count())
	assert.Equal(t, int32(n), h.dispatcher.calls.Load())
	assert.Len(t, h.reports, n)
}

func TestSubmit_ConcurrentSubmissionsGetDistinctCodes(t *testing.T) {
	h := newHarness(t)
	const n = 20

	var wg sync.WaitGroup
	codes := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			form := createTestInput().Build()
			outcome := h.orch.Submit(context.Background(), &form)
			if outcome.Accepted() {
				codes <- outcome.TrackingCode
			}
		}()
	}
	wg.Wait()
	close(codes)
	require.NoError(t, h.orch.Wait(context.Background()))

	seen := map[string]bool{}
	for code := range codes {
		assert.True(t, strings.HasPrefix(code, "AAMOI-20250307-"))
		assert.False(t, seen[code], "tracking code %s reused", code)
		seen[code] = true
	}
	assert.Len(t, seen, n)

	inserted := map[string]bool{}
	for _, r := range h.repository.records {
		assert.False(t, inserted[r.TrackingNumber])
		inserted[r.TrackingNumber] = true
	}
}

func TestSubmit_TrackingCodeExhausted(t *testing.T) {
	h := newHarness(t)
	generator := trackingcode.NewGenerator("AAMOI", trackingcode.WithClock(frozenClock), trackingcode.WithRandom(func(int) int { return 42 }))
	registry := trackingcode.NewMemoryRegistry(time.Hour)
	_, err := registry.Reserve(context.Background(), generator.Generate())
	require.NoError(t, err)

	issuer := trackingcode.NewIssuer(&trackingcode.Config{MaxAttempts: 3}, generator, registry, newTestLogger(t))
	orch := NewOrchestrator(validateapplicationdata.NewValidator(nil, newTestLogger(t)), issuer, h.live, observability.NewNoop(), newTestLogger(t))
	form := createTestInput().Build()

	outcome := orch.Submit(context.Background(), &form)

	assert.Equal(t, commonerrors.ErrCodeDuplicateTrackingCode, outcome.Code())
	assert.Contains(t, outcome.Reason, "persist")
	assert.Equal(t, 0, h.store.count())
}

func TestSubmit_UploadTimeoutIsFailure(t *testing.T) {
	store := &fakeStore{delay: 200 * time.Millisecond}
	cfg := createTestConfig()
	cfg.UploadTimeout = 20 * time.Millisecond
	repository := &fakeRepository{}
	live := NewLiveBackend(cfg, store, repository, newFakeDispatcher(), observability.NewNoop(), newTestLogger(t))
	form := createTestInput().Build()

	outcome := newOrchestrator(t, live).Submit(context.Background(), &form)

	assert.Equal(t, commonerrors.ErrCodeStorageUploadFailed, outcome.Code())
	assert.Contains(t, outcome.Reason, "deadline exceeded")
	assert.Equal(t, 0, repository.count())
}

func TestSubmit_NotificationDetachedFromRequestContext(t *testing.T) {
	h := newHarness(t)
	form := createTestInput().Build()

	ctx, cancel := context.WithCancel(context.Background())
	outcome := h.orch.Submit(ctx, &form)
	cancel()

	require.True(t, outcome.Accepted())
	report := awaitReport(t, outcome.Notification)
	assert.Equal(t, models.NotificationStatusSent, report.Status)
}

func TestLiveBackend_WaitHonoursContext(t *testing.T) {
	block := make(chan struct{})
	dispatcher := &blockingDispatcher{release: block}
	live := NewLiveBackend(createTestConfig(), &fakeStore{}, &fakeRepository{}, dispatcher, observability.NewNoop(), newTestLogger(t))
	form := createTestInput().Build()

	outcome := newOrchestrator(t, live).Submit(context.Background(), &form)
	require.True(t, outcome.Accepted())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, live.Wait(ctx), context.DeadlineExceeded)

	close(block)
	assert.NoError(t, live.Wait(context.Background()))
}

func TestReasonFor(t *testing.T) {
	assert.Equal(t, "submission failed: boom", reasonFor(errors.New("boom")))
	assert.Contains(t, reasonFor(commonerrors.NewMissingRequiredAttachmentError("passport")), "passport")
	assert.Contains(t, reasonFor(commonerrors.NewStorageUploadFailedError("profile", errors.New("x"))), "upload")
	assert.Contains(t, reasonFor(commonerrors.NewDatabaseInsertFailedError(errors.New("x"))), "persist")
}

type blockingDispatcher struct {
	release chan struct{}
}

func (d *blockingDispatcher) Notify(ctx context.Context, p *models.NotificationPayload) (*models.NotificationReport, error) {
	<-d.release
	return &models.NotificationReport{TrackingCode: p.TrackingCode, Status: models.NotificationStatusSent}, nil
}
