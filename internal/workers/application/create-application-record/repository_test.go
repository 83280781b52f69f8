package createapplicationrecord

import (
	"context"
	"errors"
	"testing"
	"time"

	commonerrors "maritime-intake/internal/common/errors"
	"maritime-intake/internal/common/logger"
	"maritime-intake/internal/common/supabase"
	"maritime-intake/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func createTestConfig() *Config {
	return &Config{Table: "applications"}
}

func createTestRecord() *models.ApplicationRecord {
	form := models.NewFormBuilder().
		WithProgram(models.ProgramTypeShortCourse, "", []string{"Basic Training (PST, FPFF, EFA, PSSR)", "GMDSS"}).
		WithSchedule("2025-09-01", "Full-time", "In-person").
		WithIdentity("Kwame", "", "Mensah", "1996-11-20", "Ghanaian").
		WithContact("kwame@example.com", "+233201234567", "").
		WithSeaService(true, "2 years deck cadet").
		Build()

	return models.NewApplicationRecord(
		"5f0c3a1e-6f0e-4d8e-9a57-0e2f7f0a1b2c",
		"AAMOI-20250307-1234",
		&form,
		"https://storage/passport",
		"https://storage/profile",
		[]string{"https://storage/extra-1"},
		time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC),
	)
}

func newMockRepository(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewPostgresRepository(createTestConfig(), sqlx.NewDb(db, "postgres"), newTestLogger(t)), mock
}

func TestPostgresRepository_Insert_Success(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`INSERT INTO "applications"`).
		WithArgs(
			"5f0c3a1e-6f0e-4d8e-9a57-0e2f7f0a1b2c",
			"AAMOI-20250307-1234",
			"submitted",
			"short_course",
			sqlmock.AnyArg(), // coc_program (NULL)
			sqlmock.AnyArg(), // short_courses
			"2025-09-01",
			"Full-time",
			"In-person",
			"Kwame",
			sqlmock.AnyArg(),
			"Mensah",
			"1996-11-20",
			"Ghanaian",
			"kwame@example.com",
			"+233201234567",
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			true,
			"2 years deck cadet",
			"https://storage/passport",
			"https://storage/profile",
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs("application", "5f0c3a1e-6f0e-4d8e-9a57-0e2f7f0a1b2c", "application_submitted", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Insert(context.Background(), createTestRecord())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Insert_AuditFailureIsNonCritical(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`INSERT INTO "applications"`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).WillReturnError(errors.New("relation \"audit_log\" does not exist"))

	assert.NoError(t, repo.Insert(context.Background(), createTestRecord()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Insert_Errors(t *testing.T) {
	tests := []struct {
		name     string
		dbErr    error
		sentinel error
		code     commonerrors.ErrorCode
		contains string
	}{
		{
			name:     "unique violation",
			dbErr:    &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint \"applications_tracking_number_key\""},
			sentinel: ErrDuplicateTrackingCode,
			code:     commonerrors.ErrCodeDuplicateTrackingCode,
			contains: "AAMOI-20250307-1234",
		},
		{
			name:     "connection failure",
			dbErr:    errors.New("dial tcp 10.0.0.5:5432: connect: connection refused"),
			sentinel: ErrDatabaseInsertFailed,
			code:     commonerrors.ErrCodeDatabaseInsertFailed,
			contains: "connection refused",
		},
		{
			name:     "check constraint",
			dbErr:    &pq.Error{Code: "23514", Message: "new row violates check constraint"},
			sentinel: ErrDatabaseInsertFailed,
			code:     commonerrors.ErrCodeDatabaseInsertFailed,
			contains: "check constraint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			mock.ExpectExec(`INSERT INTO "applications"`).WillReturnError(tt.dbErr)

			err := repo.Insert(context.Background(), createTestRecord())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.True(t, commonerrors.HasCode(err, tt.code))
			assert.Contains(t, err.Error(), tt.contains)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestToRow_NullsAndArrays(t *testing.T) {
	row := toRow(createTestRecord())
	assert.False(t, row.CoCProgram.Valid)
	assert.False(t, row.PassportExpiry.Valid)
	assert.True(t, row.SeaServiceDescription.Valid)
	assert.Equal(t, pq.StringArray{"Basic Training (PST, FPFF, EFA, PSSR)", "GMDSS"}, row.ShortCourses)
	assert.Equal(t, pq.StringArray{"https://storage/extra-1"}, row.AdditionalDocumentURLs)
}

type mockSupabaseAPI struct {
	InsertFunc func(ctx context.Context, table string, row interface{}) ([]byte, error)
	calls      int
}

func (m *mockSupabaseAPI) Insert(ctx context.Context, table string, row interface{}) ([]byte, error) {
	m.calls++
	return m.InsertFunc(ctx, table, row)
}

func TestSupabaseRepository_Insert(t *testing.T) {
	api := &mockSupabaseAPI{InsertFunc: func(_ context.Context, table string, row interface{}) ([]byte, error) {
		assert.Equal(t, "applications", table)
		rec, ok := row.(*models.ApplicationRecord)
		require.True(t, ok)
		assert.Equal(t, "AAMOI-20250307-1234", rec.TrackingNumber)
		return []byte(`[{}]`), nil
	}}
	repo := NewSupabaseRepository(createTestConfig(), api, newTestLogger(t))

	assert.NoError(t, repo.Insert(context.Background(), createTestRecord()))
	assert.Equal(t, 1, api.calls)
}

func TestSupabaseRepository_Insert_Conflict(t *testing.T) {
	api := &mockSupabaseAPI{InsertFunc: func(context.Context, string, interface{}) ([]byte, error) {
		return nil, &supabase.APIError{StatusCode: 409, Message: "duplicate key"}
	}}
	repo := NewSupabaseRepository(createTestConfig(), api, newTestLogger(t))

	err := repo.Insert(context.Background(), createTestRecord())
	assert.ErrorIs(t, err, ErrDuplicateTrackingCode)
	assert.True(t, commonerrors.HasCode(err, commonerrors.ErrCodeDuplicateTrackingCode))
}

func TestSupabaseRepository_Insert_Failure(t *testing.T) {
	api := &mockSupabaseAPI{InsertFunc: func(context.Context, string, interface{}) ([]byte, error) {
		return nil, &supabase.APIError{StatusCode: 400, Message: "invalid input syntax for type date"}
	}}
	repo := NewSupabaseRepository(createTestConfig(), api, newTestLogger(t))

	err := repo.Insert(context.Background(), createTestRecord())
	assert.ErrorIs(t, err, ErrDatabaseInsertFailed)
	assert.Contains(t, err.Error(), "invalid input syntax")
}
