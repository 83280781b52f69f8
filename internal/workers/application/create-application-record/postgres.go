// internal/workers/application/create-application-record/postgres.go
package createapplicationrecord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	commonerrors "maritime-intake/internal/common/errors"
	"maritime-intake/internal/common/logger"
	"maritime-intake/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

const insertApplicationSQL = `
	INSERT INTO %s (
		id, tracking_number, status, program_type, coc_program, short_courses,
		intake_date, study_mode, delivery_mode,
		first_name, middle_name, last_name, dob, nationality, email, phone, whatsapp,
		passport_number, passport_expiry, country_of_residence, highest_education, existing_certificates,
		has_sea_service, sea_service_description,
		passport_url, personal_picture_url, additional_document_urls, created_at
	) VALUES (
		:id, :tracking_number, :status, :program_type, :coc_program, :short_courses,
		:intake_date, :study_mode, :delivery_mode,
		:first_name, :middle_name, :last_name, :dob, :nationality, :email, :phone, :whatsapp,
		:passport_number, :passport_expiry, :country_of_residence, :highest_education, :existing_certificates,
		:has_sea_service, :sea_service_description,
		:passport_url, :personal_picture_url, :additional_document_urls, :created_at
	)`

type PostgresRepository struct {
	db     *sqlx.DB
	query  string
	logger logger.Logger
}

func NewPostgresRepository(config *Config, db *sqlx.DB, log logger.Logger) *PostgresRepository {
	return &PostgresRepository{
		db:     db,
		query:  fmt.Sprintf(insertApplicationSQL, pq.QuoteIdentifier(config.Table)),
		logger: logger.ForComponent(log, "record-repository").WithFields(map[string]interface{}{"provider": "postgres"}),
	}
}

func (r *PostgresRepository) Insert(ctx context.Context, record *models.ApplicationRecord) error {
	if _, err := r.db.NamedExecContext(ctx, r.query, toRow(record)); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return commonerrors.NewDuplicateTrackingCodeError(record.TrackingNumber,
				fmt.Errorf("%w: %s", ErrDuplicateTrackingCode, pqErr.Message))
		}
		return commonerrors.NewDatabaseInsertFailedError(fmt.Errorf("%w: insert failed: %v", ErrDatabaseInsertFailed, err))
	}

	r.writeAudit(ctx, record)

	r.logger.Info("application record created", map[string]interface{}{
		"applicationId": record.ID,
		"trackingCode":  record.TrackingNumber,
		"programType":   string(record.ProgramType),
	})
	return nil
}

// writeAudit is best-effort; the record is already committed.
func (r *PostgresRepository) writeAudit(ctx context.Context, record *models.ApplicationRecord) {
	details, err := json.Marshal(map[string]interface{}{
		"trackingNumber": record.TrackingNumber,
		"programType":    record.ProgramType,
		"documents":      2 + len(record.AdditionalDocumentRefs),
	})
	if err != nil {
		details = []byte("{}")
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO audit_log (entity_type, entity_id, action, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"application",
		record.ID,
		"application_submitted",
		details,
		record.CreatedAt,
	)
	if err != nil {
		r.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":         err,
			"applicationId": record.ID,
		})
	}
}
