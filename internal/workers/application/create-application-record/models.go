// internal/workers/application/create-application-record/models.go
package createapplicationrecord

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"maritime-intake/internal/models"

	"github.com/lib/pq"
)

var (
	ErrDatabaseInsertFailed  = errors.New("DATABASE_INSERT_FAILED")
	ErrDuplicateTrackingCode = errors.New("DUPLICATE_TRACKING_CODE")
)

// Repository persists a fully assembled record in one atomic insert.
type Repository interface {
	Insert(ctx context.Context, record *models.ApplicationRecord) error
}

// applicationRow is the column mapping of the applications table.
type applicationRow struct {
	ID                     string         `db:"id"`
	TrackingNumber         string         `db:"tracking_number"`
	Status                 string         `db:"status"`
	ProgramType            string         `db:"program_type"`
	CoCProgram             sql.NullString `db:"coc_program"`
	ShortCourses           pq.StringArray `db:"short_courses"`
	IntakeDate             string         `db:"intake_date"`
	StudyMode              string         `db:"study_mode"`
	DeliveryMode           string         `db:"delivery_mode"`
	FirstName              string         `db:"first_name"`
	MiddleName             sql.NullString `db:"middle_name"`
	LastName               string         `db:"last_name"`
	DOB                    string         `db:"dob"`
	Nationality            string         `db:"nationality"`
	Email                  string         `db:"email"`
	Phone                  string         `db:"phone"`
	WhatsApp               sql.NullString `db:"whatsapp"`
	PassportNumber         sql.NullString `db:"passport_number"`
	PassportExpiry         sql.NullString `db:"passport_expiry"`
	CountryOfResidence     sql.NullString `db:"country_of_residence"`
	HighestEducation       sql.NullString `db:"highest_education"`
	ExistingCertificates   sql.NullString `db:"existing_certificates"`
	HasSeaService          bool           `db:"has_sea_service"`
	SeaServiceDescription  sql.NullString `db:"sea_service_description"`
	PassportURL            string         `db:"passport_url"`
	PersonalPictureURL     string         `db:"personal_picture_url"`
	AdditionalDocumentURLs pq.StringArray `db:"additional_document_urls"`
	CreatedAt              time.Time      `db:"created_at"`
}

func toRow(r *models.ApplicationRecord) applicationRow {
	return applicationRow{
		ID:                     r.ID,
		TrackingNumber:         r.TrackingNumber,
		Status:                 r.Status,
		ProgramType:            string(r.ProgramType),
		CoCProgram:             nullable(r.CoCProgram),
		ShortCourses:           pq.StringArray(nonNil(r.ShortCourses)),
		IntakeDate:             r.IntakeDate,
		StudyMode:              r.StudyMode,
		DeliveryMode:           r.DeliveryMode,
		FirstName:              r.FirstName,
		MiddleName:             nullable(r.MiddleName),
		LastName:               r.LastName,
		DOB:                    r.DOB,
		Nationality:            r.Nationality,
		Email:                  r.Email,
		Phone:                  r.Phone,
		WhatsApp:               nullable(r.WhatsApp),
		PassportNumber:         nullable(r.PassportNumber),
		PassportExpiry:         nullable(r.PassportExpiry),
		CountryOfResidence:     nullable(r.CountryOfResidence),
		HighestEducation:       nullable(r.HighestEducation),
		ExistingCertificates:   nullable(r.ExistingCertificates),
		HasSeaService:          r.HasSeaService,
		SeaServiceDescription:  nullable(r.SeaServiceDescription),
		PassportURL:            r.PassportDocumentRef,
		PersonalPictureURL:     r.PersonalPictureRef,
		AdditionalDocumentURLs: pq.StringArray(nonNil(r.AdditionalDocumentRefs)),
		CreatedAt:              r.CreatedAt,
	}
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
