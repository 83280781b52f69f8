// internal/models/application.go
package models

import "time"

// ProgramType selects between a Certificate of Competency track and a set of short courses.
type ProgramType string

const (
	ProgramTypeCoC         ProgramType = "coc"
	ProgramTypeShortCourse ProgramType = "short_course"
)

// Attachment is a binary document as received from the applicant.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Content     []byte `json:"-"`
}

// Size returns the payload length in bytes.
func (a *Attachment) Size() int {
	if a == nil {
		return 0
	}
	return len(a.Content)
}

type ApplicationFiles struct {
	Passport        *Attachment  `json:"passport,omitempty"`
	PersonalPicture *Attachment  `json:"personalPicture,omitempty"`
	AdditionalDocs  []Attachment `json:"additionalDocs,omitempty"`
}

// ApplicationFormInput is everything the applicant entered across the form steps.
// It is handed to the orchestrator once and never mutated afterwards.
type ApplicationFormInput struct {
	ProgramType  ProgramType `json:"program_type"`
	CoCProgram   string      `json:"coc_program,omitempty"`
	ShortCourses []string    `json:"short_courses,omitempty"`
	IntakeDate   string      `json:"intake_date"`
	StudyMode    string      `json:"study_mode"`
	DeliveryMode string      `json:"delivery_mode"`

	FirstName   string `json:"first_name"`
	MiddleName  string `json:"middle_name,omitempty"`
	LastName    string `json:"last_name"`
	DOB         string `json:"dob"`
	Nationality string `json:"nationality"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	WhatsApp    string `json:"whatsapp,omitempty"`

	PassportNumber       string `json:"passport_number,omitempty"`
	PassportExpiry       string `json:"passport_expiry,omitempty"`
	CountryOfResidence   string `json:"country_of_residence,omitempty"`
	HighestEducation     string `json:"highest_education,omitempty"`
	ExistingCertificates string `json:"existing_certificates,omitempty"`

	HasSeaService         bool   `json:"has_sea_service"`
	SeaServiceDescription string `json:"sea_service_description,omitempty"`

	Files ApplicationFiles `json:"-"`
}

// FullName joins first, middle and last name, skipping empty parts.
func (f *ApplicationFormInput) FullName() string {
	name := f.FirstName
	for _, part := range []string{f.MiddleName, f.LastName} {
		if part == "" {
			continue
		}
		if name != "" {
			name += " "
		}
		name += part
	}
	return name
}

// ProgramLabel is the human readable program selection used in notifications.
func (f *ApplicationFormInput) ProgramLabel() string {
	if f.ProgramType == ProgramTypeCoC && f.CoCProgram != "" {
		return f.CoCProgram
	}
	if len(f.ShortCourses) > 0 {
		label := f.ShortCourses[0]
		for _, c := range f.ShortCourses[1:] {
			label += ", " + c
		}
		return label
	}
	return "N/A"
}

// ApplicationRecord is the persisted, write-once representation of a submission.
type ApplicationRecord struct {
	ID             string      `json:"id"`
	TrackingNumber string      `json:"tracking_number"`
	Status         string      `json:"status"`
	ProgramType    ProgramType `json:"program_type"`
	CoCProgram     string      `json:"coc_program,omitempty"`
	ShortCourses   []string    `json:"short_courses"`
	IntakeDate     string      `json:"intake_date"`
	StudyMode      string      `json:"study_mode"`
	DeliveryMode   string      `json:"delivery_mode"`

	FirstName   string `json:"first_name"`
	MiddleName  string `json:"middle_name,omitempty"`
	LastName    string `json:"last_name"`
	DOB         string `json:"dob"`
	Nationality string `json:"nationality"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	WhatsApp    string `json:"whatsapp,omitempty"`

	PassportNumber       string `json:"passport_number,omitempty"`
	PassportExpiry       string `json:"passport_expiry,omitempty"`
	CountryOfResidence   string `json:"country_of_residence,omitempty"`
	HighestEducation     string `json:"highest_education,omitempty"`
	ExistingCertificates string `json:"existing_certificates,omitempty"`

	HasSeaService         bool   `json:"has_sea_service"`
	SeaServiceDescription string `json:"sea_service_description,omitempty"`

	PassportDocumentRef    string   `json:"passport_url"`
	PersonalPictureRef     string   `json:"personal_picture_url"`
	AdditionalDocumentRefs []string `json:"additional_document_urls"`

	CreatedAt time.Time `json:"created_at"`
}

const RecordStatusSubmitted = "submitted"

// NewApplicationRecord assembles the record from the form and the resolved attachment locators.
func NewApplicationRecord(id, trackingNumber string, form *ApplicationFormInput, passportRef, pictureRef string, additionalRefs []string, createdAt time.Time) *ApplicationRecord {
	shortCourses := append([]string(nil), form.ShortCourses...)
	if shortCourses == nil {
		shortCourses = []string{}
	}
	additional := append([]string(nil), additionalRefs...)
	if additional == nil {
		additional = []string{}
	}

	return &ApplicationRecord{
		ID:                     id,
		TrackingNumber:         trackingNumber,
		Status:                 RecordStatusSubmitted,
		ProgramType:            form.ProgramType,
		CoCProgram:             form.CoCProgram,
		ShortCourses:           shortCourses,
		IntakeDate:             form.IntakeDate,
		StudyMode:              form.StudyMode,
		DeliveryMode:           form.DeliveryMode,
		FirstName:              form.FirstName,
		MiddleName:             form.MiddleName,
		LastName:               form.LastName,
		DOB:                    form.DOB,
		Nationality:            form.Nationality,
		Email:                  form.Email,
		Phone:                  form.Phone,
		WhatsApp:               form.WhatsApp,
		PassportNumber:         form.PassportNumber,
		PassportExpiry:         form.PassportExpiry,
		CountryOfResidence:     form.CountryOfResidence,
		HighestEducation:       form.HighestEducation,
		ExistingCertificates:   form.ExistingCertificates,
		HasSeaService:          form.HasSeaService,
		SeaServiceDescription:  form.SeaServiceDescription,
		PassportDocumentRef:    passportRef,
		PersonalPictureRef:     pictureRef,
		AdditionalDocumentRefs: additional,
		CreatedAt:              createdAt.UTC(),
	}
}
