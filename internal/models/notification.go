// internal/models/notification.go
package models

import "time"

// NotificationPayload is the summary handed to the dispatcher after a successful insert.
type NotificationPayload struct {
	TrackingCode     string   `json:"trackingCode"`
	ApplicantName    string   `json:"applicantName"`
	ApplicantEmail   string   `json:"applicantEmail"`
	ApplicantPhone   string   `json:"applicantPhone,omitempty"`
	Program          string   `json:"program"`
	ProgramType      string   `json:"programType"`
	IntakeDate       string   `json:"intakeDate"`
	DocumentLocators []string `json:"documentLocators"`
}

// NewNotificationPayload derives the payload from a persisted record.
func NewNotificationPayload(record *ApplicationRecord) *NotificationPayload {
	locators := make([]string, 0, 2+len(record.AdditionalDocumentRefs))
	for _, ref := range []string{record.PassportDocumentRef, record.PersonalPictureRef} {
		if ref != "" {
			locators = append(locators, ref)
		}
	}
	locators = append(locators, record.AdditionalDocumentRefs...)

	form := ApplicationFormInput{
		ProgramType:  record.ProgramType,
		CoCProgram:   record.CoCProgram,
		ShortCourses: record.ShortCourses,
		FirstName:    record.FirstName,
		MiddleName:   record.MiddleName,
		LastName:     record.LastName,
	}

	return &NotificationPayload{
		TrackingCode:     record.TrackingNumber,
		ApplicantName:    form.FullName(),
		ApplicantEmail:   record.Email,
		ApplicantPhone:   record.Phone,
		Program:          form.ProgramLabel(),
		ProgramType:      string(record.ProgramType),
		IntakeDate:       record.IntakeDate,
		DocumentLocators: locators,
	}
}

type NotificationKind string

const (
	NotificationKindAdmin     NotificationKind = "admin"
	NotificationKindApplicant NotificationKind = "applicant"
	NotificationKindSMS       NotificationKind = "sms"
)

type NotificationStatus string

const (
	NotificationStatusSent        NotificationStatus = "sent"
	NotificationStatusFailed      NotificationStatus = "failed"
	NotificationStatusSkipped     NotificationStatus = "skipped"
	NotificationStatusUnavailable NotificationStatus = "unavailable"
)

// MessageResult records what happened to one outbound message.
type MessageResult struct {
	Kind      NotificationKind   `json:"kind"`
	Recipient string             `json:"recipient,omitempty"`
	Status    NotificationStatus `json:"status"`
	MessageID string             `json:"messageId,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// NotificationReport is the captured result of one dispatch.
type NotificationReport struct {
	ID           string             `json:"id"`
	TrackingCode string             `json:"trackingCode"`
	Status       NotificationStatus `json:"status"`
	Messages     []MessageResult    `json:"messages"`
	Error        string             `json:"error,omitempty"`
	CompletedAt  time.Time          `json:"completedAt"`
}

// Degraded reports whether any message that should have gone out did not.
func (r *NotificationReport) Degraded() bool {
	if r == nil {
		return true
	}
	if r.Status == NotificationStatusUnavailable || r.Status == NotificationStatusFailed {
		return true
	}
	for _, m := range r.Messages {
		if m.Status == NotificationStatusFailed {
			return true
		}
	}
	return false
}

// Attempted counts messages that were actually handed to a transport.
func (r *NotificationReport) Attempted() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, m := range r.Messages {
		if m.Status == NotificationStatusSent || m.Status == NotificationStatusFailed {
			n++
		}
	}
	return n
}
