// internal/workers/application/submit-application/models.go
package submitapplication

import (
	"context"

	commonerrors "maritime-intake/internal/common/errors"
	"maritime-intake/internal/models"
)

const (
	TaskType = "submit-student-application"
)

type Status string

const (
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Outcome is the result of one submission. Notification delivers exactly one
// report for an accepted submission and is nil for a rejected one.
type Outcome struct {
	Status       Status                            `json:"status"`
	TrackingCode string                            `json:"trackingNumber,omitempty"`
	Reason       string                            `json:"reason,omitempty"`
	Warnings     []string                          `json:"warnings,omitempty"`
	Simulated    bool                              `json:"simulated,omitempty"`
	Err          error                             `json:"-"`
	Notification <-chan *models.NotificationReport `json:"-"`
}

func (o *Outcome) Accepted() bool {
	return o != nil && o.Status == StatusAccepted
}

// Code is the error code behind a rejection, or "" for an accepted outcome.
func (o *Outcome) Code() commonerrors.ErrorCode {
	if o == nil || o.Err == nil {
		return ""
	}
	if stdErr, ok := commonerrors.AsStandardError(o.Err); ok {
		return stdErr.Code
	}
	return commonerrors.ErrCodeInternalError
}

// Backend performs the side effects of an accepted submission. It is chosen
// once at startup.
type Backend interface {
	Name() string
	Process(ctx context.Context, trackingCode string, form *models.ApplicationFormInput) (*BackendResult, error)
}

type BackendResult struct {
	Warnings     []string
	Simulated    bool
	Notification <-chan *models.NotificationReport
}

// FormChecker rejects a form before any external call.
type FormChecker interface {
	Check(form *models.ApplicationFormInput) error
}

// CodeIssuer hands out a reserved tracking code.
type CodeIssuer interface {
	Issue(ctx context.Context) (string, error)
}

// NotificationObserver receives every captured notification result.
type NotificationObserver func(report *models.NotificationReport, err error)

const (
	BackendLive      = "live"
	BackendSimulated = "simulated"
)
