// internal/workers/application/send-notification/models.go
package sendnotification

import (
	"context"
	"errors"

	"maritime-intake/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

var (
	ErrNotificationSendFailed  = errors.New("NOTIFICATION_SEND_FAILED")
	ErrNotificationUnavailable = errors.New("NOTIFICATION_UNAVAILABLE")
)

// Dispatcher sends the admin and applicant messages for one accepted submission.
// The report is always returned, also when err is non-nil.
type Dispatcher interface {
	Notify(ctx context.Context, payload *models.NotificationPayload) (*models.NotificationReport, error)
}

type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

const (
	adminSubjectFormat     = "New Student Application – %s"
	applicantSubjectFormat = "AA Maritime Application Received – %s"
	smsFormat              = "AA Maritime: your application %s was received. Quote this tracking number in any enquiry."
)
