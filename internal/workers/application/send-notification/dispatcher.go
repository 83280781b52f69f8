// internal/workers/application/send-notification/dispatcher.go
package sendnotification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	commonerrors "maritime-intake/internal/common/errors"
	"maritime-intake/internal/common/logger"
	"maritime-intake/internal/common/metrics"
	"maritime-intake/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/google/uuid"
)

// New returns a mailer-backed dispatcher, or an unavailable one when the
// configuration cannot send mail. smsClient may be nil.
func New(config *Config, sesClient SESService, smsClient SNSService, log logger.Logger) Dispatcher {
	log = logger.ForComponent(log, "notification-dispatcher")
	if reason := config.missing(); reason != "" || sesClient == nil {
		if reason == "" {
			reason = "no email client"
		}
		log.Warn("notification dispatcher unavailable", map[string]interface{}{"reason": reason})
		return NewUnavailableDispatcher(reason)
	}
	return NewMailDispatcher(config, sesClient, smsClient, log)
}

type MailDispatcher struct {
	config *Config
	ses    SESService
	sns    SNSService
	logger logger.Logger
	now    func() time.Time
}

func NewMailDispatcher(config *Config, sesClient SESService, smsClient SNSService, log logger.Logger) *MailDispatcher {
	return &MailDispatcher{
		config: config,
		ses:    sesClient,
		sns:    smsClient,
		logger: log,
		now:    time.Now,
	}
}

func (d *MailDispatcher) Notify(ctx context.Context, payload *models.NotificationPayload) (*models.NotificationReport, error) {
	report := &models.NotificationReport{
		ID:           uuid.New().String(),
		TrackingCode: payload.TrackingCode,
		Messages:     make([]models.MessageResult, 0, 3),
	}
	var errs []error

	record := func(res models.MessageResult, err error) {
		if err != nil {
			res.Status = models.NotificationStatusFailed
			res.Error = err.Error()
			errs = append(errs, commonerrors.NewNotificationSendFailedError(string(res.Kind),
				fmt.Errorf("%w: %v", ErrNotificationSendFailed, err)))
			d.logger.Error("notification send failed", map[string]interface{}{
				"kind":         string(res.Kind),
				"trackingCode": payload.TrackingCode,
				"error":        err,
			})
		}
		metrics.NotificationsTotal.WithLabelValues(string(res.Kind), string(res.Status)).Inc()
		report.Messages = append(report.Messages, res)
	}

	record(d.sendAdmin(ctx, payload))
	record(d.sendApplicant(ctx, payload))
	if d.config.SMSEnabled && d.sns != nil {
		record(d.sendSMS(ctx, payload))
	}

	report.Status = models.NotificationStatusSent
	report.CompletedAt = d.now().UTC()

	if len(errs) > 0 {
		err := errors.Join(errs...)
		report.Status = models.NotificationStatusFailed
		report.Error = err.Error()
		return report, err
	}

	d.logger.Info("notifications dispatched", map[string]interface{}{
		"trackingCode": payload.TrackingCode,
		"attempted":    report.Attempted(),
	})
	return report, nil
}

func (d *MailDispatcher) sendAdmin(ctx context.Context, p *models.NotificationPayload) (models.MessageResult, error) {
	res := models.MessageResult{Kind: models.NotificationKindAdmin, Recipient: d.config.AdminEmail}
	msg, err := renderAdmin(p)
	if err != nil {
		return res, err
	}
	res.MessageID, err = d.sendEmail(ctx, d.config.AdminEmail, msg)
	if err == nil {
		res.Status = models.NotificationStatusSent
	}
	return res, err
}

func (d *MailDispatcher) sendApplicant(ctx context.Context, p *models.NotificationPayload) (models.MessageResult, error) {
	res := models.MessageResult{Kind: models.NotificationKindApplicant, Recipient: p.ApplicantEmail}
	if !strings.Contains(p.ApplicantEmail, "@") {
		res.Status = models.NotificationStatusSkipped
		return res, nil
	}
	msg, err := renderApplicant(p)
	if err != nil {
		return res, err
	}
	res.MessageID, err = d.sendEmail(ctx, p.ApplicantEmail, msg)
	if err == nil {
		res.Status = models.NotificationStatusSent
	}
	return res, err
}

func (d *MailDispatcher) sendSMS(ctx context.Context, p *models.NotificationPayload) (models.MessageResult, error) {
	res := models.MessageResult{Kind: models.NotificationKindSMS, Recipient: p.ApplicantPhone}
	if p.ApplicantPhone == "" {
		res.Status = models.NotificationStatusSkipped
		return res, nil
	}

	input := &sns.PublishInput{
		PhoneNumber: aws.String(p.ApplicantPhone),
		Message:     aws.String(fmt.Sprintf(smsFormat, p.TrackingCode)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"AWS.SNS.SMS.SMSType": {DataType: aws.String("String"), StringValue: aws.String("Transactional")},
		},
	}
	if d.config.SMSSenderID != "" {
		input.MessageAttributes["AWS.SNS.SMS.SenderID"] = snstypes.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(d.config.SMSSenderID),
		}
	}

	out, err := d.sns.Publish(ctx, input)
	if err != nil {
		return res, err
	}
	res.Status = models.NotificationStatusSent
	res.MessageID = aws.ToString(out.MessageId)
	return res, nil
}

func (d *MailDispatcher) sendEmail(ctx context.Context, to string, msg *message) (string, error) {
	input := &ses.SendEmailInput{
		Destination: &sestypes.Destination{
			ToAddresses: []string{to},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(msg.subject), Charset: aws.String("UTF-8")},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(msg.text), Charset: aws.String("UTF-8")},
				Html: &sestypes.Content{Data: aws.String(msg.html), Charset: aws.String("UTF-8")},
			},
		},
		Source: aws.String(d.config.FromEmail),
	}
	if d.config.ReplyTo != "" {
		input.ReplyToAddresses = []string{d.config.ReplyTo}
	}

	out, err := d.ses.SendEmail(ctx, input)
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}

// UnavailableDispatcher stands in when no mail provider is configured.
type UnavailableDispatcher struct {
	reason string
}

func NewUnavailableDispatcher(reason string) *UnavailableDispatcher {
	return &UnavailableDispatcher{reason: reason}
}

func (d *UnavailableDispatcher) Notify(_ context.Context, payload *models.NotificationPayload) (*models.NotificationReport, error) {
	metrics.NotificationsTotal.WithLabelValues(string(models.NotificationKindAdmin), string(models.NotificationStatusUnavailable)).Inc()
	err := commonerrors.NewNotificationUnavailableError(d.reason)
	err.Cause = ErrNotificationUnavailable
	return &models.NotificationReport{
		ID:           uuid.New().String(),
		TrackingCode: payload.TrackingCode,
		Status:       models.NotificationStatusUnavailable,
		Messages:     []models.MessageResult{},
		Error:        err.Error(),
		CompletedAt:  time.Now().UTC(),
	}, err
}
