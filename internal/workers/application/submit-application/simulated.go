// internal/workers/application/submit-application/simulated.go
package submitapplication

import (
	"context"
	"time"

	commonerrors "maritime-intake/internal/common/errors"
	"maritime-intake/internal/common/logger"
	"maritime-intake/internal/models"
)

// SimulatedBackend accepts every submission after a fixed delay without
// touching storage, the repository or the dispatcher. It is used when no
// durable backend is configured.
type SimulatedBackend struct {
	delay  time.Duration
	logger logger.Logger
}

func NewSimulatedBackend(config *Config, log logger.Logger) *SimulatedBackend {
	return &SimulatedBackend{
		delay:  config.SimulatedDelay,
		logger: logger.ForComponent(log, "simulated-backend"),
	}
}

func (b *SimulatedBackend) Name() string {
	return BackendSimulated
}

func (b *SimulatedBackend) Process(ctx context.Context, trackingCode string, form *models.ApplicationFormInput) (*BackendResult, error) {
	if b.delay > 0 {
		timer := time.NewTimer(b.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, commonerrors.NewInternalError(ctx.Err())
		}
	}

	b.logger.Info("simulated submission accepted", map[string]interface{}{
		"trackingCode": trackingCode,
		"documents":    2 + len(form.Files.AdditionalDocs),
	})

	ch := make(chan *models.NotificationReport, 1)
	ch <- &models.NotificationReport{
		TrackingCode: trackingCode,
		Status:       models.NotificationStatusSkipped,
		Messages:     []models.MessageResult{},
		CompletedAt:  time.Now().UTC(),
	}
	close(ch)

	return &BackendResult{Simulated: true, Notification: ch}, nil
}
