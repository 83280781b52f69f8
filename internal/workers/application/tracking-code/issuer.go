// internal/workers/application/tracking-code/issuer.go
package trackingcode

import (
	"context"
	"errors"
	"fmt"
	"time"

	commonerrors "maritime-intake/internal/common/errors"
	"maritime-intake/internal/common/logger"
	"maritime-intake/internal/common/metrics"
)

var ErrTrackingCodeExhausted = errors.New("TRACKING_CODE_EXHAUSTED")

// Issuer generates a code and reserves it, regenerating on conflict.
type Issuer struct {
	generator   *Generator
	registry    Registry
	maxAttempts int
	timeout     time.Duration
	logger      logger.Logger
}

func NewIssuer(config *Config, generator *Generator, registry Registry, log logger.Logger) *Issuer {
	maxAttempts := config.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	return &Issuer{
		generator:   generator,
		registry:    registry,
		maxAttempts: maxAttempts,
		timeout:     config.ReservationTimeout,
		logger:      logger.ForComponent(log, "tracking-code"),
	}
}

// Issue returns a reserved tracking code. A registry that cannot be reached
// does not block the submission: the code is accepted and the repository's
// unique constraint stays the authority.
func (i *Issuer) Issue(ctx context.Context) (string, error) {
	var code string
	for attempt := 1; attempt <= i.maxAttempts; attempt++ {
		code = i.generator.Generate()
		if i.registry == nil {
			return code, nil
		}

		reserved, err := i.reserve(ctx, code)
		if err != nil {
			i.logger.Warn("tracking code registry unavailable, accepting code", map[string]interface{}{
				"trackingCode": code,
				"error":        err,
			})
			return code, nil
		}
		if reserved {
			return code, nil
		}

		metrics.TrackingCodeCollisions.Inc()
		i.logger.Info("tracking code collision, regenerating", map[string]interface{}{
			"trackingCode": code,
			"attempt":      attempt,
		})
	}

	cause := fmt.Errorf("%w: no free code after %d attempts", ErrTrackingCodeExhausted, i.maxAttempts)
	return "", commonerrors.NewDuplicateTrackingCodeError(code, cause)
}

func (i *Issuer) reserve(ctx context.Context, code string) (bool, error) {
	if i.timeout <= 0 {
		return i.registry.Reserve(ctx, code)
	}
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()
	return i.registry.Reserve(ctx, code)
}
