// internal/workers/application/create-application-record/supabase.go
package createapplicationrecord

import (
	"context"
	"fmt"

	commonerrors "maritime-intake/internal/common/errors"
	"maritime-intake/internal/common/logger"
	"maritime-intake/internal/common/supabase"
	"maritime-intake/internal/models"
)

// SupabaseAPI is the subset of the Supabase REST client used here.
type SupabaseAPI interface {
	Insert(ctx context.Context, table string, row interface{}) ([]byte, error)
}

type SupabaseRepository struct {
	api    SupabaseAPI
	table  string
	logger logger.Logger
}

func NewSupabaseRepository(config *Config, api SupabaseAPI, log logger.Logger) *SupabaseRepository {
	return &SupabaseRepository{
		api:    api,
		table:  config.Table,
		logger: logger.ForComponent(log, "record-repository").WithFields(map[string]interface{}{"provider": "supabase"}),
	}
}

func (r *SupabaseRepository) Insert(ctx context.Context, record *models.ApplicationRecord) error {
	if _, err := r.api.Insert(ctx, r.table, record); err != nil {
		if supabase.IsConflict(err) {
			return commonerrors.NewDuplicateTrackingCodeError(record.TrackingNumber,
				fmt.Errorf("%w: %v", ErrDuplicateTrackingCode, err))
		}
		return commonerrors.NewDatabaseInsertFailedError(fmt.Errorf("%w: insert failed: %v", ErrDatabaseInsertFailed, err))
	}

	r.logger.Info("application record created", map[string]interface{}{
		"applicationId": record.ID,
		"trackingCode":  record.TrackingNumber,
	})
	return nil
}
