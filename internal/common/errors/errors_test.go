package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError_RejectionCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      *StandardError
		category string
	}{
		{"validation", NewApplicationValidationFailedError("email: required"), "VALIDATION"},
		{"missing attachment", NewMissingRequiredAttachmentError("passport"), "VALIDATION"},
		{"storage", NewStorageUploadFailedError("passport", fmt.Errorf("io")), "STORAGE"},
		{"insert", NewDatabaseInsertFailedError(fmt.Errorf("conn reset")), "PERSISTENCE"},
		{"duplicate", NewDuplicateTrackingCodeError("AAMOI-20250101-1000", nil), "PERSISTENCE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmnErr := ConvertToBPMNError(tt.err)
			assert.Equal(t, BPMNCodeApplicationRejected, bpmnErr.Code)
			assert.Equal(t, 0, bpmnErr.Retries)

			vars := bpmnErr.ToErrorVariables()
			assert.Equal(t, string(tt.err.Code), vars["originalErrorCode"])
			assert.Equal(t, tt.category, vars["errorCategory"])
			assert.Equal(t, BPMNCodeApplicationRejected, vars["errorCode"])
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(ErrCodeApplicationValidationFailed))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(ErrCodeMissingRequiredAttachment))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(ErrCodeStorageUploadFailed))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(ErrCodeDatabaseInsertFailed))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(ErrCodeDuplicateTrackingCode))
	assert.Equal(t, http.StatusTooManyRequests, HTTPStatus(ErrCodeRateLimited))
}

func TestStandardError_Unwrap(t *testing.T) {
	cause := stderrors.New("bucket not found")
	wrapped := fmt.Errorf("upload: %w", NewStorageUploadFailedError("profile", cause))

	assert.ErrorIs(t, wrapped, cause)
	stdErr, ok := AsStandardError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeStorageUploadFailed, stdErr.Code)
	assert.True(t, HasCode(wrapped, ErrCodeStorageUploadFailed))
	assert.False(t, HasCode(cause, ErrCodeStorageUploadFailed))
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(ErrCodeStorageUploadFailed))
	assert.True(t, IsFatal(ErrCodeDatabaseInsertFailed))
	assert.False(t, IsFatal(ErrCodeNotificationSendFailed))
	assert.False(t, IsFatal(ErrCodeNotificationUnavailable))
}
