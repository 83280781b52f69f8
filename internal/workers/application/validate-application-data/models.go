// internal/workers/application/validate-application-data/models.go
package validateapplicationdata

import (
	_ "embed"
	"errors"
)

var (
	ErrApplicationValidationFailed = errors.New("APPLICATION_VALIDATION_FAILED")
	ErrMissingRequiredAttachment   = errors.New("MISSING_REQUIRED_ATTACHMENT")
)

//go:embed schema.json
var formSchema []byte

// Field names used in validation errors for the uploaded files.
const (
	FieldPassport        = "passport"
	FieldPersonalPicture = "personal_picture"
	FieldAdditionalDocs  = "additional_docs"
)

const (
	codeRequired      = "REQUIRED_FIELD_MISSING"
	codeUnknownOption = "INVALID_ENUM_VALUE"
	codeUnexpected    = "UNEXPECTED_FIELD"
	codeInvalidDate   = "INVALID_DATE"
	codeEmptyFile     = "EMPTY_FILE"
)

const dateLayout = "2006-01-02"
