// internal/workers/application/validate-application-data/validator.go
package validateapplicationdata

import (
	"fmt"
	"strings"
	"time"

	commonerrors "maritime-intake/internal/common/errors"
	"maritime-intake/internal/common/logger"
	"maritime-intake/internal/common/validation"
	"maritime-intake/internal/models"
)

// Validator checks a form before any external call is made. It is pure and
// safe for concurrent use.
type Validator struct {
	schema  *validation.Schema
	catalog *models.Catalog
	logger  logger.Logger
	now     func() time.Time
}

func NewValidator(catalog *models.Catalog, log logger.Logger) *Validator {
	if catalog == nil {
		catalog = models.DefaultCatalog()
	}
	return &Validator{
		schema:  validation.MustCompileSchema(formSchema),
		catalog: catalog,
		logger:  logger.ForComponent(log, "form-validator"),
		now:     time.Now,
	}
}

// Check returns nil for an acceptable form. Missing required attachments are
// reported first as MISSING_REQUIRED_ATTACHMENT; any other problem becomes an
// APPLICATION_VALIDATION_FAILED error carrying the field errors.
func (v *Validator) Check(form *models.ApplicationFormInput) error {
	if err := CheckAttachments(form); err != nil {
		v.logger.Debug("required attachment missing", map[string]interface{}{"error": err.Error()})
		return err
	}

	result, err := v.Validate(form)
	if err != nil {
		return commonerrors.NewInternalError(err)
	}
	if result.Valid {
		return nil
	}

	v.logger.Debug("form rejected", map[string]interface{}{"errors": result.GetErrorMessages()})

	stdErr := commonerrors.NewApplicationValidationFailedError(strings.Join(result.GetErrorMessages(), "; "))
	stdErr.Cause = ErrApplicationValidationFailed
	return stdErr.WithMetadata("fields", result.Errors)
}

// Validate runs the schema and the catalog rules and returns every problem found.
func (v *Validator) Validate(form *models.ApplicationFormInput) (*validation.ValidationResult, error) {
	result, err := v.schema.Validate(form)
	if err != nil {
		return nil, err
	}

	v.checkProgram(form, result)
	v.checkSchedule(form, result)
	v.checkDates(form, result)
	checkAdditionalDocs(form, result)

	return result, nil
}

func (v *Validator) checkProgram(form *models.ApplicationFormInput, result *validation.ValidationResult) {
	switch form.ProgramType {
	case models.ProgramTypeCoC:
		switch {
		case form.CoCProgram == "":
			result.Add("coc_program", codeRequired, "coc_program is required for a CoC application")
		case !v.catalog.HasCoCProgram(form.CoCProgram):
			result.Add("coc_program", codeUnknownOption, fmt.Sprintf("unknown CoC program %q", form.CoCProgram))
		}
		if len(form.ShortCourses) > 0 {
			result.Add("short_courses", codeUnexpected, "short_courses must be empty for a CoC application")
		}
	case models.ProgramTypeShortCourse:
		if len(form.ShortCourses) == 0 {
			result.Add("short_courses", codeRequired, "select at least one short course")
		}
		for _, c := range form.ShortCourses {
			if !v.catalog.HasShortCourse(c) {
				result.Add("short_courses", codeUnknownOption, fmt.Sprintf("unknown short course %q", c))
			}
		}
		if form.CoCProgram != "" {
			result.Add("coc_program", codeUnexpected, "coc_program must be empty for a short course application")
		}
	}
}

func (v *Validator) checkSchedule(form *models.ApplicationFormInput, result *validation.ValidationResult) {
	if form.StudyMode != "" && !v.catalog.HasStudyMode(form.StudyMode) {
		result.Add("study_mode", codeUnknownOption, fmt.Sprintf("unknown study mode %q", form.StudyMode))
	}
	if form.DeliveryMode != "" && !v.catalog.HasDeliveryMode(form.DeliveryMode) {
		result.Add("delivery_mode", codeUnknownOption, fmt.Sprintf("unknown delivery mode %q", form.DeliveryMode))
	}
}

// checkDates only looks at values that passed the schema pattern.
func (v *Validator) checkDates(form *models.ApplicationFormInput, result *validation.ValidationResult) {
	if form.DOB != "" && !result.HasErrors("dob") {
		dob, err := time.Parse(dateLayout, form.DOB)
		switch {
		case err != nil:
			result.Add("dob", codeInvalidDate, fmt.Sprintf("%q is not a calendar date", form.DOB))
		case !dob.Before(v.now()):
			result.Add("dob", codeInvalidDate, "date of birth must be in the past")
		}
	}
	for _, d := range []struct{ field, value string }{
		{"intake_date", form.IntakeDate},
		{"passport_expiry", form.PassportExpiry},
	} {
		if d.value == "" || result.HasErrors(d.field) {
			continue
		}
		if _, err := time.Parse(dateLayout, d.value); err != nil {
			result.Add(d.field, codeInvalidDate, fmt.Sprintf("%q is not a calendar date", d.value))
		}
	}
}

func checkAdditionalDocs(form *models.ApplicationFormInput, result *validation.ValidationResult) {
	for i := range form.Files.AdditionalDocs {
		if form.Files.AdditionalDocs[i].Size() == 0 {
			result.Add(fmt.Sprintf("%s[%d]", FieldAdditionalDocs, i), codeEmptyFile, "additional document is empty")
		}
	}
}

// CheckAttachments verifies both required documents are present and non-empty.
func CheckAttachments(form *models.ApplicationFormInput) error {
	if form.Files.Passport.Size() == 0 {
		return missing(FieldPassport)
	}
	if form.Files.PersonalPicture.Size() == 0 {
		return missing(FieldPersonalPicture)
	}
	return nil
}

func missing(field string) error {
	stdErr := commonerrors.NewMissingRequiredAttachmentError(field)
	stdErr.Cause = ErrMissingRequiredAttachment
	return stdErr
}
