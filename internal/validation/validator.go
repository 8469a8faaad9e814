package validation

import (
	"studysphere/internal/domain"
)

const (
	// MaxUploadSize caps uploaded files at 10MB, matching the client-side
	// limit of the view layer.
	MaxUploadSize = 10 * 1024 * 1024

	MinQuestionCount = 1
	MaxQuestionCount = 20
)

// Validator provides request validation functionality.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidatePDFUpload validates the upload beyond the basic presence and
// content-type checks the handler performs itself. The file type itself is
// gated on the declared MIME type, not the filename.
func (v *Validator) ValidatePDFUpload(size int64) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if size <= 0 {
		errors = append(errors, domain.ValidationError{Field: "pdf", Message: "file is empty"})
	} else if size > MaxUploadSize {
		errors = append(errors, domain.ValidationError{Field: "pdf", Message: "file size must be less than 10MB"})
	}

	return errors
}

// ValidateQuestionCount validates the requested quiz size. Zero means "use
// the default" and is accepted.
func (v *Validator) ValidateQuestionCount(count int) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if count != 0 && (count < MinQuestionCount || count > MaxQuestionCount) {
		errors = append(errors, domain.NewOutOfRangeError("question_count", count, MinQuestionCount, MaxQuestionCount))
	}

	return errors
}
