package types

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// PDFExtension is the only accepted CV file suffix. The comparison is case
// sensitive because the backend applies the same rule.
const PDFExtension = ".pdf"

// Validation messages shown to the user.
const (
	MsgCVRequired             = "CV file is required"
	MsgCVEmpty                = "CV file is empty"
	MsgJobDescriptionRequired = "Job description is required"
	MsgOnlyPDF                = "Only PDF files are supported"
)

// Submission is a CV plus job description ready to be forwarded.
type Submission struct {
	FileName       string `json:"file_name" validate:"required,endswith=.pdf"`
	Content        []byte `json:"-" validate:"required,min=1"`
	JobDescription string `json:"job_description" validate:"notblank"`
}

// ValidationError reports the first user-facing problem with a submission.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// messages maps field+tag to a user-facing message. The rank orders them so
// that a missing file is reported before a missing description, and both
// before a wrong extension.
var messages = map[string]struct {
	rank int
	msg  string
}{
	"FileName.required":       {0, MsgCVRequired},
	"Content.required":        {1, MsgCVEmpty},
	"Content.min":             {1, MsgCVEmpty},
	"JobDescription.notblank": {2, MsgJobDescriptionRequired},
	"FileName.endswith":       {3, MsgOnlyPDF},
}

// validate is shared by every Validate call and safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("register notblank validator: %v", err))
	}
	return v
}

// Validate validates the Submission and returns a *ValidationError carrying
// the highest-priority message.
func (s *Submission) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	var best *ValidationError
	bestRank := len(messages) + 1
	for _, fe := range fieldErrs {
		m, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			m.rank = len(messages)
			m.msg = fe.Error()
		}
		if m.rank < bestRank {
			bestRank = m.rank
			best = &ValidationError{Field: fe.Field(), Message: m.msg}
		}
	}
	return best
}
