package http

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Reusable error payload
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

var (
	reLoanNumber = regexp.MustCompile(`^PRT\d{6}[A-F0-9]{8}$`)
	reCaisseCode = regexp.MustCompile(`^FKM\d{2}[A-Z]+$`)
)

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()

	// loan number = PRT + YYYYMM + 8 uppercase hex
	_ = v.RegisterValidation("loannumber", func(fl validator.FieldLevel) bool {
		return reLoanNumber.MatchString(fl.Field().String())
	})
	// caisse code = FKM + two digits + uppercased association letters
	_ = v.RegisterValidation("caissecode", func(fl validator.FieldLevel) bool {
		return reCaisseCode.MatchString(fl.Field().String())
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// Map validator.ValidationErrors to []FieldError with readable messages.
func ToFieldErrors(err error) []FieldError {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "loannumber":
			out = append(out, FieldError{Field: field, Message: "must look like PRT202601A1B2C3D4"})
		case "caissecode":
			out = append(out, FieldError{Field: field, Message: "must look like FKM01ESPOIR"})
		case "min":
			out = append(out, FieldError{Field: field, Message: "must be at least " + e.Param()})
		case "max":
			out = append(out, FieldError{Field: field, Message: "must be at most " + e.Param()})
		case "oneof":
			out = append(out, FieldError{Field: field, Message: "must be one of " + e.Param()})
		default:
			out = append(out, FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}
