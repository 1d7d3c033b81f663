package service

import (
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"

	commonerrors "github.com/AlibekovAA/secure-blog/internal/common/errors"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)
	emailRegex    = regexp.MustCompile(`^[\S]+@[\S]+\.[\S]+$`)
)

// Field messages are what the signup form shows next to each input.
var fieldMessages = map[string]string{
	"Username": "That's not a valid username.",
	"Password": "That wasn't a valid password.",
	"Verify":   "Your passwords didn't match.",
	"Email":    "That's not a valid email.",
}

var fieldKeys = map[string]string{
	"Username": "username",
	"Password": "password",
	"Verify":   "verify",
	"Email":    "email",
}

type signupForm struct {
	Username string `validate:"username"`
	Password string `validate:"min=3,max=20"`
	Verify   string `validate:"eqfield=Password"`
	Email    string `validate:"omitempty,looseemail"`
}

type CredentialValidator struct {
	validate *validator.Validate
}

func NewCredentialValidator() *CredentialValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRegex.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("looseemail", func(fl validator.FieldLevel) bool {
		return emailRegex.MatchString(fl.Field().String())
	})
	return &CredentialValidator{validate: v}
}

// ValidateSignup reports every failing field at once so the form can show
// all messages together.
func (cv *CredentialValidator) ValidateSignup(input SignupInput) error {
	form := signupForm{
		Username: input.Username,
		Password: input.Password,
		Verify:   input.Verify,
		Email:    input.Email,
	}

	err := cv.validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return newInternalError("VALIDATOR_ERROR", "failed to validate input", err)
	}

	details := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		key, ok := fieldKeys[fe.StructField()]
		if !ok {
			continue
		}
		details[key] = fieldMessages[fe.StructField()]
	}
	return ErrValidation.WithDetails(details)
}

func (cv *CredentialValidator) ValidUsername(username string) bool {
	return usernameRegex.MatchString(username)
}

// AsValidationError exposes the field map of a validation failure.
func AsValidationError(err error) (map[string]any, bool) {
	if !errors.Is(err, ErrValidation) {
		return nil, false
	}
	de, ok := commonerrors.AsDomainError(err)
	if !ok {
		return nil, false
	}
	return de.Details(), true
}
