package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

type postForm struct {
	Subject string `validate:"required,max=200"`
	Content string `validate:"required,max=20000"`
}

var postFieldMessages = map[string]string{
	"Subject": "subject is required and must be at most 200 characters",
	"Content": "content is required and must be at most 20000 characters",
}

type postValidator struct {
	validate *validator.Validate
}

func newPostValidator() *postValidator {
	return &postValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// normalize trims the input and checks it, returning the trimmed form.
func (v *postValidator) normalize(input CreatePostInput) (CreatePostInput, error) {
	input.Subject = strings.TrimSpace(input.Subject)
	input.Content = strings.TrimSpace(input.Content)

	err := v.validate.Struct(postForm{Subject: input.Subject, Content: input.Content})
	if err == nil {
		return input, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return input, ErrInvalidPost.WithCause(err)
	}
	details := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		details[strings.ToLower(fe.StructField())] = postFieldMessages[fe.StructField()]
	}
	return input, ErrInvalidPost.WithDetails(details)
}
