package service

import (
	"errors"
	"net/http"

	commonerrors "github.com/AlibekovAA/secure-blog/internal/common/errors"
)

var (
	ErrInvalidPost = commonerrors.NewDomainError(
		"INVALID_POST",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"Required subject and contents!",
	)

	ErrPostNotFound = commonerrors.ErrPostNotFound

	ErrNotVisible = commonerrors.ErrNotVisible

	ErrServiceUnavailable = commonerrors.NewDomainError(
		"SERVICE_UNAVAILABLE",
		commonerrors.CategoryExternal,
		http.StatusServiceUnavailable,
		"service temporarily unavailable",
	)
)

func storeError(code, message string, err error) error {
	if errors.Is(err, commonerrors.ErrCircuitOpen) {
		return ErrServiceUnavailable.WithCause(err)
	}
	return commonerrors.NewDomainError(
		code,
		commonerrors.CategoryInternal,
		http.StatusInternalServerError,
		message,
	).WithCause(err)
}
