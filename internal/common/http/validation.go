package http

import (
	"fmt"
	"strconv"

	commonerrors "github.com/AlibekovAA/secure-blog/internal/common/errors"
)

// ParsePositiveID parses a path identifier assigned by the store.
func ParsePositiveID(s string) (int64, error) {
	if s == "" {
		return 0, commonerrors.ErrInvalidPayload.WithDetails(map[string]any{"id": "required"})
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, commonerrors.ErrInvalidPayload.
			WithDetails(map[string]any{"id": "must be a positive integer"}).
			WithCause(fmt.Errorf("parse id %q", s))
	}
	return id, nil
}
