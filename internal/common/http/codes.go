package http

const (
	CodeUnknown          = "UNKNOWN"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeInvalidJSON      = "INVALID_JSON"
	CodeNotFound         = "NOT_FOUND"
	CodeInvalidPostID    = "INVALID_POST_ID"
	CodeUnauthenticated  = "UNAUTHENTICATED"
	CodeRateLimited      = "RATE_LIMITED"
	CodeBodyTooLarge     = "REQUEST_BODY_TOO_LARGE"
	CodeUnavailable      = "UNAVAILABLE"
)
