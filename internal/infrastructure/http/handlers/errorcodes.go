package handlers

// API error codes returned in JSON { "error": "...", "code": "..." } for stable client handling.
const (
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeInvalidToken     = "invalid_token"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeRateLimited      = "rate_limited"
	ErrCodeInternal         = "internal_error"
)
