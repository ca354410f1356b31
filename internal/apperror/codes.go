package apperror

const (
	// Client errors (4xx)
	CodeValidation      = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeConflictOfState = "CONFLICT_OF_STATE"
	CodeUnauthorized    = "UNAUTHORIZED"

	// Server errors (5xx)
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeInternal            = "INTERNAL_ERROR"
)
