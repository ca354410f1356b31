package apperror

import "net/http"

var (
	ErrWorkerNotFound = New(
		CodeNotFound,
		"Worker not found",
		http.StatusNotFound,
	)

	ErrSiteNotFound = New(
		CodeNotFound,
		"Site not found",
		http.StatusNotFound,
	)

	ErrWorkerUnassigned = New(
		CodeValidation,
		"Worker is not assigned to a site",
		http.StatusUnprocessableEntity,
	)

	ErrSessionNotFound = New(
		CodeNotFound,
		"Session not found",
		http.StatusNotFound,
	)

	ErrSessionExpired = New(
		CodeNotFound,
		"Session expired",
		http.StatusGone,
	)

	ErrSessionConsumed = New(
		CodeConflictOfState,
		"Session already used",
		http.StatusConflict,
	)

	ErrUnauthorized = New(
		CodeUnauthorized,
		"Unauthorized - invalid or missing admin secret",
		http.StatusUnauthorized,
	)

	ErrInternal = New(
		CodeInternal,
		"An unexpected error occurred",
		http.StatusInternalServerError,
	)
)
