package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrNotFound = errors.New("requested resource not found")

	ErrValidationFailed = errors.New("validation failed")
	ErrEventIDRequired  = errors.New("event id is required")

	ErrDrawNotFound        = errors.New("draw not found")
	ErrDrawConflict        = errors.New("draw with this id already exists")
	ErrDrawVersionConflict = errors.New("draw was modified by another request, retry")

	ErrExportDisabled = errors.New("draw export storage is not configured")

	ErrAuthInvalidCredentials = errors.New("invalid api key")
	ErrAuthNotConfigured      = errors.New("organizer api key is not configured")
)
