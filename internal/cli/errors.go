// Package cli implements the command-line interface.
package cli

// Error codes for structured error responses.
// These codes are stable and can be relied upon by agents.
const (
	// Vault errors
	ErrVaultNotFound     = "VAULT_NOT_FOUND"
	ErrVaultNotSpecified = "VAULT_NOT_SPECIFIED"
	ErrConfigInvalid     = "CONFIG_INVALID"

	// Base errors
	ErrBaseNotFound = "BASE_NOT_FOUND"
	ErrBaseInvalid  = "BASE_INVALID"
	ErrViewNotFound = "VIEW_NOT_FOUND"

	// Query errors
	ErrQueryFailed = "QUERY_FAILED"

	// Export errors
	ErrExportFailed   = "EXPORT_FAILED"
	ErrFileWriteError = "FILE_WRITE_ERROR"

	// Index errors
	ErrDatabaseError = "DATABASE_ERROR"
	ErrIndexLocked   = "INDEX_LOCKED"

	// Input errors
	ErrInvalidInput = "INVALID_INPUT"

	// General errors
	ErrInternal = "INTERNAL_ERROR"
)

// Warning codes for non-fatal issues.
const (
	WarnEvaluation        = "EVAL_WARNING"
	WarnNoteSkipped       = "NOTE_SKIPPED"
	WarnIndexUpdateFailed = "INDEX_UPDATE_FAILED"
)
