package core

import "errors"

var (
	// ErrNotFound means no record matched the given ID.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable means the backing store is not configured or could
	// not be queried. Distinct from ErrNotFound.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidKey means a presented API key matched no record.
	ErrInvalidKey = errors.New("invalid api key")

	// ErrSummarization means the summarization backend failed or returned
	// output that does not satisfy the schema.
	ErrSummarization = errors.New("summarization failed")

	// ErrSummarizerDisabled means no summarization backend is configured.
	ErrSummarizerDisabled = errors.New("summarization not configured")

	// ErrAuthDisabled means no OAuth provider is configured.
	ErrAuthDisabled = errors.New("authentication not configured")
)
