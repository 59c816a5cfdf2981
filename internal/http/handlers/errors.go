// Package handlers – error codes.
//
// Stable, machine-readable codes returned in the error envelope alongside the
// HTTP status. Generic codes mirror common status semantics; the domain codes
// name the expected business outcomes of the recipe lifecycle so clients (and
// the conversational surface) can branch without parsing messages.
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeRateLimited      = "rate_limited"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeDuplicate     = "duplicate"
	ErrCodeAlreadyPrep   = "already_preparing"
	ErrCodeNoActivePreps = "no_active_preparations"
	ErrCodeInPreparation = "in_preparation"
)
