package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers return
// these (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: record does not exist at the derived address
// - ErrConflict: a record already exists at the derived address
// - ErrInvalidState: record in wrong state for requested operation
// - ErrUnavailable: dependency (ledger, cache) temporarily unavailable
//
// For validation errors (bad input, oversized fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
