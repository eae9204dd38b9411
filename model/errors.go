package model

import "errors"

// Sentinel errors shared by the loaders and the Environment queries. Callers
// detect them with errors.Is; lookups that simply find nothing report
// absence through their boolean result instead.

var (
	// ErrNotFound is returned when a required source document does not exist.
	ErrNotFound = errors.New("elop: not found")

	// ErrInvalidState indicates a query referenced a state the state machine
	// does not declare.
	ErrInvalidState = errors.New("elop: invalid state")

	// ErrConfig reports a malformed table, for example a non-positive
	// logical execution window or an ICD row with missing columns.
	ErrConfig = errors.New("elop: invalid configuration")
)
