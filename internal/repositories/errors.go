package repositories

import "errors"

// Sentinel errors returned by repository implementations. Services translate
// these into the domain error taxonomy.
var (
	ErrNotFound    = errors.New("record not found")
	ErrDuplicate   = errors.New("duplicate record")
	ErrAlreadySold = errors.New("product already sold")
)
