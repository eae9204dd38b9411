package idgen

import "github.com/google/uuid"

// NewFunc produces environment snapshot identifiers; tests replace it.
var NewFunc = func() string { return uuid.New().String() }

// New returns an opaque snapshot identifier.
func New() string { return NewFunc() }
