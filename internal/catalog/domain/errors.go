package domain

import "errors"

var (
	ErrNotFound    = errors.New("catalog node not found")
	ErrNoSchema    = errors.New("catalog node has no field schema")
	ErrCycleInTree = errors.New("catalog tree contains a cycle")
)
