package repository

import "github.com/prn-tf/projecthub/internal/domain"

// Repository errors
var (
	// ErrNotFound indicates the requested entity was not found.
	// It is the domain sentinel so services can pass it through unchanged.
	ErrNotFound = domain.ErrNotFound
)
