package database

import "github.com/Laisky/errors/v2"

// ErrNotFound indicates a requested record does not exist.
var ErrNotFound = errors.New("database: not found")
