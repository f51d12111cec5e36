// Package repository contains the data access layer.  Each repository
// wraps one table and exposes plain methods plus `...Tx` variants that
// participate in a caller-managed *sql.Tx.  Sentinel errors defined
// here let handlers distinguish failure scenarios without inspecting
// driver error strings.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrEmailExists is returned when a user insert collides with the
// unique email index.
var ErrEmailExists = errors.New("email already exists")

// ErrUsernameExists is returned when a user insert collides with the
// unique username index.
var ErrUsernameExists = errors.New("username already exists")

// ErrPlateExists is returned when a vehicle insert collides with the
// unique license plate index.
var ErrPlateExists = errors.New("license plate already exists")

// ErrAlreadyQueued is returned when a queue insert collides with the
// unique vehicle index, i.e. the vehicle is already waiting.
var ErrAlreadyQueued = errors.New("vehicle already queued")
