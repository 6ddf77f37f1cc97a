package wikispace

import "errors"

// Sentinel errors returned by the registry, stores, and handlers. Handlers
// translate these into flash messages or HTTP statuses; anything else is an
// internal failure and surfaces as a 500.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrPageNotFound        = errors.New("page not found")
	ErrImageNotFound       = errors.New("image not found")
	ErrDuplicateUser       = errors.New("user already exists")
	ErrDuplicatePage       = errors.New("page already exists")
	ErrReservedIdentity    = errors.New("username is reserved")
	ErrUnauthorized        = errors.New("not authorized for this space")
	ErrDisallowedExtension = errors.New("image extension not allowed")
	ErrInvalidName         = errors.New("invalid name")
)
