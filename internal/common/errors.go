package common

import "errors"

// Domain error kinds. Services return these (usually wrapped with context via
// fmt.Errorf and %w); handlers match with errors.Is and translate to HTTP
// responses. None of them is fatal.
var (
	// ErrNotFound: unit, transfer, product type or location id is unknown.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState: a transfer transition was attempted from the wrong
	// FSM state. Covers double confirmation, destination-before-admin and
	// any action on a terminal transfer.
	ErrInvalidState = errors.New("invalid transfer state")

	// ErrInvalidRole: the acting user lacks the required role.
	ErrInvalidRole = errors.New("invalid role")

	// ErrWrongLocation: a destination confirmer's assigned location does
	// not match the transfer target.
	ErrWrongLocation = errors.New("wrong location")

	// ErrDeletionBlocked: a product type with dependent units cannot be
	// deleted because no replacement type exists.
	ErrDeletionBlocked = errors.New("deletion blocked")

	// ErrDuplicateKey: IMEI collision on intake or restore.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrReauthRequired: the operation is staged until the caller re-proves
	// admin credentials.
	ErrReauthRequired = errors.New("reauthentication required")

	// ErrInvalidCredentials: login or re-auth password check failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
