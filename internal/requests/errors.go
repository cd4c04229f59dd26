package requests

import "errors"

var (
	ErrUnknownCategory   = errors.New("unknown request category")
	ErrInvalidAction     = errors.New("action must be Resolved or Rejected")
	ErrEmptyRequest      = errors.New("request text must not be empty")
	ErrRequestNotFound   = errors.New("request not found")
	ErrIllegalTransition = errors.New("request is no longer pending")
	ErrNotOwner          = errors.New("request belongs to another user")
)
