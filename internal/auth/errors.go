package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("Your user ID or password is incorrect")
	ErrSessionExpired     = errors.New("Please login to access this page")
	ErrCSRFMismatch       = errors.New("CSRF token mismatch")
	ErrInvalidChallenge   = errors.New("Invalid or expired link, please try again")
	ErrUserExists         = errors.New("User ID or email already registered")
)

// ValidationError reports the first input rule a submission broke. Reason is
// meant to be shown to the user verbatim.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
