package domain

import "errors"

// Messages below are sent verbatim to clients.
var (
	ErrInvalidSession = errors.New("Invalid session code")
	ErrNotHost        = errors.New("Only host can do that")
	ErrBadPayload     = errors.New("bad payload")
	ErrRateLimited    = errors.New("rate limit exceeded")
)

// NotHostError names the host-only action the caller attempted.
// errors.Is(err, ErrNotHost) holds for every NotHostError.
type NotHostError struct {
	Action string
}

func (e *NotHostError) Error() string {
	return "Only host can " + e.Action
}

func (e *NotHostError) Is(target error) bool {
	return target == ErrNotHost
}
