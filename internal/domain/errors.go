package domain

import "errors"

var (
	// ErrEmptyInput is returned when a submission has no visible text.
	ErrEmptyInput = errors.New("message is empty")

	// ErrTurnInProgress is returned when a session is still waiting on a reply.
	ErrTurnInProgress = errors.New("a reply is still being generated for this session")

	// ErrSessionReset is returned when a session was reset while its reply
	// was being generated. The reply is discarded.
	ErrSessionReset = errors.New("session was reset before the reply arrived")
)
