package jobqueue

import "errors"

var (
	// ErrReceiptNotFound reports a Delete whose receipt token matches no
	// in-flight delivery. A lapsed visibility timeout rotates the token, so
	// a stale receipt can no longer acknowledge the message.
	ErrReceiptNotFound = errors.New("jobqueue: receipt token not found")
	// ErrEmptyBody reports a Send with no payload.
	ErrEmptyBody = errors.New("jobqueue: message body required")
)
