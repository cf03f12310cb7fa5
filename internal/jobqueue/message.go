package jobqueue

import (
	"context"
	"time"
)

// Message is a single queue delivery. The receipt token identifies this
// delivery, not the message: it rotates every time the message becomes
// visible again and is the only handle Delete accepts.
type Message struct {
	ID           string
	Body         string
	ReceiptToken string
	ReceiveCount int
	EnqueuedAt   time.Time
}

// DeadLetter is a permanently failed payload parked for operator replay.
type DeadLetter struct {
	ID         string
	Body       string
	Reason     string
	EnqueuedAt time.Time
	FailedAt   time.Time
}

// Gateway is the queue contract the worker loop consumes.
type Gateway interface {
	// Receive long-polls for at most one message, blocking up to the
	// configured wait window. Returns (nil, nil) when nothing arrived.
	Receive(ctx context.Context) (*Message, error)
	// Delete acknowledges a delivery by its receipt token.
	Delete(ctx context.Context, receiptToken string) error
	// Send enqueues a JSON body and returns the assigned message ID.
	Send(ctx context.Context, body string) (string, error)
}

// Stats aggregates queue state for diagnostic output.
type Stats struct {
	Visible    int
	InFlight   int
	DeadLetter int
}

// Total returns the number of live messages, in-flight included.
func (s Stats) Total() int {
	return s.Visible + s.InFlight
}
