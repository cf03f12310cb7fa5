package jobqueue_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"matchvault/internal/jobqueue"
	"matchvault/internal/testsupport"
)

// fakeClock lets tests move the store's notion of time forward.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestSendReceiveDelete(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	id, err := store.Send(ctx, `{"command":"Match_Upload","matchId":"M1"}`)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected message ID")
	}

	msg, err := store.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if msg == nil {
		t.Fatal("expected a message")
	}
	if msg.ID != id {
		t.Fatalf("expected ID %s, got %s", id, msg.ID)
	}
	if msg.ReceiptToken == "" {
		t.Fatal("expected a receipt token")
	}
	if msg.ReceiveCount != 1 {
		t.Fatalf("expected receive count 1, got %d", msg.ReceiveCount)
	}

	if err := store.Delete(ctx, msg.ReceiptToken); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	stats, err := store.QueueStats(ctx)
	if err != nil {
		t.Fatalf("QueueStats failed: %v", err)
	}
	if stats.Total() != 0 {
		t.Fatalf("expected empty queue, got %+v", stats)
	}
}

func TestSendRejectsEmptyBody(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := store.Send(context.Background(), "  "); !errors.Is(err, jobqueue.ErrEmptyBody) {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
}

func TestReceiveReturnsNilWhenQueueEmpty(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	msg, err := store.Receive(context.Background())
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if msg != nil {
		t.Fatalf("expected no message, got %+v", msg)
	}
}

func TestInFlightMessageHiddenUntilVisibilityLapses(t *testing.T) {
	clock := newFakeClock()
	cfg := testsupport.NewConfig(t, testsupport.WithVisibilityTimeout(30))
	store := testsupport.MustOpenStore(t, cfg, jobqueue.WithClock(clock.Now))
	ctx := context.Background()

	if _, err := store.Send(ctx, `{"command":"Match_Upload","matchId":"M1"}`); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	first, err := store.Receive(ctx)
	if err != nil || first == nil {
		t.Fatalf("first Receive failed: msg=%v err=%v", first, err)
	}

	// Still hidden inside the visibility window.
	second, err := store.Receive(ctx)
	if err != nil {
		t.Fatalf("second Receive failed: %v", err)
	}
	if second != nil {
		t.Fatalf("expected message hidden, got %+v", second)
	}

	clock.Advance(31 * time.Second)
	third, err := store.Receive(ctx)
	if err != nil {
		t.Fatalf("third Receive failed: %v", err)
	}
	if third == nil {
		t.Fatal("expected redelivery after visibility lapse")
	}
	if third.ReceiptToken == first.ReceiptToken {
		t.Fatal("expected a fresh receipt token on redelivery")
	}
	if third.ReceiveCount != 2 {
		t.Fatalf("expected receive count 2, got %d", third.ReceiveCount)
	}

	// The original receipt can no longer acknowledge the message.
	if err := store.Delete(ctx, first.ReceiptToken); !errors.Is(err, jobqueue.ErrReceiptNotFound) {
		t.Fatalf("expected ErrReceiptNotFound for stale receipt, got %v", err)
	}
	if err := store.Delete(ctx, third.ReceiptToken); err != nil {
		t.Fatalf("Delete with current receipt failed: %v", err)
	}
}

func TestReceiveOrdersByEnqueueSequence(t *testing.T) {
	clock := newFakeClock()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg, jobqueue.WithClock(clock.Now))
	ctx := context.Background()

	firstID, err := store.Send(ctx, `{"command":"Match_Upload","matchId":"M1"}`)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if _, err := store.Send(ctx, `{"command":"Match_Upload","matchId":"M2"}`); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	msg, err := store.Receive(ctx)
	if err != nil || msg == nil {
		t.Fatalf("Receive failed: msg=%v err=%v", msg, err)
	}
	if msg.ID != firstID {
		t.Fatalf("expected oldest message first, got %s", msg.ID)
	}
}

func TestDeadLetterParksAndRedrives(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := store.Send(ctx, `{"command":"Match_Upload","matchId":"M9"}`); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	msg, err := store.Receive(ctx)
	if err != nil || msg == nil {
		t.Fatalf("Receive failed: msg=%v err=%v", msg, err)
	}

	if err := store.DeadLetter(ctx, msg.ReceiptToken, "publish failure"); err != nil {
		t.Fatalf("DeadLetter failed: %v", err)
	}

	stats, err := store.QueueStats(ctx)
	if err != nil {
		t.Fatalf("QueueStats failed: %v", err)
	}
	if stats.Total() != 0 || stats.DeadLetter != 1 {
		t.Fatalf("unexpected stats after dead-letter: %+v", stats)
	}

	letters, err := store.ListDeadLetters(ctx)
	if err != nil {
		t.Fatalf("ListDeadLetters failed: %v", err)
	}
	if len(letters) != 1 || letters[0].Reason != "publish failure" {
		t.Fatalf("unexpected dead letters: %+v", letters)
	}

	moved, err := store.RedriveDeadLetters(ctx)
	if err != nil {
		t.Fatalf("RedriveDeadLetters failed: %v", err)
	}
	if moved != 1 {
		t.Fatalf("expected 1 redriven message, got %d", moved)
	}

	redelivered, err := store.Receive(ctx)
	if err != nil || redelivered == nil {
		t.Fatalf("Receive after redrive failed: msg=%v err=%v", redelivered, err)
	}
	if redelivered.ID != msg.ID {
		t.Fatalf("expected original message ID %s, got %s", msg.ID, redelivered.ID)
	}
}

func TestListIncludesInFlight(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := store.Send(ctx, `{"command":"Merge_Video","video1":"a","video2":"b","output_name":"o.mp4"}`); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if _, err := store.Receive(ctx); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}

	messages, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(messages) != 1 || messages[0].ReceiveCount != 1 {
		t.Fatalf("unexpected list output: %+v", messages)
	}
}

func TestClearEmptiesQueue(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	for range 3 {
		if _, err := store.Send(ctx, `{"command":"Match_Upload","matchId":"M1"}`); err != nil {
			t.Fatalf("Send failed: %v", err)
		}
	}
	removed, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}
}
