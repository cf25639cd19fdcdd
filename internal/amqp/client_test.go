package amqp

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"cambio/internal/core"
)

func TestExponentialBackoff(t *testing.T) {
	want := map[int]time.Duration{
		0:  time.Second,
		1:  2 * time.Second,
		2:  4 * time.Second,
		3:  8 * time.Second,
		4:  16 * time.Second,
		5:  30 * time.Second,
		10: 30 * time.Second,
	}
	for attempt, d := range want {
		if got := exponentialBackoff(attempt); got != d {
			t.Errorf("exponentialBackoff(%d) = %v, want %v", attempt, got, d)
		}
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("connection refused"), true},
		{"connection closed", errors.New("connection closed"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("broken pipe"), true},
		{"closed network connection", errors.New("use of closed network connection"), true},
		{"other error", errors.New("some other error"), false},
		{"validation error", errors.New("invalid input"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestCircuitOpensAtFailureThreshold(t *testing.T) {
	c := &Client{}

	for i := 0; i < maxFailures-1; i++ {
		c.recordFailure()
	}
	if c.isCircuitOpen() {
		t.Fatalf("circuit open after %d failures, threshold is %d", maxFailures-1, maxFailures)
	}

	c.recordFailure()
	if !c.isCircuitOpen() {
		t.Fatal("circuit still closed at the failure threshold")
	}
}

func TestCircuitClosesOnSuccess(t *testing.T) {
	c := &Client{}
	for i := 0; i < maxFailures; i++ {
		c.recordFailure()
	}

	c.recordSuccess()

	if c.isCircuitOpen() {
		t.Fatal("circuit open after a recorded success")
	}
	if n := atomic.LoadInt64(&c.failureCount); n != 0 {
		t.Errorf("failureCount = %d after success, want 0", n)
	}
}

func TestCircuitHalfOpensAfterTimeout(t *testing.T) {
	c := &Client{}
	for i := 0; i < maxFailures; i++ {
		c.recordFailure()
	}
	c.lastFailure = time.Now().Add(-openTimeout - time.Second)

	if c.isCircuitOpen() {
		t.Fatal("circuit still open past the probe timeout")
	}
	if s := atomic.LoadInt32(&c.state); s != StateHalfOpen {
		t.Errorf("state = %d, want StateHalfOpen", s)
	}
}

func TestCircuitStaysOpenWithinTimeout(t *testing.T) {
	c := &Client{}
	for i := 0; i < maxFailures; i++ {
		c.recordFailure()
	}

	if !c.isCircuitOpen() {
		t.Fatal("circuit closed before the probe timeout elapsed")
	}
}

func TestPublishRefusedWhileCircuitOpen(t *testing.T) {
	c := &Client{exchangeName: "cambio", queueName: "export_entries"}
	for i := 0; i < maxFailures; i++ {
		c.recordFailure()
	}

	err := c.PublishEntryRecorded(context.Background(), 123, 1)
	if err == nil {
		t.Fatal("publish succeeded with the circuit open")
	}
	if !strings.Contains(err.Error(), "circuit breaker is open") {
		t.Errorf("error = %v, want the circuit breaker refusal", err)
	}
}

func TestPublishHonorsCanceledContext(t *testing.T) {
	c := &Client{exchangeName: "cambio", queueName: "export_entries"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.PublishEntryRecorded(ctx, 123, 1); err != context.Canceled {
		t.Errorf("publish = %v, want context.Canceled", err)
	}
}

func TestNewEntryRecordedMessage(t *testing.T) {
	msg := NewEntryRecordedMessage(12345, 2)

	if msg.ID != 12345 || msg.Version != 2 {
		t.Errorf("NewEntryRecordedMessage() = %d v%d, want 12345 v2", msg.ID, msg.Version)
	}
	if msg.Timestamp.IsZero() {
		t.Error("NewEntryRecordedMessage() left Timestamp unset")
	}
}

func TestNewEntryDeletedMessage(t *testing.T) {
	e := core.Entry{
		ID:          7,
		Date:        core.NewDate(2026, 3, 14),
		Description: "Spesa settimanale",
		Amount:      core.Amount{Value: 82.5, Currency: "EUR"},
		Kind:        core.Expense,
		Category:    "Spesa",
	}

	msg := NewEntryDeletedMessage(e)

	if msg.ID != 7 {
		t.Errorf("NewEntryDeletedMessage() ID = %v, want 7", msg.ID)
	}
	if msg.Date != "2026-03-14" {
		t.Errorf("NewEntryDeletedMessage() Date = %q, want %q", msg.Date, "2026-03-14")
	}
	if msg.Value != 82.5 || msg.Currency != "EUR" {
		t.Errorf("NewEntryDeletedMessage() = %v %v, want 82.5 EUR", msg.Value, msg.Currency)
	}
}

func TestEntryRecordedMessageRoundTrip(t *testing.T) {
	msg := &EntryRecordedMessage{
		ID:        12345,
		Version:   2,
		Timestamp: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	raw, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := EntryRecordedMessageFromJSON(raw)
	if err != nil {
		t.Fatalf("EntryRecordedMessageFromJSON() error = %v", err)
	}
	if parsed.ID != msg.ID || parsed.Version != msg.Version || !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("round trip = %+v, want %+v", parsed, msg)
	}
}

func TestEntryRecordedMessageRejectsBadJSON(t *testing.T) {
	if _, err := EntryRecordedMessageFromJSON([]byte(`{"id": "not_a_number"}`)); err == nil {
		t.Error("EntryRecordedMessageFromJSON() accepted a string id")
	}
}
