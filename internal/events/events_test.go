package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
)

type fakeChannel struct {
	declared  []string
	published []amqp091.Publishing
	keys      []string
	failWith  error
	closed    bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp091.Table) error {
	f.declared = append(f.declared, name+":"+kind)
	return nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp091.Publishing) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newAMQPPublisher(ch, "pitaka.ledger")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ch.declared) != 1 || ch.declared[0] != "pitaka.ledger:topic" {
		t.Fatalf("expected topic exchange declared, got %v", ch.declared)
	}

	event := LedgerEvent{
		Type:        GoalFunded,
		UserID:      "u1",
		AllowanceID: "a1",
		GoalID:      "g1",
		EntryID:     "e1",
		Amount:      decimal.RequireFromString("150.25"),
		OccurredAt:  time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC),
	}
	if err := p.Publish(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ch.published) != 1 {
		t.Fatalf("expected 1 message, got %d", len(ch.published))
	}
	if ch.keys[0] != "goal.funded" {
		t.Errorf("expected routing key goal.funded, got %s", ch.keys[0])
	}
	msg := ch.published[0]
	if msg.DeliveryMode != amqp091.Persistent {
		t.Error("expected persistent delivery")
	}

	decoded, err := FromJSON(msg.Body)
	if err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if decoded.GoalID != "g1" || !decoded.Amount.Equal(event.Amount) {
		t.Errorf("unexpected decoded event: %+v", decoded)
	}

	_ = p.Close()
	if !ch.closed {
		t.Error("expected channel to be closed")
	}
}

func TestAMQPPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{failWith: errors.New("channel closed")}
	p, err := newAMQPPublisher(ch, "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := p.Publish(context.Background(), LedgerEvent{Type: ExpenseRecorded}); err == nil {
		t.Fatal("expected publish error")
	}
}

func TestLogPublisher(t *testing.T) {
	p := NewLogPublisher()
	if err := p.Publish(context.Background(), LedgerEvent{Type: GoalDeleted}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
