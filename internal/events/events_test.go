package events

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"
)

func TestNewEvent_Envelope(t *testing.T) {
	event := NewEvent(EventSessionStarted, SessionStartedEvent{
		SessionID: "s1",
		UserID:    "u1",
		TestID:    "t1",
	})

	if event.ID == "" {
		t.Error("event ID is empty")
	}
	if event.Type != EventSessionStarted {
		t.Errorf("Type = %s, want %s", event.Type, EventSessionStarted)
	}
	if event.Source != "exam-engine" {
		t.Errorf("Source = %s, want exam-engine", event.Source)
	}
	if event.Version != "1.0" {
		t.Errorf("Version = %s, want 1.0", event.Version)
	}
	if time.Since(event.Timestamp) > time.Minute {
		t.Errorf("Timestamp = %v, want recent", event.Timestamp)
	}

	payload, ok := event.Data.(SessionStartedEvent)
	if !ok {
		t.Fatalf("Data type = %T, want SessionStartedEvent", event.Data)
	}
	if payload.SessionID != "s1" {
		t.Errorf("SessionID = %s, want s1", payload.SessionID)
	}
}

func TestMockEventPublisher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := NewMockEventPublisher(logger)
	ctx := context.Background()

	t.Run("records published events", func(t *testing.T) {
		if err := publisher.Publish(ctx, NewEvent(EventSessionStarted, nil)); err != nil {
			t.Fatalf("publish: %v", err)
		}
		if err := publisher.Publish(ctx, NewEvent(EventSessionEvaluated, nil)); err != nil {
			t.Fatalf("publish: %v", err)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 2 {
			t.Fatalf("published = %d events, want 2", len(published))
		}
		if published[0].Type != EventSessionStarted || published[1].Type != EventSessionEvaluated {
			t.Errorf("types = %s, %s", published[0].Type, published[1].Type)
		}
	})

	t.Run("injected failure", func(t *testing.T) {
		publisher.ClearEvents()
		wantErr := errors.New("broker down")
		publisher.FailNext = wantErr

		if err := publisher.Publish(ctx, NewEvent(EventTestCreated, nil)); !errors.Is(err, wantErr) {
			t.Errorf("err = %v, want %v", err, wantErr)
		}
		if len(publisher.GetPublishedEvents()) != 0 {
			t.Error("failed publish was recorded")
		}

		// Failure is one-shot.
		if err := publisher.Publish(ctx, NewEvent(EventTestCreated, nil)); err != nil {
			t.Errorf("publish after failure: %v", err)
		}
	})

	t.Run("clear", func(t *testing.T) {
		publisher.ClearEvents()
		if len(publisher.GetPublishedEvents()) != 0 {
			t.Error("events survived clear")
		}
	})
}
