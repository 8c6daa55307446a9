package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestDispatcherContinuesAfterHandlerError(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(zap.NewNop())
	var calls []string
	dispatcher.Subscribe(EventCommentAdded, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	dispatcher.Subscribe(EventCommentAdded, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	dispatcher.Subscribe(EventFileUploaded, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	if err := dispatcher.Publish(context.Background(), Event{Type: EventCommentAdded}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Fatalf("unexpected handler calls %v", calls)
	}
}

func TestDispatcherSurvivesPanickingHandler(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(zap.NewNop())
	reached := false
	dispatcher.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		panic("handler bug")
	})
	dispatcher.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		reached = true
		return nil
	})
	if err := dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !reached {
		t.Fatalf("second handler did not run after panic")
	}
}

type recordingPublisher struct {
	subjects []string
	payloads [][]byte
}

func (r *recordingPublisher) Publish(_ context.Context, subject string, data []byte) error {
	r.subjects = append(r.subjects, subject)
	r.payloads = append(r.payloads, data)
	return nil
}

func TestNATSForwarderPublishesEverySubscribedType(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(nil)
	publisher := &recordingPublisher{}
	forwarder := NewNATSForwarder(dispatcher, publisher, "desk.", nil)
	forwarder.RegisterHandlers()

	event := Event{ID: "e1", Type: EventSearchCompleted, Payload: SearchCompletedPayload{TaskID: "t1", Matches: 2}}
	if err := dispatcher.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(publisher.subjects) != 1 || publisher.subjects[0] != "desk.search_completed" {
		t.Fatalf("unexpected subjects %v", publisher.subjects)
	}

	var decoded struct {
		ID      string `json:"id"`
		Type    string `json:"type"`
		Payload struct {
			TaskID  string `json:"task_id"`
			Matches int    `json:"matches"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(publisher.payloads[0], &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ID != "e1" || decoded.Payload.TaskID != "t1" || decoded.Payload.Matches != 2 {
		t.Fatalf("unexpected payload %+v", decoded)
	}
}
