package notifiers

import (
	"context"
	"errors"
	"testing"
)

type stubNotifier struct {
	id     string
	typ    string
	err    error
	calls  int
	closed bool
}

func (s *stubNotifier) ID() string   { return s.id }
func (s *stubNotifier) Type() string { return s.typ }
func (s *stubNotifier) Notify(context.Context, Event) error {
	s.calls++
	return s.err
}

type closingNotifier struct {
	stubNotifier
}

func (c *closingNotifier) Close() error {
	c.closed = true
	return nil
}

func TestFanoutNotifyAggregatesErrors(t *testing.T) {
	ok := &stubNotifier{id: "ok", typ: "http"}
	bad := &stubNotifier{id: "bad", typ: "sqs", err: errors.New("failed")}
	fanout := NewFanout([]Notifier{ok, nil, bad})

	if fanout.Size() != 2 {
		t.Fatalf("expected nil notifiers to be dropped, size=%d", fanout.Size())
	}

	count, err := fanout.Notify(context.Background(), NewEvent(EventSessionUnauthorized, "hubctl", "https://api.example.com"))
	if count != 1 {
		t.Fatalf("expected 1 success, got %d", count)
	}
	if err == nil || !errors.Is(err, bad.err) {
		t.Fatalf("expected aggregated error wrapping notifier failure, got %v", err)
	}
	if ok.calls != 1 || bad.calls != 1 {
		t.Fatalf("expected every notifier to be called once")
	}
}

func TestFanoutCloseClosesClosers(t *testing.T) {
	c := &closingNotifier{stubNotifier{id: "ps", typ: TypePubSub}}
	fanout := NewFanout([]Notifier{&stubNotifier{id: "x"}, c})
	if err := fanout.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !c.closed {
		t.Fatalf("expected closer to be closed")
	}
}

func TestNilFanoutIsInert(t *testing.T) {
	var f *Fanout
	if n, err := f.Notify(context.Background(), Event{}); n != 0 || err != nil {
		t.Fatalf("expected no-op, got %d %v", n, err)
	}
	if f.Size() != 0 || f.Close() != nil {
		t.Fatalf("expected nil fanout to be inert")
	}
}

func TestBuildAllWithDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	ns, err := BuildAll(context.Background(), reg, []NotifierConfig{
		{ID: "hook", Type: TypeHTTP, HTTP: &HTTPNotifierConfig{URL: "https://example.com", Method: "POST", TimeoutSeconds: 1}},
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(ns) != 1 || ns[0].Type() != TypeHTTP {
		t.Fatalf("expected 1 http notifier, got %#v", ns)
	}

	if _, err := BuildAll(context.Background(), reg, []NotifierConfig{{ID: "x", Type: "kafka"}}, nil); err == nil {
		t.Fatalf("expected unknown type to fail")
	}
}

func TestNewEventFields(t *testing.T) {
	evt := NewEvent(EventSessionUnauthorized, "hubctl", "https://api.example.com")
	if evt.ID == "" || evt.OccurredAt.IsZero() {
		t.Fatalf("expected id and timestamp, got %#v", evt)
	}
	attrs := evt.attributes()
	if attrs["event_type"] != EventSessionUnauthorized || attrs["source"] != "hubctl" {
		t.Fatalf("unexpected attributes %#v", attrs)
	}
	if _, ok := (Event{Type: "x"}).attributes()["source"]; ok {
		t.Fatalf("empty attributes must be omitted")
	}
}
