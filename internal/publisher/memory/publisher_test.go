package memory

import (
	"context"
	"testing"

	"github.com/JakeFAU/legislation-tracker/internal/tracker"
)

func TestPublisherStoresMessages(t *testing.T) {
	t.Parallel()

	pub := New()
	first := tracker.RunNotification{RunID: "run-1", TotalCount: 4}
	id1, err := pub.Publish(context.Background(), "tracker-runs", first)
	if err != nil || id1 != "memory-1" {
		t.Fatalf("unexpected publish result id=%s err=%v", id1, err)
	}
	id2, err := pub.Publish(context.Background(), "tracker-audit", "payload")
	if err != nil || id2 != "memory-2" {
		t.Fatalf("unexpected publish result id=%s err=%v", id2, err)
	}

	msgs := pub.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Topic != "tracker-runs" || msgs[1].Topic != "tracker-audit" {
		t.Fatalf("topics not recorded correctly: %+v", msgs)
	}
	if got, ok := msgs[0].Payload.(tracker.RunNotification); !ok || got.RunID != "run-1" {
		t.Fatalf("payload not recorded correctly: %+v", msgs[0].Payload)
	}

	msgs[0].Topic = "modified"
	if pub.Messages()[0].Topic == "modified" {
		t.Fatal("expected Messages() to return a copy")
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}
