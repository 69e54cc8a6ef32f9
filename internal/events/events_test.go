package events

import (
	"fmt"
	"testing"
)

func TestPublishAssignsSequence(t *testing.T) {
	bus := NewBus(10)

	first := bus.Publish(Event{Type: TypeUploadBatch})
	second := bus.Publish(Event{Type: TypeUploadBatch})

	if first.Seq != 1 || second.Seq != 2 {
		t.Errorf("Expected sequences 1 and 2, got %d and %d", first.Seq, second.Seq)
	}
	if first.Timestamp.IsZero() {
		t.Error("Expected timestamp to be assigned")
	}
}

func TestSinceReturnsOnlyNewerEvents(t *testing.T) {
	bus := NewBus(10)
	for i := 0; i < 5; i++ {
		bus.Publish(Event{Type: TypeUploadBatch, GroupIndex: i})
	}

	got := bus.Since(3)
	if len(got) != 2 {
		t.Fatalf("Expected 2 events after seq 3, got %d", len(got))
	}
	if got[0].Seq != 4 || got[1].Seq != 5 {
		t.Errorf("Expected seqs 4 and 5, got %d and %d", got[0].Seq, got[1].Seq)
	}
}

func TestSinceEmptyBus(t *testing.T) {
	bus := NewBus(10)
	if got := bus.Since(0); len(got) != 0 {
		t.Errorf("Expected no events, got %d", len(got))
	}
}

func TestBusTrimsOldEvents(t *testing.T) {
	bus := NewBus(3)
	for i := 0; i < 5; i++ {
		bus.Publish(Event{Type: TypeUploadBatch, Message: fmt.Sprintf("event %d", i)})
	}

	got := bus.Since(0)
	if len(got) != 3 {
		t.Fatalf("Expected buffer capped at 3, got %d", len(got))
	}
	// Sequence numbers keep counting even after trimming.
	if got[0].Seq != 3 || got[2].Seq != 5 {
		t.Errorf("Expected seqs 3..5, got %d..%d", got[0].Seq, got[2].Seq)
	}
}

func TestBusConcurrentPublish(t *testing.T) {
	bus := NewBus(100)
	done := make(chan struct{})

	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 10; j++ {
				bus.Publish(Event{Type: TypeSearchBatch})
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	got := bus.Since(0)
	if len(got) != 100 {
		t.Fatalf("Expected 100 events, got %d", len(got))
	}
	for i, ev := range got {
		if ev.Seq != int64(i+1) {
			t.Fatalf("Expected dense sequence, got %d at position %d", ev.Seq, i)
		}
	}
}
