package events

import "testing"

func publishN(b *Bus, kind Kind, n int) {
	for i := 0; i < n; i++ {
		b.Publish(Event{Kind: kind, Timestamp: int64(i)})
	}
}

func TestSubscribeAllKinds(t *testing.T) {
	b := NewBus(8)
	defer b.Close()

	sub := b.Subscribe()
	defer sub.Close()

	for _, kind := range AllKinds() {
		b.Publish(Event{Kind: kind})
	}

	for _, kind := range AllKinds() {
		select {
		case e := <-sub.C:
			if e.Kind != kind {
				t.Fatalf("expected %s, got %s", kind, e.Kind)
			}
		default:
			t.Fatalf("missing event %s", kind)
		}
	}
}

func TestSubscribeFiltersKinds(t *testing.T) {
	b := NewBus(8)
	defer b.Close()

	sub := b.Subscribe(KindOrderPaid)
	defer sub.Close()

	b.Publish(Event{Kind: KindOrderAdded})
	b.Publish(Event{Kind: KindOrderPaid})
	b.Publish(Event{Kind: KindReviewAdded})

	select {
	case e := <-sub.C:
		if e.Kind != KindOrderPaid {
			t.Fatalf("expected orderPaid, got %s", e.Kind)
		}
	default:
		t.Fatalf("missing orderPaid event")
	}
	select {
	case e := <-sub.C:
		t.Fatalf("unexpected extra event %s", e.Kind)
	default:
	}
}

func TestPublishDropsForFullSubscriber(t *testing.T) {
	b := NewBus(2)
	defer b.Close()

	sub := b.Subscribe(KindOrderAdded)
	defer sub.Close()

	// Publish must never block even though nobody is draining.
	publishN(b, KindOrderAdded, 10)

	received := 0
	for {
		select {
		case <-sub.C:
			received++
			continue
		default:
		}
		break
	}
	if received != 2 {
		t.Fatalf("expected buffer of 2 delivered events, got %d", received)
	}
}

func TestCloseStopsDelivery(t *testing.T) {
	b := NewBus(2)
	sub := b.Subscribe()

	b.Close()
	b.Publish(Event{Kind: KindOrderAdded})

	if _, ok := <-sub.C; ok {
		t.Fatalf("expected closed channel after bus shutdown")
	}
}

func TestSubscriptionCloseUnregisters(t *testing.T) {
	b := NewBus(2)
	defer b.Close()

	sub := b.Subscribe(KindOrderAdded)
	sub.Close()
	sub.Close() // safe to call twice

	b.Publish(Event{Kind: KindOrderAdded})

	if _, ok := <-sub.C; ok {
		t.Fatalf("expected closed channel after unsubscribe")
	}
}

func TestParseKind(t *testing.T) {
	for _, kind := range AllKinds() {
		got, err := ParseKind(string(kind))
		if err != nil || got != kind {
			t.Errorf("ParseKind(%s) = %s, %v", kind, got, err)
		}
	}
	if _, err := ParseKind("orderShipped"); err == nil {
		t.Errorf("expected unknown kind to be rejected")
	}
}
