package service

import (
	"testing"
	"time"

	"github.com/bytedance/sonic"

	"vol_monitor/internal/models"
)

func tradePacket(tsMs int64, price float64) models.TelemetryPacket {
	return models.NewTradePacket(
		models.TradeEvent{TradeTimeMs: tsMs, Price: price, Qty: 1},
		0.1, 0, 0, models.TrendNeutral,
	)
}

func TestHubSkipsSerializationWithoutSubscribers(t *testing.T) {
	h := NewHub(8)

	h.Send(tradePacket(1000, 100))
	h.Send(tradePacket(2000, 101))
	if got := h.marshals.Load(); got != 0 {
		t.Fatalf("marshals without subscribers = %d, want 0", got)
	}

	sub := h.Subscribe()
	defer sub.Unsubscribe()
	h.Send(tradePacket(3000, 102))
	if got := h.marshals.Load(); got != 1 {
		t.Fatalf("marshals with subscriber = %d, want 1", got)
	}
}

func TestHubDeliversInOrder(t *testing.T) {
	h := NewHub(16)
	sub := h.Subscribe()
	defer sub.Unsubscribe()

	for i := int64(0); i < 3; i++ {
		h.Send(tradePacket(1000+i, 100+float64(i)))
	}

	for i := int64(0); i < 3; i++ {
		msg, gap, ok := sub.Next()
		if !ok {
			t.Fatal("hub closed unexpectedly")
		}
		if gap != 0 {
			t.Fatalf("gap = %d, want 0", gap)
		}
		var p models.TelemetryPacket
		if err := sonic.UnmarshalString(msg, &p); err != nil {
			t.Fatalf("bad json: %v", err)
		}
		if p.TimestampMs != 1000+i {
			t.Errorf("message %d out of order: %+v", i, p)
		}
	}
}

func TestHubLaggingSubscriberJumpsWithGap(t *testing.T) {
	h := NewHub(4)
	sub := h.Subscribe()
	defer sub.Unsubscribe()

	// десять публикаций в кольцо на четыре: первые шесть вытеснены
	for i := int64(0); i < 10; i++ {
		h.Send(tradePacket(1000+i, 100))
	}

	msg, gap, ok := sub.Next()
	if !ok {
		t.Fatal("hub closed unexpectedly")
	}
	if gap != 6 {
		t.Errorf("gap = %d, want 6", gap)
	}
	var p models.TelemetryPacket
	if err := sonic.UnmarshalString(msg, &p); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if p.TimestampMs != 1006 {
		t.Errorf("first surviving message ts = %v, want 1006", p.TimestampMs)
	}

	// после прыжка чтение продолжается без потерь
	_, gap, _ = sub.Next()
	if gap != 0 {
		t.Errorf("gap after jump = %d, want 0", gap)
	}
}

func TestHubSubscriberCountAndIdempotentUnsubscribe(t *testing.T) {
	h := NewHub(4)
	a := h.Subscribe()
	b := h.Subscribe()
	if h.SubscriberCount() != 2 {
		t.Fatalf("count = %d, want 2", h.SubscriberCount())
	}
	a.Unsubscribe()
	a.Unsubscribe()
	if h.SubscriberCount() != 1 {
		t.Fatalf("count after double unsubscribe = %d, want 1", h.SubscriberCount())
	}
	b.Unsubscribe()
}

func TestHubCloseUnblocksNext(t *testing.T) {
	h := NewHub(4)
	sub := h.Subscribe()
	defer sub.Unsubscribe()

	released := make(chan struct{})
	go func() {
		_, _, ok := sub.Next()
		if ok {
			t.Error("Next returned ok on closed hub")
		}
		close(released)
	}()

	time.Sleep(20 * time.Millisecond)
	h.Close()

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("Next did not unblock on Close")
	}
}
