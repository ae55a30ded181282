package service

import (
	"sync"
	"sync/atomic"

	"github.com/bytedance/sonic"

	"vol_monitor/internal/models"
)

// Hub — широковещательный журнал телеметрии с потерями.
//
// Кольцевой лог заранее сериализованных сообщений; у каждого подписчика
// свой курсор. Продюсер никогда не блокируется: отставший подписчик теряет
// самые старые непрочитанные записи, а его курсор переставляется на самую
// старую сохранённую с отчётом о размере разрыва.
type Hub struct {
	mu   sync.Mutex
	cond *sync.Cond

	buf      []string
	capacity uint64
	next     uint64 // seq следующей записи; хранится диапазон [next-capacity, next)

	subs     atomic.Int64
	closed   bool
	marshals atomic.Uint64 // сколько раз реально сериализовали
}

func NewHub(capacity int) *Hub {
	if capacity < 1 {
		capacity = 1
	}
	h := &Hub{
		buf:      make([]string, capacity),
		capacity: uint64(capacity),
	}
	h.cond = sync.NewCond(&h.mu)
	return h
}

// Send публикует пакет всем подписчикам.
// Без подписчиков — no-op до сериализации: горячий путь продюсера
// не платит за JSON, когда его никто не читает.
func (h *Hub) Send(p models.TelemetryPacket) {
	if h.subs.Load() == 0 {
		return
	}

	msg, err := sonic.MarshalString(p)
	if err != nil {
		return
	}
	h.marshals.Add(1)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.buf[h.next%h.capacity] = msg
	h.next++
	h.mu.Unlock()

	h.cond.Broadcast()
}

// Close будит всех подписчиков; дальнейшие Next возвращают ok=false.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	h.cond.Broadcast()
}

// Subscriber — независимый курсор чтения в журнале хаба.
type Subscriber struct {
	hub    *Hub
	cursor uint64
	done   bool
}

// Subscribe создаёт подписчика, читающего только новые сообщения.
func (h *Hub) Subscribe() *Subscriber {
	h.mu.Lock()
	cursor := h.next
	h.mu.Unlock()
	h.subs.Add(1)
	return &Subscriber{hub: h, cursor: cursor}
}

// Unsubscribe снимает подписку. Идемпотентен.
func (s *Subscriber) Unsubscribe() {
	if s.done {
		return
	}
	s.done = true
	s.hub.subs.Add(-1)
}

// Next блокируется до следующего сообщения.
// gap > 0 означает, что подписчик отстал и столько сообщений потеряно.
// ok=false — хаб закрыт.
func (s *Subscriber) Next() (msg string, gap uint64, ok bool) {
	h := s.hub

	h.mu.Lock()
	defer h.mu.Unlock()

	for s.cursor == h.next && !h.closed {
		h.cond.Wait()
	}
	if h.closed {
		return "", 0, false
	}

	oldest := uint64(0)
	if h.next > h.capacity {
		oldest = h.next - h.capacity
	}
	if s.cursor < oldest {
		gap = oldest - s.cursor
		s.cursor = oldest
	}

	msg = h.buf[s.cursor%h.capacity]
	s.cursor++
	return msg, gap, true
}

// SubscriberCount — число активных подписчиков.
func (h *Hub) SubscriberCount() int64 { return h.subs.Load() }
