package indicators

// BoundedSeries — FIFO-буфер фиксированной ёмкости.
// Основа всех скользящих окон: при переполнении молча выталкивает самый старый элемент.
type BoundedSeries[T any] struct {
	data []T
	cap  int
}

func NewBoundedSeries[T any](capacity int) *BoundedSeries[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &BoundedSeries[T]{
		data: make([]T, 0, capacity),
		cap:  capacity,
	}
}

// Push добавляет элемент в хвост, при необходимости выталкивая голову.
func (s *BoundedSeries[T]) Push(v T) {
	if len(s.data) >= s.cap {
		copy(s.data, s.data[1:])
		s.data = s.data[:len(s.data)-1]
	}
	s.data = append(s.data, v)
}

// PopFront убирает самый старый элемент.
func (s *BoundedSeries[T]) PopFront() (T, bool) {
	var zero T
	if len(s.data) == 0 {
		return zero, false
	}
	v := s.data[0]
	copy(s.data, s.data[1:])
	s.data = s.data[:len(s.data)-1]
	return v, true
}

// TrimFront выталкивает элементы с головы, пока drop(head) возвращает true.
// Буфер упорядочен по времени, поэтому первый "живой" элемент останавливает чистку.
func (s *BoundedSeries[T]) TrimFront(drop func(T) bool) {
	n := 0
	for n < len(s.data) && drop(s.data[n]) {
		n++
	}
	if n > 0 {
		copy(s.data, s.data[n:])
		s.data = s.data[:len(s.data)-n]
	}
}

func (s *BoundedSeries[T]) Len() int   { return len(s.data) }
func (s *BoundedSeries[T]) Full() bool { return len(s.data) >= s.cap }

func (s *BoundedSeries[T]) At(i int) T { return s.data[i] }

func (s *BoundedSeries[T]) Front() (T, bool) {
	var zero T
	if len(s.data) == 0 {
		return zero, false
	}
	return s.data[0], true
}

func (s *BoundedSeries[T]) Back() (T, bool) {
	var zero T
	if len(s.data) == 0 {
		return zero, false
	}
	return s.data[len(s.data)-1], true
}

// Items отдаёт срез в хронологическом порядке. Только для чтения.
func (s *BoundedSeries[T]) Items() []T { return s.data }

func (s *BoundedSeries[T]) Clear() { s.data = s.data[:0] }
