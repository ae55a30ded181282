package indicators

import "testing"

func TestBoundedSeriesEvictsOldestFirst(t *testing.T) {
	s := NewBoundedSeries[int](3)
	for i := 1; i <= 5; i++ {
		s.Push(i)
	}

	if s.Len() != 3 {
		t.Fatalf("len = %d, want 3", s.Len())
	}
	want := []int{3, 4, 5}
	for i, w := range want {
		if got := s.At(i); got != w {
			t.Errorf("At(%d) = %d, want %d", i, got, w)
		}
	}
}

func TestBoundedSeriesFull(t *testing.T) {
	s := NewBoundedSeries[float64](2)
	if s.Full() {
		t.Fatal("empty series reported full")
	}
	s.Push(1)
	s.Push(2)
	if !s.Full() {
		t.Fatal("series at capacity not reported full")
	}
	s.Push(3)
	if s.Len() != 2 {
		t.Fatalf("len after overflow = %d, want 2", s.Len())
	}
}

func TestBoundedSeriesTrimFront(t *testing.T) {
	s := NewBoundedSeries[int](10)
	for i := 0; i < 6; i++ {
		s.Push(i)
	}
	s.TrimFront(func(v int) bool { return v < 3 })

	if s.Len() != 3 {
		t.Fatalf("len = %d, want 3", s.Len())
	}
	front, _ := s.Front()
	if front != 3 {
		t.Errorf("front = %d, want 3", front)
	}
}

func TestBoundedSeriesFrontBackEmpty(t *testing.T) {
	s := NewBoundedSeries[int](2)
	if _, ok := s.Front(); ok {
		t.Error("Front on empty returned ok")
	}
	if _, ok := s.Back(); ok {
		t.Error("Back on empty returned ok")
	}
	if _, ok := s.PopFront(); ok {
		t.Error("PopFront on empty returned ok")
	}
}
