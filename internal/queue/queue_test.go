package queue

import (
	"sync"
	"testing"
)

// testItem is a simple struct for testing the generic deque
type testItem struct {
	ID   int
	Name string
}

func TestDeque_New(t *testing.T) {
	q := New[testItem]()
	if q == nil {
		t.Fatal("expected non-nil deque")
	}
	if !q.Empty() {
		t.Error("expected empty deque")
	}
	if q.Len() != 0 {
		t.Errorf("expected length 0, got %d", q.Len())
	}
}

func TestDeque_Push(t *testing.T) {
	q := New[testItem]()

	q.Push(testItem{ID: 1, Name: "first"})
	if q.Len() != 1 {
		t.Errorf("expected length 1, got %d", q.Len())
	}

	q.Push(testItem{ID: 2}, testItem{ID: 3})
	if q.Len() != 3 {
		t.Errorf("expected length 3, got %d", q.Len())
	}
}

func TestDeque_Pop(t *testing.T) {
	q := New[testItem]()

	// Pop from empty deque returns zero value
	result := q.Pop()
	if result.ID != 0 || result.Name != "" {
		t.Errorf("expected zero value, got %+v", result)
	}

	q.Push(testItem{ID: 1, Name: "first"}, testItem{ID: 2, Name: "second"})
	first := q.Pop()
	if first.ID != 1 || first.Name != "first" {
		t.Errorf("expected {1, first}, got %+v", first)
	}
	if q.Len() != 1 {
		t.Errorf("expected length 1, got %d", q.Len())
	}
}

func TestDeque_PushFront(t *testing.T) {
	q := New[testItem]()
	q.Push(testItem{ID: 9, Name: "original"})

	// A prepended chain must come out in the order it was given,
	// ahead of the existing items.
	q.PushFront(testItem{ID: 1, Name: "a"}, testItem{ID: 2, Name: "b"}, testItem{ID: 3, Name: "c"})

	if q.Len() != 4 {
		t.Fatalf("expected length 4, got %d", q.Len())
	}
	for i, want := range []int{1, 2, 3, 9} {
		got := q.Pop()
		if got.ID != want {
			t.Errorf("pop %d: expected ID %d, got %d", i, want, got.ID)
		}
	}
}

func TestDeque_PushFrontEmptyChain(t *testing.T) {
	q := New[testItem]()
	q.Push(testItem{ID: 1})
	q.PushFront()
	if q.Len() != 1 {
		t.Errorf("expected length 1, got %d", q.Len())
	}
}

func TestDeque_Peek(t *testing.T) {
	q := New[testItem]()
	if got := q.Peek(); got.ID != 0 {
		t.Errorf("expected zero value from empty peek, got %+v", got)
	}

	q.Push(testItem{ID: 5, Name: "head"})
	if got := q.Peek(); got.ID != 5 {
		t.Errorf("expected ID 5, got %d", got.ID)
	}
	if q.Len() != 1 {
		t.Error("Peek must not remove the item")
	}
}

func TestDeque_Clear(t *testing.T) {
	q := New[testItem]()
	q.Push(testItem{ID: 1}, testItem{ID: 2})
	q.Clear()
	if !q.Empty() {
		t.Error("expected empty deque after Clear")
	}
}

func TestDeque_GetAndEmpty(t *testing.T) {
	q := New[testItem]()
	q.Push(testItem{ID: 1}, testItem{ID: 2})

	items := q.GetAndEmpty()
	if len(items) != 2 {
		t.Errorf("expected 2 items, got %d", len(items))
	}
	if !q.Empty() {
		t.Error("expected empty deque after GetAndEmpty")
	}
}

func TestDeque_ConcurrentAccess(t *testing.T) {
	q := New[int]()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			q.Push(n)
		}(i)
		go func(n int) {
			defer wg.Done()
			q.PushFront(n)
		}(i)
	}
	wg.Wait()

	if q.Len() != 20 {
		t.Errorf("expected 20 items, got %d", q.Len())
	}
}
