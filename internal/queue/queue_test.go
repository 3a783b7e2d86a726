package queue

import (
	"sync"
	"testing"
)

type task struct {
	Mount int
	Name  string
}

func TestQueue_New(t *testing.T) {
	q := New[task]()
	if q == nil {
		t.Fatal("expected non-nil queue")
	}
	if !q.Empty() {
		t.Error("expected empty queue")
	}
	if q.Len() != 0 {
		t.Errorf("expected length 0, got %d", q.Len())
	}
}

func TestQueue_PushPop(t *testing.T) {
	q := New[task]()

	if _, ok := q.Pop(); ok {
		t.Fatal("expected pop from empty queue to fail")
	}

	q.Push(task{Mount: 1, Name: "first"}, task{Mount: 2, Name: "second"})
	first, ok := q.Pop()
	if !ok || first.Mount != 1 || first.Name != "first" {
		t.Errorf("expected {1, first}, got %+v", first)
	}
	if q.Len() != 1 {
		t.Errorf("expected length 1, got %d", q.Len())
	}
}

func TestQueue_Items(t *testing.T) {
	q := New[task]()
	q.Push(task{Mount: 1}, task{Mount: 2})

	items := q.Items()
	items[0].Mount = 99

	front, _ := q.Pop()
	if front.Mount != 1 {
		t.Errorf("Items must return a copy, front is %d", front.Mount)
	}
}

func TestQueue_ContainsAndRemoveFunc(t *testing.T) {
	q := New[task]()
	q.Push(task{Mount: 1}, task{Mount: 2}, task{Mount: 3}, task{Mount: 2})

	isTwo := func(t task) bool { return t.Mount == 2 }
	if !q.Contains(isTwo) {
		t.Fatal("expected queue to contain mount 2")
	}
	if n := q.RemoveFunc(isTwo); n != 2 {
		t.Errorf("expected 2 removed, got %d", n)
	}
	if q.Contains(isTwo) {
		t.Error("mount 2 still queued")
	}

	got := q.Drain()
	if len(got) != 2 || got[0].Mount != 1 || got[1].Mount != 3 {
		t.Errorf("unexpected order after removal: %+v", got)
	}
}

func TestQueue_Drain(t *testing.T) {
	q := New[task]()
	q.Push(task{Mount: 1}, task{Mount: 2}, task{Mount: 3})

	items := q.Drain()
	if len(items) != 3 {
		t.Errorf("expected 3 items, got %d", len(items))
	}
	if !q.Empty() {
		t.Error("expected empty queue after drain")
	}

	q.Push(task{Mount: 4})
	if q.Len() != 1 {
		t.Errorf("queue unusable after drain, length %d", q.Len())
	}
}

func TestQueue_ConcurrentAccess(t *testing.T) {
	q := New[task]()
	var wg sync.WaitGroup

	for i := range 100 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			q.Push(task{Mount: n})
		}(i)
	}
	wg.Wait()

	if q.Len() != 100 {
		t.Fatalf("expected 100 items, got %d", q.Len())
	}

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Pop()
		}()
	}
	wg.Wait()

	if q.Len() != 50 {
		t.Errorf("expected 50 items after concurrent pops, got %d", q.Len())
	}
}
