package uiloop

import (
	"errors"
	"sync"
	"testing"
)

func TestLoopOrder(t *testing.T) {
	l := New()
	defer l.Stop()

	var got []int // only touched by the loop goroutine
	for i := 0; i < 100; i++ {
		i := i
		if !l.Post(func() { got = append(got, i) }) {
			t.Fatal("post failed")
		}
	}
	var n int
	if err := l.Run(func() error { n = len(got); return nil }); err != nil {
		t.Fatal(err)
	}
	if n != 100 {
		t.Fatalf("n=%v", n)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("order: %v", got)
		}
	}
}

func TestLoopRunError(t *testing.T) {
	l := New()
	defer l.Stop()

	e := errors.New("fail")
	if err := l.Run(func() error { return e }); err != e {
		t.Fatalf("err=%v", err)
	}
}

func TestLoopConcurrentRun(t *testing.T) {
	l := New()
	defer l.Stop()

	count := 0 // only touched by the loop goroutine
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Run(func() error { count++; return nil })
		}()
	}
	wg.Wait()
	_ = l.Run(func() error {
		if count != 50 {
			t.Errorf("count=%v", count)
		}
		return nil
	})
}

func TestLoopStop(t *testing.T) {
	l := New()
	ran := false
	l.Post(func() { ran = true })
	l.Stop()
	if !ran {
		t.Fatal("pending work not run")
	}
	if err := l.Run(func() error { return nil }); err != ErrStopped {
		t.Fatalf("err=%v", err)
	}
	if l.Post(func() {}) {
		t.Fatal("post after stop")
	}
	l.Stop() // second stop is a no-op
}
