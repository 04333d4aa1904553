package progress

import (
	"sync"
	"testing"
)

func TestBar_AdvanceReachesDone(t *testing.T) {
	b := New("render", 10)
	for i := 0; i < 10; i++ {
		b.Advance(1)
	}
	if !b.Done() {
		t.Fatal("expected Done() after advancing the full total")
	}
}

func TestBar_ConcurrentAdvanceIsRaceFree(t *testing.T) {
	b := New("render", 1000)
	var wg sync.WaitGroup
	for i := 0; i < 1000; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Advance(1)
		}()
	}
	wg.Wait()
	if !b.Done() {
		t.Fatal("expected Done() after all goroutines advanced")
	}
}

func TestBar_AdvanceClampsAtTotal(t *testing.T) {
	b := New("render", 5)
	b.Advance(100)
	if !b.Done() {
		t.Fatal("expected Done() after over-advancing")
	}
}
