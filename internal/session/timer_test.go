package session

import (
	"testing"
	"time"
)

func TestCountdownTicksThenExpires(t *testing.T) {
	ticks := make(chan int, 32)
	done := make(chan struct{})

	StartCountdown(15, time.Millisecond,
		func(remaining int) { ticks <- remaining },
		func() { close(done) },
	)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("countdown did not expire")
	}

	if got := len(ticks); got != 15 {
		t.Fatalf("expected exactly 15 ticks, got %d", got)
	}
	want := 14
	for i := 0; i < 15; i++ {
		if remaining := <-ticks; remaining != want {
			t.Fatalf("tick %d: expected remaining %d, got %d", i, want, remaining)
		}
		want--
	}
}

func TestCountdownCancelIsIdempotent(t *testing.T) {
	expired := make(chan struct{}, 1)
	c := StartCountdown(5, 5*time.Millisecond,
		func(int) {},
		func() { expired <- struct{}{} },
	)
	c.Cancel()
	c.Cancel()

	select {
	case <-expired:
		t.Fatal("cancelled countdown must not expire")
	case <-time.After(100 * time.Millisecond):
	}
}
