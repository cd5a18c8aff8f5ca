package session

import (
	"sync"
	"time"
)

// Countdown is a single-shot per-question countdown. It emits one tick per
// interval (seconds ticks in total, counting down to 0) and exactly one
// expire callback, unless cancelled first.
type Countdown struct {
	stop chan struct{}
	once sync.Once
}

// StartCountdown begins the countdown. onTick receives the remaining seconds
// after each elapsed interval; onExpire fires once when the countdown reaches
// zero. Both callbacks run on the countdown's own goroutine.
func StartCountdown(seconds int, interval time.Duration, onTick func(remaining int), onExpire func()) *Countdown {
	c := &Countdown{stop: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for remaining := seconds - 1; remaining >= 0; remaining-- {
			select {
			case <-ticker.C:
				onTick(remaining)
			case <-c.stop:
				return
			}
		}
		select {
		case <-c.stop:
			return
		default:
		}
		onExpire()
	}()
	return c
}

// Cancel stops the countdown. Safe to call multiple times and after expiry.
func (c *Countdown) Cancel() {
	c.once.Do(func() { close(c.stop) })
}
