// Package pausableticker provides the fixed-rate tick that drives the duel subsystem.
package pausableticker

import (
	"sync"
	"time"
)

type Ticker struct {
	C <-chan time.Time // The channel on which the ticks are delivered.

	µ      sync.Mutex
	paused bool
	pause  chan bool
	stop   chan struct{}
	done   chan struct{}
	ticker *time.Ticker
}

func New(d time.Duration) *Ticker {
	c := make(chan time.Time)

	t := &Ticker{
		C:      c,
		pause:  make(chan bool),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		ticker: time.NewTicker(d),
	}

	go t.run(c)

	return t
}

func (t *Ticker) run(c chan<- time.Time) {
	defer close(t.done)
	for {
		select {
		case now := <-t.ticker.C:
			// ticks pile up while nobody listens, drop them instead
			select {
			case c <- now:
			case shouldPause := <-t.pause:
				if shouldPause && !t.waitForResume() {
					return
				}
			case <-t.stop:
				return
			}
		case shouldPause := <-t.pause:
			if shouldPause && !t.waitForResume() {
				return
			}
		case <-t.stop:
			return
		}
	}
}

// returns false if the ticker was stopped while paused
func (t *Ticker) waitForResume() bool {
	for {
		select {
		case shouldPause := <-t.pause:
			if !shouldPause {
				return true
			}
		case <-t.stop:
			return false
		}
	}
}

func (t *Ticker) Pause() {
	t.µ.Lock()
	defer t.µ.Unlock()
	if t.paused {
		return
	}
	t.paused = true
	select {
	case t.pause <- true:
	case <-t.done:
	}
}

func (t *Ticker) Paused() bool {
	t.µ.Lock()
	defer t.µ.Unlock()
	return t.paused
}

func (t *Ticker) Resume() {
	t.µ.Lock()
	defer t.µ.Unlock()
	if !t.paused {
		return
	}
	t.paused = false
	select {
	case t.pause <- false:
	case <-t.done:
	}
}

func (t *Ticker) Stop() {
	select {
	case <-t.done:
		return
	default:
	}
	close(t.stop)
	<-t.done
	t.ticker.Stop()
}
