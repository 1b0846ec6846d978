package main

import "time"

// gameClock is wall time minus the time the server spent paused, so that request expiry
// and countdowns stand still during a pause.
type gameClock struct {
	paused      bool
	pausedAt    time.Time
	pausedTotal time.Duration
	wall        func() time.Time
}

func newGameClock() *gameClock { return &gameClock{wall: time.Now} }

func (gc *gameClock) Now() time.Time {
	if gc.paused {
		return gc.pausedAt.Add(-gc.pausedTotal)
	}
	return gc.wall().Add(-gc.pausedTotal)
}

func (gc *gameClock) Pause() bool {
	if gc.paused {
		return false
	}
	gc.paused = true
	gc.pausedAt = gc.wall()
	return true
}

func (gc *gameClock) Resume() bool {
	if !gc.paused {
		return false
	}
	gc.paused = false
	gc.pausedTotal += gc.wall().Sub(gc.pausedAt)
	return true
}
