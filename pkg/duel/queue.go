package duel

import "time"

type queueEntry struct {
	player   PlayerID
	since    time.Time
	notified bool // told that no arena is free
}

// Queue is the FIFO of players waiting to be paired up.
type Queue struct {
	entries []*queueEntry
}

func (q *Queue) Len() int { return len(q.entries) }

func (q *Queue) Contains(p PlayerID) bool { return q.Position(p) >= 0 }

// Position returns the 0-based position of p in the queue, or -1.
func (q *Queue) Position(p PlayerID) int {
	for i, e := range q.entries {
		if e.player == p {
			return i
		}
	}
	return -1
}

func (q *Queue) push(p PlayerID, now time.Time) bool {
	if q.Contains(p) {
		return false
	}
	q.entries = append(q.entries, &queueEntry{player: p, since: now})
	return true
}

func (q *Queue) remove(p PlayerID) bool {
	i := q.Position(p)
	if i < 0 {
		return false
	}
	q.entries = append(q.entries[:i], q.entries[i+1:]...)
	return true
}

func (q *Queue) pop() *queueEntry {
	if len(q.entries) == 0 {
		return nil
	}
	e := q.entries[0]
	q.entries = q.entries[1:]
	return e
}

// pushFront puts entries back at the head of the queue, keeping their order.
func (q *Queue) pushFront(entries ...*queueEntry) {
	q.entries = append(append([]*queueEntry(nil), entries...), q.entries...)
}

// Players returns the queued players, oldest first.
func (q *Queue) Players() []PlayerID {
	players := make([]PlayerID, 0, len(q.entries))
	for _, e := range q.entries {
		players = append(players, e.player)
	}
	return players
}
