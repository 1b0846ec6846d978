package duel

import "time"

// Request is a pending duel invitation. Arena is only a wish: it is resolved when the
// request is accepted.
type Request struct {
	Requester Player
	Target    Player
	Arena     string
	CreatedAt time.Time
}

func (r *Request) expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(r.CreatedAt) > ttl
}

type requestKey struct {
	requester, target PlayerID
}

// RequestBoard holds at most one request per (requester, target) pair.
type RequestBoard struct {
	ttl      time.Duration
	requests map[requestKey]*Request
	order    []*Request // oldest first
}

func NewRequestBoard(ttl time.Duration) *RequestBoard {
	return &RequestBoard{
		ttl:      ttl,
		requests: map[requestKey]*Request{},
	}
}

func (rb *RequestBoard) TTL() time.Duration { return rb.ttl }

func (rb *RequestBoard) Get(requester, target PlayerID) (*Request, bool) {
	r, ok := rb.requests[requestKey{requester, target}]
	return r, ok
}

func (rb *RequestBoard) add(r *Request) bool {
	k := requestKey{r.Requester.ID, r.Target.ID}
	if _, ok := rb.requests[k]; ok {
		return false
	}
	rb.requests[k] = r
	rb.order = append(rb.order, r)
	return true
}

func (rb *RequestBoard) remove(r *Request) bool {
	k := requestKey{r.Requester.ID, r.Target.ID}
	if rb.requests[k] != r {
		return false
	}
	delete(rb.requests, k)
	for i, _r := range rb.order {
		if _r == r {
			rb.order = append(rb.order[:i], rb.order[i+1:]...)
			break
		}
	}
	return true
}

// Incoming returns the requests sent to target, oldest first.
func (rb *RequestBoard) Incoming(target PlayerID) []*Request {
	return rb.filter(func(r *Request) bool { return r.Target.ID == target })
}

// Outgoing returns the requests sent by requester, oldest first.
func (rb *RequestBoard) Outgoing(requester PlayerID) []*Request {
	return rb.filter(func(r *Request) bool { return r.Requester.ID == requester })
}

func (rb *RequestBoard) involving(p PlayerID) []*Request {
	return rb.filter(func(r *Request) bool { return r.Requester.ID == p || r.Target.ID == p })
}

func (rb *RequestBoard) expired(now time.Time) []*Request {
	return rb.filter(func(r *Request) bool { return r.expired(now, rb.ttl) })
}

func (rb *RequestBoard) filter(keep func(*Request) bool) (requests []*Request) {
	for _, r := range rb.order {
		if keep(r) {
			requests = append(requests, r)
		}
	}
	return
}

func (rb *RequestBoard) Len() int { return len(rb.order) }
