package duel

// NextFreeArena hands out the next arena after the last one handed out that free accepts,
// wrapping around.
func (r *Registry) NextFreeArena(free func(*Arena) bool) (*Arena, error) {
	if len(r.order) == 0 {
		return nil, ErrNoArenas
	}
	for i := 1; i <= len(r.order); i++ {
		idx := (r.lastHandedOut + i) % len(r.order)
		if a := r.order[idx]; free(a) {
			r.lastHandedOut = idx
			return a, nil
		}
	}
	return nil, ErrNoFreeArena
}
