package duel

import (
	"github.com/sauerbraten/duelist/pkg/geom"
)

// Arena is an immutable arena definition. Its kit is granted to both participants.
type Arena struct {
	Name    string
	SpawnA  geom.Position
	SpawnB  geom.Position
	Exit    geom.Position
	Kit     string
	OnStart []string // host commands run for each participant when the fight starts
	OnEnd   []string // host commands run for each participant after cleanup
}

func (a *Arena) validGeometry() bool {
	return a.SpawnA.Valid() && a.SpawnB.Valid() && a.Exit.Valid() &&
		a.SpawnA.Realm == a.SpawnB.Realm &&
		a.SpawnA != a.SpawnB
}

func (a *Arena) spawnFor(s *Session, p PlayerID) geom.Position {
	if s.A.ID == p {
		return a.SpawnA
	}
	return a.SpawnB
}
