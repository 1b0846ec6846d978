package duel

import (
	"fmt"
	"time"

	"github.com/sauerbraten/duelist/pkg/events"
)

type Phase int

const (
	Forming Phase = iota
	CountdownActive
	Live
	Resolving
	Cleanup
	Terminated
)

func (p Phase) String() string {
	switch p {
	case Forming:
		return "forming"
	case CountdownActive:
		return "countdown"
	case Live:
		return "live"
	case Resolving:
		return "resolving"
	case Cleanup:
		return "cleanup"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

type EndReason int

const (
	Eliminated EndReason = iota
	Disconnected
	Forfeited
)

func (r EndReason) String() string {
	switch r {
	case Eliminated:
		return "eliminated"
	case Disconnected:
		return "disconnected"
	case Forfeited:
		return "forfeited"
	default:
		return "unknown"
	}
}

// Result is how a session ended. Scored is false if nobody was left to credit.
type Result struct {
	Winner Player
	Loser  Player
	Reason EndReason
	Killed bool // the winner was credited with eliminating the loser
	Scored bool
}

// Session is one duel between exactly two players in one arena.
type Session struct {
	ID        string
	A, B      Player
	Arena     *Arena
	Phase     Phase
	Countdown int
	CreatedAt time.Time
	Result    *Result

	loadout       Loadout
	nextCountdown time.Time
	cleanupAt     time.Time
	group         *events.Group
	countdownTick events.ID
}

func (s *Session) Has(p PlayerID) bool { return s.A.ID == p || s.B.ID == p }

func (s *Session) Participants() []Player { return []Player{s.A, s.B} }

// Opponent returns the other participant. p must be a participant.
func (s *Session) Opponent(p PlayerID) Player {
	if s.A.ID == p {
		return s.B
	}
	return s.A
}

func (s *Session) participant(p PlayerID) Player {
	if s.A.ID == p {
		return s.A
	}
	return s.B
}

func (s *Session) String() string {
	return fmt.Sprintf("%s vs %s in %s (%s)", s.A, s.B, s.Arena.Name, s.Phase)
}
