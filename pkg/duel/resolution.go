package duel

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sauerbraten/duelist/pkg/chat"
	"github.com/sauerbraten/duelist/pkg/events"
)

func (e *Engine) onElimination(s *Session, ev events.Event) {
	victim := PlayerID(ev.Subject)
	if !s.Has(victim) {
		return
	}
	killer := PlayerID(ev.Other)
	e.resolve(s, victim, Eliminated, killer != victim && s.Has(killer))
}

func (e *Engine) onQuit(s *Session, ev events.Event, reason EndReason) {
	p := PlayerID(ev.Subject)
	if !s.Has(p) {
		return
	}
	e.resolve(s, p, reason, false)
}

func (e *Engine) onAttack(s *Session, ev events.Event) {
	attacker, victim := PlayerID(ev.Subject), PlayerID(ev.Other)
	if s.Phase != Live || attacker == victim || !s.Has(attacker) || !s.Has(victim) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), e.opts.StoreTimeout)
	defer cancel()
	if err := e.ledger.RecordAttack(ctx, string(attacker)); err != nil {
		e.log.Error().Err(err).Str("session", s.ID).Str("player", string(attacker)).Msg("could not record attack")
	}
}

// resolve ends s with loser losing. Only the first call for a session has any effect.
func (e *Engine) resolve(s *Session, loser PlayerID, reason EndReason, killed bool) {
	if !e.tracker.markResolving(s) {
		return
	}
	s.group.Close()
	s.Phase = Resolving

	winner := s.Opponent(loser)
	result := &Result{
		Winner: winner,
		Loser:  s.participant(loser),
		Reason: reason,
		Killed: killed,
	}

	loserGone := reason == Disconnected || !e.online(loser)
	if !loserGone || e.online(winner.ID) {
		result.Scored = true
		e.applyScores(s, result)
	}
	s.Result = result

	e.log.Info().
		Str("session", s.ID).
		Str("arena", s.Arena.Name).
		Str("winner", string(winner.ID)).
		Str("loser", string(loser)).
		Str("reason", reason.String()).
		Bool("scored", result.Scored).
		Msg("session resolved")

	s.Phase = Cleanup
	s.cleanupAt = e.clock().Add(e.opts.CleanupDelay)
	e.cleaning = append(e.cleaning, s)
}

// applyScores logs store failures; they never keep a session from being cleaned up.
func (e *Engine) applyScores(s *Session, r *Result) {
	ctx, cancel := context.WithTimeout(context.Background(), e.opts.StoreTimeout)
	defer cancel()

	if err := e.ledger.RecordLoss(ctx, string(r.Loser.ID)); err != nil {
		e.log.Error().Err(err).Str("session", s.ID).Str("player", string(r.Loser.ID)).Msg("could not record loss")
	}
	if err := e.ledger.RecordWin(ctx, string(r.Winner.ID), r.Killed); err != nil {
		e.log.Error().Err(err).Str("session", s.ID).Str("player", string(r.Winner.ID)).Msg("could not record win")
	}
}

func (e *Engine) runDueCleanups(now time.Time) {
	remaining := e.cleaning[:0]
	var due []*Session
	for _, s := range e.cleaning {
		if now.Before(s.cleanupAt) {
			remaining = append(remaining, s)
		} else {
			due = append(due, s)
		}
	}
	e.cleaning = remaining
	for _, s := range due {
		e.cleanup(s)
	}
}

func (e *Engine) cleanup(s *Session) {
	var reachable []Player
	for _, p := range s.Participants() {
		if !e.online(p.ID) {
			continue
		}
		reachable = append(reachable, p)
		e.clearDuelState(p.ID, s.Arena.Name)
		e.host.Teleport(p.ID, s.Arena.Exit)
	}
	for _, p := range reachable {
		for _, cmd := range s.Arena.OnEnd {
			e.host.RunCommand(p.ID, cmd)
		}
	}

	e.tracker.release(s)
	s.Phase = Terminated

	for _, p := range reachable {
		e.host.SendMessage(p.ID, summary(s, p.ID))
	}
	e.log.Info().Str("session", s.ID).Str("arena", s.Arena.Name).Msg("session cleaned up")
}

func (e *Engine) clearDuelState(p PlayerID, arena string) {
	e.host.ClearInventory(p)
	e.host.RemoveTag(p, TagInDuel)
	e.host.RemoveTag(p, TagRunning)
	if arena != "" {
		e.host.RemoveTag(p, TagArenaPrefix+arena)
	}
}

func summary(s *Session, p PlayerID) string {
	r := s.Result
	var outcome string
	if r.Winner.ID == p {
		outcome = chat.Green("you won")
	} else {
		outcome = chat.Red("you lost")
	}
	var how string
	switch r.Reason {
	case Eliminated:
		how = fmt.Sprintf("%s was eliminated", r.Loser)
	case Disconnected:
		how = fmt.Sprintf("%s disconnected", r.Loser)
	case Forfeited:
		how = fmt.Sprintf("%s left the duel", r.Loser)
	}
	msg := fmt.Sprintf("%s the duel against %s in %s: %s", outcome, s.Opponent(p), s.Arena.Name, how)
	if !r.Scored {
		msg += chat.Gray(" (not scored)")
	}
	return msg
}

// Rejoin clears stale duel state of a player who is not in a session, e.g. after a
// restart dropped the duel they were in. It reports whether anything was cleared.
func (e *Engine) Rejoin(p PlayerID) bool {
	if e.tracker.InSession(p) {
		return false
	}
	stale, arenaName := false, ""
	for _, tag := range e.host.Tags(p) {
		switch {
		case tag == TagInDuel, tag == TagRunning:
			stale = true
		case strings.HasPrefix(tag, TagArenaPrefix):
			stale = true
			arenaName = strings.TrimPrefix(tag, TagArenaPrefix)
		}
	}
	if !stale {
		return false
	}

	e.clearDuelState(p, arenaName)
	exit := e.opts.Lobby
	if a, ok := e.registry.FindArena(arenaName); ok && arenaName != "" {
		exit = a.Exit
	}
	e.host.Teleport(p, exit)
	e.tell(p, chat.Gray("your last duel was interrupted"))
	e.log.Info().Str("player", string(p)).Str("arena", arenaName).Msg("cleared stale duel state")
	return true
}

// SweepStale runs Rejoin for every online player and returns how many were cleared.
func (e *Engine) SweepStale() int {
	n := 0
	for _, p := range e.host.Players() {
		if e.Rejoin(p.ID) {
			n++
		}
	}
	return n
}
