// Package prompt models interactions that wait for a player's answer, like choice forms.
//
// Opening a prompt never blocks: the caller passes a continuation that is invoked exactly
// once, with the selection or with the reason the prompt ended without one.
package prompt

import (
	"sort"

	"github.com/rotisserie/eris"
)

type Outcome int

const (
	Selected Outcome = iota
	Cancelled
	Disconnected
	TimedOut
)

func (o Outcome) String() string {
	switch o {
	case Selected:
		return "selected"
	case Cancelled:
		return "cancelled"
	case Disconnected:
		return "disconnected"
	case TimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

type Result struct {
	Outcome Outcome
	Index   int    // only set if Outcome is Selected
	Value   string // the selected option
}

type Continuation func(Result)

// Presenter renders a form to a player. The host decides what a form looks like.
type Presenter interface {
	ShowForm(player string, id ID, title string, options []string)
	CloseForm(player string, id ID)
}

type ID uint64

type pending struct {
	id      ID
	player  string
	options []string
	resume  Continuation
}

// Board keeps at most one open prompt per player; opening a new one cancels the old one.
type Board struct {
	presenter Presenter
	next      ID
	open      map[string]*pending
}

func NewBoard(presenter Presenter) *Board {
	return &Board{
		presenter: presenter,
		open:      map[string]*pending{},
	}
}

func (b *Board) Open(player, title string, options []string, resume Continuation) ID {
	b.end(player, Result{Outcome: Cancelled})

	b.next++
	p := &pending{
		id:      b.next,
		player:  player,
		options: append([]string(nil), options...),
		resume:  resume,
	}
	b.open[player] = p
	b.presenter.ShowForm(player, p.id, title, p.options)
	return p.id
}

// Answer resumes the player's open prompt with the option at index (0-based).
func (b *Board) Answer(player string, index int) error {
	p, ok := b.open[player]
	if !ok {
		return eris.New("nothing to answer")
	}
	if index < 0 || index >= len(p.options) {
		return eris.Errorf("pick a number from 1 to %d", len(p.options))
	}
	b.end(player, Result{Outcome: Selected, Index: index, Value: p.options[index]})
	return nil
}

func (b *Board) Cancel(player string) bool {
	return b.end(player, Result{Outcome: Cancelled})
}

// Disconnect discards the player's open prompt without side effects beyond the
// continuation seeing Disconnected.
func (b *Board) Disconnect(player string) bool {
	return b.end(player, Result{Outcome: Disconnected})
}

// Expire ends the prompt with the given id, if it is still open.
func (b *Board) Expire(player string, id ID) bool {
	p, ok := b.open[player]
	if !ok || p.id != id {
		return false
	}
	return b.end(player, Result{Outcome: TimedOut})
}

func (b *Board) Pending(player string) (ID, bool) {
	p, ok := b.open[player]
	if !ok {
		return 0, false
	}
	return p.id, true
}

// Players returns the players with open prompts.
func (b *Board) Players() []string {
	players := make([]string, 0, len(b.open))
	for player := range b.open {
		players = append(players, player)
	}
	sort.Strings(players)
	return players
}

func (b *Board) end(player string, r Result) bool {
	p, ok := b.open[player]
	if !ok {
		return false
	}
	delete(b.open, player)
	b.presenter.CloseForm(player, p.id)
	p.resume(r)
	return true
}
