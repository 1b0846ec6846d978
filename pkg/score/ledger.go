package score

import (
	"context"

	"github.com/rotisserie/eris"
)

// CalcWinRate returns the percentage of games won, rounded down.
func CalcWinRate(wins, totalGames int) int {
	if totalGames <= 0 {
		return 0
	}
	return wins * 100 / totalGames
}

// Record is the ScoreRecord of one player.
type Record struct {
	Player        string
	Kills         int
	Deaths        int
	Wins          int
	AdjustedWins  int
	Killstreak    int
	MaxKillstreak int
	Attacks       int
	Games         int
	WinRate       int
}

// Ledger applies duel outcomes to a Store. It is the only writer of the duel metrics.
type Ledger struct {
	store Store
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

func (l *Ledger) Store() Store { return l.store }

// RecordLoss counts a game lost: one more death and game, killstreak reset, win rate
// recomputed.
func (l *Ledger) RecordLoss(ctx context.Context, player string) error {
	if _, err := l.store.Add(ctx, Deaths, player, 1); err != nil {
		return eris.Wrapf(err, "count death of %s", player)
	}
	if err := l.store.Set(ctx, Killstreak, player, 0); err != nil {
		return eris.Wrapf(err, "reset killstreak of %s", player)
	}
	if _, err := l.store.Add(ctx, Games, player, 1); err != nil {
		return eris.Wrapf(err, "count game of %s", player)
	}
	return l.updateWinRate(ctx, player)
}

// RecordWin counts a game won. With kill set, the winner also eliminated the loser: the
// kill count and killstreak go up and the max killstreak follows.
func (l *Ledger) RecordWin(ctx context.Context, player string, kill bool) error {
	if kill {
		if _, err := l.store.Add(ctx, Kills, player, 1); err != nil {
			return eris.Wrapf(err, "count kill of %s", player)
		}
		streak, err := l.store.Add(ctx, Killstreak, player, 1)
		if err != nil {
			return eris.Wrapf(err, "raise killstreak of %s", player)
		}
		best, err := l.store.Get(ctx, MaxKillstreak, player)
		if err != nil {
			return eris.Wrapf(err, "read max killstreak of %s", player)
		}
		if streak > best {
			if err := l.store.Set(ctx, MaxKillstreak, player, streak); err != nil {
				return eris.Wrapf(err, "update max killstreak of %s", player)
			}
		}
	}
	if _, err := l.store.Add(ctx, Wins, player, 1); err != nil {
		return eris.Wrapf(err, "count win of %s", player)
	}
	if _, err := l.store.Add(ctx, AdjustedWins, player, 1); err != nil {
		return eris.Wrapf(err, "count adjusted win of %s", player)
	}
	if _, err := l.store.Add(ctx, Games, player, 1); err != nil {
		return eris.Wrapf(err, "count game of %s", player)
	}
	return l.updateWinRate(ctx, player)
}

func (l *Ledger) RecordAttack(ctx context.Context, player string) error {
	_, err := l.store.Add(ctx, Attacks, player, 1)
	return eris.Wrapf(err, "count attack of %s", player)
}

func (l *Ledger) updateWinRate(ctx context.Context, player string) error {
	wins, err := l.store.Get(ctx, Wins, player)
	if err != nil {
		return eris.Wrapf(err, "read wins of %s", player)
	}
	games, err := l.store.Get(ctx, Games, player)
	if err != nil {
		return eris.Wrapf(err, "read games of %s", player)
	}
	return eris.Wrapf(l.store.Set(ctx, WinRate, player, CalcWinRate(wins, games)), "update win rate of %s", player)
}

func (l *Ledger) Record(ctx context.Context, player string) (Record, error) {
	r := Record{Player: player}
	fields := map[Metric]*int{
		Kills:         &r.Kills,
		Deaths:        &r.Deaths,
		Wins:          &r.Wins,
		AdjustedWins:  &r.AdjustedWins,
		Killstreak:    &r.Killstreak,
		MaxKillstreak: &r.MaxKillstreak,
		Attacks:       &r.Attacks,
		Games:         &r.Games,
		WinRate:       &r.WinRate,
	}
	for m, field := range fields {
		v, err := l.store.Get(ctx, m, player)
		if err != nil {
			return Record{}, eris.Wrapf(err, "read %s of %s", m, player)
		}
		*field = v
	}
	return r, nil
}

// Top returns the n best entries of a metric, best first.
func (l *Ledger) Top(ctx context.Context, m Metric, n int) ([]Entry, error) {
	entries, err := l.store.Participants(ctx, m)
	if err != nil {
		return nil, eris.Wrapf(err, "list participants of %s", m)
	}
	SortEntries(entries)
	if n >= 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}
