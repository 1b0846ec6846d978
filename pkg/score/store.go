// Package score holds the duel metrics kept in the external score store, and the helpers
// that update them.
package score

import (
	"context"
	"sort"
	"sync"
)

type Metric string

const (
	Kills         Metric = "duel_kills"
	Deaths        Metric = "duel_deaths"
	Wins          Metric = "duel_wins"
	AdjustedWins  Metric = "duel_adjusted_wins"
	Killstreak    Metric = "duel_killstreak"
	MaxKillstreak Metric = "duel_max_killstreak"
	Attacks       Metric = "duel_attacks"
	Games         Metric = "duel_games"
	WinRate       Metric = "duel_winrate"
)

// Metrics lists all duel metrics in display order.
var Metrics = []Metric{Kills, Deaths, Wins, AdjustedWins, Killstreak, MaxKillstreak, Attacks, Games, WinRate}

// ParseMetric accepts the full metric name or its short form, e.g. "kills".
func ParseMetric(s string) (Metric, bool) {
	for _, m := range Metrics {
		if string(m) == s || m.Short() == s {
			return m, true
		}
	}
	return "", false
}

// Short returns the metric name without the "duel_" prefix.
func (m Metric) Short() string {
	const prefix = "duel_"
	if len(m) > len(prefix) && string(m[:len(prefix)]) == prefix {
		return string(m[len(prefix):])
	}
	return string(m)
}

type Entry struct {
	Player string
	Score  int
}

// Store is a key-value store mapping (metric, player) to an integer. A missing key reads
// as 0.
type Store interface {
	Get(ctx context.Context, m Metric, player string) (int, error)
	Set(ctx context.Context, m Metric, player string, value int) error
	Add(ctx context.Context, m Metric, player string, delta int) (int, error)
	Participants(ctx context.Context, m Metric) ([]Entry, error)
}

// SortEntries orders entries by descending score, then by player.
func SortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Player < entries[j].Player
	})
}

// Memory is an in-process Store. The zero value is not usable, use NewMemory.
type Memory struct {
	µ      sync.Mutex
	scores map[Metric]map[string]int
}

var _ Store = &Memory{}

func NewMemory() *Memory {
	return &Memory{scores: map[Metric]map[string]int{}}
}

func (s *Memory) Get(ctx context.Context, m Metric, player string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.µ.Lock()
	defer s.µ.Unlock()
	return s.scores[m][player], nil
}

func (s *Memory) Set(ctx context.Context, m Metric, player string, value int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.µ.Lock()
	defer s.µ.Unlock()
	s.metric(m)[player] = value
	return nil
}

func (s *Memory) Add(ctx context.Context, m Metric, player string, delta int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.µ.Lock()
	defer s.µ.Unlock()
	scores := s.metric(m)
	scores[player] += delta
	return scores[player], nil
}

func (s *Memory) Participants(ctx context.Context, m Metric) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.µ.Lock()
	defer s.µ.Unlock()
	entries := make([]Entry, 0, len(s.scores[m]))
	for player, score := range s.scores[m] {
		entries = append(entries, Entry{Player: player, Score: score})
	}
	SortEntries(entries)
	return entries, nil
}

// not safe for concurrent use
func (s *Memory) metric(m Metric) map[string]int {
	scores, ok := s.scores[m]
	if !ok {
		scores = map[string]int{}
		s.scores[m] = scores
	}
	return scores
}
