// Package redisstore keeps duel scores in Redis, one hash per metric mapping player ids to
// scores.
package redisstore

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/sauerbraten/duelist/pkg/score"
)

type Store struct {
	c      *redis.Client
	prefix string
}

var _ score.Store = &Store{}

// New uses c for all operations. Keys are "<prefix>:<metric>".
func New(c *redis.Client, prefix string) *Store {
	return &Store{c: c, prefix: prefix}
}

// Dial connects to a Redis server and checks the connection.
func Dial(ctx context.Context, addr, password string, db int, prefix string) (*Store, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, eris.Wrapf(err, "ping redis at %s", addr)
	}
	return New(c, prefix), nil
}

func (s *Store) Close() error { return s.c.Close() }

func (s *Store) key(m score.Metric) string {
	if s.prefix == "" {
		return string(m)
	}
	return s.prefix + ":" + string(m)
}

func (s *Store) Get(ctx context.Context, m score.Metric, player string) (int, error) {
	v, err := s.c.HGet(ctx, s.key(m), player).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, eris.Wrapf(err, "get %s of %s", m, player)
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, m score.Metric, player string, value int) error {
	err := s.c.HSet(ctx, s.key(m), player, value).Err()
	return eris.Wrapf(err, "set %s of %s", m, player)
}

func (s *Store) Add(ctx context.Context, m score.Metric, player string, delta int) (int, error) {
	v, err := s.c.HIncrBy(ctx, s.key(m), player, int64(delta)).Result()
	if err != nil {
		return 0, eris.Wrapf(err, "add to %s of %s", m, player)
	}
	return int(v), nil
}

func (s *Store) Participants(ctx context.Context, m score.Metric) ([]score.Entry, error) {
	all, err := s.c.HGetAll(ctx, s.key(m)).Result()
	if err != nil {
		return nil, eris.Wrapf(err, "list %s", m)
	}
	entries := make([]score.Entry, 0, len(all))
	for player, raw := range all {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, eris.Wrapf(err, "bad %s score for %s", m, player)
		}
		entries = append(entries, score.Entry{Player: player, Score: v})
	}
	score.SortEntries(entries)
	return entries, nil
}
