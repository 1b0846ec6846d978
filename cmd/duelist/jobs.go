package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rotisserie/eris"

	"github.com/sauerbraten/duelist/pkg/chat"
	"github.com/sauerbraten/duelist/pkg/score"
)

// startJobs schedules the periodic jobs. gocron runs them on its own goroutines, so each
// job only hands a function to the main loop.
func (s *Server) startJobs(jobs chan<- func(), done <-chan struct{}) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, eris.Wrap(err, "create scheduler")
	}

	enqueue := func(job func()) func() {
		return func() {
			select {
			case jobs <- job:
			case <-done:
			}
		}
	}

	if s.Config.AnnounceIntervalMinutes > 0 {
		_, err = sched.NewJob(
			gocron.DurationJob(time.Duration(s.Config.AnnounceIntervalMinutes)*time.Minute),
			gocron.NewTask(enqueue(s.announceLeaders)),
		)
		if err != nil {
			return nil, eris.Wrap(err, "schedule leaderboard announcements")
		}
	}

	if s.Config.StaleSweepSeconds > 0 {
		_, err = sched.NewJob(
			gocron.DurationJob(time.Duration(s.Config.StaleSweepSeconds)*time.Second),
			gocron.NewTask(enqueue(s.sweepStale)),
		)
		if err != nil {
			return nil, eris.Wrap(err, "schedule stale duel state sweep")
		}
	}

	sched.Start()
	return sched, nil
}

const announcedLeaders = 3

func (s *Server) announceLeaders() {
	if len(s.Clients.Joined()) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	entries, err := s.Engine.Ledger().Top(ctx, score.Wins, announcedLeaders)
	if err != nil {
		s.log.Error().Err(err).Msg("could not load leaderboard")
		return
	}
	if len(entries) == 0 {
		return
	}
	leaders := make([]string, 0, len(entries))
	for i, e := range entries {
		leaders = append(leaders, fmt.Sprintf("%d. %s (%d wins)", i+1, e.Player, e.Score))
	}
	s.Clients.Broadcast(nil, chat.Blue("top duelists: ")+strings.Join(leaders, ", "))
}

func (s *Server) sweepStale() {
	if n := s.Engine.SweepStale(); n > 0 {
		s.log.Info().Int("players", n).Msg("swept stale duel state")
	}
}
