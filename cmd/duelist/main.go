package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/sauerbraten/duelist/pkg/duel"
	"github.com/sauerbraten/duelist/pkg/duelban"
	"github.com/sauerbraten/duelist/pkg/duelcmd"
	"github.com/sauerbraten/duelist/pkg/pausableticker"
	"github.com/sauerbraten/duelist/pkg/prompt"
	"github.com/sauerbraten/duelist/pkg/score"
	"github.com/sauerbraten/duelist/pkg/score/redisstore"
	"github.com/sauerbraten/duelist/pkg/score/sqlitestore"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}).With().Timestamp().Logger()

	conf, err := loadConfig("config.json")
	if err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}
	if lvl, err := zerolog.ParseLevel(conf.LogLevel); err == nil {
		log = log.Level(lvl)
	} else {
		log.Warn().Str("level", conf.LogLevel).Msg("unknown log level, using info")
		log = log.Level(zerolog.InfoLevel)
	}

	store, closeStore, err := openStore(conf)
	if err != nil {
		log.Fatal().Err(err).Str("backend", conf.ScoreBackend).Msg("could not open score store")
	}
	defer closeStore.Close()
	ledger := score.NewLedger(store)

	bans, err := duelban.FromFile(conf.BansFile)
	if err != nil {
		log.Fatal().Err(err).Msg("could not load bans")
	}
	clock := newGameClock()
	bm := duelban.New(log.With().Str("component", "bans").Logger(), bans...).WithClock(clock.Now)

	done := make(chan struct{})
	cs := &ClientManager{log: log}
	world := NewWorld(cs, conf.Lobby, log.With().Str("component", "world").Logger())
	engine := duel.NewEngine(world, ledger, bm, log.With().Str("component", "duel").Logger(), conf.engineOptions()).WithClock(clock.Now)
	forms := newFormPresenter(world, conf.promptTimeout(), done)
	prompts := prompt.NewBoard(forms)

	s := &Server{
		State: &State{
			UpSince:    time.Now(),
			NumClients: cs.NumberOfClientsConnected,
		},
		Config:  conf,
		Clients: cs,
		World:   world,
		Engine:  engine,
		Duels:   duelcmd.New(engine, world, prompts, bm, log.With().Str("component", "commands").Logger()),
		Prompts: prompts,
		Forms:   forms,
		Bans:    bm,
		Clock:   clock,
		Ticker:  pausableticker.New(conf.tickInterval()),
		log:     log,
	}

	err = loadRegistrations(engine, world, conf.KitsFile, conf.ArenasFile, log)
	if err != nil {
		log.Fatal().Err(err).Msg("could not load kits and arenas")
	}

	jobs := make(chan func())
	sched, err := s.startJobs(jobs, done)
	if err != nil {
		log.Fatal().Err(err).Msg("could not start jobs")
	}

	t := newTransport(log)
	mux := http.NewServeMux()
	mux.Handle("/ws", t)
	srv := &http.Server{Addr: conf.ListenAddress, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !eris.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	log.Info().Str("address", conf.ListenAddress).Msg("server running")

	for running := true; running; {
		select {
		case event := <-t.events:
			s.handleConnEvent(event)
		case <-s.Ticker.C:
			s.Engine.Tick(s.Clock.Now())
		case job := <-jobs:
			job()
		case exp := <-forms.expired:
			s.Prompts.Expire(exp.player, exp.id)
		case sig := <-signals:
			log.Info().Str("signal", sig.String()).Msg("shutting down")
			running = false
		}
	}

	close(done)
	s.Ticker.Stop()
	if err := sched.Shutdown(); err != nil {
		log.Warn().Err(err).Msg("could not stop jobs")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("could not stop http server")
	}
}

func (s *Server) handleConnEvent(event connEvent) {
	switch event.Type {
	case eventConnect:
		s.Connect(event.Conn)

	case eventDisconnect:
		c := s.Clients.GetClientByConn(event.Conn)
		if c == nil {
			return
		}
		s.Disconnect(c)

	case eventReceive:
		c := s.Clients.GetClientByConn(event.Conn)
		if c == nil {
			return
		}
		s.HandleLine(c, event.Line)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openStore(conf *Config) (score.Store, io.Closer, error) {
	switch conf.ScoreBackend {
	case "", "memory":
		return score.NewMemory(), nopCloser{}, nil
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		rs, err := redisstore.Dial(ctx, conf.RedisAddress, conf.RedisPassword, conf.RedisDB, conf.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		return rs, rs, nil
	case "sqlite":
		ss, err := sqlitestore.Open(conf.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return ss, ss, nil
	default:
		return nil, nil, eris.Errorf("unknown score backend '%s'", conf.ScoreBackend)
	}
}
