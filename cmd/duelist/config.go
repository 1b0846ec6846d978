package main

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rotisserie/eris"
	"github.com/sauerbraten/jsonfile"

	"github.com/sauerbraten/duelist/pkg/duel"
	"github.com/sauerbraten/duelist/pkg/geom"
	"github.com/sauerbraten/duelist/pkg/privilege"
)

// Config is read from config.json; DUELIST_* environment variables override it.
type Config struct {
	ListenAddress   string `json:"listen_address" env:"LISTEN_ADDRESS"`
	MessageOfTheDay string `json:"message_of_the_day" env:"MOTD"`
	LogLevel        string `json:"log_level" env:"LOG_LEVEL"`

	TickIntervalMs       int           `json:"tick_interval_ms" env:"TICK_INTERVAL_MS"`
	CountdownSeconds     int           `json:"countdown_seconds" env:"COUNTDOWN_SECONDS"`
	CleanupDelayMs       int           `json:"cleanup_delay_ms" env:"CLEANUP_DELAY_MS"`
	RequestTTLSeconds    int           `json:"request_ttl_seconds" env:"REQUEST_TTL_SECONDS"`
	PromptTimeoutSeconds int           `json:"prompt_timeout_seconds" env:"PROMPT_TIMEOUT_SECONDS"`
	Lobby                geom.Position `json:"lobby"`

	ScoreBackend  string `json:"score_backend" env:"SCORE_BACKEND"` // memory, redis or sqlite
	RedisAddress  string `json:"redis_address" env:"REDIS_ADDRESS"`
	RedisPassword string `json:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `json:"redis_db" env:"REDIS_DB"`
	RedisPrefix   string `json:"redis_prefix" env:"REDIS_PREFIX"`
	SQLitePath    string `json:"sqlite_path" env:"SQLITE_PATH"`

	KitsFile   string `json:"kits_file" env:"KITS_FILE"`
	ArenasFile string `json:"arenas_file" env:"ARENAS_FILE"`
	BansFile   string `json:"bans_file" env:"BANS_FILE"`

	// player id -> none, master, auth or admin
	Privileges map[string]string `json:"privileges" env:"PRIVILEGES"`

	AnnounceIntervalMinutes int `json:"announce_interval_minutes" env:"ANNOUNCE_INTERVAL_MINUTES"`
	StaleSweepSeconds       int `json:"stale_sweep_seconds" env:"STALE_SWEEP_SECONDS"`
}

func defaultConfig() *Config {
	return &Config{
		ListenAddress:           ":28785",
		LogLevel:                "info",
		TickIntervalMs:          50,
		CountdownSeconds:        5,
		CleanupDelayMs:          3000,
		RequestTTLSeconds:       60,
		PromptTimeoutSeconds:    30,
		Lobby:                   geom.NewPosition(0, 64, 0, geom.DefaultRealm),
		ScoreBackend:            "memory",
		RedisAddress:            "localhost:6379",
		RedisPrefix:             "duelist",
		SQLitePath:              "scores.sqlite",
		KitsFile:                "kits.json",
		ArenasFile:              "arenas.json",
		BansFile:                "bans.json",
		AnnounceIntervalMinutes: 15,
		StaleSweepSeconds:       60,
	}
}

func loadConfig(fileName string) (*Config, error) {
	conf := defaultConfig()
	if err := jsonfile.ParseFile(fileName, conf); err != nil {
		return nil, eris.Wrapf(err, "parse %s", fileName)
	}
	if err := env.ParseWithOptions(conf, env.Options{Prefix: "DUELIST_"}); err != nil {
		return nil, eris.Wrap(err, "parse environment")
	}
	if conf.TickIntervalMs <= 0 {
		return nil, eris.New("tick_interval_ms must be positive")
	}
	for player, p := range conf.Privileges {
		if privilege.Parse(p) < privilege.None {
			return nil, eris.Errorf("unknown privilege '%s' for %s", p, player)
		}
	}
	return conf, nil
}

func (conf *Config) engineOptions() duel.Options {
	return duel.Options{
		Countdown:         conf.CountdownSeconds,
		CountdownInterval: time.Second,
		CleanupDelay:      time.Duration(conf.CleanupDelayMs) * time.Millisecond,
		RequestTTL:        time.Duration(conf.RequestTTLSeconds) * time.Second,
		StoreTimeout:      2 * time.Second,
		Lobby:             conf.Lobby,
	}
}

func (conf *Config) tickInterval() time.Duration {
	return time.Duration(conf.TickIntervalMs) * time.Millisecond
}

func (conf *Config) promptTimeout() time.Duration {
	return time.Duration(conf.PromptTimeoutSeconds) * time.Second
}

// privilegeOf looks up the configured privilege of a player id, ignoring case.
func (conf *Config) privilegeOf(id string) privilege.ID {
	for player, p := range conf.Privileges {
		if strings.EqualFold(player, id) {
			return privilege.Parse(p)
		}
	}
	return privilege.None
}
