package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sauerbraten/duelist/pkg/privilege"
)

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.json", `{
		"listen_address": ":9000",
		"countdown_seconds": 3,
		"score_backend": "redis",
		"privileges": {"pix": "admin"}
	}`)
	t.Setenv("DUELIST_COUNTDOWN_SECONDS", "7")

	conf, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", conf.ListenAddress)
	assert.Equal(t, "redis", conf.ScoreBackend)
	assert.Equal(t, privilege.Admin, conf.privilegeOf("Pix"))
	assert.Equal(t, privilege.None, conf.privilegeOf("someone"))
	assert.Equal(t, 7, conf.CountdownSeconds)

	// defaults survive for keys the file doesn't set
	assert.Equal(t, 50*time.Millisecond, conf.tickInterval())
	opts := conf.engineOptions()
	assert.Equal(t, 7, opts.Countdown)
	assert.Equal(t, 3*time.Second, opts.CleanupDelay)
	assert.Equal(t, time.Minute, opts.RequestTTL)
	assert.Equal(t, conf.Lobby, opts.Lobby)
}

func TestPrivilegesFromEnvironment(t *testing.T) {
	t.Setenv("DUELIST_PRIVILEGES", "pix:admin,mod:master,tester:auth")

	conf, err := loadConfig(writeFile(t, t.TempDir(), "config.json", `{}`))
	require.NoError(t, err)

	assert.Equal(t, privilege.Admin, conf.privilegeOf("pix"))
	assert.Equal(t, privilege.Master, conf.privilegeOf("mod"))
	assert.Equal(t, privilege.Auth, conf.privilegeOf("tester"))
	assert.True(t, conf.privilegeOf("tester").CanManageArenas())
	assert.False(t, conf.privilegeOf("tester").CanBan())
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	dir := t.TempDir()

	_, err := loadConfig(writeFile(t, dir, "zero.json", `{"tick_interval_ms": 0}`))
	assert.Error(t, err)

	_, err = loadConfig(writeFile(t, dir, "broken.json", `{"tick_interval_ms": `))
	assert.Error(t, err)

	_, err = loadConfig(writeFile(t, dir, "privileges.json", `{"privileges": {"pix": "king"}}`))
	assert.Error(t, err)

	t.Setenv("DUELIST_REDIS_DB", "first")
	_, err = loadConfig(writeFile(t, dir, "ok.json", `{}`))
	assert.Error(t, err)
}

func TestOpenStore(t *testing.T) {
	conf := defaultConfig()

	store, closer, err := openStore(conf)
	require.NoError(t, err)
	assert.NotNil(t, store)
	assert.NoError(t, closer.Close())

	conf.ScoreBackend = "sqlite"
	conf.SQLitePath = t.TempDir() + "/scores.sqlite"
	store, closer, err = openStore(conf)
	require.NoError(t, err)
	assert.NotNil(t, store)
	assert.NoError(t, closer.Close())

	conf.ScoreBackend = "floppy"
	_, _, err = openStore(conf)
	assert.Error(t, err)
}
