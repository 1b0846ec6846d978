package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/ivahaev/timer"

	"github.com/sauerbraten/duelist/pkg/chat"
	"github.com/sauerbraten/duelist/pkg/duel"
	"github.com/sauerbraten/duelist/pkg/prompt"
)

type formExpiry struct {
	player string
	id     prompt.ID
}

type openForm struct {
	id    prompt.ID
	timer *timer.Timer
}

// formPresenter shows choice forms as numbered chat lines, answered with "#N". Forms run
// out after a timeout; the timers pause together with the server.
type formPresenter struct {
	world   *World
	timeout time.Duration
	expired chan formExpiry
	done    <-chan struct{}
	open    map[string]openForm
	paused  bool
}

var _ prompt.Presenter = &formPresenter{}

func newFormPresenter(world *World, timeout time.Duration, done <-chan struct{}) *formPresenter {
	return &formPresenter{
		world:   world,
		timeout: timeout,
		expired: make(chan formExpiry),
		done:    done,
		open:    map[string]openForm{},
	}
}

func (fp *formPresenter) ShowForm(player string, id prompt.ID, title string, options []string) {
	lines := make([]string, 0, len(options))
	for i, option := range options {
		lines = append(lines, fmt.Sprintf("%s %s", chat.Yellow(fmt.Sprintf("#%d", i+1)), option))
	}
	fp.world.SendMessage(duel.PlayerID(player), fmt.Sprintf("%s %s %s", chat.Blue(title), strings.Join(lines, "  "), chat.Gray("(#0 to cancel)")))

	f := openForm{id: id}
	if fp.timeout > 0 {
		f.timer = timer.AfterFunc(fp.timeout, func() {
			select {
			case fp.expired <- formExpiry{player: player, id: id}:
			case <-fp.done:
			}
		})
		if !fp.paused {
			f.timer.Start()
		}
	}
	fp.open[player] = f
}

func (fp *formPresenter) CloseForm(player string, id prompt.ID) {
	f, ok := fp.open[player]
	if !ok || f.id != id {
		return
	}
	if f.timer != nil {
		f.timer.Stop()
	}
	delete(fp.open, player)
}

func (fp *formPresenter) Pause() {
	fp.paused = true
	for _, f := range fp.open {
		if f.timer != nil {
			f.timer.Pause()
		}
	}
}

func (fp *formPresenter) Resume() {
	fp.paused = false
	for _, f := range fp.open {
		if f.timer != nil {
			f.timer.Start()
		}
	}
}
