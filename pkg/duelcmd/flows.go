package duelcmd

import (
	"sort"

	"github.com/sauerbraten/duelist/pkg/chat"
	"github.com/sauerbraten/duelist/pkg/duel"
	"github.com/sauerbraten/duelist/pkg/prompt"
)

const anyArena = "any arena"

// chooseOpponent asks for an opponent, then for an arena, then sends the request. If the
// player disconnects or lets a prompt run out, nothing is sent.
func (h *Handler) chooseOpponent(a Actor) error {
	var opponents []duel.Player
	for _, p := range h.host.Players() {
		if p.ID != a.Player.ID && !h.engine.InSession(p.ID) && h.engine.Allowed(p.ID) {
			opponents = append(opponents, p)
		}
	}
	if len(opponents) == 0 {
		return errNobodyToDuel
	}
	sort.Slice(opponents, func(i, j int) bool { return opponents[i].Name < opponents[j].Name })

	names := make([]string, 0, len(opponents))
	for _, p := range opponents {
		names = append(names, p.Name)
	}

	h.prompts.Open(string(a.Player.ID), "who do you want to duel?", names, func(r prompt.Result) {
		if !h.selected(a, r) {
			return
		}
		h.chooseArena(a, opponents[r.Index])
	})
	return nil
}

func (h *Handler) chooseArena(a Actor, opponent duel.Player) {
	options := []string{anyArena}
	for _, st := range h.engine.ArenaStatuses() {
		if st.Session == nil {
			options = append(options, st.Arena.Name)
		}
	}

	h.prompts.Open(string(a.Player.ID), "where?", options, func(r prompt.Result) {
		if !h.selected(a, r) {
			return
		}
		arena := r.Value
		if r.Index == 0 {
			arena = ""
		}
		if err := h.request(a, string(opponent.ID), arena); err != nil {
			h.reply(a, chat.Fail(err.Error()))
		}
	})
}

// chooseRequest asks which of several incoming requests to accept.
func (h *Handler) chooseRequest(a Actor, incoming []*duel.Request) {
	requesters := make([]duel.PlayerID, 0, len(incoming))
	names := make([]string, 0, len(incoming))
	for _, r := range incoming {
		requesters = append(requesters, r.Requester.ID)
		names = append(names, r.Requester.Name)
	}

	h.prompts.Open(string(a.Player.ID), "accept whose request?", names, func(r prompt.Result) {
		if !h.selected(a, r) {
			return
		}
		if _, err := h.engine.AcceptRequest(a.Player.ID, requesters[r.Index]); err != nil {
			h.reply(a, chat.Fail(err.Error()))
		}
	})
}

// selected reports whether the prompt ended with a selection, telling the player if it
// ran out.
func (h *Handler) selected(a Actor, r prompt.Result) bool {
	switch r.Outcome {
	case prompt.Selected:
		return true
	case prompt.TimedOut:
		h.reply(a, chat.Gray("you took too long to answer"))
	}
	return false
}
