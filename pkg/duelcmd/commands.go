// Package duelcmd implements the "duel" chat command.
package duelcmd

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/sauerbraten/duelist/pkg/chat"
	"github.com/sauerbraten/duelist/pkg/duel"
	"github.com/sauerbraten/duelist/pkg/duelban"
	"github.com/sauerbraten/duelist/pkg/geom"
	"github.com/sauerbraten/duelist/pkg/privilege"
	"github.com/sauerbraten/duelist/pkg/prompt"
	"github.com/sauerbraten/duelist/pkg/score"
)

var (
	errNoPermission = eris.New("you are not allowed to do that")
	errNobodyToDuel = eris.New("nobody is around to duel")
)

// Actor is the player who issued a command.
type Actor struct {
	Player    duel.Player
	Privilege privilege.ID
}

type Handler struct {
	engine  *duel.Engine
	host    duel.Host
	prompts *prompt.Board
	bans    *duelban.BanManager
	log     zerolog.Logger
}

func New(engine *duel.Engine, host duel.Host, prompts *prompt.Board, bans *duelban.BanManager, log zerolog.Logger) *Handler {
	return &Handler{
		engine:  engine,
		host:    host,
		prompts: prompts,
		bans:    bans,
		log:     log,
	}
}

// Handle runs one duel command. args are the words after "duel". A rejected command is
// reported to the actor and returned.
func (h *Handler) Handle(a Actor, args []string) error {
	err := h.dispatch(a, args)
	if err != nil {
		h.reply(a, chat.Fail(err.Error()))
	}
	return err
}

func (h *Handler) dispatch(a Actor, args []string) error {
	if len(args) == 0 {
		return h.chooseOpponent(a)
	}

	switch strings.ToLower(args[0]) {
	case "help", "commands":
		h.help(a)
		return nil

	case "accept", "yes":
		return h.accept(a, args[1:])

	case "deny", "reject", "no":
		return h.reject(a, args[1:])

	case "cancel", "withdraw":
		return h.cancel(a, args[1:])

	case "queue", "join", "random":
		return h.enqueue(a)

	case "leave", "quit", "forfeit":
		return h.leave(a)

	case "arenas", "list":
		h.listArenas(a)
		return nil

	case "stats", "info":
		return h.stats(a, args[1:])

	case "top", "leaderboard":
		return h.top(a, args[1:])

	case "kit":
		return h.addKit(a, args[1:])

	case "arena":
		return h.addArena(a, args[1:])

	case "ban":
		return h.ban(a, args[1:])

	case "unban":
		return h.unban(a, args[1:])

	case "bans":
		return h.listBans(a)

	default:
		arena := ""
		if len(args) > 1 {
			arena = args[1]
		}
		return h.request(a, args[0], arena)
	}
}

func (h *Handler) reply(a Actor, msg string) { h.host.SendMessage(a.Player.ID, msg) }

func (h *Handler) help(a Actor) {
	commands := []string{
		chat.Green("duel") + " [player [arena]]",
		chat.Green("duel accept") + " [player]",
		chat.Green("duel deny") + " [player]",
		chat.Green("duel cancel") + " <player>",
		chat.Green("duel queue"),
		chat.Green("duel leave"),
		chat.Green("duel arenas"),
		chat.Green("duel stats") + " [player]",
		chat.Green("duel top") + " [metric]",
	}
	if a.Privilege.CanManageArenas() {
		commands = append(commands,
			chat.Green("duel kit add")+" <name> <x> <y> <z> [realm] [none|slot|inventory]",
			chat.Green("duel arena add")+" <name> <kit> <spawn a xyz> <spawn b xyz> <exit xyz> [realm]",
		)
	}
	if a.Privilege.CanBan() {
		commands = append(commands,
			chat.Green("duel ban")+" <player> [duration] [reason]",
			chat.Green("duel unban")+" <player>",
			chat.Green("duel bans"),
		)
	}
	h.reply(a, "available commands: "+strings.Join(commands, ", "))
}

// findPlayer looks up an online player by name or id.
func (h *Handler) findPlayer(name string) (duel.Player, bool) {
	for _, p := range h.host.Players() {
		if strings.EqualFold(p.Name, name) || string(p.ID) == name {
			return p, true
		}
	}
	return duel.Player{}, false
}

func (h *Handler) request(a Actor, targetName, arena string) error {
	target, ok := h.findPlayer(targetName)
	if !ok {
		return duel.ErrTargetNotFound
	}
	r, err := h.engine.SendRequest(a.Player.ID, target.ID, arena)
	if err != nil {
		return err
	}
	where := ""
	if r.Arena != "" {
		where = " in " + r.Arena
	}
	h.reply(a, fmt.Sprintf("duel request sent to %s%s, it expires in %s", chat.Blue(target.String()), where, h.engine.Requests().TTL()))
	return nil
}

func (h *Handler) accept(a Actor, args []string) error {
	if len(args) > 0 {
		requester, ok := h.findPlayer(args[0])
		if !ok {
			return duel.ErrRequestNotFound
		}
		_, err := h.engine.AcceptRequest(a.Player.ID, requester.ID)
		return err
	}

	incoming := h.engine.Requests().Incoming(a.Player.ID)
	switch len(incoming) {
	case 0:
		return duel.ErrRequestNotFound
	case 1:
		_, err := h.engine.AcceptRequest(a.Player.ID, incoming[0].Requester.ID)
		return err
	default:
		h.chooseRequest(a, incoming)
		return nil
	}
}

func (h *Handler) reject(a Actor, args []string) error {
	var requester duel.PlayerID
	if len(args) > 0 {
		p, ok := h.findPlayer(args[0])
		if !ok {
			return duel.ErrRequestNotFound
		}
		requester = p.ID
	} else {
		incoming := h.engine.Requests().Incoming(a.Player.ID)
		if len(incoming) != 1 {
			return eris.New("usage: duel deny <player>")
		}
		requester = incoming[0].Requester.ID
	}
	if err := h.engine.RejectRequest(a.Player.ID, requester); err != nil {
		return err
	}
	h.reply(a, "duel request declined")
	return nil
}

func (h *Handler) cancel(a Actor, args []string) error {
	if len(args) == 0 {
		return eris.New("usage: duel cancel <player>")
	}
	target, ok := h.findPlayer(args[0])
	if !ok {
		return duel.ErrRequestNotFound
	}
	if err := h.engine.CancelRequest(a.Player.ID, target.ID); err != nil {
		return err
	}
	h.reply(a, "duel request withdrawn")
	return nil
}

func (h *Handler) enqueue(a Actor) error {
	if err := h.engine.Enqueue(a.Player.ID); err != nil {
		return err
	}
	h.reply(a, fmt.Sprintf("you joined the duel queue at position %d", h.engine.Queue().Position(a.Player.ID)+1))
	return nil
}

func (h *Handler) leave(a Actor) error {
	queued := h.engine.Queue().Contains(a.Player.ID)
	if err := h.engine.Leave(a.Player.ID); err != nil {
		return err
	}
	if queued {
		h.reply(a, "you left the duel queue")
	}
	return nil
}

func (h *Handler) listArenas(a Actor) {
	statuses := h.engine.ArenaStatuses()
	if len(statuses) == 0 {
		h.reply(a, "no arenas registered")
		return
	}
	var arenas []string
	for _, st := range statuses {
		if st.Session == nil {
			arenas = append(arenas, chat.Green(st.Arena.Name))
		} else {
			arenas = append(arenas, chat.Red(st.Arena.Name)+chat.Gray(fmt.Sprintf(" (%s vs %s)", st.Session.A, st.Session.B)))
		}
	}
	h.reply(a, "arenas: "+chat.List(arenas))
}

func (h *Handler) storeContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), h.engine.Options().StoreTimeout)
}

func (h *Handler) stats(a Actor, args []string) error {
	player := string(a.Player.ID)
	if len(args) > 0 {
		player = args[0]
		if p, ok := h.findPlayer(args[0]); ok {
			player = string(p.ID)
		}
	}

	ctx, cancel := h.storeContext()
	defer cancel()
	r, err := h.engine.Ledger().Record(ctx, player)
	if err != nil {
		h.log.Error().Err(err).Str("player", player).Msg("could not load stats")
		return eris.New("stats are unavailable right now")
	}
	h.reply(a, fmt.Sprintf("%s: %d games, %d wins (%d%%), %d kills, %d deaths, killstreak %d (best %d), %d hits",
		chat.Blue(player), r.Games, r.Wins, r.WinRate, r.Kills, r.Deaths, r.Killstreak, r.MaxKillstreak, r.Attacks))
	return nil
}

const topN = 10

func (h *Handler) top(a Actor, args []string) error {
	m := score.Wins
	if len(args) > 0 {
		var ok bool
		m, ok = score.ParseMetric(strings.ToLower(args[0]))
		if !ok {
			var names []string
			for _, m := range score.Metrics {
				names = append(names, m.Short())
			}
			return eris.Errorf("unknown metric, use one of %s", strings.Join(names, ", "))
		}
	}

	ctx, cancel := h.storeContext()
	defer cancel()
	entries, err := h.engine.Ledger().Top(ctx, m, topN)
	if err != nil {
		h.log.Error().Err(err).Str("metric", string(m)).Msg("could not load leaderboard")
		return eris.New("the leaderboard is unavailable right now")
	}
	if len(entries) == 0 {
		h.reply(a, "nobody has dueled yet")
		return nil
	}
	lines := make([]string, 0, len(entries))
	for i, e := range entries {
		lines = append(lines, fmt.Sprintf("%d. %s (%d)", i+1, e.Player, e.Score))
	}
	h.reply(a, fmt.Sprintf("top %s: %s", m.Short(), strings.Join(lines, ", ")))
	return nil
}

func parsePosition(coords []string, realm string) (geom.Position, error) {
	return geom.Parse(coords[0], coords[1], coords[2], realm)
}

// duel kit add <name> <x> <y> <z> [realm] [lock]
func (h *Handler) addKit(a Actor, args []string) error {
	if !a.Privilege.CanManageArenas() {
		return errNoPermission
	}
	if len(args) < 5 || args[0] != "add" {
		return eris.New("usage: duel kit add <name> <x> <y> <z> [realm] [none|slot|inventory]")
	}
	args = args[1:]
	realm, lock := geom.DefaultRealm, duel.LockNone
	if len(args) > 4 {
		realm = args[4]
	}
	if len(args) > 5 {
		var ok bool
		lock, ok = duel.ParseLockPolicy(args[5])
		if !ok {
			return eris.Errorf("unknown lock policy '%s'", args[5])
		}
	}
	container, err := parsePosition(args[1:4], realm)
	if err != nil {
		return err
	}

	if err := h.engine.RegisterKit(duel.Kit{Name: args[0], Source: duel.LoadoutSource{Container: container}, Lock: lock}); err != nil {
		return err
	}

	// without a stocking host, the container must already hold the kit
	stocker, ok := h.host.(duel.Stocker)
	if !ok {
		h.reply(a, chat.Success("registered kit "+args[0]))
		return nil
	}
	l, err := stocker.StockContainer(a.Player.ID, container)
	if err != nil {
		h.log.Error().Err(err).Str("kit", args[0]).Msg("could not stock kit container")
		return eris.Errorf("registered kit %s, but could not fill its container", args[0])
	}
	h.reply(a, chat.Success(fmt.Sprintf("registered kit %s with %d items from your inventory", args[0], len(l.Armor)+len(l.Extras))))
	return nil
}

// duel arena add <name> <kit> <ax> <ay> <az> <bx> <by> <bz> <ex> <ey> <ez> [realm]
func (h *Handler) addArena(a Actor, args []string) error {
	if !a.Privilege.CanManageArenas() {
		return errNoPermission
	}
	if len(args) < 12 || args[0] != "add" {
		return eris.New("usage: duel arena add <name> <kit> <spawn a xyz> <spawn b xyz> <exit xyz> [realm]")
	}
	args = args[1:]
	realm := geom.DefaultRealm
	if len(args) > 11 {
		realm = args[11]
	}
	var positions [3]geom.Position
	for i := range positions {
		pos, err := parsePosition(args[2+3*i:5+3*i], realm)
		if err != nil {
			return err
		}
		positions[i] = pos
	}

	err := h.engine.RegisterArena(duel.Arena{
		Name:   args[0],
		Kit:    args[1],
		SpawnA: positions[0],
		SpawnB: positions[1],
		Exit:   positions[2],
	})
	if err != nil {
		return err
	}
	h.reply(a, chat.Success("registered arena "+args[0]))
	return nil
}

// duel ban <player> [duration] [reason...]
func (h *Handler) ban(a Actor, args []string) error {
	if !a.Privilege.CanBan() {
		return errNoPermission
	}
	if len(args) == 0 {
		return eris.New("usage: duel ban <player> [duration] [reason]")
	}
	player := args[0]
	if p, ok := h.findPlayer(player); ok {
		player = string(p.ID)
	}
	args = args[1:]

	var d time.Duration
	if len(args) > 0 {
		if parsed, err := parseDuration(args[0]); err == nil {
			d = parsed
			args = args[1:]
		}
	}
	ban := h.bans.AddBan(player, strings.Join(args, " "), d)
	h.engine.LeaveQueue(duel.PlayerID(player))
	h.reply(a, ban.String())
	return nil
}

// parseDuration accepts Go durations and plain numbers of minutes.
func parseDuration(s string) (time.Duration, error) {
	if minutes, err := strconv.Atoi(s); err == nil && minutes > 0 {
		return time.Duration(minutes) * time.Minute, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, eris.Errorf("invalid duration '%s'", s)
	}
	return d, nil
}

func (h *Handler) unban(a Actor, args []string) error {
	if !a.Privilege.CanBan() {
		return errNoPermission
	}
	if len(args) == 0 {
		return eris.New("usage: duel unban <player>")
	}
	player := args[0]
	if p, ok := h.findPlayer(player); ok {
		player = string(p.ID)
	}
	if !h.bans.RemoveBan(player) {
		return eris.Errorf("%s is not banned", player)
	}
	h.reply(a, player+" may duel again")
	return nil
}

func (h *Handler) listBans(a Actor) error {
	if !a.Privilege.CanBan() {
		return errNoPermission
	}
	bans := h.bans.Bans()
	if len(bans) == 0 {
		h.reply(a, "nobody is banned from dueling")
		return nil
	}
	lines := make([]string, 0, len(bans))
	for _, b := range bans {
		lines = append(lines, b.String())
	}
	sort.Strings(lines)
	h.reply(a, "duel bans: "+strings.Join(lines, "; "))
	return nil
}
