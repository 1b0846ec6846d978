// Package duelban keeps track of players who may not duel.
package duelban

import (
	"sort"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/sauerbraten/jsonfile"
)

type BanManager struct {
	µ    sync.Mutex
	log  zerolog.Logger
	now  func() time.Time
	bans map[string]*Ban // player -> ban
}

func New(log zerolog.Logger, bans ...*Ban) *BanManager {
	bm := &BanManager{
		log:  log,
		now:  time.Now,
		bans: map[string]*Ban{},
	}

	for _, ban := range bans {
		bm.addBan(ban)
	}

	return bm
}

// WithClock replaces the clock used to decide whether bans expired.
func (bm *BanManager) WithClock(now func() time.Time) *BanManager {
	bm.now = now
	return bm
}

func FromFile(fileName string) ([]*Ban, error) {
	var bansFromFile []*Ban
	err := jsonfile.ParseFile(fileName, &bansFromFile)
	if err != nil {
		return nil, eris.Wrapf(err, "parse bans from %s", fileName)
	}

	return bansFromFile, nil
}

// AddBan bans player for d, or indefinitely if d is zero. An existing ban is replaced.
func (bm *BanManager) AddBan(player, reason string, d time.Duration) *Ban {
	bm.µ.Lock()
	defer bm.µ.Unlock()

	ban := &Ban{
		Player: player,
		Reason: reason,
	}
	if d > 0 {
		ban.ExpiryDate = bm.now().Add(d)
	}
	bm.addBan(ban)
	return ban
}

// not safe for concurrent use
func (bm *BanManager) addBan(ban *Ban) {
	bm.bans[ban.Player] = ban
	bm.log.Info().Str("player", ban.Player).Time("expiry", ban.ExpiryDate).Str("reason", ban.Reason).Msg("added duel ban")
}

// RemoveBan reports whether the player was banned.
func (bm *BanManager) RemoveBan(player string) bool {
	bm.µ.Lock()
	defer bm.µ.Unlock()

	_, ok := bm.bans[player]
	delete(bm.bans, player)
	return ok
}

func (bm *BanManager) GetBan(player string) (ban *Ban, ok bool) {
	bm.µ.Lock()
	defer bm.µ.Unlock()

	ban, ok = bm.bans[player]
	if !ok {
		return nil, false
	}
	// check if the ban already expired
	if ban.Expired(bm.now()) {
		delete(bm.bans, player)
		return nil, false
	}
	return ban, true
}

// Allowed reports whether player may duel.
func (bm *BanManager) Allowed(player string) bool {
	_, banned := bm.GetBan(player)
	return !banned
}

// Bans returns the active bans, ordered by player.
func (bm *BanManager) Bans() []*Ban {
	bm.µ.Lock()
	defer bm.µ.Unlock()

	now := bm.now()
	bans := make([]*Ban, 0, len(bm.bans))
	for player, ban := range bm.bans {
		if ban.Expired(now) {
			delete(bm.bans, player)
			continue
		}
		bans = append(bans, ban)
	}
	sort.Slice(bans, func(i, j int) bool { return bans[i].Player < bans[j].Player })
	return bans
}
