package main

import (
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/sauerbraten/jsonfile"

	"github.com/sauerbraten/duelist/pkg/duel"
	"github.com/sauerbraten/duelist/pkg/geom"
)

type armorEntry struct {
	Slot string    `json:"slot"`
	Item duel.Item `json:"item"`
}

type extraEntry struct {
	Slot int       `json:"slot"`
	Item duel.Item `json:"item"`
}

// kitEntry is a kit as listed in kits.json. Its items are put into the container at
// start up, from where they are copied for every duel.
type kitEntry struct {
	Name      string        `json:"name"`
	Container geom.Position `json:"container"`
	Lock      string        `json:"lock"`
	Armor     []armorEntry  `json:"armor"`
	Extras    []extraEntry  `json:"extras"`
}

type arenaEntry struct {
	Name    string        `json:"name"`
	Kit     string        `json:"kit"`
	SpawnA  geom.Position `json:"spawn_a"`
	SpawnB  geom.Position `json:"spawn_b"`
	Exit    geom.Position `json:"exit"`
	OnStart []string      `json:"on_start"`
	OnEnd   []string      `json:"on_end"`
}

func (k *kitEntry) loadout() (duel.Loadout, error) {
	var l duel.Loadout
	for _, a := range k.Armor {
		slot, ok := duel.ParseArmorSlot(a.Slot)
		if !ok {
			return duel.Loadout{}, eris.Errorf("kit %s: unknown armor slot '%s'", k.Name, a.Slot)
		}
		l.Armor = append(l.Armor, duel.ArmorPiece{Slot: slot, Item: a.Item})
	}
	for _, e := range k.Extras {
		l.Extras = append(l.Extras, duel.SlotItem{Slot: e.Slot, Item: e.Item})
	}
	return l, nil
}

// loadRegistrations registers the kits and arenas listed in the two files. Invalid and
// duplicate entries are logged and skipped.
func loadRegistrations(engine *duel.Engine, w *World, kitsFile, arenasFile string, log zerolog.Logger) error {
	var kits []kitEntry
	if err := jsonfile.ParseFile(kitsFile, &kits); err != nil {
		return eris.Wrapf(err, "parse kits from %s", kitsFile)
	}
	for _, k := range kits {
		lock, ok := duel.ParseLockPolicy(k.Lock)
		if !ok {
			log.Warn().Str("kit", k.Name).Str("lock", k.Lock).Msg("unknown lock policy, skipping kit")
			continue
		}
		l, err := k.loadout()
		if err != nil {
			log.Warn().Err(err).Msg("skipping kit")
			continue
		}
		if err := engine.RegisterKit(duel.Kit{Name: k.Name, Source: duel.LoadoutSource{Container: k.Container}, Lock: lock}); err != nil {
			continue
		}
		w.PutContainer(k.Container, l)
	}

	var arenas []arenaEntry
	if err := jsonfile.ParseFile(arenasFile, &arenas); err != nil {
		return eris.Wrapf(err, "parse arenas from %s", arenasFile)
	}
	for _, a := range arenas {
		engine.RegisterArena(duel.Arena{
			Name:    a.Name,
			Kit:     a.Kit,
			SpawnA:  a.SpawnA,
			SpawnB:  a.SpawnB,
			Exit:    a.Exit,
			OnStart: a.OnStart,
			OnEnd:   a.OnEnd,
		})
	}

	log.Info().Int("kits", len(engine.Registry().Kits())).Int("arenas", len(engine.Registry().Arenas())).Msg("loaded registrations")
	return nil
}
