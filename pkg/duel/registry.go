package duel

import (
	"strings"
	"unicode"
)

const maxNameLength = 32

// Registry holds the registered kits and arenas. It is append-only: nothing is ever
// removed or overwritten. Lookups ignore case.
type Registry struct {
	kits   map[string]*Kit
	arenas map[string]*Arena
	order  []*Arena // registration order, used for rotation

	lastHandedOut int // index into order, -1 before the first arena was handed out
}

func NewRegistry() *Registry {
	return &Registry{
		kits:          map[string]*Kit{},
		arenas:        map[string]*Arena{},
		lastHandedOut: -1,
	}
}

func key(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

func validName(name string) bool {
	if name == "" || len(name) > maxNameLength {
		return false
	}
	for _, r := range name {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
			return false
		}
	}
	return true
}

func (r *Registry) RegisterKit(k Kit) error {
	k.Name = strings.TrimSpace(k.Name)
	if !validName(k.Name) {
		return ErrInvalidName
	}
	if _, ok := r.kits[key(k.Name)]; ok {
		return ErrDuplicateKit
	}
	if !k.Source.Container.Valid() {
		return ErrInvalidGeometry
	}
	r.kits[key(k.Name)] = &k
	return nil
}

// RegisterArena validates every field before writing anything.
func (r *Registry) RegisterArena(a Arena) error {
	a.Name = strings.TrimSpace(a.Name)
	if !validName(a.Name) {
		return ErrInvalidName
	}
	if _, ok := r.arenas[key(a.Name)]; ok {
		return ErrDuplicateArena
	}
	kit, ok := r.kits[key(a.Kit)]
	if !ok {
		return ErrKitNotFound
	}
	if !a.validGeometry() {
		return ErrInvalidGeometry
	}

	a.Kit = kit.Name
	a.OnStart = append([]string(nil), a.OnStart...)
	a.OnEnd = append([]string(nil), a.OnEnd...)
	r.arenas[key(a.Name)] = &a
	r.order = append(r.order, &a)
	return nil
}

func (r *Registry) FindKit(name string) (*Kit, bool) {
	k, ok := r.kits[key(name)]
	return k, ok
}

func (r *Registry) FindArena(name string) (*Arena, bool) {
	a, ok := r.arenas[key(name)]
	return a, ok
}

// Arenas returns all arenas in registration order.
func (r *Registry) Arenas() []*Arena {
	return append([]*Arena(nil), r.order...)
}

func (r *Registry) Kits() []*Kit {
	kits := make([]*Kit, 0, len(r.kits))
	for _, k := range r.kits {
		kits = append(kits, k)
	}
	return kits
}
