package duel

import "github.com/rotisserie/eris"

// registration
var (
	ErrDuplicateKit    = eris.New("a kit with that name is already registered")
	ErrDuplicateArena  = eris.New("an arena with that name is already registered")
	ErrKitNotFound     = eris.New("no kit with that name is registered")
	ErrInvalidGeometry = eris.New("invalid arena geometry")
	ErrInvalidName     = eris.New("names must be 1 to 32 letters, digits, '-' or '_'")
)

// requests
var (
	ErrSelfTarget         = eris.New("you can't duel yourself")
	ErrTargetNotFound     = eris.New("that player is not online")
	ErrTargetInSession    = eris.New("that player is already in a duel")
	ErrRequesterInSession = eris.New("you are already in a duel")
	ErrArenaNotFound      = eris.New("no arena with that name is registered")
	ErrArenaInUse         = eris.New("that arena is in use")
	ErrDuplicateRequest   = eris.New("you already sent that player a duel request")
	ErrRequestNotFound    = eris.New("no such duel request")
	ErrNoFreeArena        = eris.New("all arenas are in use, try again in a moment")
)

// queue
var (
	ErrAlreadyQueued    = eris.New("you are already queued")
	ErrAlreadyInSession = eris.New("you are already in a duel")
)

// formation
var (
	ErrNotPermitted    = eris.New("not permitted to duel")
	ErrPlayerOffline   = eris.New("player is not online")
	ErrKitUnavailable  = eris.New("the arena's kit could not be loaded")
	ErrNoArenas        = eris.New("dueling is currently unavailable, try later")
	ErrNotInSession    = eris.New("you are not in a duel")
	ErrDuelOver        = eris.New("your duel is already over")
	ErrSamePlayerTwice = eris.New("a duel needs two different players")
)
