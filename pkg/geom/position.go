package geom

import (
	"fmt"
	"math"
	"strconv"

	"github.com/rotisserie/eris"
)

const DefaultRealm = "overworld"

// Position is a point in one of the host's realms (dimensions).
type Position struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Realm string  `json:"realm"`
}

func NewPosition(x, y, z float64, realm string) Position {
	return Position{X: x, Y: y, Z: z, Realm: realm}
}

// Parse reads three coordinates and an optional realm, e.g. from chat command arguments.
func Parse(x, y, z, realm string) (Position, error) {
	var coords [3]float64
	for i, s := range []string{x, y, z} {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Position{}, eris.Errorf("bad coordinate '%s'", s)
		}
		coords[i] = f
	}
	if realm == "" {
		realm = DefaultRealm
	}
	return NewPosition(coords[0], coords[1], coords[2], realm), nil
}

func (p Position) IsZero() bool { return p.X == 0 && p.Y == 0 && p.Z == 0 && p.Realm == "" }

// Valid reports whether all coordinates are finite and the realm is set.
func (p Position) Valid() bool {
	for _, f := range []float64{p.X, p.Y, p.Z} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return p.Realm != ""
}

func (p Position) Magnitude() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

func (p Position) Sub(o Position) Position {
	return Position{X: p.X - o.X, Y: p.Y - o.Y, Z: p.Z - o.Z, Realm: p.Realm}
}

// Distance returns +Inf for positions in different realms.
func Distance(from, to Position) float64 {
	if from.Realm != to.Realm {
		return math.Inf(1)
	}
	return from.Sub(to).Magnitude()
}

func (p Position) String() string {
	return fmt.Sprintf("%g %g %g (%s)", p.X, p.Y, p.Z, p.Realm)
}
