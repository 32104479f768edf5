package game

import (
	"math"
	"math/rand"

	"github.com/relabs-tech/tiltdrop/internal/screen"
)

// Step advances the simulation by one tick of dt seconds and returns
// the collisions detected during it. Order within a tick is fixed:
// advance, collide, cull, spawn — so a just-spawned object is never
// advanced or collision-tested in the tick that created it.
//
// The collision test is a discrete circle-circle check; a fast object
// can tunnel through the tracked circle between ticks. That is the
// original behavior, kept on purpose. There is also no cap on the
// number of concurrent objects.
func Step(s *State, tracked Circle, tn Tuning, vp screen.Viewport, dt float64, rng *rand.Rand) []Collision {
	if s.Frozen {
		return nil
	}
	s.Tick++

	for i := range s.Objects {
		s.Objects[i].Y += s.Objects[i].Speed
	}

	var collisions []Collision
	kept := s.Objects[:0]
	for _, o := range s.Objects {
		if o.Y >= vp.Height-tn.CollisionBand && hits(o, tracked, tn.ObjectRadius) {
			collisions = append(collisions, Collision{ID: o.ID, Kind: o.Kind})
			s.HitCount++
			if o.Kind == Bonus {
				s.BonusCount++
			}
			continue
		}
		if o.Y > vp.Height+tn.CullMargin {
			// off-screen, uncollided: dropped silently
			continue
		}
		kept = append(kept, o)
	}
	s.Objects = kept

	s.SpawnAccum += dt
	if s.SpawnAccum >= tn.SpawnInterval {
		s.SpawnAccum = 0
		s.Objects = append(s.Objects, s.spawn(tn, vp, rng))
	}

	return collisions
}

func hits(o Object, tracked Circle, objectRadius float64) bool {
	dx := o.X - tracked.X
	dy := o.Y - tracked.Y
	r := objectRadius + tracked.R
	return math.Hypot(dx, dy) <= r
}

// spawn creates one object at a random x within the viewport, just
// above the top edge. Bonus objects appear with probability BonusProb
// only once HitCount has reached BonusMinHits; before that every spawn
// is standard. The ramp is deliberate, not incidental.
func (s *State) spawn(tn Tuning, vp screen.Viewport, rng *rand.Rand) Object {
	s.nextID++
	kind := Standard
	if s.HitCount >= tn.BonusMinHits && rng.Float64() < tn.BonusProb {
		kind = Bonus
	}
	return Object{
		ID:    s.nextID,
		X:     rng.Float64() * vp.Width,
		Y:     -tn.ObjectRadius,
		Speed: tn.SpeedMin + rng.Float64()*(tn.SpeedMax-tn.SpeedMin),
		Kind:  kind,
	}
}
