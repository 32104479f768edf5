package game

// State is the authoritative game state, owned by the engine goroutine.
//
// SpawnAccum counts elapsed seconds toward the next spawn; it resets to
// zero each time it crosses the threshold and never carries a value at
// or above the threshold across ticks. Frozen suspends all per-tick
// mutation (used while the capture UI is open on the device).
type State struct {
	Tick       int
	Objects    []Object
	SpawnAccum float64
	HitCount   int
	BonusCount int
	Frozen     bool

	nextID int64
}

// Circle is the tracked object's collision footprint in screen space.
type Circle struct {
	X, Y, R float64
}

// Collision reports one falling object removed by contact with the
// tracked circle during a tick.
type Collision struct {
	ID   int64
	Kind Kind
}
