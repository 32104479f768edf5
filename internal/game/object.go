package game

// Kind classifies a falling object. Bonus objects count double in the
// on-screen tally and only appear after the difficulty ramp unlocks.
type Kind uint8

const (
	Standard Kind = iota
	Bonus
)

func (k Kind) String() string {
	if k == Bonus {
		return "bonus"
	}
	return "standard"
}

// Object is one falling object. Y grows downward; an object is culled
// once it passes below the viewport plus a margin, or removed when it
// collides with the tracked circle.
type Object struct {
	ID    int64   `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Speed float64 `json:"speed"`
	Kind  Kind    `json:"kind"`
}
