package feedback

import (
	"log"

	"github.com/relabs-tech/tiltdrop/internal/game"
)

// Dispatcher receives boundary and collision events from the engine.
// Calls are fire-and-forget: implementations must not block the tick
// loop, and failures are logged and dropped, never retried and never
// propagated back into the simulation.
type Dispatcher interface {
	// BoundaryHit fires on the rising edge of the tracked object
	// reaching its travel margin (not level-triggered).
	BoundaryHit()
	// Collision fires once per falling object removed by contact.
	Collision(kind game.Kind)
}

// Nop discards all events.
type Nop struct{}

func (Nop) BoundaryHit()             {}
func (Nop) Collision(kind game.Kind) {}

// Log prints events to the standard logger. Used as the fallback when
// audio is disabled or fails to initialize.
type Log struct{}

func (Log) BoundaryHit() {
	log.Println("feedback: ding! boundary hit")
}

func (Log) Collision(kind game.Kind) {
	log.Printf("feedback: collision (%s)", kind)
}

// Multi fans events out to several dispatchers in order.
type Multi []Dispatcher

func (m Multi) BoundaryHit() {
	for _, d := range m {
		d.BoundaryHit()
	}
}

func (m Multi) Collision(kind game.Kind) {
	for _, d := range m {
		d.Collision(kind)
	}
}
