package engine

import (
	"github.com/relabs-tech/tiltdrop/internal/orientation"
	"github.com/relabs-tech/tiltdrop/internal/screen"
)

// Commands accepted on the engine inbox. The engine goroutine is the
// only writer of filter and game state; everything else talks to it
// through these messages.

// Sample delivers one raw tilt reading from the sensor producer.
type Sample struct {
	Sample orientation.Sample
}

// SetFrozen suspends (or resumes) all per-tick mutation, used while
// the capture UI is open on the device.
type SetFrozen struct {
	Frozen bool
}

// Resize replaces the viewport, e.g. after a device rotation.
type Resize struct {
	Viewport screen.Viewport
}
