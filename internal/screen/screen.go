// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package screen

import (
	"github.com/relabs-tech/tiltdrop/internal/orientation"
)

// Viewport is the logical play area in points. It is threaded in as an
// explicit parameter rather than derived from any presentation layer.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Offset is the tracked object's displacement from the viewport center,
// recomputed every frame. AtEdge is true when at least one axis sits on
// or beyond its travel margin (boundary-inclusive, per-axis, not a
// circular boundary).
type Offset struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	AtEdge bool    `json:"at_edge"`
}

// Map converts a smoothed orientation into a clamped screen offset.
// The gain is chosen so that a tilt of exactly maxAngle lands on the
// margin boundary. While frozen the gain is zero, which parks the
// object at the center. Pure function of its inputs.
func Map(o orientation.Sample, vp Viewport, objectSize, maxAngle float64, frozen bool) Offset {
	maxOffsetX := (vp.Width - objectSize) / 2
	maxOffsetY := (vp.Height - objectSize) / 2

	var x, y float64
	if !frozen {
		// ratio first, so a tilt of exactly maxAngle lands exactly on
		// the margin instead of a rounding hair inside it
		x = clamp(o.Roll/maxAngle*maxOffsetX, maxOffsetX)
		y = clamp(o.Pitch/maxAngle*maxOffsetY, maxOffsetY)
	}

	return Offset{
		X:      x,
		Y:      y,
		AtEdge: abs(x) >= maxOffsetX || abs(y) >= maxOffsetY,
	}
}

func clamp(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// EdgeTrigger turns the level-style AtEdge flag into a rising-edge
// event so that feedback fires once per boundary touch, not on every
// frame spent leaning against the edge.
type EdgeTrigger struct {
	prev bool
}

// Rising returns true only on the false→true transition of atEdge.
func (e *EdgeTrigger) Rising(atEdge bool) bool {
	rising := atEdge && !e.prev
	e.prev = atEdge
	return rising
}
