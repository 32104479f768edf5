// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"time"
)

type mockSource struct {
	start time.Time
}

// NewMockSource creates a mock tilt source that generates smooth
// changing values, enough to drive the ball around without hardware.
func NewMockSource() Source {
	return &mockSource{start: time.Now()}
}

func (m *mockSource) Next() (Sample, error) {
	elapsed := time.Since(m.start).Seconds()

	return Sample{
		Roll:  (math.Pi / 8) * math.Sin(elapsed),
		Pitch: (math.Pi / 10) * math.Cos(elapsed*0.7),
	}, nil
}
