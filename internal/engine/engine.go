// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package engine

import (
	"log"
	"math/rand"
	"time"

	"github.com/relabs-tech/tiltdrop/internal/feedback"
	"github.com/relabs-tech/tiltdrop/internal/game"
	"github.com/relabs-tech/tiltdrop/internal/orientation"
	"github.com/relabs-tech/tiltdrop/internal/screen"
)

// Params configures an Engine.
type Params struct {
	Viewport   screen.Viewport
	ObjectSize float64 // tracked ball diameter
	MaxAngle   float64 // radians of tilt that reach the travel margin
	Alpha      float64 // filter gain

	TickInterval   time.Duration
	SampleInterval time.Duration // expected sensor rate, for staleness
	BroadcastHz    int

	Tuning game.Tuning
	Seed   int64 // 0 means time-seeded

	Dispatcher feedback.Dispatcher
	OnSnapshot func(Snapshot) // called from the engine goroutine
}

// Engine owns the orientation filter, the offset mapper state, and the
// falling-object simulation. Samples and control commands arrive on
// Inbox; a fixed ticker drives the simulation. All mutable state is
// touched only from the goroutine running Run (or from tests calling
// tick directly), which is the whole point of the design: no ad-hoc
// cross-context mutation between sensor delivery and the game loop.
type Engine struct {
	Inbox chan any

	p              Params
	filter         *orientation.Filter
	edge           screen.EdgeTrigger
	state          game.State
	rng            *rand.Rand
	tickCount      int
	broadcastEvery int

	lastSample time.Time
	sensorOK   bool

	quit chan struct{}
}

// New creates an engine. Run must be called to start it.
func New(p Params) *Engine {
	if p.Dispatcher == nil {
		p.Dispatcher = feedback.Nop{}
	}
	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	broadcastEvery := 1
	if p.BroadcastHz > 0 && p.TickInterval > 0 {
		tickHz := int(time.Second / p.TickInterval)
		if every := tickHz / p.BroadcastHz; every > 1 {
			broadcastEvery = every
		}
	}
	return &Engine{
		Inbox:          make(chan any, 256),
		p:              p,
		filter:         orientation.NewFilter(p.Alpha),
		rng:            rand.New(rand.NewSource(seed)),
		broadcastEvery: broadcastEvery,
		// start "ok" so the very first tick without samples logs the
		// degraded transition instead of staying silent
		sensorOK: true,
		quit:     make(chan struct{}),
	}
}

func (e *Engine) Stop() {
	close(e.quit)
}

// Run processes inbox commands and drives the simulation ticker until
// Stop is called.
func (e *Engine) Run() {
	ticker := time.NewTicker(e.p.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.quit:
			return
		case cmd := <-e.Inbox:
			e.handleCommand(cmd, time.Now())
		case t := <-ticker.C:
			e.tick(t)
		}
	}
}

func (e *Engine) handleCommand(cmd any, now time.Time) {
	switch c := cmd.(type) {
	case Sample:
		e.filter.Update(c.Sample)
		e.lastSample = now
	case SetFrozen:
		if e.state.Frozen != c.Frozen {
			log.Printf("engine: frozen=%v", c.Frozen)
		}
		e.state.Frozen = c.Frozen
	case Resize:
		// a viewport the ball does not fit in would flip the travel
		// margins negative and pin AtEdge true forever
		if c.Viewport.Width <= e.p.ObjectSize || c.Viewport.Height <= e.p.ObjectSize {
			log.Printf("engine: ignoring resize to %gx%g, ball does not fit", c.Viewport.Width, c.Viewport.Height)
			return
		}
		log.Printf("engine: viewport resized to %gx%g", c.Viewport.Width, c.Viewport.Height)
		e.p.Viewport = c.Viewport
	}
}

// tick runs one fixed-timestep frame: map the smoothed tilt to a
// screen offset, fire boundary feedback on the rising edge, step the
// falling objects against the tracked ball, dispatch collisions, and
// periodically publish a snapshot.
func (e *Engine) tick(now time.Time) {
	e.tickCount++
	e.checkSensor(now)

	off := screen.Map(e.filter.Smoothed(), e.p.Viewport, e.p.ObjectSize, e.p.MaxAngle, e.state.Frozen)
	if e.edge.Rising(off.AtEdge) {
		e.p.Dispatcher.BoundaryHit()
	}

	tracked := game.Circle{
		X: e.p.Viewport.Width/2 + off.X,
		Y: e.p.Viewport.Height/2 + off.Y,
		R: e.p.ObjectSize / 2,
	}
	dt := e.p.TickInterval.Seconds()
	for _, col := range game.Step(&e.state, tracked, e.p.Tuning, e.p.Viewport, dt, e.rng) {
		e.p.Dispatcher.Collision(col.Kind)
	}

	if e.p.OnSnapshot != nil && e.tickCount%e.broadcastEvery == 0 {
		e.p.OnSnapshot(e.snapshot(off))
	}
}

// checkSensor surfaces sensor unavailability instead of silently
// holding the filter at its last value. The sensor counts as gone once
// no sample has arrived for ten nominal intervals.
func (e *Engine) checkSensor(now time.Time) {
	stale := e.p.SampleInterval * 10
	ok := e.filter.Primed() && (stale <= 0 || now.Sub(e.lastSample) <= stale)
	if ok != e.sensorOK {
		if ok {
			log.Println("engine: sensor recovered")
		} else {
			log.Println("engine: sensor unavailable, holding last orientation")
		}
		e.sensorOK = ok
	}
}

func (e *Engine) snapshot(off screen.Offset) Snapshot {
	smoothed := e.filter.Smoothed()
	snap := Snapshot{
		Tick:       e.state.Tick,
		X:          off.X,
		Y:          off.Y,
		AtEdge:     off.AtEdge,
		Pitch:      smoothed.Pitch,
		Roll:       smoothed.Roll,
		HitCount:   e.state.HitCount,
		BonusCount: e.state.BonusCount,
		Frozen:     e.state.Frozen,
		SensorOK:   e.sensorOK,
		Objects:    make([]ObjectSnapshot, 0, len(e.state.Objects)),
	}
	for _, o := range e.state.Objects {
		snap.Objects = append(snap.Objects, ObjectSnapshot{
			ID:   o.ID,
			X:    o.X,
			Y:    o.Y,
			Kind: o.Kind.String(),
		})
	}
	return snap
}

// Snapshot is the state published to viewers (console, web,
// scoreboard). Positions are the offset from the viewport center.
type Snapshot struct {
	Tick       int              `json:"tick"`
	X          float64          `json:"x"`
	Y          float64          `json:"y"`
	AtEdge     bool             `json:"at_edge"`
	Pitch      float64          `json:"pitch"`
	Roll       float64          `json:"roll"`
	HitCount   int              `json:"hit_count"`
	BonusCount int              `json:"bonus_count"`
	Frozen     bool             `json:"frozen"`
	SensorOK   bool             `json:"sensor_ok"`
	Objects    []ObjectSnapshot `json:"objects"`
}

type ObjectSnapshot struct {
	ID   int64   `json:"id"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Kind string  `json:"kind"`
}
