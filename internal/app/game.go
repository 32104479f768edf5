package app

import (
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/tiltdrop/internal/config"
	"github.com/relabs-tech/tiltdrop/internal/engine"
	"github.com/relabs-tech/tiltdrop/internal/feedback"
	"github.com/relabs-tech/tiltdrop/internal/game"
	"github.com/relabs-tech/tiltdrop/internal/orientation"
	"github.com/relabs-tech/tiltdrop/internal/screen"
)

// controlMsg is the payload accepted on the control topic. The capture
// UI on the device sends freeze/unfreeze around its modal; resize
// arrives after a rotation.
type controlMsg struct {
	Action string  `json:"action"` // freeze, unfreeze, resize
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// eventMsg is published on the event topic for remote listeners.
type eventMsg struct {
	Type string `json:"type"` // boundary, collision
	Kind string `json:"kind,omitempty"`
}

// RunGame subscribes to tilt samples, runs the engine loop, and
// publishes state snapshots and feedback events.
func RunGame() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDGame)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("game: connected to MQTT broker at %s", cfg.MQTTBroker)

	dispatcher := buildDispatcher(cfg, client)

	eng := engine.New(engine.Params{
		Viewport:       screen.Viewport{Width: cfg.ViewportWidth, Height: cfg.ViewportHeight},
		ObjectSize:     cfg.ObjectSize,
		MaxAngle:       cfg.MaxAngle,
		Alpha:          cfg.FilterAlpha,
		TickInterval:   time.Duration(cfg.TickInterval) * time.Millisecond,
		SampleInterval: time.Duration(cfg.SampleInterval) * time.Millisecond,
		BroadcastHz:    cfg.BroadcastHz,
		Tuning: game.Tuning{
			ObjectRadius:  cfg.FallingRadius,
			SpawnInterval: cfg.SpawnInterval,
			SpeedMin:      cfg.SpeedMin,
			SpeedMax:      cfg.SpeedMax,
			BonusProb:     cfg.BonusProb,
			BonusMinHits:  cfg.BonusMinHits,
			CullMargin:    cfg.CullMargin,
			CollisionBand: cfg.CollisionBand,
		},
		Seed:       cfg.SpawnSeed,
		Dispatcher: dispatcher,
		OnSnapshot: func(snap engine.Snapshot) {
			payload, err := json.Marshal(snap)
			if err != nil {
				log.Printf("game: snapshot marshal error: %v", err)
				return
			}
			// fire-and-forget so a slow broker never stalls the tick loop
			client.Publish(cfg.TopicState, 0, true, payload)
		},
	})

	// Samples go through the inbox so the engine goroutine stays the
	// only writer of filter and game state. A full inbox drops the
	// sample: stale tilt readings are worthless anyway.
	token := client.Subscribe(cfg.TopicSample, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s orientation.Sample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("game: sample unmarshal error: %v", err)
			return
		}
		select {
		case eng.Inbox <- engine.Sample{Sample: s}:
		default:
		}
	})
	if token.Wait(); token.Error() != nil {
		return token.Error()
	}
	log.Printf("game: subscribed to %s", cfg.TopicSample)

	token = client.Subscribe(cfg.TopicControl, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var c controlMsg
		if err := json.Unmarshal(msg.Payload(), &c); err != nil {
			log.Printf("game: control unmarshal error: %v", err)
			return
		}
		switch c.Action {
		case "freeze":
			eng.Inbox <- engine.SetFrozen{Frozen: true}
		case "unfreeze":
			eng.Inbox <- engine.SetFrozen{Frozen: false}
		case "resize":
			// the ball must keep a positive travel margin on both axes
			if c.Width <= cfg.ObjectSize || c.Height <= cfg.ObjectSize {
				log.Printf("game: ignoring resize to %gx%g", c.Width, c.Height)
				return
			}
			eng.Inbox <- engine.Resize{Viewport: screen.Viewport{Width: c.Width, Height: c.Height}}
		default:
			log.Printf("game: unknown control action %q", c.Action)
		}
	})
	if token.Wait(); token.Error() != nil {
		return token.Error()
	}
	log.Printf("game: subscribed to %s", cfg.TopicControl)

	go eng.Run()
	log.Println("game: engine running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("game: shutting down")
	eng.Stop()
	return nil
}

// buildDispatcher assembles the local feedback chain: log always, the
// audio chime when enabled and the device has audio out, and an MQTT
// publisher so remote listeners (console, scoreboard) see events too.
func buildDispatcher(cfg *config.Config, client mqtt.Client) feedback.Dispatcher {
	chain := feedback.Multi{feedback.Log{}, &mqttDispatcher{client: client, topic: cfg.TopicEvent}}
	if cfg.AudioEnabled {
		chime, err := feedback.NewChime()
		if err != nil {
			log.Printf("game: audio unavailable, falling back to log only: %v", err)
		} else {
			chain = append(chain, chime)
		}
	}
	return chain
}

// mqttDispatcher forwards feedback events to the event topic without
// waiting for broker acknowledgment.
type mqttDispatcher struct {
	client mqtt.Client
	topic  string
}

func (d *mqttDispatcher) BoundaryHit() {
	d.publish(eventMsg{Type: "boundary"})
}

func (d *mqttDispatcher) Collision(kind game.Kind) {
	d.publish(eventMsg{Type: "collision", Kind: kind.String()})
}

func (d *mqttDispatcher) publish(ev eventMsg) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("game: event marshal error: %v", err)
		return
	}
	d.client.Publish(d.topic, 0, false, payload)
}
