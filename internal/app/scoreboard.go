// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/tiltdrop/internal/config"
	"github.com/relabs-tech/tiltdrop/internal/engine"
)

// scoreboardData holds the latest snapshot for the display loop.
type scoreboardData struct {
	mu       sync.RWMutex
	snap     engine.Snapshot
	haveSnap bool
}

// RunScoreboard drives an SSD1306 OLED showing the score counters and
// the smoothed tilt, refreshed on its own ticker independent of the
// game tick.
func RunScoreboard() error {
	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open("")
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	// ssd1306.NewI2C drives the controller at its fixed 0x3C address
	display, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Println("scoreboard: display initialized")

	if err := showSplash(display); err != nil {
		log.Printf("scoreboard: error showing splash: %v", err)
	}

	data := &scoreboardData{}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDScoreboard)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("scoreboard: connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicState, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var snap engine.Snapshot
		if err := json.Unmarshal(msg.Payload(), &snap); err != nil {
			log.Printf("scoreboard: state unmarshal error: %v", err)
			return
		}
		data.mu.Lock()
		data.snap = snap
		data.haveSnap = true
		data.mu.Unlock()
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("scoreboard: subscribed to %s", cfg.TopicState)

	ticker := time.NewTicker(time.Duration(cfg.ScoreboardUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("scoreboard: starting update loop")

	for range ticker.C {
		data.mu.RLock()
		snap := data.snap
		have := data.haveSnap
		data.mu.RUnlock()

		if err := drawScore(display, snap, have); err != nil {
			log.Printf("scoreboard: draw error: %v", err)
		}
	}
	return nil
}

func newFrame() (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))

	// Blank image
	for i := 0; i < 1024; i++ {
		img.Pix[i] = 0
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

func drawScore(dev *ssd1306.Dev, snap engine.Snapshot, have bool) error {
	img, drawer := newFrame()

	if !have {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte("Tiltdrop"))
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte("Waiting..."))
		return dev.Draw(dev.Bounds(), img, image.Point{})
	}

	drawer.Dot = fixed.P(0, 13)
	drawer.DrawBytes([]byte(fmt.Sprintf("Hits: %4d", snap.HitCount)))

	drawer.Dot = fixed.P(0, 26)
	drawer.DrawBytes([]byte(fmt.Sprintf("Bonus:%4d", snap.BonusCount)))

	drawer.Dot = fixed.P(0, 39)
	drawer.DrawBytes([]byte(fmt.Sprintf("P:%5.2f R:%5.2f", snap.Pitch, snap.Roll)))

	status := ""
	switch {
	case !snap.SensorOK:
		status = "NO SENSOR"
	case snap.Frozen:
		status = "FROZEN"
	case snap.AtEdge:
		status = "EDGE!"
	}
	if status != "" {
		drawer.Dot = fixed.P(0, 52)
		drawer.DrawBytes([]byte(status))
	}

	return dev.Draw(dev.Bounds(), img, image.Point{})
}

func showSplash(dev *ssd1306.Dev) error {
	img, drawer := newFrame()

	drawer.Dot = fixed.P(10, 26)
	drawer.DrawBytes([]byte("Tiltdrop"))

	drawer.Dot = fixed.P(5, 43)
	drawer.DrawBytes([]byte("Tilt to play"))

	return dev.Draw(dev.Bounds(), img, image.Point{})
}
