package app

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/tiltdrop/internal/config"
	"github.com/relabs-tech/tiltdrop/internal/orientation"
)

// RunProducer reads tilt samples from the configured source at a fixed
// rate and publishes them as JSON to the sample topic. The game process
// is the single consumer; this side holds no game state at all.
func RunProducer() error {
	cfg := config.Get()

	src, err := newSource(cfg)
	if err != nil {
		return fmt.Errorf("tilt source: %w", err)
	}
	log.Printf("producer: using %s tilt source", cfg.TiltSource)

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect: %w", token.Error())
	}
	defer client.Disconnect(250)
	log.Printf("producer: connected to MQTT broker at %s, starting publish loop", cfg.MQTTBroker)

	ticker := time.NewTicker(time.Duration(cfg.SampleInterval) * time.Millisecond)
	defer ticker.Stop()

	// log roughly once per second rather than per sample
	logEvery := 1000 / cfg.SampleInterval
	if logEvery < 1 {
		logEvery = 1
	}

	published := 0
	for range ticker.C {
		sample, err := src.Next()
		if err != nil {
			log.Printf("producer: sample read error: %v", err)
			continue
		}

		payload, err := json.Marshal(sample)
		if err != nil {
			log.Printf("producer: json marshal error: %v", err)
			continue
		}

		if token := client.Publish(cfg.TopicSample, 0, false, payload); token.Wait() && token.Error() != nil {
			log.Printf("producer: MQTT publish error: %v", token.Error())
			continue
		}

		published++
		if published%logEvery == 0 {
			log.Printf("producer: pitch=%.3f roll=%.3f (%d samples sent)",
				sample.Pitch, sample.Roll, published)
		}
	}
	return nil
}

func newSource(cfg *config.Config) (orientation.Source, error) {
	switch cfg.TiltSource {
	case "imu":
		return orientation.NewIMUSource(cfg.IMUSPIDevice, cfg.IMUCSPin)
	case "nmea":
		return orientation.NewNMEASource(cfg.TiltSerialPort, cfg.TiltBaudRate)
	default:
		return orientation.NewMockSource(), nil
	}
}
