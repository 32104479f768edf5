package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/tiltdrop/internal/config"
	"github.com/relabs-tech/tiltdrop/internal/engine"
)

// RunConsole subscribes to the state and event topics and prints them,
// mostly useful while tuning the filter and spawn parameters.
func RunConsole() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	stateToken := client.Subscribe(cfg.TopicState, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s engine.Snapshot
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("console: state unmarshal error: %v", err)
			return
		}

		status := ""
		if !s.SensorOK {
			status = "  NO SENSOR"
		}
		if s.Frozen {
			status += "  FROZEN"
		}
		if s.AtEdge {
			status += "  EDGE"
		}
		fmt.Printf("[STATE] tick=%6d  x=%7.1f y=%7.1f  hits=%3d bonus=%3d  objects=%2d%s\n",
			s.Tick, s.X, s.Y, s.HitCount, s.BonusCount, len(s.Objects), status)
	})
	stateToken.Wait()
	if stateToken.Error() != nil {
		return stateToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicState)

	eventToken := client.Subscribe(cfg.TopicEvent, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var ev eventMsg
		if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
			log.Printf("console: event unmarshal error: %v", err)
			return
		}

		switch ev.Type {
		case "boundary":
			fmt.Println("[EVENT] Ding! boundary hit")
		case "collision":
			fmt.Printf("[EVENT] collision (%s)\n", ev.Kind)
		default:
			fmt.Printf("[EVENT] %s\n", ev.Type)
		}
	})
	eventToken.Wait()
	if eventToken.Error() != nil {
		return eventToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicEvent)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
