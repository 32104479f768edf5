package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/tiltdrop/internal/config"
	"github.com/relabs-tech/tiltdrop/internal/engine"
)

// A client that cannot keep up with the broadcast rate gets dropped
// instead of stalling the fan-out for everyone else.
const stateWriteTimeout = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// stateHub keeps the latest snapshot for the JSON API and fans
// incoming snapshots out to connected websocket clients.
type stateHub struct {
	mu       sync.RWMutex
	last     engine.Snapshot
	haveLast bool
	conns    map[*websocket.Conn]struct{}
}

func newStateHub() *stateHub {
	return &stateHub{conns: make(map[*websocket.Conn]struct{})}
}

func (h *stateHub) update(snap engine.Snapshot) {
	h.mu.Lock()
	h.last = snap
	h.haveLast = true
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		_ = c.SetWriteDeadline(time.Now().Add(stateWriteTimeout))
		if err := c.WriteJSON(snap); err != nil {
			h.drop(c)
		}
	}
}

func (h *stateHub) add(c *websocket.Conn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
}

func (h *stateHub) drop(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
	_ = c.Close()
}

// RunWeb subscribes to the state topic and serves the latest snapshot
// over a JSON endpoint and a websocket stream, plus static files from
// ./web as the root.
func RunWeb() error {
	cfg := config.Get()
	hub := newStateHub()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicState, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var snap engine.Snapshot
		if err := json.Unmarshal(msg.Payload(), &snap); err != nil {
			log.Printf("web: state unmarshal error: %v", err)
			return
		}
		hub.update(snap)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicState)

	// JSON API endpoint: latest snapshot
	http.HandleFunc("/api/state", func(w http.ResponseWriter, r *http.Request) {
		hub.mu.RLock()
		defer hub.mu.RUnlock()

		if !hub.haveLast {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(hub.last); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	// Websocket stream: one snapshot per broadcast
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("web: websocket upgrade error: %v", err)
			return
		}
		hub.add(conn)
		log.Printf("web: websocket client connected from %s", r.RemoteAddr)

		// Drain (and discard) client messages so pings and closes are
		// processed; writing happens from the hub.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					hub.drop(conn)
					return
				}
			}
		}()
	})

	// Static files from ./web as the root
	fs := http.FileServer(http.Dir("web"))
	http.Handle("/", fs)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}
