package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values. Every field has a
// default (see Default); the config file overrides individual keys.
type Config struct {
	// MQTT
	MQTTBroker             string
	MQTTClientIDProducer   string
	MQTTClientIDGame       string
	MQTTClientIDConsole    string
	MQTTClientIDWeb        string
	MQTTClientIDScoreboard string

	// Topics
	TopicSample  string
	TopicState   string
	TopicEvent   string
	TopicControl string

	// Tilt source: "mock", "imu" or "nmea"
	TiltSource     string
	IMUSPIDevice   string
	IMUCSPin       string
	TiltSerialPort string
	TiltBaudRate   uint

	// Timing
	SampleInterval int // milliseconds between sensor samples
	TickInterval   int // milliseconds between simulation ticks
	BroadcastHz    int // state snapshot publish rate

	// Filter and offset mapping
	FilterAlpha    float64
	MaxAngle       float64 // radians of tilt that reach the margin
	ViewportWidth  float64
	ViewportHeight float64
	ObjectSize     float64 // tracked object (ball) diameter

	// Falling objects
	FallingRadius float64
	SpawnInterval float64 // seconds
	SpeedMin      float64 // points per tick
	SpeedMax      float64
	BonusProb     float64
	BonusMinHits  int
	CullMargin    float64
	CollisionBand float64
	SpawnSeed     int64 // 0 means time-seeded

	// Feedback
	AudioEnabled bool

	// Web server
	WebServerPort int

	// Scoreboard (SSD1306 over I2C)
	ScoreboardUpdateInterval int // milliseconds
}

// Default returns the shipped demo configuration: 50 Hz sampling,
// ~60 Hz ticks, a 300x600 viewport with a 60-point ball, and the
// original spawn/bonus tuning.
func Default() *Config {
	return &Config{
		MQTTBroker:             "tcp://localhost:1883",
		MQTTClientIDProducer:   "tiltdrop-producer",
		MQTTClientIDGame:       "tiltdrop-game",
		MQTTClientIDConsole:    "tiltdrop-console",
		MQTTClientIDWeb:        "tiltdrop-web",
		MQTTClientIDScoreboard: "tiltdrop-scoreboard",

		TopicSample:  "tiltdrop/sample",
		TopicState:   "tiltdrop/state",
		TopicEvent:   "tiltdrop/event",
		TopicControl: "tiltdrop/control",

		TiltSource:     "mock",
		IMUSPIDevice:   "/dev/spidev0.0",
		IMUCSPin:       "18",
		TiltSerialPort: "/dev/serial0",
		TiltBaudRate:   9600,

		SampleInterval: 20,
		TickInterval:   16,
		BroadcastHz:    30,

		FilterAlpha:    0.1,
		MaxAngle:       0.5235987755982988, // pi/6
		ViewportWidth:  300,
		ViewportHeight: 600,
		ObjectSize:     60,

		FallingRadius: 10,
		SpawnInterval: 0.8,
		SpeedMin:      2,
		SpeedMax:      6,
		BonusProb:     0.25,
		BonusMinHits:  10,
		CullMargin:    50,
		CollisionBand: 600,
		SpawnSeed:     0,

		AudioEnabled: false,

		WebServerPort: 8080,

		ScoreboardUpdateInterval: 250,
	}
}

// Package-level singleton, set once via InitGlobal and read via Get.
// The RWMutex allows concurrent readers across goroutines; only
// initialization takes the write lock.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct with
// defaults applied for any key the file does not mention.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_GAME":
		c.MQTTClientIDGame = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_SCOREBOARD":
		c.MQTTClientIDScoreboard = value

	// Topics
	case "TOPIC_SAMPLE":
		c.TopicSample = value
	case "TOPIC_STATE":
		c.TopicState = value
	case "TOPIC_EVENT":
		c.TopicEvent = value
	case "TOPIC_CONTROL":
		c.TopicControl = value

	// Tilt source
	case "TILT_SOURCE":
		switch value {
		case "mock", "imu", "nmea":
			c.TiltSource = value
		default:
			return fmt.Errorf("TILT_SOURCE must be mock, imu or nmea, got %q", value)
		}
	case "IMU_SPI_DEVICE":
		c.IMUSPIDevice = value
	case "IMU_CS_PIN":
		c.IMUCSPin = value
	case "TILT_SERIAL_PORT":
		c.TiltSerialPort = value
	case "TILT_BAUD_RATE":
		rate, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid TILT_BAUD_RATE %q: %w", value, err)
		}
		c.TiltBaudRate = uint(rate)

	// Timing
	case "SAMPLE_INTERVAL":
		return setInt(&c.SampleInterval, key, value)
	case "TICK_INTERVAL":
		return setInt(&c.TickInterval, key, value)
	case "BROADCAST_HZ":
		return setInt(&c.BroadcastHz, key, value)

	// Filter and offset mapping
	case "FILTER_ALPHA":
		return setFloat(&c.FilterAlpha, key, value)
	case "MAX_ANGLE":
		return setFloat(&c.MaxAngle, key, value)
	case "VIEWPORT_WIDTH":
		return setFloat(&c.ViewportWidth, key, value)
	case "VIEWPORT_HEIGHT":
		return setFloat(&c.ViewportHeight, key, value)
	case "OBJECT_SIZE":
		return setFloat(&c.ObjectSize, key, value)

	// Falling objects
	case "FALLING_RADIUS":
		return setFloat(&c.FallingRadius, key, value)
	case "SPAWN_INTERVAL":
		return setFloat(&c.SpawnInterval, key, value)
	case "SPEED_MIN":
		return setFloat(&c.SpeedMin, key, value)
	case "SPEED_MAX":
		return setFloat(&c.SpeedMax, key, value)
	case "BONUS_PROB":
		return setFloat(&c.BonusProb, key, value)
	case "BONUS_MIN_HITS":
		return setInt(&c.BonusMinHits, key, value)
	case "CULL_MARGIN":
		return setFloat(&c.CullMargin, key, value)
	case "COLLISION_BAND":
		return setFloat(&c.CollisionBand, key, value)
	case "SPAWN_SEED":
		seed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid SPAWN_SEED %q: %w", value, err)
		}
		c.SpawnSeed = seed

	// Feedback
	case "AUDIO_ENABLED":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid AUDIO_ENABLED %q: %w", value, err)
		}
		c.AudioEnabled = enabled

	// Web server
	case "WEB_SERVER_PORT":
		return setInt(&c.WebServerPort, key, value)

	// Scoreboard
	case "SCOREBOARD_UPDATE_INTERVAL":
		return setInt(&c.ScoreboardUpdateInterval, key, value)

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

func setInt(dst *int, key, value string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	*dst = v
	return nil
}

func setFloat(dst *float64, key, value string) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	*dst = v
	return nil
}

// validate checks value ranges after defaults and overrides are merged.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.SampleInterval <= 0 {
		return fmt.Errorf("SAMPLE_INTERVAL must be positive, got %d", c.SampleInterval)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("TICK_INTERVAL must be positive, got %d", c.TickInterval)
	}
	if c.BroadcastHz <= 0 {
		return fmt.Errorf("BROADCAST_HZ must be positive, got %d", c.BroadcastHz)
	}
	if c.FilterAlpha <= 0 || c.FilterAlpha > 1 {
		return fmt.Errorf("FILTER_ALPHA must be in (0, 1], got %g", c.FilterAlpha)
	}
	if c.MaxAngle <= 0 {
		return fmt.Errorf("MAX_ANGLE must be positive, got %g", c.MaxAngle)
	}
	if c.ObjectSize <= 0 || c.ObjectSize >= c.ViewportWidth || c.ObjectSize >= c.ViewportHeight {
		return fmt.Errorf("OBJECT_SIZE must fit inside the viewport, got %g in %gx%g",
			c.ObjectSize, c.ViewportWidth, c.ViewportHeight)
	}
	if c.SpawnInterval <= 0 {
		return fmt.Errorf("SPAWN_INTERVAL must be positive, got %g", c.SpawnInterval)
	}
	if c.SpeedMin <= 0 || c.SpeedMax < c.SpeedMin {
		return fmt.Errorf("speed range invalid: SPEED_MIN=%g SPEED_MAX=%g", c.SpeedMin, c.SpeedMax)
	}
	if c.BonusProb < 0 || c.BonusProb > 1 {
		return fmt.Errorf("BONUS_PROB must be in [0, 1], got %g", c.BonusProb)
	}
	if c.BonusMinHits < 0 {
		return fmt.Errorf("BONUS_MIN_HITS must not be negative, got %d", c.BonusMinHits)
	}
	return nil
}

// InitGlobal initializes the global configuration from file. Uses
// sync.Once so repeated calls are harmless.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance. InitGlobal must be
// called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
