package configs

import (
	"fmt"
	"time"

	"github.com/huddle-rtc/huddle/internal/infrastructure/env"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	HTTP        HTTPConfig        `koanf:"http"`
	WS          WSConfig          `koanf:"ws"`
	Rooms       RoomsConfig       `koanf:"rooms"`
	Chat        ChatConfig        `koanf:"chat"`
	RateLimiter RateLimiterConfig `koanf:"rateLimiter"`
	Logger      LoggerConfig      `koanf:"logger"`
}

type HTTPConfig struct {
	Host           string        `koanf:"host"`
	Port           uint16        `koanf:"port"`
	AllowedOrigins []string      `koanf:"allowed_origins"`
	ReadTimeout    time.Duration `koanf:"read_timeout"`
	WriteTimeout   time.Duration `koanf:"write_timeout"`
}

type WSConfig struct {
	PingInterval      time.Duration `koanf:"ping_interval"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	SendBuffer        int           `koanf:"send_buffer"`
	MaxPayloadSize    int64         `koanf:"max_payload_size"`
	EnableCompression bool          `koanf:"enable_compression"`
}

type RoomsConfig struct {
	InactivityTimeout time.Duration `koanf:"inactivity_timeout"`
	SweepInterval     time.Duration `koanf:"sweep_interval"`
}

type ChatConfig struct {
	ThrottleWindow time.Duration `koanf:"throttle_window"`
}

type RateLimiterConfig struct {
	MaxRatePerSecond int           `koanf:"maxRatePerSecond"`
	MaxBurst         int           `koanf:"maxBurst"`
	CacheTTL         time.Duration `koanf:"cacheTTL"`
	SourceHeaderKey  string        `koanf:"sourceHeaderKey"`
}

type LoggerConfig struct {
	Backend  string `koanf:"backend"`
	Level    string `koanf:"level"`
	Encoding string `koanf:"encoding"`
	FilePath string `koanf:"file_path"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Load from YAML file if it exists
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	applyDefaults(k)
	applyEnvOverrides(k)

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(k *koanf.Koanf) {
	// HTTP defaults
	setDefault(k, "http.host", "0.0.0.0")
	setDefault(k, "http.port", 8080)
	setDefault(k, "http.read_timeout", 10*time.Second)
	setDefault(k, "http.write_timeout", 30*time.Second)
	setDefault(k, "http.allowed_origins", []string{"*"})

	// WebSocket defaults. A connection is declared dead after missing two
	// keep-alive intervals, so the read deadline is 2x the ping interval.
	setDefault(k, "ws.ping_interval", 30*time.Second)
	setDefault(k, "ws.write_timeout", 10*time.Second)
	setDefault(k, "ws.send_buffer", 64)
	setDefault(k, "ws.max_payload_size", int64(8<<20))
	setDefault(k, "ws.enable_compression", false)

	// Room lifecycle defaults
	setDefault(k, "rooms.inactivity_timeout", 30*time.Minute)
	setDefault(k, "rooms.sweep_interval", time.Minute)

	// Chat throttle: one message per rolling window per connection
	setDefault(k, "chat.throttle_window", time.Second)

	// Handshake rate limiter defaults
	setDefault(k, "rateLimiter.maxRatePerSecond", 10)
	setDefault(k, "rateLimiter.maxBurst", 20)
	setDefault(k, "rateLimiter.cacheTTL", 5*time.Minute)
	setDefault(k, "rateLimiter.sourceHeaderKey", "X-Forwarded-For")

	// Logger defaults
	setDefault(k, "logger.backend", "zap")
	setDefault(k, "logger.level", "info")
	setDefault(k, "logger.encoding", "json")
	setDefault(k, "logger.file_path", "./logs/")
}

func applyEnvOverrides(k *koanf.Koanf) {
	if host := env.GetString("HTTP_HOST", ""); host != "" {
		k.Set("http.host", host)
	}
	if port := env.GetInt("HTTP_PORT", 0); port > 0 {
		k.Set("http.port", port)
	}
	if readTimeout := env.GetInt("HTTP_READ_TIMEOUT_SECONDS", 0); readTimeout > 0 {
		k.Set("http.read_timeout", time.Duration(readTimeout)*time.Second)
	}
	if writeTimeout := env.GetInt("HTTP_WRITE_TIMEOUT_SECONDS", 0); writeTimeout > 0 {
		k.Set("http.write_timeout", time.Duration(writeTimeout)*time.Second)
	}

	if ping := env.GetInt("WS_PING_INTERVAL_SECONDS", 0); ping > 0 {
		k.Set("ws.ping_interval", time.Duration(ping)*time.Second)
	}
	if maxPayload := env.GetInt("WS_MAX_PAYLOAD_BYTES", 0); maxPayload > 0 {
		k.Set("ws.max_payload_size", int64(maxPayload))
	}
	if env.GetBool("WS_ENABLE_COMPRESSION", false) {
		k.Set("ws.enable_compression", true)
	}

	if idle := env.GetInt("ROOM_INACTIVITY_TIMEOUT_SECONDS", 0); idle > 0 {
		k.Set("rooms.inactivity_timeout", time.Duration(idle)*time.Second)
	}
	if sweep := env.GetInt("ROOM_SWEEP_INTERVAL_SECONDS", 0); sweep > 0 {
		k.Set("rooms.sweep_interval", time.Duration(sweep)*time.Second)
	}

	if window := env.GetInt("CHAT_THROTTLE_WINDOW_MS", 0); window > 0 {
		k.Set("chat.throttle_window", time.Duration(window)*time.Millisecond)
	}

	if maxRate := env.GetInt("RATE_LIMIT_MAX_RATE_PER_SECOND", 0); maxRate > 0 {
		k.Set("rateLimiter.maxRatePerSecond", maxRate)
	}
	if maxBurst := env.GetInt("RATE_LIMIT_MAX_BURST", 0); maxBurst > 0 {
		k.Set("rateLimiter.maxBurst", maxBurst)
	}

	if backend := env.GetString("LOGGER_BACKEND", ""); backend != "" {
		k.Set("logger.backend", backend)
	}
	if level := env.GetString("LOGGER_LEVEL", ""); level != "" {
		k.Set("logger.level", level)
	}
}

// setDefault only sets the value if the key doesn't already exist
func setDefault(k *koanf.Koanf, key string, value interface{}) {
	if !k.Exists(key) {
		k.Set(key, value)
	}
}
