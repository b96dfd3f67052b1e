// Package config loads hyperionctl settings from TOML. Keys missing from
// the file keep their defaults.
package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/hyperionctl/internal/hyperion"
	"github.com/danmuck/hyperionctl/internal/logging"
	"github.com/danmuck/hyperionctl/internal/protocol/session"
)

type Settings struct {
	Address        string
	Port           uint16
	Origin         string
	Priority       int32
	CaptureWidth   int
	CaptureHeight  int
	Framerate      int
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	Log            LogSettings
	Metrics        MetricsSettings
	Backoff        session.BackoffConfig
}

type LogSettings struct {
	Level  string
	Pretty bool
}

// MetricsSettings controls the status server started by long-running
// commands.
type MetricsSettings struct {
	Enabled     bool
	Addr        string
	CorsOrigins []string
	// Token guards /metrics when set.
	Token string
}

// fileSettings is the on-disk shape. Durations are strings like "2s".
type fileSettings struct {
	Address        string      `toml:"address"`
	Port           int64       `toml:"port"`
	Origin         string      `toml:"origin"`
	Priority       int64       `toml:"priority"`
	CaptureWidth   int         `toml:"capture_width"`
	CaptureHeight  int         `toml:"capture_height"`
	Framerate      int         `toml:"framerate"`
	ConnectTimeout string      `toml:"connect_timeout"`
	ReadTimeout    string      `toml:"read_timeout"`
	WriteTimeout   string      `toml:"write_timeout"`
	Log            fileLog     `toml:"log"`
	Metrics        fileMetrics `toml:"metrics"`
	Backoff        fileBackoff `toml:"backoff"`
}

type fileLog struct {
	Level  string `toml:"level"`
	Pretty bool   `toml:"pretty"`
}

type fileMetrics struct {
	Enabled     bool     `toml:"enabled"`
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins"`
	Token       string   `toml:"token"`
}

type fileBackoff struct {
	InitialDelay string  `toml:"initial_delay"`
	Multiplier   float64 `toml:"multiplier"`
	MaxDelay     string  `toml:"max_delay"`
	Jitter       bool    `toml:"jitter"`
}

func Default() Settings {
	sess := session.DefaultConfig()
	return Settings{
		Address:        "localhost",
		Port:           hyperion.DefaultPort,
		Origin:         hyperion.DefaultOrigin,
		Priority:       hyperion.DefaultPriority,
		CaptureWidth:   64,
		CaptureHeight:  36,
		Framerate:      15,
		ConnectTimeout: sess.ConnectTimeout,
		ReadTimeout:    sess.ReadTimeout,
		WriteTimeout:   sess.WriteTimeout,
		Log:            LogSettings{Level: "info", Pretty: true},
		Metrics:        MetricsSettings{Addr: "127.0.0.1:9465", CorsOrigins: []string{}},
		Backoff:        sess.Backoff,
	}
}

// Load reads path over Default and validates the result.
func Load(path string) (Settings, error) {
	cfg := Default()

	var raw fileSettings
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Settings{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Settings{}, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("address") {
		cfg.Address = strings.TrimSpace(raw.Address)
	}
	if meta.IsDefined("port") {
		if raw.Port < 1 || raw.Port > 65535 {
			return Settings{}, fmt.Errorf("config port out of range: %d", raw.Port)
		}
		cfg.Port = uint16(raw.Port)
	}
	if meta.IsDefined("origin") {
		cfg.Origin = strings.TrimSpace(raw.Origin)
	}
	if meta.IsDefined("priority") {
		if raw.Priority < MinPriority || raw.Priority > MaxPriority {
			return Settings{}, fmt.Errorf("config priority out of range: %d", raw.Priority)
		}
		cfg.Priority = int32(raw.Priority)
	}
	if meta.IsDefined("capture_width") {
		cfg.CaptureWidth = raw.CaptureWidth
	}
	if meta.IsDefined("capture_height") {
		cfg.CaptureHeight = raw.CaptureHeight
	}
	if meta.IsDefined("framerate") {
		cfg.Framerate = raw.Framerate
	}

	durations := []struct {
		key []string
		raw string
		dst *time.Duration
	}{
		{[]string{"connect_timeout"}, raw.ConnectTimeout, &cfg.ConnectTimeout},
		{[]string{"read_timeout"}, raw.ReadTimeout, &cfg.ReadTimeout},
		{[]string{"write_timeout"}, raw.WriteTimeout, &cfg.WriteTimeout},
		{[]string{"backoff", "initial_delay"}, raw.Backoff.InitialDelay, &cfg.Backoff.InitialDelay},
		{[]string{"backoff", "max_delay"}, raw.Backoff.MaxDelay, &cfg.Backoff.MaxDelay},
	}
	for _, d := range durations {
		if !meta.IsDefined(d.key...) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return Settings{}, fmt.Errorf("parse %s: %w", strings.Join(d.key, "."), err)
		}
		*d.dst = v
	}

	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.TrimSpace(raw.Log.Level)
	}
	if meta.IsDefined("log", "pretty") {
		cfg.Log.Pretty = raw.Log.Pretty
	}
	if meta.IsDefined("metrics", "enabled") {
		cfg.Metrics.Enabled = raw.Metrics.Enabled
	}
	if meta.IsDefined("metrics", "addr") {
		cfg.Metrics.Addr = strings.TrimSpace(raw.Metrics.Addr)
	}
	if meta.IsDefined("metrics", "cors_origins") {
		cfg.Metrics.CorsOrigins = normalizeOrigins(raw.Metrics.CorsOrigins)
	}
	if meta.IsDefined("metrics", "token") {
		cfg.Metrics.Token = strings.TrimSpace(raw.Metrics.Token)
	}
	if meta.IsDefined("backoff", "multiplier") {
		cfg.Backoff.Multiplier = raw.Backoff.Multiplier
	}
	if meta.IsDefined("backoff", "jitter") {
		cfg.Backoff.Jitter = raw.Backoff.Jitter
	}

	if err := cfg.Validate(); err != nil {
		return Settings{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		if origin = strings.TrimSpace(origin); origin != "" {
			out = append(out, origin)
		}
	}
	return out
}

// Priority bounds accepted from config files and flags.
const (
	MinPriority = -1
	MaxPriority = 255
)

func (s Settings) Validate() error {
	if strings.TrimSpace(s.Address) == "" {
		return fmt.Errorf("address is required")
	}
	if s.Port == 0 {
		return fmt.Errorf("port is required")
	}
	if strings.TrimSpace(s.Origin) == "" {
		return fmt.Errorf("origin is required")
	}
	if s.Priority < MinPriority || s.Priority > MaxPriority {
		return fmt.Errorf("priority must be within %d..%d, got %d", MinPriority, MaxPriority, s.Priority)
	}
	if s.CaptureWidth <= 0 || s.CaptureHeight <= 0 {
		return fmt.Errorf("capture size must be positive, got %dx%d", s.CaptureWidth, s.CaptureHeight)
	}
	if s.Framerate <= 0 {
		return fmt.Errorf("framerate must be positive, got %d", s.Framerate)
	}
	if s.ConnectTimeout <= 0 || s.ReadTimeout <= 0 || s.WriteTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if _, ok := logging.ParseLevel(s.Log.Level); !ok {
		return fmt.Errorf("unknown log level %q", s.Log.Level)
	}
	if s.Metrics.Enabled {
		if _, _, err := net.SplitHostPort(s.Metrics.Addr); err != nil {
			return fmt.Errorf("metrics addr: %w", err)
		}
	}
	if s.Backoff.InitialDelay <= 0 {
		return fmt.Errorf("backoff initial_delay must be positive")
	}
	if s.Backoff.Multiplier < 1 {
		return fmt.Errorf("backoff multiplier must be >= 1, got %v", s.Backoff.Multiplier)
	}
	return nil
}

func (s Settings) Session() session.Config {
	cfg := session.DefaultConfig()
	cfg.ConnectTimeout = s.ConnectTimeout
	cfg.ReadTimeout = s.ReadTimeout
	cfg.WriteTimeout = s.WriteTimeout
	cfg.Backoff = s.Backoff
	return cfg
}

func (s Settings) Client() hyperion.Config {
	return hyperion.Config{
		Origin:   s.Origin,
		Priority: s.Priority,
		Session:  s.Session(),
	}
}

// Logging maps the [log] section onto a runtime logging config.
func (s Settings) Logging() logging.Config {
	cfg := logging.DefaultConfig(logging.ProfileRuntime)
	if level, ok := logging.ParseLevel(s.Log.Level); ok {
		cfg.Level = level
	}
	cfg.JSON = !s.Log.Pretty
	return cfg
}
