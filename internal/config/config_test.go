package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/hyperionctl/internal/testutil/testlog"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hyperionctl.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, `
address = "ambilight.lan"
priority = 100
framerate = 30
read_timeout = "750ms"

[log]
level = "debug"

[metrics]
enabled = true
cors_origins = ["http://localhost:3000", " "]

[backoff]
initial_delay = "100ms"
max_delay = "3s"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	def := Default()
	if cfg.Address != "ambilight.lan" {
		t.Fatalf("unexpected address: %q", cfg.Address)
	}
	if cfg.Port != def.Port {
		t.Fatalf("port should keep default, got %d", cfg.Port)
	}
	if cfg.Origin != def.Origin {
		t.Fatalf("origin should keep default, got %q", cfg.Origin)
	}
	if cfg.Priority != 100 || cfg.Framerate != 30 {
		t.Fatalf("unexpected priority/framerate: %d/%d", cfg.Priority, cfg.Framerate)
	}
	if cfg.ReadTimeout != 750*time.Millisecond {
		t.Fatalf("unexpected read timeout: %v", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout != def.WriteTimeout {
		t.Fatalf("write timeout should keep default, got %v", cfg.WriteTimeout)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Pretty != def.Log.Pretty {
		t.Fatalf("unexpected log settings: %+v", cfg.Log)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Addr != def.Metrics.Addr {
		t.Fatalf("unexpected metrics settings: %+v", cfg.Metrics)
	}
	if len(cfg.Metrics.CorsOrigins) != 1 || cfg.Metrics.CorsOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected cors origins: %v", cfg.Metrics.CorsOrigins)
	}
	if cfg.Backoff.InitialDelay != 100*time.Millisecond || cfg.Backoff.MaxDelay != 3*time.Second {
		t.Fatalf("unexpected backoff: %+v", cfg.Backoff)
	}
	if cfg.Backoff.Multiplier != def.Backoff.Multiplier {
		t.Fatalf("multiplier should keep default, got %v", cfg.Backoff.Multiplier)
	}

	sess := cfg.Session()
	if sess.ReadTimeout != 750*time.Millisecond || sess.Backoff != cfg.Backoff {
		t.Fatalf("session config not derived from settings: %+v", sess)
	}
	client := cfg.Client()
	if client.Origin != def.Origin || client.Priority != 100 {
		t.Fatalf("unexpected client config: %+v", client)
	}
	if lc := cfg.Logging(); lc.Level != zerolog.DebugLevel || lc.JSON {
		t.Fatalf("unexpected logging config: %+v", lc)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name string
		body string
		want string
	}{
		{name: "bad duration", body: `connect_timeout = "soon"`, want: "connect_timeout"},
		{name: "port range", body: `port = 70000`, want: "port"},
		{name: "priority range", body: `priority = 900`, want: "priority"},
		{name: "blank origin", body: `origin = "  "`, want: "origin"},
		{name: "zero framerate", body: `framerate = 0`, want: "framerate"},
		{name: "unknown key", body: `adress = "typo"`, want: "adress"},
		{name: "bad level", body: "[log]\nlevel = \"loud\"", want: "log level"},
		{name: "syntax", body: `address = `, want: "config load failed"},
	}
	for _, tc := range cases {
		_, err := Load(writeConfig(t, tc.body))
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: expected %q in %v", tc.name, tc.want, err)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	testlog.Start(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestWriteTemplateRoundTrip(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "hyperionctl.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("template should load as defaults:\n got %+v\nwant %+v", cfg, Default())
	}

	if err := WriteTemplate(path, false); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
	if err := WriteTemplate(path, true); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestDefaultValidates(t *testing.T) {
	testlog.Start(t)
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	cfg := Default()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Addr = "no-port"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected metrics addr error")
	}
}

func TestValidatePriorityRange(t *testing.T) {
	testlog.Start(t)
	for _, prio := range []int32{MinPriority, 0, MaxPriority} {
		cfg := Default()
		cfg.Priority = prio
		if err := cfg.Validate(); err != nil {
			t.Fatalf("priority %d should validate: %v", prio, err)
		}
	}
	for _, prio := range []int32{-2, 256, 100000} {
		cfg := Default()
		cfg.Priority = prio
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "priority") {
			t.Fatalf("priority %d should be rejected, got %v", prio, err)
		}
	}
}
