package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

const templateHeader = `# hyperionctl settings. Keys left out keep their defaults.
# Durations use Go syntax, e.g. "250ms" or "2s".

`

// Template renders s in the on-disk format.
func Template(s Settings) (string, error) {
	raw := fileSettings{
		Address:        s.Address,
		Port:           int64(s.Port),
		Origin:         s.Origin,
		Priority:       int64(s.Priority),
		CaptureWidth:   s.CaptureWidth,
		CaptureHeight:  s.CaptureHeight,
		Framerate:      s.Framerate,
		ConnectTimeout: s.ConnectTimeout.String(),
		ReadTimeout:    s.ReadTimeout.String(),
		WriteTimeout:   s.WriteTimeout.String(),
		Log:            fileLog{Level: s.Log.Level, Pretty: s.Log.Pretty},
		Metrics: fileMetrics{
			Enabled:     s.Metrics.Enabled,
			Addr:        s.Metrics.Addr,
			CorsOrigins: s.Metrics.CorsOrigins,
			Token:       s.Metrics.Token,
		},
		Backoff: fileBackoff{
			InitialDelay: s.Backoff.InitialDelay.String(),
			Multiplier:   s.Backoff.Multiplier,
			MaxDelay:     s.Backoff.MaxDelay.String(),
			Jitter:       s.Backoff.Jitter,
		},
	}
	var buf bytes.Buffer
	buf.WriteString(templateHeader)
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(raw); err != nil {
		return "", fmt.Errorf("render config template: %w", err)
	}
	return buf.String(), nil
}

// WriteTemplate writes the default settings to path. An existing file is
// kept unless overwrite is set.
func WriteTemplate(path string, overwrite bool) error {
	template, err := Template(Default())
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}
