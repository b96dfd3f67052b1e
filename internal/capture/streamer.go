package capture

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/danmuck/hyperionctl/internal/hyperion"
	"github.com/danmuck/hyperionctl/internal/logging"
	"github.com/danmuck/hyperionctl/internal/protocol"
	"github.com/danmuck/hyperionctl/internal/protocol/message"
	"github.com/danmuck/hyperionctl/internal/protocol/session"
)

// shutdownTimeout bounds the final Clear sent when streaming stops.
const shutdownTimeout = 2 * time.Second

// Client is the part of hyperion.Client the streamer drives.
type Client interface {
	Connect(ctx context.Context, address string, port uint16) error
	SendImage(ctx context.Context, pixels []byte, width, height int, duration int32) (message.Reply, error)
	Clear(ctx context.Context, priority int32) (message.Reply, error)
	State() session.State
	Close()
}

var _ Client = (*hyperion.Client)(nil)

// Stats counts streaming outcomes since Run started.
type Stats struct {
	Frames     uint64
	Rejected   uint64
	Failures   uint64
	Reconnects uint64
}

// Streamer sends one frame from Source per tick until its context ends.
type Streamer struct {
	Client    Client
	Source    Source
	Framerate int
	Backoff   session.BackoffConfig
	Address   string
	Port      uint16
	// Priority is cleared when streaming stops.
	Priority int32

	frames     atomic.Uint64
	rejected   atomic.Uint64
	failures   atomic.Uint64
	reconnects atomic.Uint64
}

func (s *Streamer) Stats() Stats {
	return Stats{
		Frames:     s.frames.Load(),
		Rejected:   s.rejected.Load(),
		Failures:   s.failures.Load(),
		Reconnects: s.reconnects.Load(),
	}
}

// Run streams until ctx is cancelled, which is not an error. Transport
// failures reconnect with backoff. Validation failures and a rejected
// registration stop the stream.
func (s *Streamer) Run(ctx context.Context) error {
	if s.Client == nil || s.Source == nil {
		return fmt.Errorf("%w: capture: streamer needs a client and a source", protocol.ErrValidation)
	}
	if s.Framerate <= 0 {
		return fmt.Errorf("%w: capture: framerate must be positive, got %d", protocol.ErrValidation, s.Framerate)
	}
	log := logging.Component("capture")
	backoff := session.NewBackoff(s.Backoff)
	interval := time.Second / time.Duration(s.Framerate)
	width, height := s.Source.Size()

	defer s.shutdown()

	log.Info().
		Str("addr", s.Address).
		Uint16("port", s.Port).
		Int("fps", s.Framerate).
		Dur("interval", interval).
		Int("width", width).
		Int("height", height).
		Msg("stream started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	connected := false
	for {
		if s.Client.State() != session.StateConnected {
			if err := s.connect(ctx, backoff); err != nil {
				return stopped(ctx, err)
			}
			if connected {
				s.reconnects.Add(1)
			}
			connected = true
		}

		pixels, err := s.Source.Frame(ctx)
		if err != nil {
			return stopped(ctx, fmt.Errorf("capture: frame: %w", err))
		}
		reply, err := s.Client.SendImage(ctx, pixels, width, height, message.DurationInfinite)
		switch {
		case err == nil && reply.Rejected():
			s.rejected.Add(1)
			log.Warn().Str("reason", *reply.Error).Msg("frame rejected")
		case err == nil:
			s.frames.Add(1)
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, protocol.ErrValidation), errors.Is(err, hyperion.ErrRegistrationRejected):
			log.Error().Err(err).Msg("stream stopped")
			return err
		default:
			s.failures.Add(1)
			log.Warn().Err(err).Msg("frame failed")
		}

		select {
		case <-ctx.Done():
			log.Info().Uint64("frames", s.frames.Load()).Msg("stream stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (s *Streamer) connect(ctx context.Context, backoff *session.Backoff) error {
	log := logging.Component("capture")
	for {
		err := s.Client.Connect(ctx, s.Address, s.Port)
		if err == nil {
			backoff.Reset()
			return nil
		}
		if errors.Is(err, session.ErrAddressMissing) {
			return err
		}
		log.Warn().Err(err).Int("attempt", backoff.Attempts()+1).Msg("connect failed, retrying")
		if err := backoff.Wait(ctx); err != nil {
			return err
		}
	}
}

// shutdown releases the priority so the server falls back to the next
// source, then closes the connection.
func (s *Streamer) shutdown() {
	defer s.Client.Close()
	if s.Client.State() != session.StateConnected {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if _, err := s.Client.Clear(ctx, s.Priority); err != nil {
		logger := logging.Component("capture")
		logger.Debug().Err(err).Int32("priority", s.Priority).Msg("clear on shutdown")
	}
}

func stopped(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	return err
}
