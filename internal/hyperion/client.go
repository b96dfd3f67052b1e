// Package hyperion is the high-level client for a Hyperion flatbuffer
// server. It tracks per-connection registration and drives encoded
// requests through one session.Conn.
package hyperion

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/hyperionctl/internal/logging"
	"github.com/danmuck/hyperionctl/internal/observability"
	"github.com/danmuck/hyperionctl/internal/protocol"
	"github.com/danmuck/hyperionctl/internal/protocol/message"
	"github.com/danmuck/hyperionctl/internal/protocol/session"
)

const DefaultOrigin = "hyperionctl"

const (
	DefaultPriority int32  = 150
	DefaultPort     uint16 = 19400
)

var (
	ErrOriginRequired       = fmt.Errorf("%w: hyperion: origin required", protocol.ErrValidation)
	ErrRegistrationRejected = errors.New("hyperion: registration rejected")
)

// Config holds the origin and priority used for implicit registration.
type Config struct {
	Origin   string
	Priority int32
	Session  session.Config
	// Logger defaults to the global logger when nil.
	Logger *zerolog.Logger
}

func DefaultConfig() Config {
	return Config{
		Origin:   DefaultOrigin,
		Priority: DefaultPriority,
		Session:  session.DefaultConfig(),
	}
}

// Client is safe for concurrent use; calls are serialized. Status reads
// such as Registered and State never wait on an in-flight exchange.
type Client struct {
	cfg  Config
	conn *session.Conn
	log  zerolog.Logger

	mu         sync.Mutex
	registered atomic.Bool
}

func NewClient(cfg Config) (*Client, error) {
	cfg.Origin = strings.TrimSpace(cfg.Origin)
	if cfg.Origin == "" {
		return nil, ErrOriginRequired
	}
	cfg.Session = cfg.Session.WithDefaults()
	base := logging.Logger()
	if cfg.Logger != nil {
		base = *cfg.Logger
	}
	return &Client{
		cfg:  cfg,
		conn: session.NewConn(cfg.Session, base),
		log:  base.With().Str("component", "hyperion").Logger(),
	}, nil
}

// Connect (re)establishes the connection. Registration state always
// starts over, even when the dial fails.
func (c *Client) Connect(ctx context.Context, address string, port uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registered.Store(false)
	return c.conn.Connect(ctx, address, port, c.cfg.Session.ConnectTimeout)
}

// RegisterOrigin sends a Register request. The client counts as
// registered once the server accepts it.
func (c *Client) RegisterOrigin(ctx context.Context, name string, priority int32) (message.Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registerLocked(ctx, name, priority)
}

// SendImage sends packed RGB pixels. An unregistered client registers
// with the configured origin and priority first.
func (c *Client) SendImage(ctx context.Context, pixels []byte, width, height int, duration int32) (message.Reply, error) {
	if width <= 0 || height <= 0 || width > math.MaxInt32 || height > math.MaxInt32 {
		return message.Reply{}, fmt.Errorf("%w: image size %dx%d", protocol.ErrValidation, width, height)
	}
	img := message.Image{
		Data:     message.RawImage{Data: pixels, Width: int32(width), Height: int32(height)},
		Duration: duration,
	}
	payload, err := c.encode(img)
	if err != nil {
		return message.Reply{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.registered.Load() {
		reply, err := c.registerLocked(ctx, c.cfg.Origin, c.cfg.Priority)
		if err != nil {
			return reply, err
		}
		if reply.Rejected() {
			return reply, fmt.Errorf("%w: %s", ErrRegistrationRejected, *reply.Error)
		}
	}
	return c.exchange(ctx, img.Command().String(), payload)
}

func (c *Client) Clear(ctx context.Context, priority int32) (message.Reply, error) {
	return c.send(ctx, message.Clear{Priority: priority})
}

// ClearAll clears every priority on the server.
func (c *Client) ClearAll(ctx context.Context) (message.Reply, error) {
	return c.Clear(ctx, message.PriorityAll)
}

// SetColor sets a solid color packed as 0x00RRGGBB.
func (c *Client) SetColor(ctx context.Context, argb int32, duration int32) (message.Reply, error) {
	return c.send(ctx, message.Color{ARGB: argb, Duration: duration})
}

func (c *Client) Registered() bool {
	return c.registered.Load()
}

func (c *Client) State() session.State {
	return c.conn.State()
}

func (c *Client) SessionID() string {
	return c.conn.SessionID()
}

// Origin and Priority are the values used for implicit registration.
func (c *Client) Origin() string   { return c.cfg.Origin }
func (c *Client) Priority() int32 { return c.cfg.Priority }

// Close drops the connection. It never fails.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registered.Store(false)
	c.conn.Close()
}

func (c *Client) registerLocked(ctx context.Context, name string, priority int32) (message.Reply, error) {
	req := message.Register{Origin: name, Priority: priority}
	payload, err := c.encode(req)
	if err != nil {
		return message.Reply{}, err
	}
	reply, err := c.exchange(ctx, req.Command().String(), payload)
	if err != nil {
		return message.Reply{}, err
	}
	if !reply.Rejected() {
		c.registered.Store(true)
		c.log.Debug().Str("origin", name).Int32("priority", priority).Msg("registered")
	}
	return reply, nil
}

func (c *Client) send(ctx context.Context, req message.Request) (message.Reply, error) {
	payload, err := c.encode(req)
	if err != nil {
		return message.Reply{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exchange(ctx, req.Command().String(), payload)
}

func (c *Client) encode(req message.Request) ([]byte, error) {
	payload, err := message.Encode(req)
	if err != nil {
		observability.RecordRequest(req.Command().String(), observability.OutcomeValidation, 0)
		return nil, err
	}
	return payload, nil
}

func (c *Client) exchange(ctx context.Context, command string, payload []byte) (message.Reply, error) {
	start := time.Now()
	reply, err := c.conn.SendRequest(ctx, payload)
	outcome := outcomeOf(reply, err)
	observability.RecordRequest(command, outcome, time.Since(start))
	if err != nil {
		c.log.Warn().Str("command", command).Str("outcome", outcome).Err(err).Msg("request failed")
		return message.Reply{}, err
	}
	if reply.Rejected() {
		c.log.Warn().Str("command", command).Str("reason", *reply.Error).Msg("request rejected")
	}
	return reply, nil
}

func outcomeOf(reply message.Reply, err error) string {
	switch {
	case err == nil && reply.Rejected():
		return observability.OutcomeRejected
	case err == nil:
		return observability.OutcomeOK
	case errors.Is(err, session.ErrNotConnected):
		return observability.OutcomeNotConnected
	case errors.Is(err, protocol.ErrProtocol):
		return observability.OutcomeProtocol
	case errors.Is(err, protocol.ErrValidation):
		return observability.OutcomeValidation
	default:
		return observability.OutcomeTransport
	}
}
