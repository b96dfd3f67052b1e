package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/danmuck/hyperionctl/internal/observability"
	"github.com/danmuck/hyperionctl/internal/protocol"
	"github.com/danmuck/hyperionctl/internal/protocol/frame"
	"github.com/danmuck/hyperionctl/internal/protocol/message"
)

// State is the connection lifecycle state.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

var (
	ErrNotConnected   = fmt.Errorf("%w: session: not connected", protocol.ErrTransport)
	ErrAddressMissing = fmt.Errorf("%w: session: address required", protocol.ErrConnection)
)

// Conn owns one TCP connection to the lighting server. Exchanges are
// serialized, so at most one request is in flight. Close may be called
// concurrently with an exchange and unblocks it.
type Conn struct {
	cfg   Config
	log   zerolog.Logger
	state atomic.Int32
	epoch atomic.Uint64

	// xmu serializes Connect and SendRequest.
	xmu sync.Mutex

	mu      sync.Mutex
	conn    net.Conn
	addr    string
	session string
}

func NewConn(cfg Config, logger zerolog.Logger) *Conn {
	return &Conn{
		cfg: cfg.WithDefaults(),
		log: logger.With().Str("component", "session").Logger(),
	}
}

// Connect dials address:port once. A live connection is closed first.
// A timeout <= 0 uses Config.ConnectTimeout.
func (c *Conn) Connect(ctx context.Context, address string, port uint16, timeout time.Duration) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return ErrAddressMissing
	}
	if timeout <= 0 {
		timeout = c.cfg.ConnectTimeout
	}
	addr := net.JoinHostPort(address, strconv.Itoa(int(port)))

	c.xmu.Lock()
	defer c.xmu.Unlock()

	c.mu.Lock()
	c.closeLocked()
	c.state.Store(int32(StateConnecting))
	c.mu.Unlock()

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		c.state.Store(int32(StateDisconnected))
		observability.RecordConnect(false)
		c.log.Warn().Str("addr", addr).Err(err).Msg("connect failed")
		return fmt.Errorf("%w: dial %s: %w", protocol.ErrConnection, addr, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.addr = addr
	c.session = uuid.NewString()
	c.epoch.Add(1)
	c.state.Store(int32(StateConnected))
	session := c.session
	c.mu.Unlock()

	observability.RecordConnect(true)
	c.log.Info().Str("addr", addr).Str("session", session).Msg("connected")
	return nil
}

// SendRequest frames and writes payload, then reads and decodes one reply.
// I/O failures drop the connection and wrap protocol.ErrTransport; the
// request is not resent. A reply that does not parse wraps
// protocol.ErrProtocol and leaves the connection up.
func (c *Conn) SendRequest(ctx context.Context, payload []byte) (message.Reply, error) {
	c.xmu.Lock()
	defer c.xmu.Unlock()

	conn, session := c.current()
	if conn == nil {
		return message.Reply{}, ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return message.Reply{}, fmt.Errorf("session: %w", err)
	}

	if err := conn.SetWriteDeadline(deadline(ctx, c.cfg.WriteTimeout)); err != nil {
		return message.Reply{}, c.fail(conn, "write", err)
	}
	if err := frame.WriteFrame(conn, payload, c.cfg.Limits); err != nil {
		if errors.Is(err, frame.ErrPayloadTooLarge) {
			return message.Reply{}, err
		}
		return message.Reply{}, c.fail(conn, "write", err)
	}
	observability.RecordFrameBytes("tx", frame.HeaderLen+len(payload))

	if err := conn.SetReadDeadline(deadline(ctx, c.cfg.ReadTimeout)); err != nil {
		return message.Reply{}, c.fail(conn, "read", err)
	}
	raw, err := frame.ReadFrame(conn, c.cfg.Limits)
	if err != nil {
		return message.Reply{}, c.fail(conn, "read", err)
	}
	observability.RecordFrameBytes("rx", frame.HeaderLen+len(raw))

	reply, err := message.DecodeReply(raw)
	if err != nil {
		c.log.Warn().Str("session", session).Int("bytes", len(raw)).Err(err).Msg("malformed reply")
		return message.Reply{}, err
	}
	return reply, nil
}

// Close drops the connection. It is idempotent and never fails; close
// errors are only logged.
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Conn) State() State {
	return State(c.state.Load())
}

// Epoch increments on every successful Connect.
func (c *Conn) Epoch() uint64 {
	return c.epoch.Load()
}

// SessionID identifies the current connection in logs. Empty when
// disconnected.
func (c *Conn) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ""
	}
	return c.session
}

// RemoteAddr is the last dialed host:port.
func (c *Conn) RemoteAddr() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addr
}

func (c *Conn) current() (net.Conn, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn, c.session
}

// fail drops conn if it is still current and classifies err as transport.
func (c *Conn) fail(conn net.Conn, op string, err error) error {
	c.mu.Lock()
	if c.conn == conn {
		c.log.Warn().Str("addr", c.addr).Str("session", c.session).Str("op", op).Err(err).Msg("transport failure")
		c.closeLocked()
	}
	c.mu.Unlock()
	if errors.Is(err, protocol.ErrTransport) {
		return err
	}
	return fmt.Errorf("%w: session: %s: %w", protocol.ErrTransport, op, err)
}

func (c *Conn) closeLocked() {
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.log.Debug().Str("session", c.session).Err(err).Msg("close")
		}
		c.log.Info().Str("addr", c.addr).Str("session", c.session).Msg("disconnected")
		c.conn = nil
	}
	c.state.Store(int32(StateDisconnected))
}

func deadline(ctx context.Context, d time.Duration) time.Time {
	dl := time.Now().Add(d)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(dl) {
		dl = ctxDeadline
	}
	return dl
}
