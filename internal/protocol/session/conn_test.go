package session

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/danmuck/hyperionctl/internal/protocol"
	"github.com/danmuck/hyperionctl/internal/protocol/frame"
	"github.com/danmuck/hyperionctl/internal/protocol/message"
	"github.com/danmuck/hyperionctl/internal/testutil/fakehyperion"
	"github.com/danmuck/hyperionctl/internal/testutil/testlog"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ConnectTimeout = 500 * time.Millisecond
	cfg.ReadTimeout = 500 * time.Millisecond
	cfg.WriteTimeout = 500 * time.Millisecond
	return cfg
}

func mustEncode(t *testing.T, req message.Request) []byte {
	t.Helper()
	payload, err := message.Encode(req)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return payload
}

func TestSendRequestBeforeConnect(t *testing.T) {
	log := testlog.Start(t)
	c := NewConn(testConfig(), log)
	if c.State() != StateDisconnected {
		t.Fatalf("unexpected initial state: %s", c.State())
	}
	_, err := c.SendRequest(context.Background(), mustEncode(t, message.Clear{Priority: 1}))
	if !errors.Is(err, ErrNotConnected) || !errors.Is(err, protocol.ErrTransport) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestConnectFailureIsConnectionError(t *testing.T) {
	log := testlog.Start(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()

	c := NewConn(testConfig(), log)
	err = c.Connect(context.Background(), "127.0.0.1", uint16(port), 200*time.Millisecond)
	if !errors.Is(err, protocol.ErrConnection) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
	if c.State() != StateDisconnected {
		t.Fatalf("expected disconnected, got %s", c.State())
	}
	if err := c.Connect(context.Background(), " ", 19400, 0); !errors.Is(err, ErrAddressMissing) {
		t.Fatalf("expected ErrAddressMissing, got %v", err)
	}
}

func TestSendRequestRoundTrip(t *testing.T) {
	log := testlog.Start(t)
	srv := fakehyperion.Start(t, nil)
	c := NewConn(testConfig(), log)
	defer c.Close()

	if err := c.Connect(context.Background(), srv.Host(), srv.Port(), 0); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if c.State() != StateConnected {
		t.Fatalf("expected connected, got %s", c.State())
	}
	if c.SessionID() == "" {
		t.Fatalf("expected session id")
	}
	if c.RemoteAddr() != net.JoinHostPort(srv.Host(), strconv.Itoa(int(srv.Port()))) {
		t.Fatalf("unexpected remote addr: %s", c.RemoteAddr())
	}

	reply, err := c.SendRequest(context.Background(), mustEncode(t, message.Register{Origin: "Kodi", Priority: 150}))
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if reply.Rejected() {
		t.Fatalf("unexpected rejection: %s", reply)
	}
	if reply.Registered == nil || *reply.Registered != 150 {
		t.Fatalf("unexpected registered: %s", reply)
	}
	reqs := srv.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected one request, got %d", len(reqs))
	}
	if reg, ok := reqs[0].(message.Register); !ok || reg.Origin != "Kodi" {
		t.Fatalf("unexpected request: %#v", reqs[0])
	}
}

// serveOnce accepts one connection, reads one frame and hands the
// connection to respond.
func serveOnce(t *testing.T, respond func(net.Conn)) (string, uint16, <-chan struct{}) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer ln.Close()
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		if _, err := frame.ReadFrame(conn, frame.DefaultLimits()); err != nil {
			return
		}
		respond(conn)
	}()
	addr := ln.Addr().(*net.TCPAddr)
	return addr.IP.String(), uint16(addr.Port), done
}

func TestSendRequestTruncatedReplyDropsConnection(t *testing.T) {
	log := testlog.Start(t)
	host, port, done := serveOnce(t, func(conn net.Conn) {
		_, _ = conn.Write([]byte{0, 0, 0, 10, 0x01, 0x02})
	})
	c := NewConn(testConfig(), log)
	if err := c.Connect(context.Background(), host, port, 0); err != nil {
		t.Fatalf("connect: %v", err)
	}

	_, err := c.SendRequest(context.Background(), mustEncode(t, message.Clear{Priority: 1}))
	if !errors.Is(err, protocol.ErrTransport) || !errors.Is(err, frame.ErrTruncatedPayload) {
		t.Fatalf("expected truncated transport error, got %v", err)
	}
	if c.State() != StateDisconnected {
		t.Fatalf("expected disconnected, got %s", c.State())
	}
	if _, err := c.SendRequest(context.Background(), mustEncode(t, message.Clear{Priority: 1})); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected after drop, got %v", err)
	}
	<-done
}

func TestSendRequestMalformedReplyKeepsConnection(t *testing.T) {
	log := testlog.Start(t)
	host, port, done := serveOnce(t, func(conn net.Conn) {
		_ = frame.WriteFrame(conn, []byte{0x01, 0x02}, frame.DefaultLimits())
		_, _ = frame.ReadFrame(conn, frame.DefaultLimits())
	})
	c := NewConn(testConfig(), log)
	defer c.Close()
	if err := c.Connect(context.Background(), host, port, 0); err != nil {
		t.Fatalf("connect: %v", err)
	}

	_, err := c.SendRequest(context.Background(), mustEncode(t, message.Clear{Priority: 1}))
	if !errors.Is(err, protocol.ErrProtocol) {
		t.Fatalf("expected ErrProtocol, got %v", err)
	}
	if errors.Is(err, protocol.ErrTransport) {
		t.Fatalf("protocol error must not be a transport error: %v", err)
	}
	if c.State() != StateConnected {
		t.Fatalf("expected connection kept, got %s", c.State())
	}
	c.Close()
	<-done
}

func TestSendRequestReadTimeoutIsTransportError(t *testing.T) {
	log := testlog.Start(t)
	release := make(chan struct{})
	host, port, done := serveOnce(t, func(conn net.Conn) {
		<-release
	})
	cfg := testConfig()
	cfg.ReadTimeout = 50 * time.Millisecond
	c := NewConn(cfg, log)
	if err := c.Connect(context.Background(), host, port, 0); err != nil {
		t.Fatalf("connect: %v", err)
	}

	_, err := c.SendRequest(context.Background(), mustEncode(t, message.NewColor(1, 2, 3, -1)))
	if !errors.Is(err, protocol.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	var netErr net.Error
	if !errors.As(err, &netErr) || !netErr.Timeout() {
		t.Fatalf("expected timeout cause, got %v", err)
	}
	if c.State() != StateDisconnected {
		t.Fatalf("expected disconnected, got %s", c.State())
	}
	close(release)
	<-done
}

func TestCloseUnblocksInFlightRequest(t *testing.T) {
	log := testlog.Start(t)
	release := make(chan struct{})
	host, port, done := serveOnce(t, func(conn net.Conn) {
		<-release
	})
	cfg := testConfig()
	cfg.ReadTimeout = 10 * time.Second
	c := NewConn(cfg, log)
	if err := c.Connect(context.Background(), host, port, 0); err != nil {
		t.Fatalf("connect: %v", err)
	}

	payload := mustEncode(t, message.Clear{Priority: 5})
	errCh := make(chan error, 1)
	go func() {
		_, err := c.SendRequest(context.Background(), payload)
		errCh <- err
	}()
	time.Sleep(50 * time.Millisecond)
	c.Close()
	c.Close()

	select {
	case err := <-errCh:
		if !errors.Is(err, protocol.ErrTransport) {
			t.Fatalf("expected ErrTransport, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("close did not unblock request")
	}
	if c.State() != StateDisconnected {
		t.Fatalf("expected disconnected, got %s", c.State())
	}
	close(release)
	<-done
}

func TestConcurrentSendRequestsDoNotInterleave(t *testing.T) {
	log := testlog.Start(t)
	srv := fakehyperion.Start(t, nil)
	c := NewConn(testConfig(), log)
	defer c.Close()
	if err := c.Connect(context.Background(), srv.Host(), srv.Port(), 0); err != nil {
		t.Fatalf("connect: %v", err)
	}

	const senders = 8
	payloads := make([][]byte, senders)
	for i := range payloads {
		pixels := bytes.Repeat([]byte{byte(i + 1)}, 128*128*3)
		payloads[i] = mustEncode(t, message.Image{
			Data:     message.RawImage{Data: pixels, Width: 128, Height: 128},
			Duration: int32(i),
		})
	}

	var wg sync.WaitGroup
	errs := make(chan error, senders)
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(p []byte) {
			defer wg.Done()
			if _, err := c.SendRequest(context.Background(), p); err != nil {
				errs <- err
			}
		}(payloads[i])
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("send: %v", err)
	}

	frames := srv.Frames()
	if len(frames) != senders {
		t.Fatalf("expected %d frames, got %d", senders, len(frames))
	}
	seen := make(map[int]bool)
	for _, f := range frames {
		match := -1
		for i, p := range payloads {
			if bytes.Equal(f, p) {
				match = i
				break
			}
		}
		if match < 0 {
			t.Fatalf("server received an interleaved or corrupt frame")
		}
		if seen[match] {
			t.Fatalf("payload %d received twice", match)
		}
		seen[match] = true
	}
}

func TestSequentialRequestsArriveInOrder(t *testing.T) {
	log := testlog.Start(t)
	srv := fakehyperion.Start(t, nil)
	c := NewConn(testConfig(), log)
	defer c.Close()
	if err := c.Connect(context.Background(), srv.Host(), srv.Port(), 0); err != nil {
		t.Fatalf("connect: %v", err)
	}
	first := mustEncode(t, message.Register{Origin: "a", Priority: 10})
	second := mustEncode(t, message.Clear{Priority: 10})
	for _, p := range [][]byte{first, second} {
		if _, err := c.SendRequest(context.Background(), p); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	frames := srv.Frames()
	if len(frames) != 2 || !bytes.Equal(frames[0], first) || !bytes.Equal(frames[1], second) {
		t.Fatalf("frames out of order or malformed: %d", len(frames))
	}
}

func TestReconnectStartsNewSession(t *testing.T) {
	log := testlog.Start(t)
	srv := fakehyperion.Start(t, nil)
	c := NewConn(testConfig(), log)
	defer c.Close()

	if err := c.Connect(context.Background(), srv.Host(), srv.Port(), 0); err != nil {
		t.Fatalf("connect: %v", err)
	}
	firstSession, firstEpoch := c.SessionID(), c.Epoch()
	if err := c.Connect(context.Background(), srv.Host(), srv.Port(), 0); err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	if c.SessionID() == firstSession {
		t.Fatalf("expected a new session id")
	}
	if c.Epoch() != firstEpoch+1 {
		t.Fatalf("unexpected epoch: %d", c.Epoch())
	}
	if _, err := c.SendRequest(context.Background(), mustEncode(t, message.Clear{Priority: 1})); err != nil {
		t.Fatalf("send after reconnect: %v", err)
	}
	if srv.Accepted() != 2 {
		t.Fatalf("expected two accepted connections, got %d", srv.Accepted())
	}
}

func TestServerDropSurfacesTransportError(t *testing.T) {
	log := testlog.Start(t)
	srv := fakehyperion.Start(t, nil)
	c := NewConn(testConfig(), log)
	defer c.Close()
	if err := c.Connect(context.Background(), srv.Host(), srv.Port(), 0); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := c.SendRequest(context.Background(), mustEncode(t, message.Clear{Priority: 1})); err != nil {
		t.Fatalf("send: %v", err)
	}
	srv.DropConnections()

	var err error
	for i := 0; i < 3 && err == nil; i++ {
		_, err = c.SendRequest(context.Background(), mustEncode(t, message.Clear{Priority: 1}))
	}
	if !errors.Is(err, protocol.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if c.State() != StateDisconnected {
		t.Fatalf("expected disconnected, got %s", c.State())
	}
}
