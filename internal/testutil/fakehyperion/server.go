// Package fakehyperion runs an in-process lighting server for tests. It
// speaks the real framing and flatbuffer schema and records every request.
package fakehyperion

import (
	"bytes"
	"errors"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/danmuck/hyperionctl/internal/protocol/frame"
	"github.com/danmuck/hyperionctl/internal/protocol/hyperionnet"
	"github.com/danmuck/hyperionctl/internal/protocol/message"
)

// Handler builds the reply for one decoded request.
type Handler func(req message.Request) message.Reply

// DefaultHandler confirms registrations with the registered priority and
// accepts everything else with an empty reply.
func DefaultHandler(req message.Request) message.Reply {
	if reg, ok := req.(message.Register); ok {
		prio := reg.Priority
		return message.Reply{Registered: &prio}
	}
	return message.Reply{}
}

// RejectCommand answers every request of command cmd with reason and
// delegates the rest to next.
func RejectCommand(cmd hyperionnet.Command, reason string, next Handler) Handler {
	return func(req message.Request) message.Reply {
		if req.Command() != cmd {
			return next(req)
		}
		msg := reason
		return message.Reply{Error: &msg}
	}
}

type Server struct {
	t       testing.TB
	ln      net.Listener
	handler Handler

	mu       sync.Mutex
	requests []message.Request
	frames   [][]byte
	conns    map[net.Conn]struct{}
	accepted int
	closed   bool
	wg       sync.WaitGroup
}

// Start listens on a loopback port and serves until the test ends.
func Start(t testing.TB, handler Handler) *Server {
	t.Helper()
	if handler == nil {
		handler = DefaultHandler
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("fakehyperion listen: %v", err)
	}
	s := &Server{
		t:       t,
		ln:      ln,
		handler: handler,
		conns:   make(map[net.Conn]struct{}),
	}
	s.wg.Add(1)
	go s.acceptLoop()
	t.Cleanup(s.Close)
	return s
}

func (s *Server) Host() string {
	host, _, _ := net.SplitHostPort(s.ln.Addr().String())
	return host
}

func (s *Server) Port() uint16 {
	_, port, _ := net.SplitHostPort(s.ln.Addr().String())
	n, _ := strconv.Atoi(port)
	return uint16(n)
}

// Requests returns decoded requests in arrival order.
func (s *Server) Requests() []message.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]message.Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Frames returns the raw unframed payloads in arrival order.
func (s *Server) Frames() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.frames))
	for i, f := range s.frames {
		out[i] = bytes.Clone(f)
	}
	return out
}

// Accepted is the number of connections accepted so far.
func (s *Server) Accepted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accepted
}

// WaitRequests polls until at least n requests arrived or timeout passes.
func (s *Server) WaitRequests(n int, timeout time.Duration) []message.Request {
	deadline := time.Now().Add(timeout)
	for {
		reqs := s.Requests()
		if len(reqs) >= n || time.Now().After(deadline) {
			return reqs
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// DropConnections closes every open client connection.
func (s *Server) DropConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		_ = conn.Close()
	}
}

func (s *Server) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	_ = s.ln.Close()
	s.DropConnections()
	s.wg.Wait()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				s.t.Logf("fakehyperion accept: %v", err)
			}
			return
		}
		if !s.track(conn) {
			continue
		}
		go s.serve(conn)
	}
}

// track registers conn for serving. A connection accepted after Close is
// closed immediately.
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		_ = conn.Close()
		return false
	}
	s.conns[conn] = struct{}{}
	s.accepted++
	s.wg.Add(1)
	return true
}

func (s *Server) serve(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		_ = conn.Close()
	}()

	for {
		payload, err := frame.ReadFrame(conn, frame.DefaultLimits())
		if err != nil {
			return
		}
		var reply message.Reply
		req, err := message.DecodeRequest(payload)
		if err != nil {
			msg := "malformed request: " + err.Error()
			reply = message.Reply{Error: &msg}
		} else {
			reply = s.handler(req)
		}
		s.mu.Lock()
		s.frames = append(s.frames, payload)
		if req != nil {
			s.requests = append(s.requests, req)
		}
		s.mu.Unlock()

		if err := frame.WriteFrame(conn, message.EncodeReply(reply), frame.DefaultLimits()); err != nil {
			return
		}
	}
}
