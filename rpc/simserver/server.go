package simserver

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/robokit/simlink/rpc/transport"
)

var Logger = logger.GetLogger("simserver")

// Handler processes one command frame: it reads the command's arguments from
// the session, writes the declared results and finishes with a status. A
// returned error tears the connection down (used for scripted misbehavior in
// tests); protocol-level failures should be reported with session.Fail
// instead.
type Handler func(ses *Session) error

// Server is a scriptable protocol peer. Handlers are registered per command
// keyword; commands without a handler are answered with an error status.
type Server struct {
	handlers *xsync.MapOf[string, Handler]

	mu sync.Mutex
	ln net.Listener
	wg sync.WaitGroup

	// ReadyLine is the handshake reply; it must begin with "READY".
	ReadyLine string
}

// New creates a server with no handlers registered.
func New() *Server {
	return &Server{
		handlers:  xsync.NewMapOf[string, Handler](),
		ReadyLine: "READY",
	}
}

// Handle registers (or replaces) the handler for a command keyword.
func (s *Server) Handle(cmd string, h Handler) {
	s.handlers.Store(cmd, h)
}

// Listen binds the listener and starts accepting connections in the
// background. Use addr "127.0.0.1:0" in tests and read the bound address
// back with Addr.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("simserver: listen %s: %v", addr, err)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	s.wg.Add(1)
	go s.acceptLoop(ln)
	Logger.Infof("listening on %s", ln.Addr())
	return nil
}

// Addr returns the bound listener address.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Port returns the bound TCP port.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return 0
	}
	return s.ln.Addr().(*net.TCPAddr).Port
}

// Close stops accepting and waits for connection goroutines to drain.
// Idempotent.
func (s *Server) Close() error {
	s.mu.Lock()
	ln := s.ln
	s.ln = nil
	s.mu.Unlock()
	if ln == nil {
		return nil
	}
	err := ln.Close()
	s.wg.Wait()
	return err
}

func (s *Server) acceptLoop(ln net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				Logger.Errorf("accept: %v", err)
			}
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(conn)
		}()
	}
}

// serveConn performs the handshake and then dispatches command frames until
// the peer disconnects or a handler fails.
func (s *Server) serveConn(raw net.Conn) {
	ses := newSession(transport.NewConn(raw))
	defer ses.Close()

	if err := ses.handshake(s.ReadyLine); err != nil {
		Logger.Warningf("handshake with %s failed: %v", raw.RemoteAddr(), err)
		return
	}

	for {
		cmd, err := ses.nextCommand()
		if err != nil {
			return // peer gone or idle stream closed
		}
		handler, ok := s.handlers.Load(cmd)
		if !ok {
			Logger.Warningf("no handler for command %q", cmd)
			if err := ses.Fail(fmt.Sprintf("unknown command: %s", cmd)); err != nil {
				return
			}
			continue
		}
		if err := handler(ses); err != nil {
			Logger.Errorf("handler %q: %v", cmd, err)
			return
		}
	}
}
