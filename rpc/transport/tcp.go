package transport

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/robokit/simlink/rpc/common"
)

var Logger = logger.GetLogger("transport")

// Handshake tokens of the wire protocol. The client identifies itself with
// the start marker and its protocol version; the server must answer with a
// line beginning with the ready marker before any command may be issued.
const (
	startMarker  = "CMD_START"
	protoVersion = "1 0"
	readyMarker  = "READY"
)

var (
	connectsTotal     = metrics.NewCounter("simlink_connects_total")
	handshakeFailures = metrics.NewCounter("simlink_handshake_failures_total")
	bytesRead         = metrics.NewCounter("simlink_bytes_read_total")
	bytesWritten      = metrics.NewCounter("simlink_bytes_written_total")
)

// sockConn implements Conn on top of a TCP socket with a buffered reader.
type sockConn struct {
	conn   net.Conn
	reader *bufio.Reader

	closeOnce sync.Once
	closeErr  error
}

// NewConn wraps an established net.Conn in the transport's Conn interface.
// Used directly by tests and the embedded protocol server; clients normally
// go through Connect.
func NewConn(c net.Conn) Conn {
	return &sockConn{
		conn:   c,
		reader: bufio.NewReader(c),
	}
}

// Connect opens the byte stream to the configured endpoint and performs the
// startup handshake. On any failure the socket is closed before returning,
// so no partially-open state is left behind.
func Connect(cfg common.ClientConfig) (Conn, error) {
	timeout := cfg.EffectiveTimeout()

	raw, err := net.DialTimeout("tcp", cfg.Endpoint(), timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", common.ErrNotConnected, cfg.Endpoint(), err)
	}
	c := NewConn(raw)

	if err := c.WriteLine(startMarker); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.WriteLine(protoVersion); err != nil {
		c.Close()
		return nil, err
	}

	reply, err := c.ReadLine(timeout)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("%w: no handshake reply: %v", common.ErrHandshake, err)
	}
	if !strings.HasPrefix(reply, readyMarker) {
		c.Close()
		handshakeFailures.Inc()
		return nil, fmt.Errorf("%w: got %q", common.ErrHandshake, reply)
	}

	connectsTotal.Inc()
	Logger.Infof("connected to %s", cfg.Endpoint())
	return c, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see interface.go)
// --------------------------------------------------------------------------

func (c *sockConn) ReadLine(timeout time.Duration) (string, error) {
	if err := c.conn.SetReadDeadline(deadline(timeout)); err != nil {
		return "", err
	}
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return "", readErr(err)
	}
	bytesRead.Add(len(line))
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *sockConn) WriteLine(s string) error {
	return c.WriteBytes(append([]byte(s), '\n'))
}

func (c *sockConn) ReadBytes(buf []byte, timeout time.Duration) error {
	if err := c.conn.SetReadDeadline(deadline(timeout)); err != nil {
		return err
	}
	if _, err := io.ReadFull(c.reader, buf); err != nil {
		return readErr(err)
	}
	bytesRead.Add(len(buf))
	return nil
}

func (c *sockConn) WriteBytes(b []byte) error {
	if _, err := c.conn.Write(b); err != nil {
		return fmt.Errorf("%w: write: %v", common.ErrNotConnected, err)
	}
	bytesWritten.Add(len(b))
	return nil
}

func (c *sockConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

func (c *sockConn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

// deadline converts a timeout into an absolute deadline; zero or negative
// means no bound.
func deadline(timeout time.Duration) time.Time {
	if timeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(timeout)
}

// readErr classifies a socket read failure into the error taxonomy.
func readErr(err error) error {
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return fmt.Errorf("%w: %v", common.ErrTimeout, err)
	}
	return fmt.Errorf("%w: read: %v", common.ErrNotConnected, err)
}
