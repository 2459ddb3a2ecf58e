package client

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/robokit/simlink/lib/mat"
	"github.com/robokit/simlink/rpc/common"
	"github.com/robokit/simlink/rpc/transport"
	"github.com/robokit/simlink/rpc/wire"
)

var Logger = logger.GetLogger("client")

var (
	metricCalls        = metrics.NewCounter("simlink_client_calls_total")
	metricRemoteErrors = metrics.NewCounter("simlink_client_remote_errors_total")
	metricConnLost     = metrics.NewCounter("simlink_client_connections_lost_total")
)

// Client is a connection to one running simulator instance. A client owns a
// single socket and serializes command frames over it; methods are safe for
// concurrent use, with one command in flight at a time.
//
// The connection is established lazily on the first command, honoring the
// configured auto-launch policy.
type Client struct {
	cfg common.ClientConfig

	mu          sync.Mutex
	conn        transport.Conn
	pid         int
	lastWarning string
}

// New creates a client for the given endpoint. No connection is made until
// the first command or an explicit Connect.
func New(cfg common.ClientConfig) *Client {
	return &Client{cfg: cfg}
}

// Config returns the configuration the client was created with.
func (c *Client) Config() common.ClientConfig { return c.cfg }

// Connect establishes the connection now instead of on first use.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ensureConn()
}

// Connected reports whether a live connection is currently held. It does not
// probe the socket.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// ProcessID returns the pid of the simulator process. When this client
// launched the process the recorded pid is returned directly; otherwise the
// station is asked for its main process id.
func (c *Client) ProcessID() (int, error) {
	c.mu.Lock()
	pid := c.pid
	c.mu.Unlock()
	if pid != 0 {
		return pid, nil
	}
	answer, err := c.Command("MainProcess_ID", "")
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(answer))
}

// LastWarning returns the message of the most recent warning status, or ""
// if the last command completed without one.
func (c *Client) LastWarning() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastWarning
}

// Close releases the connection. The client can be reused; the next command
// reconnects.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) ensureConn() error {
	if c.conn != nil {
		return nil
	}
	if c.cfg.AutoLaunch {
		conn, pid, err := transport.ConnectOrLaunch(c.cfg)
		if err != nil {
			return err
		}
		c.conn = conn
		if pid != 0 {
			c.pid = pid
		}
		return nil
	}
	conn, err := transport.Connect(c.cfg)
	if err != nil {
		return err
	}
	c.conn = conn
	return nil
}

// --------------------------------------------------------------------------
// Command invoker
// --------------------------------------------------------------------------

// call is the state of one command frame. Its read and write helpers are
// sticky: after the first failure every subsequent helper is a no-op, so a
// frame can be written linearly and checked once at the end.
type call struct {
	stream  wire.Stream
	err     error
	warning string
	status  common.StatusCode
}

// command runs one frame: keyword line, then body writes the arguments and
// reads the results, then the trailing status is decoded. timeout overrides
// the configured default for this frame only; pass 0 to keep the default.
//
// Status codes other than success and warning surface as a RemoteError. Any
// transport failure closes the connection so the next command starts fresh.
func (c *Client) command(keyword string, timeout time.Duration, body func(cl *call)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	metricCalls.Inc()

	if err := c.ensureConn(); err != nil {
		return err
	}
	if timeout <= 0 {
		timeout = c.cfg.EffectiveTimeout()
	}
	cl := &call{stream: wire.Stream{Conn: c.conn, Timeout: timeout}}
	cl.sendLine(keyword)
	if body != nil {
		body(cl)
	}
	cl.readStatus()

	switch {
	case cl.err == nil:
		c.lastWarning = cl.warning
		if cl.warning != "" {
			Logger.Warningf("%s: %s", keyword, cl.warning)
		}
		return nil
	case common.IsRemoteError(cl.err):
		// the frame completed, only the command itself failed
		metricRemoteErrors.Inc()
		c.lastWarning = ""
		return fmt.Errorf("%s: %w", keyword, cl.err)
	default:
		// the stream state is unknown, drop the connection
		metricConnLost.Inc()
		Logger.Errorf("%s: connection lost: %v", keyword, cl.err)
		c.lastWarning = ""
		c.conn.Close()
		c.conn = nil
		return fmt.Errorf("%s: %w", keyword, cl.err)
	}
}

// readStatus consumes one status code plus its optional message line. It is
// called once by command for the trailing status; commands that deliver an
// intermediate status (WaitMove) call it from their body as well.
func (cl *call) readStatus() {
	if cl.err != nil {
		return
	}
	code, err := cl.stream.RecvInt()
	if err != nil {
		cl.err = err
		return
	}
	cl.status = common.StatusCode(code)
	switch cl.status {
	case common.StatusOK:
	case common.StatusWarning:
		msg, err := cl.stream.RecvLine()
		if err != nil {
			cl.err = err
			return
		}
		cl.warning = msg
	case common.StatusError:
		msg, err := cl.stream.RecvLine()
		if err != nil {
			cl.err = err
			return
		}
		cl.err = &common.RemoteError{Code: cl.status, Message: msg}
	case common.StatusInvalidHandle, common.StatusLicense:
		cl.err = &common.RemoteError{Code: cl.status}
	default:
		cl.err = fmt.Errorf("%w: unexpected status code %d", common.ErrProtocol, code)
	}
}

// setTimeout rebinds the deadline for the remaining reads of this frame.
func (cl *call) setTimeout(d time.Duration) {
	cl.stream.Timeout = d
}

// ---- sticky write helpers ----

func (cl *call) sendLine(text string) {
	if cl.err == nil {
		cl.err = cl.stream.SendLine(text)
	}
}

func (cl *call) sendInt(v int32) {
	if cl.err == nil {
		cl.err = cl.stream.SendInt(v)
	}
}

func (cl *call) sendArray(values []float64) {
	if cl.err == nil {
		cl.err = cl.stream.SendArray(values)
	}
}

func (cl *call) sendJoints(j mat.Joints) {
	if cl.err == nil {
		cl.err = cl.stream.SendJoints(j)
	}
}

func (cl *call) sendPose(p mat.Pose) {
	if cl.err == nil {
		cl.err = cl.stream.SendPose(p)
	}
}

func (cl *call) sendPoseAsArray(p *mat.Pose) {
	if cl.err == nil {
		cl.err = cl.stream.SendPoseAsArray(p)
	}
}

func (cl *call) sendXYZ(v [3]float64) {
	if cl.err == nil {
		cl.err = cl.stream.SendXYZ(v)
	}
}

func (cl *call) sendHandle(h common.Handle) {
	if cl.err == nil {
		cl.err = cl.stream.SendHandle(h)
	}
}

func (cl *call) sendMatrix(m *mat.Matrix) {
	if cl.err == nil {
		cl.err = cl.stream.SendMatrix(m)
	}
}

// ---- sticky read helpers ----

func (cl *call) recvLine() string {
	if cl.err != nil {
		return ""
	}
	v, err := cl.stream.RecvLine()
	cl.err = err
	return v
}

func (cl *call) recvInt() int32 {
	if cl.err != nil {
		return 0
	}
	v, err := cl.stream.RecvInt()
	cl.err = err
	return v
}

func (cl *call) recvArray() []float64 {
	if cl.err != nil {
		return nil
	}
	v, err := cl.stream.RecvArray()
	cl.err = err
	return v
}

func (cl *call) recvJoints() mat.Joints {
	if cl.err != nil {
		return nil
	}
	v, err := cl.stream.RecvJoints()
	cl.err = err
	return v
}

func (cl *call) recvPose() mat.Pose {
	if cl.err != nil {
		return mat.Pose{}
	}
	v, err := cl.stream.RecvPose()
	cl.err = err
	return v
}

func (cl *call) recvXYZ() [3]float64 {
	if cl.err != nil {
		return [3]float64{}
	}
	v, err := cl.stream.RecvXYZ()
	cl.err = err
	return v
}

func (cl *call) recvHandle() common.Handle {
	if cl.err != nil {
		return common.NilHandle
	}
	v, err := cl.stream.RecvHandle()
	cl.err = err
	return v
}

func (cl *call) recvMatrix() *mat.Matrix {
	if cl.err != nil {
		return nil
	}
	v, err := cl.stream.RecvMatrix()
	cl.err = err
	return v
}
