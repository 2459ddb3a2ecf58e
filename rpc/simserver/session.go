package simserver

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/robokit/simlink/lib/mat"
	"github.com/robokit/simlink/rpc/common"
	"github.com/robokit/simlink/rpc/transport"
	"github.com/robokit/simlink/rpc/wire"
)

// argTimeout bounds reads inside one command frame: once a client has sent a
// keyword, its arguments must follow promptly.
const argTimeout = 10 * time.Second

// Session is one accepted connection. Handlers use its typed primitives to
// consume the command's arguments and produce results plus the trailing
// status.
type Session struct {
	conn   transport.Conn
	stream wire.Stream
}

func newSession(conn transport.Conn) *Session {
	return &Session{
		conn:   conn,
		stream: wire.Stream{Conn: conn, Timeout: argTimeout},
	}
}

// Close releases the underlying connection. Idempotent.
func (s *Session) Close() error { return s.conn.Close() }

// handshake consumes the start marker and version line, then confirms with
// the ready line.
func (s *Session) handshake(readyLine string) error {
	start, err := s.conn.ReadLine(argTimeout)
	if err != nil {
		return err
	}
	if start != "CMD_START" {
		return fmt.Errorf("unexpected start marker %q", start)
	}
	if _, err := s.conn.ReadLine(argTimeout); err != nil { // protocol version
		return err
	}
	return s.conn.WriteLine(readyLine)
}

// nextCommand blocks without bound until the next command keyword line.
func (s *Session) nextCommand() (string, error) {
	line, err := s.conn.ReadLine(0)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// --------------------------------------------------------------------------
// Typed receive primitives (arguments)
// --------------------------------------------------------------------------

func (s *Session) RecvLine() (string, error)        { return s.stream.RecvLine() }
func (s *Session) RecvInt() (int32, error)          { return s.stream.RecvInt() }
func (s *Session) RecvArray() ([]float64, error)    { return s.stream.RecvArray() }
func (s *Session) RecvJoints() (mat.Joints, error)  { return s.stream.RecvJoints() }
func (s *Session) RecvPose() (mat.Pose, error)      { return s.stream.RecvPose() }
func (s *Session) RecvMatrix() (*mat.Matrix, error) { return s.stream.RecvMatrix() }
func (s *Session) RecvXYZ() ([3]float64, error)     { return s.stream.RecvXYZ() }

// RecvHandleID reads a handle argument. Clients send only the 8-byte
// identifier; the type tag is a client-side annotation.
func (s *Session) RecvHandleID() (uint64, error) {
	var buf [8]byte
	if err := s.conn.ReadBytes(buf[:], argTimeout); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// --------------------------------------------------------------------------
// Typed send primitives (results)
// --------------------------------------------------------------------------

func (s *Session) SendLine(text string) error       { return s.stream.SendLine(text) }
func (s *Session) SendInt(v int32) error            { return s.stream.SendInt(v) }
func (s *Session) SendArray(v []float64) error      { return s.stream.SendArray(v) }
func (s *Session) SendJoints(j mat.Joints) error    { return s.stream.SendJoints(j) }
func (s *Session) SendPose(p mat.Pose) error        { return s.stream.SendPose(p) }
func (s *Session) SendMatrix(m *mat.Matrix) error   { return s.stream.SendMatrix(m) }
func (s *Session) SendXYZ(v [3]float64) error       { return s.stream.SendXYZ(v) }

// SendHandle writes a handle result: identifier followed by the type tag.
func (s *Session) SendHandle(h common.Handle) error {
	if err := s.stream.SendHandle(h); err != nil {
		return err
	}
	return s.stream.SendInt(int32(h.Type))
}

// --------------------------------------------------------------------------
// Trailing status
// --------------------------------------------------------------------------

// Status writes a raw status code with no message line.
func (s *Session) Status(code common.StatusCode) error {
	return s.stream.SendInt(int32(code))
}

// OK terminates the frame successfully.
func (s *Session) OK() error { return s.Status(common.StatusOK) }

// Warn terminates the frame with a warning message; the results already
// written remain valid for the client.
func (s *Session) Warn(msg string) error {
	if err := s.Status(common.StatusWarning); err != nil {
		return err
	}
	return s.SendLine(msg)
}

// Fail terminates the frame with an error status and diagnostic message.
func (s *Session) Fail(msg string) error {
	if err := s.Status(common.StatusError); err != nil {
		return err
	}
	return s.SendLine(msg)
}

// FailInvalidHandle reports a stale or unknown handle argument.
func (s *Session) FailInvalidHandle() error {
	return s.Status(common.StatusInvalidHandle)
}
