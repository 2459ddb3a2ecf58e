package wire

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/robokit/simlink/lib/mat"
	"github.com/robokit/simlink/rpc/common"
	"github.com/robokit/simlink/rpc/transport"
)

// maxArrayLen bounds the element count a double array may declare. Larger
// counts are treated as stream corruption rather than honored.
const maxArrayLen = 50

// matrixChunk is the number of doubles read per iteration when streaming a
// matrix payload.
const matrixChunk = 512

// Stream binds a connection to the effective timeout of one call. It is a
// value type: creating one allocates nothing and mutates nothing.
type Stream struct {
	Conn    transport.Conn
	Timeout time.Duration
}

// --------------------------------------------------------------------------
// Text lines
// --------------------------------------------------------------------------

// SendLine writes one linefeed-terminated text line.
func (s Stream) SendLine(text string) error {
	return s.Conn.WriteLine(text)
}

// RecvLine reads one text line, trimmed of its terminator.
func (s Stream) RecvLine() (string, error) {
	return s.Conn.ReadLine(s.Timeout)
}

// --------------------------------------------------------------------------
// Integers
// --------------------------------------------------------------------------

// SendInt writes a 4-byte big-endian signed integer.
func (s Stream) SendInt(v int32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	return s.Conn.WriteBytes(buf[:])
}

// RecvInt reads a 4-byte big-endian signed integer.
func (s Stream) RecvInt() (int32, error) {
	var buf [4]byte
	if err := s.Conn.ReadBytes(buf[:], s.Timeout); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(buf[:])), nil
}

// --------------------------------------------------------------------------
// Double arrays
// --------------------------------------------------------------------------

// SendArray writes a count-prefixed double array. A nil or empty slice is
// sent as the explicit "0 values" marker, never omitted.
func (s Stream) SendArray(values []float64) error {
	buf := make([]byte, 4+8*len(values))
	binary.BigEndian.PutUint32(buf[:4], uint32(len(values)))
	packDoubles(buf[4:], values)
	return s.Conn.WriteBytes(buf)
}

// RecvArray reads a count-prefixed double array, rejecting corrupt counts.
func (s Stream) RecvArray() ([]float64, error) {
	n, err := s.RecvInt()
	if err != nil {
		return nil, err
	}
	if n < 0 || n > maxArrayLen {
		return nil, fmt.Errorf("%w: array length %d out of range", common.ErrProtocol, n)
	}
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, 8*n)
	if err := s.Conn.ReadBytes(buf, s.Timeout); err != nil {
		return nil, err
	}
	values := make([]float64, n)
	unpackDoubles(values, buf)
	return values, nil
}

// SendJoints writes a joint vector as a count-prefixed array. A nil vector
// stands for "no joints" and is sent as count 0.
func (s Stream) SendJoints(j mat.Joints) error {
	return s.SendArray(j)
}

// RecvJoints reads a count-prefixed joint vector.
func (s Stream) RecvJoints() (mat.Joints, error) {
	values, err := s.RecvArray()
	return mat.Joints(values), err
}

// SendXYZ writes three doubles without a count prefix.
func (s Stream) SendXYZ(v [3]float64) error {
	var buf [24]byte
	packDoubles(buf[:], v[:])
	return s.Conn.WriteBytes(buf[:])
}

// RecvXYZ reads three doubles without a count prefix.
func (s Stream) RecvXYZ() ([3]float64, error) {
	var buf [24]byte
	var v [3]float64
	if err := s.Conn.ReadBytes(buf[:], s.Timeout); err != nil {
		return v, err
	}
	unpackDoubles(v[:], buf[:])
	return v, nil
}

// --------------------------------------------------------------------------
// Poses
// --------------------------------------------------------------------------

// SendPose writes exactly 16 doubles, column-major, no count prefix.
func (s Stream) SendPose(p mat.Pose) error {
	var buf [128]byte
	packDoubles(buf[:], p[:])
	return s.Conn.WriteBytes(buf[:])
}

// RecvPose reads exactly 16 doubles, column-major.
func (s Stream) RecvPose() (mat.Pose, error) {
	var buf [128]byte
	var p mat.Pose
	if err := s.Conn.ReadBytes(buf[:], s.Timeout); err != nil {
		return p, err
	}
	unpackDoubles(p[:], buf[:])
	return p, nil
}

// SendPoseAsArray writes a pose in count-prefixed array form (16 values).
// Some operations take an optional pose argument in this encoding so that a
// count of 0 can stand for "no pose".
func (s Stream) SendPoseAsArray(p *mat.Pose) error {
	if p == nil {
		return s.SendInt(0)
	}
	return s.SendArray(p[:])
}

// --------------------------------------------------------------------------
// Handles
// --------------------------------------------------------------------------

// SendHandle writes the 8-byte identifier. The type tag never travels
// outward; an invalid handle sends identifier 0.
func (s Stream) SendHandle(h common.Handle) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], h.ID)
	return s.Conn.WriteBytes(buf[:])
}

// RecvHandle reads the 8-byte identifier followed by the type-tag integer.
func (s Stream) RecvHandle() (common.Handle, error) {
	var buf [8]byte
	if err := s.Conn.ReadBytes(buf[:], s.Timeout); err != nil {
		return common.NilHandle, err
	}
	id := binary.BigEndian.Uint64(buf[:])
	typ, err := s.RecvInt()
	if err != nil {
		return common.NilHandle, err
	}
	return common.Handle{ID: id, Type: common.ItemType(typ)}, nil
}

// --------------------------------------------------------------------------
// Matrices
// --------------------------------------------------------------------------

// SendMatrix writes the two dimension integers followed by the column-major
// element payload.
func (s Stream) SendMatrix(m *mat.Matrix) error {
	if err := s.SendInt(int32(m.Rows())); err != nil {
		return err
	}
	if err := s.SendInt(int32(m.Cols())); err != nil {
		return err
	}
	data := m.Data()
	buf := make([]byte, 8*len(data))
	packDoubles(buf, data)
	return s.Conn.WriteBytes(buf)
}

// RecvMatrix reads the dimensions, allocates the matrix and then streams the
// element payload in chunks. The loop keeps reading until rows*cols values
// have been consumed; a single socket delivery never has to carry the whole
// payload.
func (s Stream) RecvMatrix() (*mat.Matrix, error) {
	rows, err := s.RecvInt()
	if err != nil {
		return nil, err
	}
	cols, err := s.RecvInt()
	if err != nil {
		return nil, err
	}
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("%w: matrix size %dx%d", common.ErrProtocol, rows, cols)
	}

	m := mat.NewMatrix(int(rows), int(cols))
	data := m.Data()
	buf := make([]byte, 8*matrixChunk)
	for read := 0; read < len(data); {
		n := len(data) - read
		if n > matrixChunk {
			n = matrixChunk
		}
		if err := s.Conn.ReadBytes(buf[:8*n], s.Timeout); err != nil {
			return nil, err
		}
		unpackDoubles(data[read:read+n], buf[:8*n])
		read += n
	}
	return m, nil
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

func packDoubles(buf []byte, values []float64) {
	for i, v := range values {
		binary.BigEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
}

func unpackDoubles(values []float64, buf []byte) {
	for i := range values {
		values[i] = math.Float64frombits(binary.BigEndian.Uint64(buf[8*i:]))
	}
}
