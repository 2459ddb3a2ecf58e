package mat

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxJoints is the maximum number of axes a joint vector can carry. It bounds
// mechanisms with external axes (robot + turntable + rail).
const MaxJoints = 12

// Joints is an ordered vector of actuator positions, one value per axis.
// The length is always transmitted as an explicit prefix on the wire.
type Joints []float64

// NewJoints returns a zeroed joint vector of ndofs axes, capped at MaxJoints.
func NewJoints(ndofs int) Joints {
	if ndofs < 0 {
		ndofs = 0
	}
	if ndofs > MaxJoints {
		ndofs = MaxJoints
	}
	return make(Joints, ndofs)
}

// JointsFromCol extracts a joint vector from one matrix column. If ndofs is
// negative the whole column is taken (capped at MaxJoints). This is how rows
// of an inverse-kinematics solution matrix become joint vectors; the matrix
// may carry extra rows (error and solution flags) beyond the joint values.
func JointsFromCol(m *Matrix, col, ndofs int) Joints {
	if col < 0 || col >= m.Cols() {
		return nil
	}
	if ndofs < 0 || ndofs > m.Rows() {
		ndofs = m.Rows()
	}
	if ndofs > MaxJoints {
		ndofs = MaxJoints
	}
	j := make(Joints, ndofs)
	copy(j, m.Col(col)[:ndofs])
	return j
}

// String renders the joints as comma-separated values with 3 decimals.
func (j Joints) String() string {
	parts := make([]string, len(j))
	for i, v := range j {
		parts[i] = strconv.FormatFloat(v, 'f', 3, 64)
	}
	return strings.Join(parts, ", ")
}

// ParseJoints parses a comma, semicolon or tab separated list of values.
func ParseJoints(s string) (Joints, error) {
	s = strings.NewReplacer(";", ",", "\t", ",").Replace(s)
	fields := strings.Split(s, ",")
	j := make(Joints, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("mat: invalid joint value %q: %v", f, err)
		}
		j = append(j, v)
	}
	if len(j) > MaxJoints {
		return nil, fmt.Errorf("mat: too many joint values (%d, max %d)", len(j), MaxJoints)
	}
	return j, nil
}
