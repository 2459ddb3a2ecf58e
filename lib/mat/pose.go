package mat

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Pose is a 4x4 homogeneous transform. Elements are stored column-major,
// matching the wire layout: element (i, j) lives at index 4*j + i. The bottom
// row of a valid pose is always [0 0 0 1].
type Pose [16]float64

// Identity returns the identity pose.
func Identity() Pose {
	return Pose{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// At returns element (i, j), zero-based.
func (p *Pose) At(i, j int) float64 { return p[4*j+i] }

// Set writes element (i, j), zero-based.
func (p *Pose) Set(i, j int, v float64) { p[4*j+i] = v }

// Pos returns the translation part [x, y, z].
func (p *Pose) Pos() (x, y, z float64) {
	return p[12], p[13], p[14]
}

// SetPos sets the translation part.
func (p *Pose) SetPos(x, y, z float64) {
	p[12], p[13], p[14] = x, y, z
}

// Mul returns the composed transform p * q.
func (p Pose) Mul(q Pose) Pose {
	var r Pose
	for j := 0; j < 4; j++ {
		for i := 0; i < 4; i++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += p.At(i, k) * q.At(k, j)
			}
			r.Set(i, j, sum)
		}
	}
	return r
}

// Inv returns the inverse of a homogeneous transform: the rotation part is
// transposed and the translation negated accordingly. The pose must be a
// valid homogeneous transform for the result to be meaningful.
func (p Pose) Inv() Pose {
	r := Identity()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r.Set(i, j, p.At(j, i))
		}
	}
	x, y, z := p.Pos()
	r.SetPos(
		-(r.At(0, 0)*x + r.At(0, 1)*y + r.At(0, 2)*z),
		-(r.At(1, 0)*x + r.At(1, 1)*y + r.At(1, 2)*z),
		-(r.At(2, 0)*x + r.At(2, 1)*y + r.At(2, 2)*z),
	)
	return r
}

// IsHomogeneous reports whether the bottom row is [0 0 0 1].
func (p *Pose) IsHomogeneous() bool {
	return p[3] == 0 && p[7] == 0 && p[11] == 0 && p[15] == 1
}

// Transl returns a pure translation transform.
func Transl(x, y, z float64) Pose {
	p := Identity()
	p.SetPos(x, y, z)
	return p
}

// RotX returns a rotation of rx radians around the X axis.
func RotX(rx float64) Pose {
	c, s := math.Cos(rx), math.Sin(rx)
	p := Identity()
	p.Set(1, 1, c)
	p.Set(1, 2, -s)
	p.Set(2, 1, s)
	p.Set(2, 2, c)
	return p
}

// RotY returns a rotation of ry radians around the Y axis.
func RotY(ry float64) Pose {
	c, s := math.Cos(ry), math.Sin(ry)
	p := Identity()
	p.Set(0, 0, c)
	p.Set(0, 2, s)
	p.Set(2, 0, -s)
	p.Set(2, 2, c)
	return p
}

// RotZ returns a rotation of rz radians around the Z axis.
func RotZ(rz float64) Pose {
	c, s := math.Cos(rz), math.Sin(rz)
	p := Identity()
	p.Set(0, 0, c)
	p.Set(0, 1, -s)
	p.Set(1, 0, s)
	p.Set(1, 1, c)
	return p
}

// ToXYZWPR converts the pose to [x, y, z, r, p, w] with translation in the
// pose units and angles in degrees, following the convention
// transl(x,y,z)*rotz(w)*roty(p)*rotx(r).
func (p *Pose) ToXYZWPR() [6]float64 {
	x, y, z := p.Pos()
	var w, pitch, r float64
	if p.At(2, 0) > 1.0-1e-6 {
		pitch = -math.Pi * 0.5
		r = 0
		w = math.Atan2(-p.At(1, 2), p.At(1, 1))
	} else if p.At(2, 0) < -1.0+1e-6 {
		pitch = 0.5 * math.Pi
		r = 0
		w = math.Atan2(p.At(1, 2), p.At(1, 1))
	} else {
		pitch = math.Atan2(-p.At(2, 0), math.Sqrt(p.At(0, 0)*p.At(0, 0)+p.At(1, 0)*p.At(1, 0)))
		w = math.Atan2(p.At(1, 0), p.At(0, 0))
		r = math.Atan2(p.At(2, 1), p.At(2, 2))
	}
	deg := 180.0 / math.Pi
	return [6]float64{x, y, z, r * deg, pitch * deg, w * deg}
}

// FromXYZWPR builds a pose from [x, y, z, r, p, w] (angles in degrees),
// the inverse of ToXYZWPR.
func FromXYZWPR(v [6]float64) Pose {
	rad := math.Pi / 180.0
	return Transl(v[0], v[1], v[2]).
		Mul(RotZ(v[5] * rad)).
		Mul(RotY(v[4] * rad)).
		Mul(RotX(v[3] * rad))
}

// String renders the pose in XYZWPR form with millimeter/degree precision.
func (p *Pose) String() string {
	v := p.ToXYZWPR()
	parts := make([]string, 6)
	for i, f := range v {
		parts[i] = strconv.FormatFloat(f, 'f', 3, 64)
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, ", "))
}
