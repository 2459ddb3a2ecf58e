package mat

import (
	"math"
	"testing"
)

// TestIdentity tests the identity pose layout
func TestIdentity(t *testing.T) {
	p := Identity()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if p.At(i, j) != want {
				t.Errorf("At(%d,%d) = %v, want %v", i, j, p.At(i, j), want)
			}
		}
	}
	if !p.IsHomogeneous() {
		t.Error("identity pose not homogeneous")
	}
}

// TestPoseColumnMajor tests that Set/At address the column-major backing array
func TestPoseColumnMajor(t *testing.T) {
	var p Pose
	p.Set(1, 2, 42)
	if p[4*2+1] != 42 {
		t.Errorf("element (1,2) stored at wrong index, backing = %v", p)
	}
}

// TestTransl tests translation construction and Pos/SetPos
func TestTransl(t *testing.T) {
	p := Transl(10, -20, 30)
	x, y, z := p.Pos()
	if x != 10 || y != -20 || z != 30 {
		t.Errorf("Pos() = %v %v %v, want 10 -20 30", x, y, z)
	}
}

// TestMulInv tests that a pose composed with its inverse is identity
func TestMulInv(t *testing.T) {
	p := Transl(100, 50, -25).Mul(RotZ(0.7)).Mul(RotY(-0.3)).Mul(RotX(1.1))
	r := p.Mul(p.Inv())
	id := Identity()
	for i := range r {
		if math.Abs(r[i]-id[i]) > 1e-9 {
			t.Fatalf("p * p.Inv() not identity at index %d: %v", i, r[i])
		}
	}
}

// TestXYZWPRRoundTrip tests Euler conversion both ways
func TestXYZWPRRoundTrip(t *testing.T) {
	cases := [][6]float64{
		{0, 0, 0, 0, 0, 0},
		{100, 200, 300, 10, 20, 30},
		{-50, 0, 75, -90, 45, 120},
		{1, 2, 3, 179, -89, -179},
	}
	for _, c := range cases {
		p := FromXYZWPR(c)
		got := p.ToXYZWPR()
		for i := 0; i < 6; i++ {
			if math.Abs(got[i]-c[i]) > 1e-6 {
				t.Errorf("round trip of %v gave %v (index %d)", c, got, i)
				break
			}
		}
	}
}

// TestRotations tests the rotation builders against known values
func TestRotations(t *testing.T) {
	p := RotZ(math.Pi / 2)
	// rotating the X unit vector by 90 deg around Z yields Y
	x := p.At(0, 0)
	y := p.At(1, 0)
	if math.Abs(x) > 1e-12 || math.Abs(y-1) > 1e-12 {
		t.Errorf("RotZ(pi/2) first column = (%v, %v), want (0, 1)", x, y)
	}
}
