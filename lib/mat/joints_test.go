package mat

import (
	"testing"
)

// TestNewJoints tests clamping of the axis count
func TestNewJoints(t *testing.T) {
	if got := len(NewJoints(6)); got != 6 {
		t.Errorf("NewJoints(6) has %d axes", got)
	}
	if got := len(NewJoints(100)); got != MaxJoints {
		t.Errorf("NewJoints(100) has %d axes, want %d", got, MaxJoints)
	}
	if got := len(NewJoints(-1)); got != 0 {
		t.Errorf("NewJoints(-1) has %d axes, want 0", got)
	}
}

// TestParseJoints tests parsing of separated joint lists
func TestParseJoints(t *testing.T) {
	cases := []struct {
		in   string
		want Joints
	}{
		{"0, 90, -90, 0, 45, 0", Joints{0, 90, -90, 0, 45, 0}},
		{"1;2;3", Joints{1, 2, 3}},
		{"1\t2\t3", Joints{1, 2, 3}},
		{"  10.5 ,  -0.25 ", Joints{10.5, -0.25}},
	}
	for _, c := range cases {
		got, err := ParseJoints(c.in)
		if err != nil {
			t.Errorf("ParseJoints(%q) failed: %v", c.in, err)
			continue
		}
		if len(got) != len(c.want) {
			t.Errorf("ParseJoints(%q) = %v, want %v", c.in, got, c.want)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("ParseJoints(%q)[%d] = %v, want %v", c.in, i, got[i], c.want[i])
			}
		}
	}

	if _, err := ParseJoints("1, 2, nope"); err == nil {
		t.Error("ParseJoints accepted a non-numeric value")
	}
	if _, err := ParseJoints("1,2,3,4,5,6,7,8,9,10,11,12,13"); err == nil {
		t.Error("ParseJoints accepted more than MaxJoints values")
	}
}

// TestJointsFromCol tests extraction of joint vectors from solution matrices
func TestJointsFromCol(t *testing.T) {
	// two solutions of a 6-axis robot, plus two bookkeeping rows
	m := NewMatrix(8, 2)
	for i := 0; i < 8; i++ {
		m.Set(i, 0, float64(i))
		m.Set(i, 1, float64(10+i))
	}

	j := JointsFromCol(m, 1, 6)
	if len(j) != 6 {
		t.Fatalf("JointsFromCol returned %d axes, want 6", len(j))
	}
	for i := 0; i < 6; i++ {
		if j[i] != float64(10+i) {
			t.Errorf("joint %d = %v, want %v", i, j[i], float64(10+i))
		}
	}

	if j := JointsFromCol(m, 5, 6); j != nil {
		t.Errorf("out-of-range column returned %v, want nil", j)
	}
}
