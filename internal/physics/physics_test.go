package physics

import (
	"math"
	"testing"
)

func TestAABBIntersects(t *testing.T) {
	paddle := Box(90, 80, 10, 100)

	tests := []struct {
		name string
		box  AABB
		want bool
	}{
		{"overlapping front", CenteredBox(100, 100, 5), true},
		{"inside", CenteredBox(95, 120, 2), true},
		{"touching edge", Box(100, 100, 5, 5), false},
		{"above", CenteredBox(95, 70, 5), false},
		{"right of", CenteredBox(120, 100, 5), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := paddle.Intersects(tt.box); got != tt.want {
				t.Errorf("Intersects = %v, want %v", got, tt.want)
			}
			if got := tt.box.Intersects(paddle); got != tt.want {
				t.Errorf("Intersects (swapped) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAABBOverlap(t *testing.T) {
	x, y := Box(90, 80, 10, 100).Overlap(CenteredBox(100, 100, 5))
	if x != 5 || y != 10 {
		t.Errorf("Overlap = (%v, %v), want (5, 10)", x, y)
	}

	x, y = Box(0, 0, 1, 1).Overlap(Box(5, 5, 1, 1))
	if x != 0 || y != 0 {
		t.Errorf("Overlap of disjoint boxes = (%v, %v), want zero", x, y)
	}
}

func TestClampMagnitude(t *testing.T) {
	x, y := ClampMagnitude(30, 40, 10)
	if got := Magnitude(x, y); math.Abs(got-10) > 1e-9 {
		t.Errorf("clamped magnitude = %v, want 10", got)
	}
	if math.Abs(x/y-0.75) > 1e-12 {
		t.Errorf("direction changed: (%v, %v)", x, y)
	}

	x, y = ClampMagnitude(3, 4, 10)
	if x != 3 || y != 4 {
		t.Errorf("short vector changed to (%v, %v)", x, y)
	}
}

func TestClampAndFinite(t *testing.T) {
	if Clamp(-1, 0, 5) != 0 || Clamp(7, 0, 5) != 5 || Clamp(3, 0, 5) != 3 {
		t.Error("Clamp returned a value outside [lo, hi]")
	}
	if Clamp(3, 5, 0) != 5 {
		t.Error("Clamp with inverted range should return lo")
	}
	if !Finite(1, 2, 3) {
		t.Error("Finite(1,2,3) = false")
	}
	if Finite(1, math.NaN()) || Finite(math.Inf(1)) {
		t.Error("Finite accepted NaN or Inf")
	}
}
