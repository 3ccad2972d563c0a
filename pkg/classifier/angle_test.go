package classifier

import (
	"FallWatch/internal/entity"
	"math"
	"testing"
)

func TestAngle(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c entity.Point
		want    float64
	}{
		{name: "right angle", a: pt(0, 1), b: pt(0, 0), c: pt(1, 0), want: 90},
		{name: "straight line", a: pt(-1, 0), b: pt(0, 0), c: pt(1, 0), want: 180},
		{name: "same direction", a: pt(2, 2), b: pt(0, 0), c: pt(1, 1), want: 0},
		{name: "reflex reading is not folded", a: pt(0, 1), b: pt(0, 0), c: pt(-1, -1), want: 225},
		{name: "offset vertex", a: pt(0.5, 0.3), b: pt(0.5, 0.6), c: pt(0.7, 0.6), want: 90},
		{name: "end coincides with vertex", a: pt(0, 0), b: pt(0, 0), c: pt(1, 0), want: 0},
		{name: "all points coincide", a: pt(0.4, 0.4), b: pt(0.4, 0.4), c: pt(0.4, 0.4), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Angle(tt.a, tt.b, tt.c)
			if math.IsNaN(got) {
				t.Fatalf("Angle() returned NaN")
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Angle() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAngle_Range(t *testing.T) {
	coords := []float64{-1, -0.5, 0, 0.5, 1}
	b := pt(0, 0)
	for _, ax := range coords {
		for _, ay := range coords {
			for _, cx := range coords {
				for _, cy := range coords {
					got := Angle(pt(ax, ay), b, pt(cx, cy))
					if got < 0 || got >= 360 {
						t.Fatalf("Angle((%v,%v), b, (%v,%v)) = %v, outside [0, 360)", ax, ay, cx, cy, got)
					}
				}
			}
		}
	}
}
