package chart

import "testing"

func TestSmoothPath(t *testing.T) {
	points := []Point{
		{X: 40, Y: 140},
		{X: 340, Y: 60},
		{X: 370, Y: 100},
	}

	path := SmoothPath(points)

	if len(path) != 3 {
		t.Fatalf("got %d commands, want 3", len(path))
	}

	if path[0].Op != OpMoveTo || path[0].To != points[0] {
		t.Errorf("first command = %+v, want move to %+v", path[0], points[0])
	}

	first := path[1]
	if first.Op != OpCurveTo {
		t.Fatalf("second command op = %v, want C", first.Op)
	}
	if want := (Point{X: 140, Y: 140}); first.C1 != want {
		t.Errorf("C1 = %+v, want %+v", first.C1, want)
	}
	if want := (Point{X: 240, Y: 60}); first.C2 != want {
		t.Errorf("C2 = %+v, want %+v", first.C2, want)
	}
	if first.To != points[1] {
		t.Errorf("To = %+v, want %+v", first.To, points[1])
	}

	second := path[2]
	if want := (Point{X: 350, Y: 60}); second.C1 != want {
		t.Errorf("C1 = %+v, want %+v", second.C1, want)
	}
	if want := (Point{X: 360, Y: 100}); second.C2 != want {
		t.Errorf("C2 = %+v, want %+v", second.C2, want)
	}
}

func TestSmoothPathCommandCount(t *testing.T) {
	tests := []struct {
		name      string
		points    int
		wantMove  int
		wantCurve int
	}{
		{"empty", 0, 0, 0},
		{"single point", 1, 0, 0},
		{"two points", 2, 1, 1},
		{"ten points", 10, 1, 9},
		{"hundred points", 100, 1, 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := make([]Point, tt.points)
			for i := range points {
				points[i] = Point{X: float64(i * 10), Y: float64(i % 3)}
			}

			path := SmoothPath(points)

			if got := path.Count(OpMoveTo); got != tt.wantMove {
				t.Errorf("move-to count = %d, want %d", got, tt.wantMove)
			}
			if got := path.Count(OpCurveTo); got != tt.wantCurve {
				t.Errorf("curve-to count = %d, want %d", got, tt.wantCurve)
			}
			if tt.points < 2 && path.String() != "" {
				t.Errorf("String() = %q, want empty", path.String())
			}
		})
	}
}

func TestPathString(t *testing.T) {
	path := SmoothPath([]Point{{X: 40, Y: 140}, {X: 340, Y: 60}})

	want := "M 40 140 C 140 140, 240 60, 340 60"
	if got := path.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestPathStringFractions(t *testing.T) {
	path := SmoothPath([]Point{{X: 0, Y: 0.5}, {X: 1, Y: 1.25}})

	want := "M 0 0.5 C 0.3333333333333333 0.5, 0.6666666666666666 1.25, 1 1.25"
	if got := path.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
