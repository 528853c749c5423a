package viewport

import (
	"math"
	"testing"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name           string
		cw, ch, fw, fh float64
		fit            Fit
		want           Rect
	}{
		{
			name: "cover crops vertically",
			cw:   1280, ch: 720, fw: 640, fh: 480,
			fit:  Cover,
			want: Rect{Width: 1280, Height: 960, OffsetX: 0, OffsetY: -120},
		},
		{
			name: "contain letterboxes vertically",
			cw:   640, ch: 480, fw: 1280, fh: 720,
			fit:  Contain,
			want: Rect{Width: 640, Height: 360, OffsetX: 0, OffsetY: 60},
		},
		{
			name: "contain pillarboxes horizontally",
			cw:   1280, ch: 480, fw: 640, fh: 480,
			fit:  Contain,
			want: Rect{Width: 640, Height: 480, OffsetX: 320, OffsetY: 0},
		},
		{
			name: "cover crops horizontally",
			cw:   640, ch: 480, fw: 1280, fh: 720,
			fit:  Cover,
			want: Rect{Width: 853.3333333333334, Height: 480, OffsetX: -106.66666666666669, OffsetY: 0},
		},
		{
			name: "zero frame falls back to identity",
			cw:   800, ch: 600, fw: 0, fh: 480,
			fit:  Contain,
			want: Rect{Width: 800, Height: 600},
		},
		{
			name: "negative frame falls back to identity",
			cw:   800, ch: 600, fw: 640, fh: -1,
			fit:  Cover,
			want: Rect{Width: 800, Height: 600},
		},
		{
			name: "non-finite frame falls back to identity",
			cw:   800, ch: 600, fw: math.Inf(1), fh: 480,
			fit:  Contain,
			want: Rect{Width: 800, Height: 600},
		},
		{
			name: "zero container clamps to one unit",
			cw:   0, ch: 0, fw: 0, fh: 0,
			fit:  Contain,
			want: Rect{Width: 1, Height: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.cw, tt.ch, tt.fw, tt.fh, tt.fit)
			if !rectNear(got, tt.want) {
				t.Fatalf("Compute = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseFit(t *testing.T) {
	for in, want := range map[string]Fit{"": Contain, "contain": Contain, "COVER": Cover} {
		got, err := ParseFit(in)
		if err != nil || got != want {
			t.Errorf("ParseFit(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFit("stretch"); err == nil {
		t.Error("ParseFit(stretch) should fail")
	}
}

func TestTrackerHysteresis(t *testing.T) {
	tr := NewTracker(Contain)
	if !tr.Update(1280, 720, 1280, 720) {
		t.Fatal("first update must recompute")
	}
	if tr.Update(1280.3, 720, 1280, 720) {
		t.Fatal("0.3 change must not recompute")
	}
	if tr.Update(1280, 720.3, 1280, 720) {
		t.Fatal("0.3 height change must not recompute")
	}
	if !tr.Update(1280.6, 720, 1280, 720) {
		t.Fatal("0.6 change must recompute")
	}
	if got := tr.State().ContainerWidth; got != 1280.6 {
		t.Fatalf("recorded width = %v", got)
	}
}

func TestTrackerHysteresisAccumulates(t *testing.T) {
	tr := NewTracker(Contain)
	tr.Update(100, 100, 100, 100)
	if tr.Update(100.3, 100, 100, 100) {
		t.Fatal("first small step recomputed")
	}
	// Measured against the recorded 100, not the previous 100.3.
	if !tr.Update(100.6, 100, 100, 100) {
		t.Fatal("accumulated drift should recompute")
	}
}

func TestTrackerFrameChange(t *testing.T) {
	tr := NewTracker(Cover)
	tr.Update(1280, 720, 640, 480)
	if !tr.Update(1280, 720, 1280, 720) {
		t.Fatal("frame size change must recompute")
	}
	want := Compute(1280, 720, 1280, 720, Cover)
	if got := tr.State().Rect; !rectNear(got, want) {
		t.Fatalf("rect = %+v, want %+v", got, want)
	}
}

func TestTrackerFrameChangeIsExact(t *testing.T) {
	tr := NewTracker(Contain)
	tr.Update(1280, 720, 640, 480)
	if tr.Update(1280, 720, 640, 480) {
		t.Fatal("unchanged frame size recomputed")
	}
	if !tr.Update(1280, 720, 641, 480) {
		t.Fatal("one pixel frame width change must recompute")
	}
	if !tr.Update(1280, 720, 641, 480.25) {
		t.Fatal("frame change below the container threshold must still recompute")
	}
	if s := tr.State(); s.FrameWidth != 641 || s.FrameHeight != 480.25 {
		t.Fatalf("recorded frame = %vx%v", s.FrameWidth, s.FrameHeight)
	}
}

func TestTrackerKeepsLastFrameSize(t *testing.T) {
	tr := NewTracker(Contain)
	tr.Update(640, 480, 1280, 720)
	if tr.Update(640, 480, 0, 0) {
		t.Fatal("unknown frame size should not recompute")
	}
	if s := tr.State(); s.FrameWidth != 1280 || s.FrameHeight != 720 {
		t.Fatalf("frame size lost: %+v", s)
	}
}

func rectNear(a, b Rect) bool {
	const eps = 1e-9
	return math.Abs(a.Width-b.Width) < eps &&
		math.Abs(a.Height-b.Height) < eps &&
		math.Abs(a.OffsetX-b.OffsetX) < eps &&
		math.Abs(a.OffsetY-b.OffsetY) < eps
}
