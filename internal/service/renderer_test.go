package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"datadog_lighthouse/internal/device"
	"datadog_lighthouse/internal/models"
)

func TestColorFor(t *testing.T) {
	t.Parallel()

	cases := map[models.DeviceStatus]models.Color{
		models.StatusOk:           {R: 0, G: 255, B: 0},
		models.StatusAlert:        {R: 255, G: 0, B: 0},
		models.StatusWarn:         {R: 255, G: 165, B: 0},
		models.StatusNoData:       {R: 0, G: 0, B: 255},
		models.StatusProvisioning: {R: 255, G: 255, B: 0},
		models.StatusUnknown:      {R: 128, G: 128, B: 128},
		models.DeviceStatus(42):   {R: 128, G: 128, B: 128},
	}
	for s, want := range cases {
		if got := ColorFor(s); got != want {
			t.Errorf("ColorFor(%d)=%v; want %v", s, got, want)
		}
	}
}

func TestDim(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want models.Color
	}{
		{models.Color{R: 255, G: 165, B: 0}, models.Color{R: 30, G: 19, B: 0}},
		{models.Color{R: 128, G: 128, B: 128}, models.Color{R: 15, G: 15, B: 15}},
		{models.Color{R: 0, G: 0, B: 255}, models.Color{R: 0, G: 0, B: 30}},
	}
	for _, tc := range cases {
		if got := Dim(tc.in); got != tc.want {
			t.Errorf("Dim(%v)=%v; want %v", tc.in, got, tc.want)
		}
	}
}

func TestRenderFrame_WindowWraps(t *testing.T) {
	t.Parallel()

	f := RenderFrame(models.StatusAlert, 14, 16)
	full := ColorFor(models.StatusAlert)
	low := Dim(full)

	if len(f.Pixels) != 16 || f.Offset != 14 || f.Status != models.StatusAlert {
		t.Fatalf("frame header %+v", f)
	}
	for i, px := range f.Pixels {
		want := low
		if i == 14 || i == 15 || i == 0 {
			want = full
		}
		if px != want {
			t.Fatalf("pixel %d=%v; want %v", i, px, want)
		}
	}
}

func TestRenderFrame_EdgeCases(t *testing.T) {
	t.Parallel()

	if f := RenderFrame(models.StatusOk, 0, 0); len(f.Pixels) != 0 {
		t.Fatalf("empty strip rendered %d pixels", len(f.Pixels))
	}

	// strip shorter than the window is fully lit
	f := RenderFrame(models.StatusOk, 1, 2)
	for i, px := range f.Pixels {
		if px != ColorFor(models.StatusOk) {
			t.Fatalf("pixel %d=%v", i, px)
		}
	}

	// out-of-range offsets are reduced modulo n
	a, b := RenderFrame(models.StatusWarn, 18, 16), RenderFrame(models.StatusWarn, 2, 16)
	for i := range a.Pixels {
		if a.Pixels[i] != b.Pixels[i] {
			t.Fatalf("offset 18 and 2 differ at pixel %d", i)
		}
	}
}

func TestOffset_PureFunctionOfFrameCount(t *testing.T) {
	t.Parallel()

	for k := uint64(0); k < 40; k++ {
		if got, want := Offset(k, 16), int(k%16); got != want {
			t.Fatalf("Offset(%d,16)=%d; want %d", k, got, want)
		}
	}
	if Offset(5, 0) != 0 {
		t.Fatalf("zero pixels must give offset 0")
	}
}

func TestRenderer_StepCadence(t *testing.T) {
	t.Parallel()

	status := NewStatusCell()
	status.Store(models.StatusOk)
	strip := device.NewMemoryStrip()
	r := NewRendererService(status, strip, DefaultOptions(), nil)

	var offsets []int
	now := t0
	for i := 0; i < 100; i++ { // one second of 10ms ticks
		if f, drew := r.Step(now); drew {
			offsets = append(offsets, f.Offset)
		}
		now = now.Add(10 * time.Millisecond)
	}
	if len(offsets) != 10 {
		t.Fatalf("redraws=%d; want 10", len(offsets))
	}
	for i, off := range offsets {
		if off != i%16 {
			t.Fatalf("offsets=%v", offsets)
		}
	}

	// status is read on every redraw; offset keeps advancing regardless
	status.Store(models.StatusAlert)
	f, drew := r.Step(now)
	if !drew || f.Status != models.StatusAlert || f.Offset != 10 {
		t.Fatalf("got drew=%v frame=%+v", drew, f)
	}
	last, shown := strip.Latest()
	if shown != 11 || last.Status != models.StatusAlert || last.Pixels[10] != ColorFor(models.StatusAlert) {
		t.Fatalf("strip shown=%d last=%+v", shown, last)
	}
}

// countingStrip counts frames.
type countingStrip struct {
	mu    sync.Mutex
	count int
}

func (s *countingStrip) Show(f models.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	return nil
}

func (s *countingStrip) n() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func TestRenderer_RunAnimatesWhileStatusChanges(t *testing.T) {
	t.Parallel()

	status := NewStatusCell()
	strip := &countingStrip{}
	opts := DefaultOptions()
	opts.RenderTick = time.Millisecond
	opts.FrameEvery = 5 * time.Millisecond
	r := NewRendererService(status, strip, opts, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for strip.n() < 5 && time.Now().Before(deadline) {
		status.Store(models.StatusWarn)
		status.Store(models.StatusOk)
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-done

	if strip.n() < 5 {
		t.Fatalf("frames=%d; animation stalled", strip.n())
	}
}
