package service

import (
	"context"
	"time"

	"datadog_lighthouse/internal/device"
	"datadog_lighthouse/internal/logger"
	"datadog_lighthouse/internal/metrics"
	"datadog_lighthouse/internal/models"
)

const (
	DefaultPixels     = 16
	DefaultRenderTick = 10 * time.Millisecond
	DefaultFrameEvery = 100 * time.Millisecond
	DefaultWindow     = 3
	DefaultDim        = 30
)

var palette = map[models.DeviceStatus]models.Color{
	models.StatusOk:           {R: 0, G: 255, B: 0},
	models.StatusAlert:        {R: 255, G: 0, B: 0},
	models.StatusWarn:         {R: 255, G: 165, B: 0},
	models.StatusNoData:       {R: 0, G: 0, B: 255},
	models.StatusProvisioning: {R: 255, G: 255, B: 0},
	models.StatusUnknown:      {R: 128, G: 128, B: 128},
}

// ColorFor returns the full-intensity color of s. Unlisted values are gray.
func ColorFor(s models.DeviceStatus) models.Color {
	if c, ok := palette[s]; ok {
		return c
	}
	return palette[models.StatusUnknown]
}

// Dim scales every channel by DefaultDim/255.
func Dim(c models.Color) models.Color {
	return dimBy(c, DefaultDim)
}

func dimBy(c models.Color, scale int) models.Color {
	return models.Color{
		R: uint8(int(c.R) * scale / 255),
		G: uint8(int(c.G) * scale / 255),
		B: uint8(int(c.B) * scale / 255),
	}
}

// Offset is the comet head after frame k on an n-pixel strip.
func Offset(k uint64, n int) int {
	if n <= 0 {
		return 0
	}
	return int(k % uint64(n))
}

// RenderFrame draws the default comet: DefaultWindow pixels from offset
// (wrapping) at full color, the rest dimmed.
func RenderFrame(s models.DeviceStatus, offset, n int) models.Frame {
	return renderFrame(s, offset, n, DefaultWindow, DefaultDim)
}

func renderFrame(s models.DeviceStatus, offset, n, window, dim int) models.Frame {
	if n <= 0 {
		return models.Frame{Offset: 0, Status: s, Pixels: []models.Color{}}
	}
	offset = ((offset % n) + n) % n
	full := ColorFor(s)
	low := dimBy(full, dim)

	pixels := make([]models.Color, n)
	for i := range pixels {
		if (i-offset+n)%n < window {
			pixels[i] = full
		} else {
			pixels[i] = low
		}
	}
	return models.Frame{Offset: offset, Status: s, Pixels: pixels}
}

// RendererService is Activity B. It reads the status cell every tick and
// redraws at the frame period; it never writes the status.
type RendererService struct {
	status *StatusCell
	strip  device.Strip
	log    *logger.Logger

	pixels int
	window int
	dim    int
	tick   time.Duration
	every  time.Duration

	frames uint64
	last   time.Time
}

func NewRendererService(status *StatusCell, strip device.Strip, opts Options, log *logger.Logger) *RendererService {
	r := &RendererService{
		status: status,
		strip:  strip,
		log:    log.Component("renderer"),
		pixels: opts.Pixels,
		window: opts.Window,
		dim:    opts.DimScale,
		tick:   opts.RenderTick,
		every:  opts.FrameEvery,
	}
	if r.pixels <= 0 {
		r.pixels = DefaultPixels
	}
	if r.window <= 0 {
		r.window = DefaultWindow
	}
	if r.dim < 0 || r.dim > 255 {
		r.dim = DefaultDim
	}
	if r.tick <= 0 {
		r.tick = DefaultRenderTick
	}
	if r.every <= 0 {
		r.every = DefaultFrameEvery
	}
	return r
}

// Step redraws when a frame period has elapsed since the last redraw and
// reports whether it did. The k-th redraw uses offset k mod pixels.
func (r *RendererService) Step(now time.Time) (models.Frame, bool) {
	if !r.last.IsZero() && now.Sub(r.last) < r.every {
		return models.Frame{}, false
	}
	r.last = now

	f := renderFrame(r.status.Load(), Offset(r.frames, r.pixels), r.pixels, r.window, r.dim)
	r.frames++

	if r.strip != nil {
		if err := r.strip.Show(f); err != nil {
			r.log.Debugw("strip_show_failed", "error", err)
		}
	}
	metrics.FrameRendered()
	return f, true
}

// Run ticks until ctx is canceled.
func (r *RendererService) Run(ctx context.Context) {
	t := time.NewTicker(r.tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			r.Step(now)
		}
	}
}
