package device

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"datadog_lighthouse/internal/models"

	"github.com/charmbracelet/lipgloss"
)

// Strip displays a rendered frame.
type Strip interface {
	Show(f models.Frame) error
}

// MemoryStrip keeps the last shown frame for readers such as the frame stream.
type MemoryStrip struct {
	mu    sync.RWMutex
	last  models.Frame
	shown uint64
}

func NewMemoryStrip() *MemoryStrip {
	return &MemoryStrip{}
}

func (s *MemoryStrip) Show(f models.Frame) error {
	pixels := make([]models.Color, len(f.Pixels))
	copy(pixels, f.Pixels)
	f.Pixels = pixels

	s.mu.Lock()
	s.last = f
	s.shown++
	s.mu.Unlock()
	return nil
}

// Latest returns a copy of the last frame and how many frames were shown.
func (s *MemoryStrip) Latest() (models.Frame, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f := s.last
	f.Pixels = append([]models.Color(nil), s.last.Pixels...)
	return f, s.shown
}

// ConsoleStrip draws each frame as one line of true-color blocks.
type ConsoleStrip struct {
	w  io.Writer
	mu sync.Mutex
}

func NewConsoleStrip(w io.Writer) *ConsoleStrip {
	return &ConsoleStrip{w: w}
}

func (s *ConsoleStrip) Show(f models.Frame) error {
	var b strings.Builder
	b.WriteString("\r")
	for _, px := range f.Pixels {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(px.Hex())).Render("●"))
	}
	fmt.Fprintf(&b, " %-12s", f.Status)

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.w, b.String())
	return err
}

// MultiStrip shows every frame on each strip and returns the first error.
type MultiStrip []Strip

func (m MultiStrip) Show(f models.Frame) error {
	var first error
	for _, s := range m {
		if err := s.Show(f); err != nil && first == nil {
			first = err
		}
	}
	return first
}
