package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/harmonica"
)

// Progress smooths a target completion fraction (0..1) toward a displayed
// value using a critically damped spring, so the terminal progress bar
// doesn't jump in discrete block-sized steps.
type Progress struct {
	Target   float64
	Position float64
	velocity float64
	spring   harmonica.Spring
}

// NewProgress returns a Progress driven at fps updates per second.
func NewProgress(fps int) *Progress {
	return &Progress{
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
	}
}

// Set updates the target fraction the spring animates toward.
func (p *Progress) Set(fraction float64) {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	p.Target = fraction
}

// Update advances the displayed position one frame toward Target.
func (p *Progress) Update() {
	p.Position, p.velocity = p.spring.Update(p.Position, p.velocity, p.Target)
}

// Bar renders the current position as a fixed-width textual progress bar,
// e.g. "[#####-----]  50%" for Bar(10) at position 0.5.
func (p *Progress) Bar(width int) string {
	filled := int(p.Position * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return fmt.Sprintf("[%s%s] %3.0f%%",
		strings.Repeat("#", filled),
		strings.Repeat("-", width-filled),
		p.Position*100)
}
