package banner

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/raysh454/ethicheck/internal/assessor"
)

var (
	tierColors = map[assessor.RiskLevel]lipgloss.Color{
		assessor.RiskHigh:     lipgloss.Color("#e53935"),
		assessor.RiskModerate: lipgloss.Color("#FFC107"),
		assessor.RiskLow:      lipgloss.Color("#8BC34A"),
		assessor.RiskUnknown:  lipgloss.Color("#9e9e9e"),
	}

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(64)

	titleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9e9e9e"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#2196F3"))
)

const barWidth = 20

// TerminalSurface draws banners as bordered boxes on a writer.
type TerminalSurface struct {
	mu  sync.Mutex
	out io.Writer
}

func NewTerminalSurface(out io.Writer) *TerminalSurface {
	return &TerminalSurface{out: out}
}

func (s *TerminalSurface) Mount(b Banner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintln(s.out, Render(b))
	return err
}

func (s *TerminalSurface) Unmount(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintln(s.out, mutedStyle.Render("(banner "+shortID(id)+" dismissed)"))
	return err
}

// Render returns the boxed terminal form of b.
func Render(b Banner) string {
	color, ok := tierColors[b.Pill.Level]
	if !ok {
		color = tierColors[assessor.RiskUnknown]
	}
	pill := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#ffffff")).
		Background(color).
		Padding(0, 1).
		Render(b.Pill.Label)

	header := lipgloss.JoinHorizontal(lipgloss.Center, titleStyle.Render(b.Title), "  ", pill, "  ", mutedStyle.Render("[x]"))

	lines := []string{header}
	if b.Brand != "" {
		lines = append(lines, "Brand: "+b.Brand)
	}
	if b.Reason != "" {
		lines = append(lines, b.Reason)
	}

	switch {
	case b.Benchmark != nil:
		d := b.Benchmark
		lines = append(lines, fmt.Sprintf("Score %.1f  Rank %d  Benchmark %d", d.Score, d.Rank, d.Year))
		for _, bar := range d.Bars {
			lines = append(lines, renderBar(bar))
		}
		if d.SourceURL != "" {
			lines = append(lines, mutedStyle.Render(d.SourceURL))
		}
	case b.AI != nil:
		lines = append(lines, b.AI.Line)
	case b.Keywords != nil:
		for _, m := range b.Keywords.Matches {
			lines = append(lines, fmt.Sprintf("• %s (%s, +%d)", m.Term, m.Level, m.Weight))
		}
		if extra := b.Keywords.Total - len(b.Keywords.Matches); extra > 0 {
			lines = append(lines, mutedStyle.Render(fmt.Sprintf("and %d more", extra)))
		}
	}

	if b.Disclaimer != "" {
		lines = append(lines, mutedStyle.Render(b.Disclaimer))
	}
	return boxStyle.BorderForeground(color).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func renderBar(b Bar) string {
	filled := int(b.Score/100*barWidth + 0.5)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	return fmt.Sprintf("%-32s %s %3.0f", b.Label, barStyle.Render(bar), b.Score)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
