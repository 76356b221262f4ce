package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/beanbar/orderdesk/internal/core/domain"
)

// Styles is the dashboard's lipgloss palette. A single dark-terminal
// scheme; the zero value is unusable, use DefaultStyles.
type Styles struct {
	Title       lipgloss.Style
	Identity    lipgloss.Style
	PillActive  lipgloss.Style
	Pill        lipgloss.Style
	HeaderRow   lipgloss.Style
	Row         lipgloss.Style
	SelectedRow lipgloss.Style
	Muted       lipgloss.Style
	Error       lipgloss.Style
	Toast       lipgloss.Style
	Help        lipgloss.Style

	status map[domain.OrderStatus]lipgloss.Style
}

// DefaultStyles is the built-in color scheme.
var DefaultStyles = func() Styles {
	s := Styles{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("211")),
		Identity:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		PillActive:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("211")).Padding(0, 1),
		Pill:        lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Padding(0, 1),
		HeaderRow:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")),
		Row:         lipgloss.NewStyle(),
		SelectedRow: lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("236")),
		Muted:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Error:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		Toast:       lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("222")).Padding(0, 1),
		Help:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
	s.status = map[domain.OrderStatus]lipgloss.Style{
		domain.StatusPending:   lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		domain.StatusConfirmed: lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
		domain.StatusPreparing: lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		domain.StatusReady:     lipgloss.NewStyle().Foreground(lipgloss.Color("82")),
		domain.StatusCompleted: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		domain.StatusCancelled: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
	return s
}()

// StatusStyle returns the style for an order status, falling back to
// the plain row style for unknown values.
func (s Styles) StatusStyle(status domain.OrderStatus) lipgloss.Style {
	if st, ok := s.status[status]; ok {
		return st
	}
	return s.Row
}
