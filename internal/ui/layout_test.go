package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-playground/assert/v2"
)

func TestLayoutDimensions(t *testing.T) {
	l := NewLayout(120, 40)
	assert.Equal(t, l.ContentWidth(), 120)
	assert.Equal(t, l.ContentHeight(), 38)
	assert.Equal(t, l.PopupWidth(), 100)
	assert.Equal(t, NewLayout(60, 20).PopupWidth(), 60)
}

func TestRenderHeaderFillsWidth(t *testing.T) {
	l := NewLayout(80, 24)
	header := l.RenderHeader("Notifications", []string{"Alerts 2", "Notices 0"}, "idle")

	assert.Equal(t, lipgloss.Width(header), 80)
	assert.Equal(t, strings.Contains(header, "Alerts 2"), true)
	assert.Equal(t, strings.Contains(header, "idle"), true)
}

func TestRenderStatusBarFillsWidth(t *testing.T) {
	l := NewLayout(60, 24)
	bar := l.RenderStatusBar("q quit")
	assert.Equal(t, lipgloss.Width(bar), 60)
}
