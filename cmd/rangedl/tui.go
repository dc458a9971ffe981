package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/solberg-dev/rangedl"
)

// tracker is the mutable snapshot the Bubble Tea model renders from.
// Updated from the engine's publisher goroutines, read by the Update loop
// on each tick.
type tracker struct {
	filename   string
	outputDir  string
	downloaded int64
	total      int64
	formatted  string
	phase      rangedl.Phase
	startedAt  time.Time
	err        error
}

type tickMsg time.Time

type progressModel struct {
	tr   *tracker
	bar  progress.Model
	quit bool
}

func newProgressModel(tr *tracker) progressModel {
	bar := progress.New(progress.WithGradient("#00d7af", "#5fafff"))
	bar.Width = 50
	return progressModel{tr: tr, bar: bar}
}

func (m progressModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.tr.phase.Terminal() {
			m.quit = true
			return m, tea.Quit
		}
		return m, tick()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quit = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.quit && m.tr.phase == rangedl.Completed {
		return m.renderCompletion()
	}
	if m.quit && m.tr.phase == rangedl.Cancelled {
		return m.renderCancelled()
	}
	return m.renderProgress()
}

func (m progressModel) renderProgress() string {
	nameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00d7af")).Bold(true)
	sizeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	stateStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#ffaf00")).Bold(true)

	var pct float64
	if m.tr.total > 0 {
		pct = float64(m.tr.downloaded) / float64(m.tr.total)
	}

	bar := m.bar
	if m.tr.phase == rangedl.Paused {
		bar = progress.New(progress.WithGradient("#ffff00", "#ffa500"))
		bar.Width = m.bar.Width
	}

	header := fmt.Sprintf("file :: %s", nameStyle.Render(m.tr.filename))
	line := fmt.Sprintf("%s %.1f%%", bar.ViewAs(pct), pct*100)
	detail := fmt.Sprintf("%s   state :: %s", sizeStyle.Render(m.tr.formatted), stateStyle.Render(m.tr.phase.String()))

	var out strings.Builder
	out.WriteString(header + "\n")
	out.WriteString(line + "\n")
	out.WriteString(detail + "\n")
	return out.String()
}

func (m progressModel) renderCompletion() string {
	border := strings.Repeat("=", 50)
	success := lipgloss.NewStyle().Foreground(lipgloss.Color("#00d7af")).Bold(true)
	dirStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#ffaf00")).Bold(true)
	elapsed := time.Since(m.tr.startedAt)

	return fmt.Sprintf("%s\n%s\nfile :: %s\noutput dir :: %s\ntime taken :: %s\n%s\n",
		border,
		success.Render("download completed"),
		m.tr.filename,
		dirStyle.Render(m.tr.outputDir),
		elapsed.Round(time.Millisecond),
		border,
	)
}

func (m progressModel) renderCancelled() string {
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f")).Bold(true)
	msg := "cancelled"
	if m.tr.err != nil {
		msg = m.tr.err.Error()
	}
	return errStyle.Render("download cancelled: "+msg) + "\n"
}
