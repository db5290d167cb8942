package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"murmur/indicator"
)

// TUI message types
type RecordingStartMsg struct{}
type RecordingStopMsg struct{}
type AudioLevelMsg struct{ Level float64 }
type IndicatorMsg struct{ State indicator.State }
type TranscriptMsg struct {
	Text     string
	NoSpeech bool
}
type StatusMsg struct{ Text string }
type DeviceLineMsg struct{ Text string }
type ProviderLineMsg struct{ Text string }
type HideMsg struct{}
type tickMsg time.Time

var (
	tuiProgram   *tea.Program
	tuiMu        sync.Mutex
	tuiReady     = make(chan struct{})
	tuiReadyOnce sync.Once
)

// tuiSend delivers a message to the TUI if one is running; headless modes
// drop messages silently.
func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

var (
	styleRec      = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleThinking = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	styleAnswer   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	styleDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	styleFaint    = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	styleWarn     = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	styleText     = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	styleLevel    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

type tuiModel struct {
	indState      indicator.State
	frame         int
	recording     bool
	recordStart   time.Time
	audioLevel    float64
	peakLevel     float64
	msgCount      int
	width, height int
	deviceLine    string
	providerLine  string
	status        string
	lastText      string
	noSpeech      bool
	hidden        bool
}

func NewTUIProgram() *tea.Program {
	return tea.NewProgram(tuiModel{}, tea.WithAltScreen())
}

func tuiTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	tuiReadyOnce.Do(func() { close(tuiReady) })
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}

	case tickMsg:
		m.frame++
		return m, tuiTick()

	case RecordingStartMsg:
		m.recording = true
		m.hidden = false
		m.recordStart = time.Now()
		m.audioLevel = 0
		m.peakLevel = 0
		m.status = ""

	case RecordingStopMsg:
		m.recording = false
		m.audioLevel = 0

	case AudioLevelMsg:
		if m.recording {
			m.audioLevel = m.audioLevel*0.6 + msg.Level*0.4
			if msg.Level > m.peakLevel {
				m.peakLevel = msg.Level
			}
		}

	case IndicatorMsg:
		m.indState = msg.State

	case TranscriptMsg:
		m.msgCount++
		m.lastText = msg.Text
		m.noSpeech = msg.NoSpeech

	case StatusMsg:
		m.status = msg.Text

	case DeviceLineMsg:
		m.deviceLine = msg.Text

	case ProviderLineMsg:
		m.providerLine = msg.Text

	case HideMsg:
		m.hidden = true
	}
	return m, nil
}

// glyphLine renders the indicator: a pulsing dot whose color tracks the
// state machine.
func (m tuiModel) glyphLine() string {
	pulse := "●"
	if m.frame%10 < 5 {
		pulse = "◉"
	}
	switch m.indState {
	case indicator.Prompted:
		return styleRec.Render(pulse+" REC ") +
			styleRec.Render(fmt.Sprintf("%.1fs", time.Since(m.recordStart).Seconds()))
	case indicator.Thinking:
		return styleThinking.Render(pulse + " TRANSCRIBING")
	case indicator.Answering:
		return styleAnswer.Render("● DELIVERED")
	case indicator.Dormant:
		return styleDim.Render("○ READY")
	}
	return styleFaint.Render("○ STARTING")
}

func levelBar(level float64, width int) string {
	filled := int(level * 40 * float64(width))
	if filled > width {
		filled = width
	}
	return styleLevel.Render(strings.Repeat("▮", filled)) +
		styleFaint.Render(strings.Repeat("▯", width-filled))
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.hidden {
		return ""
	}

	var lines []string
	lines = append(lines, "")
	lines = append(lines, "  "+m.glyphLine())

	if m.recording {
		lines = append(lines, "  "+levelBar(m.audioLevel, 24))
		if time.Since(m.recordStart) > time.Second && m.peakLevel < 0.02 {
			lines = append(lines, "  "+styleWarn.Render("⚠ no voice detected"))
		}
	}

	lines = append(lines, "")
	if m.providerLine != "" {
		lines = append(lines, "  "+styleDim.Render(m.providerLine))
	}
	if m.deviceLine != "" {
		lines = append(lines, "  "+styleDim.Render(m.deviceLine))
	}
	if m.status != "" {
		lines = append(lines, "  "+styleWarn.Render(m.status))
	}

	lines = append(lines, "")
	if m.lastText != "" || m.noSpeech {
		title := styleDim.Render(fmt.Sprintf("Last transcription (#%d)", m.msgCount))
		lines = append(lines, "  "+title)
		if m.noSpeech {
			lines = append(lines, "  "+styleWarn.Render("(no speech detected)"))
		} else {
			wrapWidth := m.width - 4
			if wrapWidth < 10 {
				wrapWidth = 10
			}
			for _, l := range wrapText(m.lastText, wrapWidth) {
				lines = append(lines, "  "+styleText.Render(l))
			}
		}
	} else {
		lines = append(lines, "  "+styleFaint.Render("No transcriptions yet"))
	}

	lines = append(lines, "")
	help := styleFaint.Bold(true).Render("Ctrl+Shift+Space") + styleFaint.Render(" to record, q to quit")
	lines = append(lines, "  "+help)
	lines = append(lines, "  "+styleFaint.Render("murmur "+version))

	return strings.Join(lines, "\n")
}

// wrapText splits on rune boundaries so transcripts in any language survive
// the wrap intact.
func wrapText(text string, width int) []string {
	if len(text) == 0 {
		return []string{""}
	}
	if width <= 0 {
		width = 1
	}

	runes := []rune(text)
	var lines []string
	for len(runes) > width {
		splitAt := width
		for i := width; i > 0; i-- {
			if runes[i] == ' ' {
				splitAt = i
				break
			}
		}
		lines = append(lines, string(runes[:splitAt]))
		runes = runes[splitAt:]
		for len(runes) > 0 && runes[0] == ' ' {
			runes = runes[1:]
		}
	}
	if len(runes) > 0 {
		lines = append(lines, string(runes))
	}
	return lines
}
