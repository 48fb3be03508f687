package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vishnuarumugam/voiceCapture/conversation"
)

type tickMsg time.Time

const orbWidth = 38

// Ring palettes per phase, innermost first. Index 0 stays unlit.
var (
	orbColorsIdle   = []string{"", "231", "250", "245", "241", "238", "236"}
	orbColorsActive = []string{"", "226", "214", "208", "196", "124", "52"}
	orbColorsSpeak  = []string{"", "159", "117", "75", "33", "25", "17"}
)

type tuiModel struct {
	ctl *conversation.Controller

	mode          conversation.Mode
	inCall        bool
	frame         int
	width, height int

	transcript string
	copied     bool
	caption    string
	history    []conversation.Message
	notice     string
	noticeAge  int

	updateVersion string

	deviceLine   string
	providerLine string

	transcriptions int
	turns          int
}

func NewTUIProgram(ctl *conversation.Controller, deviceLine, providerLine string) *tea.Program {
	m := tuiModel{ctl: ctl, deviceLine: deviceLine, providerLine: providerLine}
	return tea.NewProgram(m, tea.WithAltScreen())
}

func tuiTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case " ", "space":
			m.ctl.Toggle()
		case "s":
			m.ctl.Speak()
		case "c":
			m.ctl.StartCall()
		case "e":
			m.ctl.EndCall()
		}

	case tickMsg:
		m.frame++
		if m.notice != "" {
			m.noticeAge++
			if m.noticeAge > 60 {
				m.notice = ""
				m.noticeAge = 0
			}
		}
		return m, tuiTick()

	case ModeMsg:
		m.mode = msg.Mode
		m.inCall = msg.InCall
		if !msg.InCall && msg.Mode == conversation.ModeIdle {
			m.caption = ""
		}

	case TranscriptMsg:
		m.transcript = msg.Text
		m.copied = msg.Copied
		if msg.Text != "" {
			m.transcriptions++
		}

	case UpdateMsg:
		m.updateVersion = msg.Version

	case CaptionMsg:
		m.caption = msg.Text

	case MessageMsg:
		m.history = append(m.history, msg.Msg)
		m.caption = ""
		if msg.Msg.Role == conversation.RoleUser {
			m.turns++
		}

	case NoticeMsg:
		m.notice = msg.Notice.Kind.String()
		m.noticeAge = 0
	}
	return m, nil
}

func (m tuiModel) statusLine() string {
	switch m.mode {
	case conversation.ModeManualRecording:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).Render("● REC")
	case conversation.ModeManualTranscribing:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render("◌ TRANSCRIBING")
	case conversation.ModeCallListening:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).Render("● LISTENING")
	case conversation.ModeCallSpeaking:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true).Render("▶ SPEAKING")
	case conversation.ModeCallCoolingDown:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("… COOLING DOWN")
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("○ STANDBY")
	}
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	orb := renderOrb(m.frame, m.mode)

	var infoLines []string
	infoLines = append(infoLines, m.statusLine())
	if m.providerLine != "" {
		infoLines = append(infoLines, lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render(m.providerLine))
	}
	if m.deviceLine != "" {
		infoLines = append(infoLines, lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(m.deviceLine))
	}
	if m.notice != "" {
		infoLines = append(infoLines, lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Render("⚠ "+m.notice))
	}
	infoLines = append(infoLines, "")

	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	boldStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
	if m.inCall {
		infoLines = append(infoLines, boldStyle.Render("e")+helpStyle.Render(" end call"))
	} else {
		infoLines = append(infoLines,
			boldStyle.Render("space")+helpStyle.Render(" record  ")+boldStyle.Render("s")+helpStyle.Render(" speak"),
			boldStyle.Render("c")+helpStyle.Render(" call  ")+boldStyle.Render("q")+helpStyle.Render(" quit"))
	}
	infoLines = append(infoLines, helpStyle.Render("voicecapture "+version))
	if m.updateVersion != "" {
		infoLines = append(infoLines, lipgloss.NewStyle().Foreground(lipgloss.Color("42")).
			Render(m.updateVersion+" available, run with -update"))
	}

	left := orb
	for _, line := range infoLines {
		left += line + "\n"
	}
	leftLines := strings.Split(left, "\n")

	rightWidth := m.width - orbWidth - 1
	if rightWidth < 20 {
		rightWidth = 20
	}
	right := m.renderConversation(rightWidth - 2)

	leftPadded := make([]string, m.height)
	for i := range leftPadded {
		if i < len(leftLines) {
			leftPadded[i] = leftLines[i]
		} else {
			leftPadded[i] = strings.Repeat(" ", orbWidth-1)
		}
	}

	leftPanel := lipgloss.NewStyle().
		Width(orbWidth - 1).
		Height(m.height).
		Render(strings.Join(leftPadded, "\n"))
	rightPanel := lipgloss.NewStyle().
		Width(rightWidth).
		Height(m.height).
		PaddingLeft(1).
		Render(right)

	return lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)
}

func (m tuiModel) renderConversation(wrapWidth int) string {
	if wrapWidth < 10 {
		wrapWidth = 10
	}
	var b strings.Builder

	userStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	botStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	if m.inCall {
		title := lipgloss.NewStyle().Foreground(lipgloss.Color("246")).
			Render(fmt.Sprintf("Call (%d turns)", m.turns))
		b.WriteString(title + "\n\n")

		// Last few exchanges fit most terminals; history itself is unbounded.
		start := 0
		if len(m.history) > 12 {
			start = len(m.history) - 12
		}
		for _, msg := range m.history[start:] {
			style := userStyle
			prefix := "you  "
			if msg.Role == conversation.RoleBot {
				style = botStyle
				prefix = "bot  "
			}
			for i, line := range wrapText(msg.Text, wrapWidth-5) {
				if i == 0 {
					b.WriteString(dimStyle.Render(prefix))
				} else {
					b.WriteString("     ")
				}
				b.WriteString(style.Render(line) + "\n")
			}
		}
		if m.caption != "" {
			b.WriteString("\n" + dimStyle.Render("… "+m.caption) + "\n")
		}
		return b.String()
	}

	if m.transcript != "" {
		title := lipgloss.NewStyle().Foreground(lipgloss.Color("246")).
			Render(fmt.Sprintf("Last transcription (#%d)", m.transcriptions))
		b.WriteString(title + "\n\n")
		lines := wrapText(m.transcript, wrapWidth)
		for i, line := range lines {
			b.WriteString(userStyle.Render(line))
			if i == len(lines)-1 && m.copied {
				b.WriteString(" " + botStyle.Render("[✓ copied]"))
			}
			b.WriteString("\n")
		}
		return b.String()
	}

	return dimStyle.Render("Nothing captured yet")
}

// renderOrb draws a pulsing concentric-ring orb, colored by phase. Two
// vertical pixels per character cell via half-block glyphs.
func renderOrb(frame int, mode conversation.Mode) string {
	const charsW = orbWidth - 2
	const charsH = 11
	const pixH = charsH * 2

	colors := orbColorsIdle
	pulse := 0.15
	switch mode {
	case conversation.ModeManualRecording, conversation.ModeCallListening:
		colors = orbColorsActive
		pulse = 0.9
	case conversation.ModeCallSpeaking:
		colors = orbColorsSpeak
		pulse = 0.6
	case conversation.ModeManualTranscribing, conversation.ModeCallCoolingDown:
		colors = orbColorsSpeak
		pulse = 0.25
	}

	breathe := math.Sin(float64(frame)*0.25) * pulse
	radii := []float64{1.2, 2.4, 3.6, 4.9, 6.3, 8.0}

	centerX := float64(charsW) / 2
	centerY := float64(pixH) / 2

	pixels := make([][]int, pixH)
	for y := range pixels {
		pixels[y] = make([]int, charsW)
		for x := 0; x < charsW; x++ {
			dx := float64(x) - centerX
			dy := float64(y) - centerY
			dist := math.Sqrt(dx*dx + dy*dy)
			for i, r := range radii {
				if dist < r+breathe*float64(i)*0.4 {
					pixels[y][x] = i + 1
					break
				}
			}
		}
	}

	styleFor := func(idx int) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(colors[idx]))
	}

	var b strings.Builder
	for cy := 0; cy < charsH; cy++ {
		for cx := 0; cx < charsW; cx++ {
			top := pixels[cy*2][cx]
			bot := pixels[cy*2+1][cx]
			switch {
			case top == 0 && bot == 0:
				b.WriteString(" ")
			case top == bot:
				b.WriteString(styleFor(top).Render("█"))
			case bot == 0:
				b.WriteString(styleFor(top).Render("▀"))
			case top == 0:
				b.WriteString(styleFor(bot).Render("▄"))
			default:
				b.WriteString(styleFor(top).Background(lipgloss.Color(colors[bot])).Render("▀"))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func wrapText(text string, width int) []string {
	if len(text) == 0 {
		return []string{""}
	}
	if width <= 0 {
		width = 1
	}

	var lines []string
	for len(text) > width {
		splitAt := width
		for i := width; i > 0; i-- {
			if text[i] == ' ' {
				splitAt = i
				break
			}
		}
		lines = append(lines, text[:splitAt])
		text = strings.TrimLeft(text[splitAt:], " ")
	}
	if len(text) > 0 {
		lines = append(lines, text)
	}
	return lines
}
