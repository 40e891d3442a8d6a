package ui

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/glebovdev/radioalarm/internal/player"
	"github.com/glebovdev/radioalarm/internal/service"
	"github.com/rivo/tview"
)

type StatusRenderer struct {
	mu            sync.Mutex
	state         player.State
	isMuted       bool
	alarmOn       bool
	animFrame     int
	maxAnimFrame  int
	tickCount     int
	ticksPerFrame int

	primaryColor string
}

func NewStatusRenderer() *StatusRenderer {
	return &StatusRenderer{
		state:         player.StateIdle,
		maxAnimFrame:  4,
		ticksPerFrame: 8, // Slow down animation (8 ticks per frame)
	}
}

func (s *StatusRenderer) SetPrimaryColor(color string) {
	s.primaryColor = color
}

// Update records the player state and flags shown in the status line.
func (s *StatusRenderer) Update(state player.State, snap service.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.isMuted = snap.Muted
	s.alarmOn = snap.AlarmEnabled
}

func (s *StatusRenderer) State() player.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Animating reports whether the current state has an animated indicator.
func (s *StatusRenderer) Animating() bool {
	switch s.State() {
	case player.StateResolving, player.StatePreparing, player.StatePlaying:
		return true
	default:
		return false
	}
}

func (s *StatusRenderer) AdvanceAnimation() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tickCount++
	if s.tickCount >= s.ticksPerFrame {
		s.tickCount = 0
		s.animFrame = (s.animFrame + 1) % s.maxAnimFrame
	}
}

func (s *StatusRenderer) Render() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var parts []string
	switch s.state {
	case player.StateResolving:
		parts = []string{s.spinner() + " RESOLVING"}
	case player.StatePreparing:
		parts = []string{s.spinner() + " BUFFERING"}
	case player.StatePlaying:
		parts = []string{s.playingDot() + " LIVE"}
	case player.StatePaused:
		parts = []string{PauseIcon + " PAUSED"}
	case player.StateStopped:
		parts = []string{"■ STOPPED"}
	default:
		parts = []string{"○ IDLE"}
	}

	if s.isMuted {
		parts = append(parts, "[red]MUTED[-]")
	}

	if s.alarmOn {
		parts = append(parts, "⏰ ON")
	} else {
		parts = append(parts, "⏰ OFF")
	}

	return joinParts(parts)
}

func (s *StatusRenderer) spinner() string {
	circles := []string{"◐", "◓", "◑", "◒"}
	return circles[s.animFrame]
}

func (s *StatusRenderer) playingDot() string {
	dots := []string{"●", "◉", "○", "◉"}
	dot := dots[s.animFrame]

	if s.primaryColor != "" {
		dot = fmt.Sprintf("[%s]%s[-]", s.primaryColor, dot)
	}
	return dot
}

func joinParts(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	result := parts[0]
	for i := 1; i < len(parts); i++ {
		result += " │ " + parts[i]
	}
	return result
}

func playbackHint(state player.State, keyColor string) string {
	switch state {
	case player.StatePaused:
		return fmt.Sprintf("[%s]Enter[-] play  [%s]Space[-] resume", keyColor, keyColor)
	case player.StatePlaying, player.StateResolving, player.StatePreparing:
		return fmt.Sprintf("[%s]Enter[-] play  [%s]Space[-] pause  [%s]s[-] stop", keyColor, keyColor, keyColor)
	default:
		return fmt.Sprintf("[%s]Enter[-] play  [%s]Space[-] play", keyColor, keyColor)
	}
}

func (ui *UI) getHelpText() string {
	keyColor := ui.colors.helpHotkey.String()
	hint := playbackHint(ui.statusRenderer.State(), keyColor)

	muteText := "mute"
	if ui.currentSnapshot().Muted {
		muteText = "unmute"
	}

	return fmt.Sprintf(" %s  [%s]t[-] alarm  [%s]e[-] on/off  [%s]+/-[-] vol  [%s]m[-] %s  [%s]?[-] help  [%s]q[-] quit ",
		hint, keyColor, keyColor, keyColor, keyColor, muteText, keyColor, keyColor)
}

func (ui *UI) handleFooterResize(width int) {
	isWide := width >= FooterBreakpoint
	wasWide := ui.lastFooterWidth >= FooterBreakpoint

	if ui.lastFooterWidth > 0 && isWide != wasWide && ui.contentLayout != nil {
		newHeight := FooterHeightWide
		if !isWide {
			newHeight = FooterHeightNarrow
		}
		ui.contentLayout.ResizeItem(ui.helpPanel, newHeight, 0)
	}
	ui.lastFooterWidth = width
}

func (ui *UI) drawWideFooter(screen tcell.Screen, x, y, width, height int, helpText, statusText string) {
	helpWidth := width * 2 / 3
	statusWidth := width - helpWidth

	for row := y; row < y+height; row++ {
		for col := x; col < x+helpWidth; col++ {
			screen.SetContent(col, row, ' ', nil, tcell.StyleDefault.Background(ui.colors.helpBackground))
		}
	}

	for row := y; row < y+height; row++ {
		for col := x + helpWidth; col < x+width; col++ {
			screen.SetContent(col, row, ' ', nil, tcell.StyleDefault.Background(ui.colors.background))
		}
	}

	centerY := y + height/2
	tview.Print(screen, helpText, x, centerY, helpWidth, tview.AlignCenter, ui.colors.helpForeground)
	tview.Print(screen, statusText, x+helpWidth, centerY, statusWidth-2, tview.AlignRight, ui.colors.foreground)
}

func (ui *UI) drawNarrowFooter(screen tcell.Screen, x, y, width, height int, helpText, statusText string) {
	helpHeight := height / 2
	if helpHeight < 1 {
		helpHeight = 1
	}
	statusHeight := height - helpHeight
	helpBoxEnd := y + helpHeight

	for row := y; row < helpBoxEnd; row++ {
		for col := x; col < x+width; col++ {
			screen.SetContent(col, row, ' ', nil, tcell.StyleDefault.Background(ui.colors.helpBackground))
		}
	}

	for row := helpBoxEnd; row < y+height; row++ {
		for col := x; col < x+width; col++ {
			screen.SetContent(col, row, ' ', nil, tcell.StyleDefault.Background(ui.colors.background))
		}
	}

	helpTextY := y + helpHeight/2
	tview.Print(screen, helpText, x, helpTextY, width, tview.AlignCenter, ui.colors.helpForeground)

	if statusHeight > 0 {
		statusTextY := helpBoxEnd + statusHeight/2
		tview.Print(screen, statusText, x, statusTextY, width-2, tview.AlignRight, ui.colors.foreground)
	}
}

func (ui *UI) createFooter() *tview.Box {
	box := tview.NewBox().SetBackgroundColor(ui.colors.background)

	box.SetDrawFunc(func(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
		ui.handleFooterResize(width)

		helpText := ui.getHelpText()
		statusText := " " + ui.statusRenderer.Render() + " "

		isWide := width >= FooterBreakpoint
		usedHeight := height
		if isWide && height > FooterHeightWide {
			usedHeight = FooterHeightWide
		}

		if isWide {
			ui.drawWideFooter(screen, x, y, width, usedHeight, helpText, statusText)
		} else {
			ui.drawNarrowFooter(screen, x, y, width, height, helpText, statusText)
		}

		return x, y, width, height
	})

	return box
}
