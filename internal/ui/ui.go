package ui

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/glebovdev/radioalarm/internal/alarm"
	"github.com/glebovdev/radioalarm/internal/config"
	"github.com/glebovdev/radioalarm/internal/player"
	"github.com/glebovdev/radioalarm/internal/service"
	"github.com/glebovdev/radioalarm/internal/station"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

const (
	VolumeStep         = 5
	HeaderHeight       = 3
	FooterHeightWide   = 3 // Wide: 1 row with padding (top + text + bottom)
	FooterHeightNarrow = 6 // Narrow: 2 rows × 3 lines each
	PlayerPanelHeight  = 12
	FooterBreakpoint   = 110 // Width threshold for responsive footer
)

// PauseIcon uses platform-specific character (Windows renders ⏸ as emoji)
var PauseIcon = func() string {
	if runtime.GOOS == "windows" {
		return "❚❚"
	}
	return "⏸"
}()

// Radio is the alarm service as seen by the terminal UI.
type Radio interface {
	Snapshot() service.Snapshot
	State() player.State
	TogglePlay()
	Stop()
	SelectStation(url string) error
	Stations() []station.Station
	SetAlarm(hour, minute int) (alarm.Status, error)
	SetAlarmEnabled(enabled bool) alarm.Status
	AlarmTime() (hour, minute int)
	SetVolume(volumePercent int) int
	SetMuted(muted bool)
	Subscribe(fn func(service.Snapshot))
}

type UI struct {
	app             *tview.Application
	radio           Radio
	stations        []station.Station
	stationList     *tview.Table
	helpPanel       *tview.Box
	contentLayout   *tview.Flex
	stationView     *tview.TextView
	trackView       *tview.TextView
	alarmView       *tview.TextView
	volumeView      *tview.Flex
	mainLayout      *tview.Flex
	pages           *tview.Pages
	stopUpdates     chan struct{}
	snapshot        service.Snapshot
	lastFooterWidth int
	mu              sync.Mutex
	animationFrame  int
	playingSpinner  *PlayingSpinner
	statusRenderer  *StatusRenderer
	now             func() time.Time
	colors          struct {
		background       tcell.Color
		foreground       tcell.Color
		borders          tcell.Color
		highlight        tcell.Color
		headerBackground tcell.Color
		helpBackground   tcell.Color
		helpForeground   tcell.Color
		helpHotkey       tcell.Color
		modalBackground  tcell.Color
	}
}

func NewUI(radio Radio, theme config.Theme) *UI {
	ui := &UI{
		app:         tview.NewApplication(),
		radio:       radio,
		stations:    radio.Stations(),
		stopUpdates: make(chan struct{}),
		snapshot:    radio.Snapshot(),
		now:         time.Now,
	}

	ui.colors.background = config.GetColor(theme.Background)
	ui.colors.foreground = config.GetColor(theme.Foreground)
	ui.colors.borders = config.GetColor(theme.Borders)
	ui.colors.highlight = config.GetColor(theme.Highlight)
	ui.colors.headerBackground = config.GetColor(theme.HeaderBackground)
	ui.colors.helpBackground = config.GetColor(theme.HelpBackground)
	ui.colors.helpForeground = config.GetColor(theme.HelpForeground)
	ui.colors.helpHotkey = config.GetColor(theme.HelpHotkey)
	ui.colors.modalBackground = config.GetColor(theme.ModalBackground)

	ui.statusRenderer = NewStatusRenderer()
	ui.statusRenderer.SetPrimaryColor(ui.colors.highlight.String())
	ui.statusRenderer.Update(radio.State(), ui.snapshot)

	radio.Subscribe(ui.onSnapshot)

	return ui
}

func (ui *UI) safeCloseChannel() {
	ui.mu.Lock()
	defer ui.mu.Unlock()

	if ui.stopUpdates != nil {
		select {
		case <-ui.stopUpdates:
			// Already closed
		default:
			close(ui.stopUpdates)
		}
		ui.stopUpdates = nil
	}
}

func (ui *UI) stop() {
	ui.radio.Stop()
	ui.safeCloseChannel()
	ui.app.Stop()
}

// Shutdown stops the UI gracefully from external callers (e.g., signal handlers).
func (ui *UI) Shutdown() {
	ui.app.QueueUpdateDraw(func() {
		ui.stop()
	})
}

func (ui *UI) Run() error {
	ui.setupUI()
	ui.configureScreen()
	ui.applySnapshot(ui.radio.Snapshot())
	ui.startAnimation()

	return ui.app.SetRoot(ui.pages, true).EnableMouse(true).SetFocus(ui.stationList).Run()
}

func (ui *UI) configureScreen() {
	bgStyle := tcell.StyleDefault.Background(ui.colors.background)
	ui.app.SetBeforeDrawFunc(func(screen tcell.Screen) bool {
		screen.SetStyle(bgStyle)
		screen.Clear()
		return false
	})

	var titleSet sync.Once
	ui.app.SetAfterDrawFunc(func(screen tcell.Screen) {
		titleSet.Do(func() { screen.SetTitle(config.AppName) })
	})
}

func (ui *UI) setupUI() {
	header := ui.createHeader()
	playerPanel := ui.createPlayerPanel()
	ui.stationList = ui.createStationListTable()
	ui.helpPanel = ui.createFooter()

	ui.contentLayout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(header, HeaderHeight, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(playerPanel, PlayerPanelHeight, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(ui.stationList, 0, 1, true).
		AddItem(ui.helpPanel, FooterHeightWide, 0, false)
	ui.contentLayout.SetBackgroundColor(ui.colors.background)

	wrapper := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(nil, 3, 0, false).
		AddItem(ui.contentLayout, 0, 1, true).
		AddItem(nil, 3, 0, false)
	wrapper.SetBackgroundColor(ui.colors.background)

	ui.mainLayout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(nil, 1, 0, false).
		AddItem(wrapper, 0, 1, true).
		AddItem(nil, 1, 0, false)
	ui.mainLayout.SetBackgroundColor(ui.colors.background)

	ui.pages = tview.NewPages().
		AddPage("main", ui.mainLayout, true, true)
	ui.pages.SetBackgroundColor(ui.colors.background)

	ui.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if ui.pages.HasPage("modal") {
			return event
		}
		return ui.globalInputHandler(event)
	})
}

func (ui *UI) createHeader() tview.Primitive {
	titleView := tview.NewTextView()
	titleView.SetText(" " + config.AppName)
	titleView.SetTextAlign(tview.AlignLeft)
	titleView.SetTextColor(ui.colors.foreground)
	titleView.SetBackgroundColor(ui.colors.headerBackground)

	versionView := tview.NewTextView()
	versionView.SetText("v" + config.AppVersion + " ")
	versionView.SetTextAlign(tview.AlignRight)
	versionView.SetTextColor(ui.colors.foreground)
	versionView.SetBackgroundColor(ui.colors.headerBackground)

	textFlex := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(titleView, 0, 1, false).
		AddItem(versionView, 10, 0, false)
	textFlex.SetBackgroundColor(ui.colors.headerBackground)

	textWithPadding := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(tview.NewBox().SetBackgroundColor(ui.colors.headerBackground), 1, 0, false).
		AddItem(textFlex, 0, 1, false).
		AddItem(tview.NewBox().SetBackgroundColor(ui.colors.headerBackground), 1, 0, false)
	textWithPadding.SetBackgroundColor(ui.colors.headerBackground)

	headerFlex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(tview.NewBox().SetBackgroundColor(ui.colors.headerBackground), 1, 0, false).
		AddItem(textWithPadding, 1, 0, false).
		AddItem(tview.NewBox().SetBackgroundColor(ui.colors.headerBackground), 1, 0, false)
	headerFlex.SetBackgroundColor(ui.colors.headerBackground)

	return headerFlex
}

func (ui *UI) newLabel(text string) *tview.TextView {
	label := tview.NewTextView()
	label.SetText(text)
	label.SetTextColor(ui.colors.foreground)
	label.SetBackgroundColor(ui.colors.background)
	label.SetWrap(false)
	return label
}

func (ui *UI) newValue() *tview.TextView {
	value := tview.NewTextView()
	value.SetDynamicColors(true)
	value.SetTextColor(ui.colors.highlight)
	value.SetBackgroundColor(ui.colors.background)
	value.SetTextStyle(tcell.StyleDefault.Background(ui.colors.background).Attributes(tcell.AttrBold))
	return value
}

func (ui *UI) createPlayerPanel() *tview.Flex {
	ui.stationView = ui.newValue()
	ui.stationView.SetWrap(false)
	ui.trackView = ui.newValue()
	ui.trackView.SetWrap(true)
	ui.alarmView = ui.newValue()
	ui.alarmView.SetWrap(true)

	infoContent := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(ui.newLabel(" Station:"), 1, 0, false).
		AddItem(ui.stationView, 1, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(ui.newLabel(" Playing:"), 1, 0, false).
		AddItem(ui.trackView, 1, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(ui.newLabel(" Alarm:"), 1, 0, false).
		AddItem(ui.alarmView, 2, 0, false).
		AddItem(nil, 0, 1, false)
	infoContent.SetBackgroundColor(ui.colors.background)

	ui.volumeView = ui.createGraphicalVolumeBar()

	contentFlex := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(infoContent, 0, 1, false).
		AddItem(ui.volumeView, 7, 0, false)
	contentFlex.SetBackgroundColor(ui.colors.background)

	contentWithPadding := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(nil, 4, 0, false).
		AddItem(contentFlex, 0, 1, false).
		AddItem(nil, 4, 0, false)
	contentWithPadding.SetBackgroundColor(ui.colors.background)

	return contentWithPadding
}

func (ui *UI) onSnapshot(snap service.Snapshot) {
	ui.app.QueueUpdateDraw(func() {
		ui.applySnapshot(snap)
	})
}

// applySnapshot redraws everything that depends on the service state. It
// must run on the tview event loop.
func (ui *UI) applySnapshot(snap service.Snapshot) {
	ui.mu.Lock()
	ui.snapshot = snap
	ui.mu.Unlock()

	ui.statusRenderer.Update(ui.radio.State(), snap)

	if ui.stationView != nil {
		ui.stationView.SetText(fmt.Sprintf(" [%s]%s[-]", ui.colors.highlight.String(), tview.Escape(snap.Station)))
	}
	if ui.trackView != nil {
		ui.trackView.SetText(fmt.Sprintf(" [%s]%s[-]", ui.colors.highlight.String(), tview.Escape(trackText(snap))))
	}
	if ui.alarmView != nil {
		ui.alarmView.SetText(" " + alarmText(snap))
	}
	if ui.stationList != nil {
		ui.updateStationListPlayingIndicator()
	}
	ui.updateVolumeDisplay()
}

func trackText(snap service.Snapshot) string {
	switch {
	case snap.Track != "":
		return snap.Track
	case snap.Playing:
		return "Live"
	default:
		return "-"
	}
}

func alarmText(snap service.Snapshot) string {
	toggle := "[off]"
	if snap.AlarmEnabled {
		toggle = "[on] "
	}
	return tview.Escape(toggle) + " " + snap.AlarmStatus
}

func (ui *UI) currentSnapshot() service.Snapshot {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	return ui.snapshot
}

type PlayingSpinner struct {
	Frames []string
	FPS    time.Duration
}

func NewPlayingSpinner() *PlayingSpinner {
	return &PlayingSpinner{
		Frames: []string{"⣾ ", "⣽ ", "⣻ ", "⢿ ", "⡿ ", "⣟ ", "⣯ ", "⣷ "},
		FPS:    time.Second / 10,
	}
}

func (ui *UI) getPlayingIndicator() string {
	if ui.playingSpinner == nil {
		ui.playingSpinner = NewPlayingSpinner()
	}

	ui.mu.Lock()
	frame := ui.animationFrame
	ui.mu.Unlock()

	return ui.playingSpinner.Frames[frame%len(ui.playingSpinner.Frames)]
}

func (ui *UI) startAnimation() {
	if ui.playingSpinner == nil {
		ui.playingSpinner = NewPlayingSpinner()
	}

	ui.mu.Lock()
	stopCh := ui.stopUpdates
	ui.mu.Unlock()

	go func() {
		animationTicker := time.NewTicker(ui.playingSpinner.FPS)
		defer animationTicker.Stop()

		for {
			select {
			case <-stopCh:
				return
			case <-animationTicker.C:
				if !ui.statusRenderer.Animating() {
					continue
				}

				ui.mu.Lock()
				ui.animationFrame++
				ui.mu.Unlock()

				ui.statusRenderer.AdvanceAnimation()

				ui.app.QueueUpdateDraw(func() {
					ui.updateStationListPlayingIndicator()
				})
			}
		}
	}()
}

func (ui *UI) selectedStation() (station.Station, bool) {
	row, _ := ui.stationList.GetSelection()
	if row <= 0 || row > len(ui.stations) {
		return station.Station{}, false
	}
	return ui.stations[row-1], true
}

func (ui *UI) onStationSelected() {
	s, ok := ui.selectedStation()
	if !ok {
		return
	}

	log.Info().Msgf("Selected station: %s", s.Name)
	if err := ui.radio.SelectStation(s.URL); err != nil {
		ui.showInfoModal("Error", err.Error())
	}
}

func (ui *UI) toggleAlarm() {
	snap := ui.currentSnapshot()
	if !snap.AlarmSet {
		ui.showTimePicker()
		return
	}
	status := ui.radio.SetAlarmEnabled(!snap.AlarmEnabled)
	log.Debug().Msg(status.String())
}

func (ui *UI) globalInputHandler(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyRune:
		switch event.Rune() {
		case 'q', 'Q':
			ui.stop()
			return nil
		case ' ':
			ui.radio.TogglePlay()
			return nil
		case 's', 'S':
			ui.radio.Stop()
			return nil
		case 't', 'T':
			ui.showTimePicker()
			return nil
		case 'e', 'E':
			ui.toggleAlarm()
			return nil
		case '+', '=':
			ui.adjustVolume(VolumeStep)
			return nil
		case '-', '_':
			ui.adjustVolume(-VolumeStep)
			return nil
		case 'm', 'M':
			ui.toggleMute()
			return nil
		case '?':
			ui.showHelpModal()
			return nil
		case 'a', 'A':
			ui.showAboutModal()
			return nil
		}
	case tcell.KeyEnter:
		ui.onStationSelected()
		return nil
	case tcell.KeyEscape:
		ui.stop()
		return nil
	case tcell.KeyRight:
		// Right arrow - volume up (hidden shortcut)
		ui.adjustVolume(VolumeStep)
		return nil
	case tcell.KeyLeft:
		// Left arrow - volume down (hidden shortcut)
		ui.adjustVolume(-VolumeStep)
		return nil
	}
	return event
}
