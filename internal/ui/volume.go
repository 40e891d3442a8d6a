package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/glebovdev/radioalarm/internal/config"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

func (ui *UI) buildVolumeBar(container *tview.Flex) {
	const barHeight = 8

	snap := ui.currentSnapshot()
	displayVolume := snap.Volume
	isMuted := snap.Muted

	filledLines := (displayVolume * barHeight) / 100
	emptyLines := barHeight - filledLines

	createText := func(text string, color tcell.Color) *tview.TextView {
		tv := tview.NewTextView()
		tv.SetText(text)
		tv.SetTextAlign(tview.AlignRight)
		tv.SetTextColor(color)
		tv.SetBackgroundColor(ui.colors.background)
		return tv
	}

	barColor := ui.colors.highlight
	if isMuted {
		barColor = tcell.ColorRed
	}

	createBarLine := func(barText string, color tcell.Color, showPercent bool) *tview.Flex {
		line := tview.NewFlex().SetDirection(tview.FlexColumn)
		line.SetBackgroundColor(ui.colors.background)

		if showPercent {
			percentView := createText(fmt.Sprintf("%d%%", displayVolume), barColor)
			if isMuted {
				percentView.SetTextStyle(tcell.StyleDefault.
					Foreground(barColor).
					Background(ui.colors.background).
					Attributes(tcell.AttrStrikeThrough))
			}
			line.AddItem(percentView, 4, 0, false)
		} else {
			line.AddItem(createText("    ", ui.colors.foreground), 4, 0, false)
		}

		line.AddItem(createText(barText, color), 0, 1, false)
		return line
	}

	container.AddItem(createText("   max", ui.colors.foreground), 1, 0, false)

	for i := 0; i < emptyLines; i++ {
		container.AddItem(createBarLine(" ░░", ui.colors.foreground, false), 1, 0, false)
	}
	for i := 0; i < filledLines; i++ {
		container.AddItem(createBarLine(" ██", barColor, i == 0), 1, 0, false)
	}

	container.AddItem(createText("   min", ui.colors.foreground), 1, 0, false)
	container.AddItem(nil, 0, 1, false)
}

func (ui *UI) createGraphicalVolumeBar() *tview.Flex {
	volumeContainer := tview.NewFlex().SetDirection(tview.FlexRow)
	volumeContainer.SetBackgroundColor(ui.colors.background)
	ui.buildVolumeBar(volumeContainer)
	return volumeContainer
}

func (ui *UI) updateVolumeDisplay() {
	if ui.volumeView != nil {
		ui.volumeView.Clear()
		ui.buildVolumeBar(ui.volumeView)
	}
}

// adjustVolume changes the stored volume. Changing the volume while muted
// unmutes at the stored level.
func (ui *UI) adjustVolume(delta int) {
	snap := ui.currentSnapshot()

	volume := snap.Volume
	if !snap.Muted {
		volume = config.ClampVolume(volume + delta)
	}

	volume = ui.radio.SetVolume(volume)
	ui.mu.Lock()
	ui.snapshot.Volume = volume
	ui.snapshot.Muted = false
	ui.mu.Unlock()

	ui.updateVolumeDisplay()
	log.Debug().Msgf("Volume adjusted to %d%%", volume)
}

func (ui *UI) toggleMute() {
	muted := !ui.currentSnapshot().Muted
	ui.radio.SetMuted(muted)

	ui.mu.Lock()
	ui.snapshot.Muted = muted
	ui.mu.Unlock()

	ui.updateVolumeDisplay()
}
