package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/glebovdev/radioalarm/internal/player"
	"github.com/glebovdev/radioalarm/internal/station"
	"github.com/rivo/tview"
)

func (ui *UI) createStationListTable() *tview.Table {
	table := tview.NewTable().
		SetBorders(false).
		SetSeparator(' ').
		SetSelectable(true, false).
		SetFixed(1, 0)

	table.SetBorder(true).
		SetTitle(fmt.Sprintf("Stations (%d)", len(ui.stations))).
		SetBorderColor(ui.colors.borders).
		SetTitleColor(ui.colors.foreground).
		SetBackgroundColor(ui.colors.background).
		SetBorderPadding(1, 0, 1, 1)

	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(ui.colors.background).
		Background(ui.colors.highlight))

	headers := []string{" ", "Name", "Stream"}
	for col, title := range headers {
		cell := tview.NewTableCell(title).
			SetTextColor(ui.colors.foreground).
			SetBackgroundColor(ui.colors.headerBackground).
			SetSelectable(false)
		if col == 0 {
			cell.SetMaxWidth(2)
		} else {
			cell.SetExpansion(1)
		}
		table.SetCell(0, col, cell)
	}

	for i := range ui.stations {
		ui.setStationRow(table, i+1, i)
	}

	if i := station.IndexOf(ui.stations, ui.currentSnapshot().URL); i >= 0 {
		table.Select(i+1, 0)
	} else if len(ui.stations) > 0 {
		table.Select(1, 0)
	}

	table.SetSelectedFunc(func(row, column int) {
		ui.onStationSelected()
	})

	return table
}

func (ui *UI) setStationRow(table *tview.Table, row int, stationIndex int) {
	if stationIndex < 0 || stationIndex >= len(ui.stations) {
		return
	}
	s := ui.stations[stationIndex]

	table.SetCell(row, 0, tview.NewTableCell(ui.stationIcon(s)).
		SetTextColor(ui.colors.highlight).
		SetMaxWidth(2))

	table.SetCell(row, 1, tview.NewTableCell(s.Name).
		SetTextColor(ui.colors.foreground).
		SetMaxWidth(35).
		SetExpansion(1))

	kind := "stream"
	if s.IsPlaylist() {
		kind = "playlist"
	}
	table.SetCell(row, 2, tview.NewTableCell(kind).
		SetTextColor(ui.colors.foreground).
		SetExpansion(1))
}

// stationIcon marks the configured station with the player state.
func (ui *UI) stationIcon(s station.Station) string {
	if s.URL != ui.currentSnapshot().URL {
		return " "
	}

	switch ui.statusRenderer.State() {
	case player.StatePlaying, player.StateResolving, player.StatePreparing:
		return ui.getPlayingIndicator()
	case player.StatePaused:
		return PauseIcon
	default:
		return "•"
	}
}

func (ui *UI) updateStationListPlayingIndicator() {
	for i := range ui.stations {
		ui.setStationRow(ui.stationList, i+1, i)
	}
}
