package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/glebovdev/radioalarm/internal/alarm"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

const (
	pickerWidth  = 36
	pickerHeight = 11
)

// pickerDefaults returns the time the picker opens with: the stored alarm
// time, or the current time when no alarm was set.
func pickerDefaults(hour, minute int, now time.Time) (int, int) {
	if hour == alarm.NoTime || minute == alarm.NoTime {
		return now.Hour(), now.Minute()
	}
	return hour, minute
}

func parseClock(hourText, minuteText string) (int, int, error) {
	hour, err := strconv.Atoi(strings.TrimSpace(hourText))
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, errors.New("hour must be 0-23")
	}
	minute, err := strconv.Atoi(strings.TrimSpace(minuteText))
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, errors.New("minute must be 0-59")
	}
	return hour, minute, nil
}

func (ui *UI) showTimePicker() {
	storedHour, storedMinute := ui.radio.AlarmTime()
	hour, minute := pickerDefaults(storedHour, storedMinute, ui.now())

	form := tview.NewForm()
	form.AddInputField("Hour", fmt.Sprintf("%02d", hour), 4, tview.InputFieldInteger, nil)
	form.AddInputField("Minute", fmt.Sprintf("%02d", minute), 4, tview.InputFieldInteger, nil)

	form.AddButton("Set", func() {
		hourText := form.GetFormItemByLabel("Hour").(*tview.InputField).GetText()
		minuteText := form.GetFormItemByLabel("Minute").(*tview.InputField).GetText()

		h, m, err := parseClock(hourText, minuteText)
		if err != nil {
			form.SetTitle(" " + err.Error() + " ")
			return
		}

		status, err := ui.radio.SetAlarm(h, m)
		if err != nil {
			form.SetTitle(" " + err.Error() + " ")
			return
		}
		log.Debug().Msg(status.String())
		ui.dismissModal()
	})
	form.AddButton("Cancel", ui.dismissModal)
	form.SetCancelFunc(ui.dismissModal)

	form.SetFieldBackgroundColor(ui.colors.background).
		SetFieldTextColor(ui.colors.highlight).
		SetLabelColor(ui.colors.foreground).
		SetButtonBackgroundColor(ui.colors.helpBackground).
		SetButtonTextColor(ui.colors.foreground).
		SetBackgroundColor(ui.colors.modalBackground)
	form.SetBorder(true).
		SetBorderColor(ui.colors.borders).
		SetTitle(" Alarm time ").
		SetTitleColor(ui.colors.highlight).
		SetTitleAlign(tview.AlignCenter)

	ui.pages.AddPage("modal", ui.centered(form, pickerWidth, pickerHeight), true, true)
	ui.app.SetFocus(form)
}
