package alarm

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// TimerWaker is an in-process Waker. Wake-ups only fire while the
// process is running.
type TimerWaker struct {
	mu      sync.Mutex
	timers  map[int]*time.Timer
	onWake  func(id int)
	nowFunc func() time.Time
}

// NewTimerWaker creates a TimerWaker that calls onWake from its own goroutine.
func NewTimerWaker(onWake func(id int)) *TimerWaker {
	return &TimerWaker{
		timers:  make(map[int]*time.Timer),
		onWake:  onWake,
		nowFunc: time.Now,
	}
}

// SetHandler replaces the wake-up callback.
func (w *TimerWaker) SetHandler(onWake func(id int)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onWake = onWake
}

func (w *TimerWaker) ScheduleWakeup(at time.Time, id int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[id]; ok {
		t.Stop()
	}

	delay := at.Sub(w.nowFunc())
	if delay < 0 {
		delay = 0
	}

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		w.mu.Lock()
		if w.timers[id] != timer {
			w.mu.Unlock()
			return
		}
		delete(w.timers, id)
		handler := w.onWake
		w.mu.Unlock()

		log.Debug().Int("id", id).Msg("Wake-up fired")
		if handler != nil {
			handler(id)
		}
	})
	w.timers[id] = timer

	log.Debug().Int("id", id).Dur("in", delay).Msg("Wake-up scheduled")
}

func (w *TimerWaker) CancelWakeup(id int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[id]; ok {
		t.Stop()
		delete(w.timers, id)
		log.Debug().Int("id", id).Msg("Wake-up cancelled")
	}
}

// Pending reports whether a wake-up is registered for id.
func (w *TimerWaker) Pending(id int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.timers[id]
	return ok
}

// Stop cancels every pending wake-up.
func (w *TimerWaker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for id, t := range w.timers {
		t.Stop()
		delete(w.timers, id)
	}
}
