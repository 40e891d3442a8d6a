package alarm

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTimerWakerFires(t *testing.T) {
	fired := make(chan int, 1)
	w := NewTimerWaker(func(id int) { fired <- id })
	defer w.Stop()

	w.ScheduleWakeup(time.Now().Add(10*time.Millisecond), RequestID)

	select {
	case id := <-fired:
		if id != RequestID {
			t.Errorf("fired id = %d, want %d", id, RequestID)
		}
	case <-time.After(time.Second):
		t.Fatal("wake-up did not fire")
	}

	if w.Pending(RequestID) {
		t.Error("fired wake-up should no longer be pending")
	}
}

func TestTimerWakerPastInstantFiresImmediately(t *testing.T) {
	fired := make(chan int, 1)
	w := NewTimerWaker(func(id int) { fired <- id })
	defer w.Stop()

	w.ScheduleWakeup(time.Now().Add(-time.Hour), 7)

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("past wake-up did not fire")
	}
}

func TestTimerWakerReplace(t *testing.T) {
	var count atomic.Int32
	fired := make(chan struct{}, 2)
	w := NewTimerWaker(func(int) {
		count.Add(1)
		fired <- struct{}{}
	})
	defer w.Stop()

	w.ScheduleWakeup(time.Now().Add(20*time.Millisecond), RequestID)
	w.ScheduleWakeup(time.Now().Add(60*time.Millisecond), RequestID)

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("replacement wake-up did not fire")
	}

	time.Sleep(100 * time.Millisecond)
	if got := count.Load(); got != 1 {
		t.Errorf("wake-ups fired = %d, want 1", got)
	}
}

func TestTimerWakerCancel(t *testing.T) {
	var count atomic.Int32
	w := NewTimerWaker(func(int) { count.Add(1) })
	defer w.Stop()

	w.ScheduleWakeup(time.Now().Add(20*time.Millisecond), RequestID)
	if !w.Pending(RequestID) {
		t.Fatal("wake-up should be pending")
	}

	w.CancelWakeup(RequestID)
	w.CancelWakeup(RequestID)

	time.Sleep(60 * time.Millisecond)
	if got := count.Load(); got != 0 {
		t.Errorf("cancelled wake-up fired %d times", got)
	}
	if w.Pending(RequestID) {
		t.Error("cancelled wake-up should not be pending")
	}
}

func TestTimerWakerSetHandler(t *testing.T) {
	fired := make(chan string, 1)
	w := NewTimerWaker(nil)
	defer w.Stop()

	w.SetHandler(func(int) { fired <- "new" })
	w.ScheduleWakeup(time.Now(), RequestID)

	select {
	case got := <-fired:
		if got != "new" {
			t.Errorf("handler = %q, want new", got)
		}
	case <-time.After(time.Second):
		t.Fatal("wake-up did not fire")
	}
}

func TestTimerWakerRearmAfterPassedAlarmIsBounded(t *testing.T) {
	now := time.Date(2024, time.March, 10, 9, 10, 0, 0, time.UTC)

	store := newMemStore()
	store.PutInt(KeyAlarmHour, 8)
	store.PutInt(KeyAlarmMinute, 30)
	store.PutBool(KeyAlarmEnabled, true)

	w := NewTimerWaker(nil)
	w.nowFunc = func() time.Time { return now }
	defer w.Stop()

	s := NewScheduler(store, w)
	s.now = func() time.Time { return now }

	var fires atomic.Int32
	w.SetHandler(func(id int) {
		fires.Add(1)
		s.EnableNextAlarm()
	})

	s.EnableNextAlarm()
	time.Sleep(200 * time.Millisecond)

	if n := fires.Load(); n > 1 {
		t.Fatalf("wake-up fired %d times in 200ms, want at most once", n)
	}
	if w.Pending(RequestID) {
		t.Error("no wake-up should be pending for an alarm time already passed")
	}
}
