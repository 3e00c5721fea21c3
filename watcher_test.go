package lolgpio

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type levelRecorder struct {
	changes []string
}

func (lr *levelRecorder) LevelChanged(pin uint16, level bool) {
	state := "low"
	if level {
		state = "high"
	}
	lr.changes = append(lr.changes, fmt.Sprintf("%02d:%s", pin, state))
}

func TestWatcherReportsChanges(t *testing.T) {
	lg := simulated()
	sim := initSimulated(t, lg)
	defer lg.Close()

	rec := &levelRecorder{}
	w := NewWatcher(lg.IoDriver(), []uint16{4, 8})
	w.AddListener(rec)

	if err := w.Poll(); err != nil {
		t.Fatalf("Poll returned err: %v", err)
	}
	assertInts(t, len(rec.changes), 2)

	w.Poll()
	assertInts(t, len(rec.changes), 2)

	sim.SetInput(4, true)
	lg.IoDriver().WritePin(8, 1)
	w.Poll()

	want := []string{"04:low", "08:low", "04:high", "08:high"}
	if len(rec.changes) != len(want) {
		t.Fatalf("got %v want %v", rec.changes, want)
	}
	for i := range want {
		if rec.changes[i] != want[i] {
			t.Errorf("got %v want %v", rec.changes, want)
			break
		}
	}

	level, known := w.Level(4)
	assertBools(t, known, true)
	assertBools(t, level, true)
}

func TestWatcherCollectsErrors(t *testing.T) {
	lg := simulated()
	initSimulated(t, lg)
	defer lg.Close()

	rec := &levelRecorder{}
	w := NewWatcher(lg.IoDriver(), []uint16{4, 17, 8})
	w.AddListener(rec)

	if err := w.Poll(); err == nil {
		t.Error("got nil error polling unconfigured pin")
	}
	assertInts(t, len(rec.changes), 2)
}

func TestWatcherRunStops(t *testing.T) {
	lg := simulated()
	initSimulated(t, lg)
	defer lg.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		lg.StartTicker(ctx, 5*time.Millisecond)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ticker did not stop after cancel")
	}

	_, known := lg.Watcher().Level(9)
	assertBools(t, known, true)
}

func TestLogListenerPrintsState(t *testing.T) {
	var buf bytes.Buffer
	ll := logListener{logger: log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel})}

	ll.LevelChanged(4, true)

	out := buf.String()
	for _, want := range []string{"pin=4", "state=true"} {
		if !strings.Contains(out, want) {
			t.Errorf("log line %q misses %q", out, want)
		}
	}
}
