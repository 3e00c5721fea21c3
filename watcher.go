package lolgpio

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/hubertat/lolgpio/drivers"
)

// LevelListener is notified when a watched pin changes level.
// The first poll reports every pin.
type LevelListener interface {
	LevelChanged(pin uint16, level bool)
}

type Watcher struct {
	pins   drivers.PinIO
	watch  []uint16
	levels map[uint16]bool

	listeners []LevelListener
	lock      sync.Mutex
	logger    *log.Logger
}

func NewWatcher(pins drivers.PinIO, watch []uint16) *Watcher {
	return &Watcher{
		pins:   pins,
		watch:  append([]uint16{}, watch...),
		levels: make(map[uint16]bool),
		logger: log.NewWithOptions(os.Stderr, log.Options{
			Prefix: "watcher",
			Level:  log.GetLevel(),
		}),
	}
}

func (w *Watcher) AddListener(listener LevelListener) {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.listeners = append(w.listeners, listener)
}

// Poll reads every watched pin once and notifies listeners of changes.
// Read errors are collected; the remaining pins are still polled.
func (w *Watcher) Poll() (err error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	for _, pin := range w.watch {
		level, readErr := w.pins.ReadPin(pin)
		if readErr != nil {
			if err == nil {
				err = errors.Wrapf(readErr, "pin %d", pin)
			} else {
				err = errors.Wrapf(err, "pin %d: %v", pin, readErr)
			}
			continue
		}

		last, known := w.levels[pin]
		if known && last == level {
			continue
		}
		w.levels[pin] = level

		w.logger.Debug("level changed", "pin", pin, "state", level)
		for _, listener := range w.listeners {
			listener.LevelChanged(pin, level)
		}
	}

	return
}

// Level returns the last polled level of pin.
func (w *Watcher) Level(pin uint16) (level bool, known bool) {
	w.lock.Lock()
	defer w.lock.Unlock()

	level, known = w.levels[pin]
	return
}

// Run polls every interval until ctx is done.
func (w *Watcher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := w.Poll(); err != nil {
			w.logger.Error("failed to poll pins", "err", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

type logListener struct {
	logger *log.Logger
}

func (ll logListener) LevelChanged(pin uint16, level bool) {
	ll.logger.Info("pin level", "pin", pin, "state", level)
}
