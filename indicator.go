package lolgpio

import (
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/hubertat/lolgpio/drivers"
)

// StatusListener is notified when the indicated open/closed status changes.
type StatusListener interface {
	StatusChanged(open bool)
}

// Indicator shows the open/closed status on a red/green LED pair.
//
// With StatusPin set, the LEDs follow that input: the contact reads low while
// open, unless OpenHigh is set.
type Indicator struct {
	RedPin    uint16
	GreenPin  uint16
	StatusPin *uint16
	OpenHigh  bool

	red       drivers.DigitalOutput
	green     drivers.DigitalOutput
	open      bool
	known     bool
	listeners []StatusListener
	lock      sync.Mutex
	logger    *log.Logger
}

func (ind *Indicator) Init(driver drivers.IoDriver) (err error) {
	ind.red, err = driver.GetOutput(ind.RedPin)
	if err != nil {
		return errors.Wrap(err, "indicator red led")
	}
	ind.green, err = driver.GetOutput(ind.GreenPin)
	if err != nil {
		return errors.Wrap(err, "indicator green led")
	}
	if ind.StatusPin != nil {
		if _, err = driver.GetInput(*ind.StatusPin); err != nil {
			return errors.Wrap(err, "indicator status pin")
		}
	}

	ind.logger = log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "indicator",
		Level:  log.GetLevel(),
	})
	return nil
}

func (ind *Indicator) AddListener(listener StatusListener) {
	ind.lock.Lock()
	defer ind.lock.Unlock()

	ind.listeners = append(ind.listeners, listener)
}

// LevelChanged follows the status pin as reported by a Watcher.
func (ind *Indicator) LevelChanged(pin uint16, level bool) {
	if ind.StatusPin == nil || pin != *ind.StatusPin {
		return
	}

	open := level == ind.OpenHigh
	if err := ind.SetOpen(open); err != nil {
		ind.logger.Error("failed to follow status pin", "pin", pin, "open", open, "err", err)
		return
	}
	ind.logger.Debug("status", "pin", pin, "open", open)
}

// SetOpen lights green when open, red when closed. Listeners are told about
// changes only after both LEDs were switched.
func (ind *Indicator) SetOpen(open bool) error {
	ind.lock.Lock()
	changed, err := ind.setLeds(open)
	listeners := append([]StatusListener{}, ind.listeners...)
	ind.lock.Unlock()

	if err != nil {
		return err
	}
	if changed {
		for _, listener := range listeners {
			listener.StatusChanged(open)
		}
	}
	return nil
}

func (ind *Indicator) setLeds(open bool) (changed bool, err error) {
	if ind.red == nil || ind.green == nil {
		return false, errors.New("indicator not initialized")
	}

	redBefore, err := ind.red.GetState()
	if err != nil {
		return false, errors.Wrap(err, "failed to read red led")
	}

	if err = ind.red.Set(!open); err != nil {
		return false, errors.Wrap(err, "failed to set red led")
	}
	if err = ind.green.Set(open); err != nil {
		if rollbackErr := ind.red.Set(redBefore); rollbackErr != nil {
			return false, errors.Wrapf(err, "failed to set green led, red led not restored: %v", rollbackErr)
		}
		return false, errors.Wrap(err, "failed to set green led")
	}

	changed = !ind.known || ind.open != open
	ind.open = open
	ind.known = true
	return changed, nil
}

func (ind *Indicator) IsOpen() bool {
	ind.lock.Lock()
	defer ind.lock.Unlock()

	return ind.open
}
