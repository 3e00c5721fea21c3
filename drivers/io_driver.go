package drivers

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrPinRange         = errors.New("pin out of range")
	ErrPinNotConfigured = errors.New("pin not configured")
	ErrUnknownDriver    = errors.New("unknown io driver")
)

// PinIO is the raw pin surface used by the attribute bridge.
// Values are 0 or 1, anything else is rejected by the driver.
type PinIO interface {
	ReadPin(pin uint16) (bool, error)
	WritePin(pin uint16, value int) error
}

type IoDriver interface {
	PinIO

	Setup(ctx context.Context, inputs []uint16, outputs []uint16) error
	Close() error
	String() string
	IsReady() bool
	GetInput(pin uint16) (DigitalInput, error)
	GetOutput(pin uint16) (DigitalOutput, error)
	GetAllIo() (inputs []uint16, outputs []uint16)
}

func MapAllIoDrivers() map[string]IoDriver {
	drivers := []IoDriver{
		&BcmIO{},
		&RpioIO{},
	}

	mapped := make(map[string]IoDriver)
	for _, driver := range drivers {
		mapped[driver.String()] = driver
	}
	return mapped
}

type DigitalInput interface {
	GetState() (bool, error)
}

type DigitalOutput interface {
	GetState() (bool, error)
	Set(bool) error
}

// pinLayout keeps the configured inputs and outputs of a driver.
type pinLayout struct {
	inputs  []uint16
	outputs []uint16
}

func (pl *pinLayout) setLayout(inputs []uint16, outputs []uint16, maxPin uint16) error {
	for _, pin := range append(append([]uint16{}, inputs...), outputs...) {
		if pin >= maxPin {
			return errors.Wrapf(ErrPinRange, "pin %d (max %d)", pin, maxPin-1)
		}
	}
	for _, in := range inputs {
		if contains(outputs, in) {
			return errors.Errorf("pin %d configured both as input and output", in)
		}
	}

	pl.inputs = append([]uint16{}, inputs...)
	pl.outputs = append([]uint16{}, outputs...)
	return nil
}

func (pl *pinLayout) isInput(pin uint16) bool {
	return contains(pl.inputs, pin)
}

func (pl *pinLayout) isOutput(pin uint16) bool {
	return contains(pl.outputs, pin)
}

func (pl *pinLayout) checkReadable(pin uint16) error {
	if !pl.isInput(pin) && !pl.isOutput(pin) {
		return errors.Wrapf(ErrPinNotConfigured, "pin %d", pin)
	}
	return nil
}

func (pl *pinLayout) checkWritable(pin uint16) error {
	if !pl.isOutput(pin) {
		return errors.Wrapf(ErrPinNotConfigured, "pin %d is not an output", pin)
	}
	return nil
}

func (pl *pinLayout) GetAllIo() (inputs []uint16, outputs []uint16) {
	inputs = append(inputs, pl.inputs...)
	outputs = append(outputs, pl.outputs...)
	return
}

func contains(pins []uint16, pin uint16) bool {
	for _, p := range pins {
		if p == pin {
			return true
		}
	}
	return false
}
