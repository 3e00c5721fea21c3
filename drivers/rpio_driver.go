package drivers

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/stianeikeland/go-rpio/v4"

	"github.com/hubertat/lolgpio/bcm"
)

const RpioDriverName = "rpio"

// RpioIO drives pins through go-rpio. go-rpio keeps its mapping in package
// state, so only one RpioIO can be set up per process.
type RpioIO struct {
	pinLayout

	InvertInputs  bool
	InvertOutputs bool
	PullUpInputs  bool

	lock    sync.Mutex
	isReady bool
}

type RpioInput struct {
	driver *RpioIO
	pin    uint16
	invert bool
}

type RpioOutput struct {
	driver *RpioIO
	pin    uint16
	invert bool
}

func (ri *RpioInput) GetState() (state bool, err error) {
	state, err = ri.driver.ReadPin(ri.pin)
	if ri.invert {
		state = !state
	}
	return
}

func (ro *RpioOutput) Set(state bool) error {
	if ro.invert {
		state = !state
	}
	value := 0
	if state {
		value = 1
	}
	return ro.driver.WritePin(ro.pin, value)
}

func (ro *RpioOutput) GetState() (state bool, err error) {
	state, err = ro.driver.ReadPin(ro.pin)
	if ro.invert {
		state = !state
	}
	return
}

func (rp *RpioIO) Setup(ctx context.Context, inputs []uint16, outputs []uint16) error {
	if err := rp.setLayout(inputs, outputs, bcm.PinCount); err != nil {
		return errors.Wrapf(err, "failed to Setup rpio driver for pins: %v, %v", inputs, outputs)
	}

	rp.lock.Lock()
	defer rp.lock.Unlock()

	if err := rpio.Open(); err != nil {
		return errors.Wrap(bcm.AddressMapError(err), "rpio")
	}

	for _, inPin := range inputs {
		pin := rpio.Pin(inPin)
		pin.Input()
		if rp.PullUpInputs {
			pin.PullUp()
		}
	}
	for _, outPin := range outputs {
		rpio.Pin(outPin).Output()
	}

	rp.isReady = true
	return nil
}

func (rp *RpioIO) ReadPin(pin uint16) (bool, error) {
	if err := rp.checkReadable(pin); err != nil {
		return false, err
	}

	rp.lock.Lock()
	defer rp.lock.Unlock()

	if !rp.isReady {
		return false, bcm.ErrUnmapped
	}
	return rpio.Pin(pin).Read() == rpio.High, nil
}

func (rp *RpioIO) WritePin(pin uint16, value int) error {
	if err := rp.checkWritable(pin); err != nil {
		return err
	}

	rp.lock.Lock()
	defer rp.lock.Unlock()

	if !rp.isReady {
		return bcm.ErrUnmapped
	}

	switch value {
	case 1:
		rpio.Pin(pin).High()
	case 0:
		rpio.Pin(pin).Low()
	default:
		return errors.Wrapf(bcm.ErrInvalidValue, "pin %d value %d", pin, value)
	}
	return nil
}

func (rp *RpioIO) String() string {
	return RpioDriverName
}

func (rp *RpioIO) IsReady() bool {
	rp.lock.Lock()
	defer rp.lock.Unlock()

	return rp.isReady
}

func (rp *RpioIO) Close() error {
	rp.lock.Lock()
	defer rp.lock.Unlock()

	if !rp.isReady {
		return bcm.ErrUnmapped
	}
	rp.isReady = false
	return rpio.Close()
}

func (rp *RpioIO) GetInput(id uint16) (DigitalInput, error) {
	if !rp.isInput(id) {
		return nil, errors.Errorf("rpio Input (id: %d) not found", id)
	}
	return &RpioInput{driver: rp, pin: id, invert: rp.InvertInputs}, nil
}

func (rp *RpioIO) GetOutput(id uint16) (DigitalOutput, error) {
	if !rp.isOutput(id) {
		return nil, errors.Errorf("rpio Output (id: %d) not found", id)
	}
	return &RpioOutput{driver: rp, pin: id, invert: rp.InvertOutputs}, nil
}
