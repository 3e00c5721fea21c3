package drivers

import (
	"context"
	"strconv"

	"github.com/pkg/errors"

	"github.com/hubertat/lolgpio/bcm"
)

const BcmDriverName = "bcm"

// BcmIO drives pins through the bcm register controller.
type BcmIO struct {
	pinLayout

	// Device forces the memory device, by default /dev/gpiomem then /dev/mem.
	Device string
	// BaseAddress is the physical GPIO block address, "0x20200000" style.
	// Empty means read it from the device tree.
	BaseAddress string
	// Simulate binds an in-memory register block instead of hardware.
	Simulate bool

	InvertInputs  bool
	InvertOutputs bool

	ctrl *bcm.Controller
	sim  *bcm.Simulator
}

type BcmInput struct {
	driver *BcmIO
	pin    uint16
	invert bool
}

type BcmOutput struct {
	driver *BcmIO
	pin    uint16
	invert bool
}

func (bi *BcmInput) GetState() (state bool, err error) {
	state, err = bi.driver.ReadPin(bi.pin)
	if bi.invert {
		state = !state
	}
	return
}

func (bo *BcmOutput) GetState() (state bool, err error) {
	state, err = bo.driver.ReadPin(bo.pin)
	if bo.invert {
		state = !state
	}
	return
}

func (bo *BcmOutput) Set(state bool) error {
	if bo.invert {
		state = !state
	}
	value := 0
	if state {
		value = 1
	}
	return bo.driver.WritePin(bo.pin, value)
}

func (bd *BcmIO) base() (uintptr, error) {
	if len(bd.BaseAddress) == 0 {
		if bd.Simulate {
			return bcm.DefaultBase, nil
		}
		return bcm.DetectBase(), nil
	}

	base, err := strconv.ParseUint(bd.BaseAddress, 0, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid BaseAddress %q", bd.BaseAddress)
	}
	return uintptr(base), nil
}

func (bd *BcmIO) mapper() bcm.Mapper {
	if bd.Simulate {
		if bd.sim == nil {
			bd.sim = bcm.NewSimulator()
		}
		return bd.sim
	}
	return bcm.DevMem{Path: bd.Device}
}

func (bd *BcmIO) Setup(ctx context.Context, inputs []uint16, outputs []uint16) error {
	if err := bd.setLayout(inputs, outputs, bcm.PinCount); err != nil {
		return errors.Wrapf(err, "failed to Setup bcm driver for pins: %v, %v", inputs, outputs)
	}

	base, err := bd.base()
	if err != nil {
		return err
	}

	if bd.ctrl == nil {
		bd.ctrl = bcm.NewController()
	}
	if err := bd.ctrl.Bind(bd.mapper(), base); err != nil {
		return errors.Wrap(err, "failed to Setup bcm driver")
	}

	for _, in := range inputs {
		if err := bd.ctrl.ConfigureMode(bcm.Pin(in), bcm.Input); err != nil {
			return errors.Wrapf(err, "failed to configure input %d", in)
		}
	}
	for _, out := range outputs {
		if err := bd.ctrl.ConfigureMode(bcm.Pin(out), bcm.Output); err != nil {
			return errors.Wrapf(err, "failed to configure output %d", out)
		}
	}

	return nil
}

func (bd *BcmIO) ReadPin(pin uint16) (bool, error) {
	if err := bd.checkReadable(pin); err != nil {
		return false, err
	}
	if bd.ctrl == nil {
		return false, bcm.ErrUnmapped
	}
	return bd.ctrl.ReadPin(bcm.Pin(pin))
}

func (bd *BcmIO) WritePin(pin uint16, value int) error {
	if err := bd.checkWritable(pin); err != nil {
		return err
	}
	if bd.ctrl == nil {
		return bcm.ErrUnmapped
	}
	return bd.ctrl.WritePin(bcm.Pin(pin), value)
}

// Mode reports the function select of a configured pin.
func (bd *BcmIO) Mode(pin uint16) (bcm.Mode, error) {
	if err := bd.checkReadable(pin); err != nil {
		return bcm.Input, err
	}
	if bd.ctrl == nil {
		return bcm.Input, bcm.ErrUnmapped
	}
	return bd.ctrl.PinMode(bcm.Pin(pin))
}

// Simulator returns the simulated register block when Simulate is set.
func (bd *BcmIO) Simulator() *bcm.Simulator {
	return bd.sim
}

func (bd *BcmIO) String() string {
	return BcmDriverName
}

func (bd *BcmIO) IsReady() bool {
	return bd.ctrl != nil && bd.ctrl.IsMapped()
}

func (bd *BcmIO) Close() error {
	if bd.ctrl == nil {
		return bcm.ErrUnmapped
	}
	return bd.ctrl.Unbind()
}

func (bd *BcmIO) GetInput(id uint16) (DigitalInput, error) {
	if !bd.isInput(id) {
		return nil, errors.Errorf("bcm Input (id: %d) not found", id)
	}
	return &BcmInput{driver: bd, pin: id, invert: bd.InvertInputs}, nil
}

func (bd *BcmIO) GetOutput(id uint16) (DigitalOutput, error) {
	if !bd.isOutput(id) {
		return nil, errors.Errorf("bcm Output (id: %d) not found", id)
	}
	return &BcmOutput{driver: bd, pin: id, invert: bd.InvertOutputs}, nil
}
