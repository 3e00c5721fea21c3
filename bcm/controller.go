/*
Package bcm drives the BCM2835 GPIO peripheral through its memory mapped
register block.

A Controller starts Unmapped. Bind maps the block through a Mapper, Unbind
releases it. Every operation on an Unmapped controller returns ErrUnmapped
without touching memory.

	ctrl := bcm.NewController()
	if err := ctrl.Bind(bcm.DevMem{}, bcm.DefaultBase); err != nil {
		return err
	}
	defer ctrl.Unbind()

	ctrl.ConfigureMode(8, bcm.Output)
	ctrl.WritePin(8, 1)

The function select word is updated with a read-modify-write and the
set/clear registers are shared by 32 pins, so all register access of a
Controller is serialized by a single mutex. Two controllers bound to the same
physical block do not coordinate.
*/
package bcm

import (
	"sync"

	"github.com/pkg/errors"
)

type Controller struct {
	lock   sync.Mutex
	region Region
	regs   *registerMap
}

func NewController() *Controller {
	return &Controller{}
}

// Bind maps the register block at base. A controller holds at most one mapping.
func (c *Controller) Bind(mapper Mapper, base uintptr) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.regs != nil {
		return errors.Wrapf(ErrAddressMap, "registers already mapped")
	}

	region, err := mapper.Map(base, BlockSize)
	if err != nil {
		return errors.Wrapf(AddressMapError(err), "base 0x%08x size %d", base, BlockSize)
	}
	if region.Size() < BlockSize {
		region.Release()
		return errors.Wrapf(ErrAddressMap, "mapped %d bytes, need %d", region.Size(), BlockSize)
	}

	c.region = region
	c.regs = &registerMap{mem: region}
	return nil
}

// Unbind releases the mapping. Later calls return ErrUnmapped.
func (c *Controller) Unbind() error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.regs == nil {
		return ErrUnmapped
	}

	region := c.region
	c.region = nil
	c.regs = nil

	return errors.Wrap(region.Release(), "failed to release gpio registers")
}

func (c *Controller) IsMapped() bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.regs != nil
}

// ConfigureMode sets the function select field of pin to mode.
func (c *Controller) ConfigureMode(pin Pin, mode Mode) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.regs == nil {
		return ErrUnmapped
	}
	if !mode.Valid() {
		return errors.Wrapf(ErrInvalidMode, "pin %d mode %d", pin, mode)
	}

	index := FunctionSelectIndex(pin)
	shift := FunctionSelectOffset(pin)

	fsel := c.regs.functionSelect(index)
	fsel &^= modeMask << shift
	fsel |= uint32(mode) << shift
	c.regs.setFunctionSelect(index, fsel)

	return nil
}

// PinMode decodes the function select field of pin.
func (c *Controller) PinMode(pin Pin) (Mode, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.regs == nil {
		return Input, ErrUnmapped
	}

	mode := Mode(c.regs.functionSelect(FunctionSelectIndex(pin)) >> FunctionSelectOffset(pin) & modeMask)
	if !mode.Valid() {
		return mode, errors.Wrapf(ErrInvalidMode, "pin %d uses alternate function %d", pin, mode)
	}

	return mode, nil
}

// WritePin drives pin high for value 1 and low for value 0,
// by strobing the set or clear register respectively.
func (c *Controller) WritePin(pin Pin, value int) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.regs == nil {
		return ErrUnmapped
	}

	reg, bit := BitIndex(pin)

	switch value {
	case 1:
		c.regs.strobeSet(reg, 1<<bit)
	case 0:
		c.regs.strobeClear(reg, 1<<bit)
	default:
		return errors.Wrapf(ErrInvalidValue, "pin %d value %d", pin, value)
	}

	return nil
}

// ReadPin returns the current level of pin.
func (c *Controller) ReadPin(pin Pin) (bool, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.regs == nil {
		return false, ErrUnmapped
	}

	reg, bit := BitIndex(pin)

	return c.regs.level(reg)&(1<<bit) != 0, nil
}
