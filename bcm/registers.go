package bcm

import "unsafe"

// Pin is a BCM2835 GPIO line number.
type Pin uint

// Mode is the 3-bit function select code of a pin.
type Mode uint32

const (
	Input  Mode = 0
	Output Mode = 1
)

const modeMask uint32 = 7 // 0b111 - function select is 3 bits

const (
	pinsPerSelect = 10
	pinsPerBank   = 32
)

// PinCount is the number of GPIO lines wired on the BCM2835.
const PinCount = 54

// DefaultBase is the physical address of the GPIO block on the original Raspberry Pi.
const DefaultBase uintptr = 0x20200000

func (m Mode) Valid() bool {
	return m == Input || m == Output
}

func (m Mode) String() string {
	switch m {
	case Input:
		return "input"
	case Output:
		return "output"
	}
	return "invalid"
}

// registerBlock mirrors the hardware layout, reserved words included.
// It is never allocated, only used to derive offsets.
type registerBlock struct {
	functionSelect [6]uint32
	_              uint32
	set            [2]uint32
	_              uint32
	clear          [2]uint32
	_              uint32
	level          [2]uint32
	_              uint32
	eventDetect    [2]uint32
	_              uint32
	risingEdge     [2]uint32
	_              uint32
	fallingEdge    [2]uint32
	_              uint32
}

var layout registerBlock

// BlockSize is the size in bytes of the mapped register block.
const BlockSize = unsafe.Sizeof(registerBlock{})

var (
	functionSelectOffset = unsafe.Offsetof(layout.functionSelect)
	setOffset            = unsafe.Offsetof(layout.set)
	clearOffset          = unsafe.Offsetof(layout.clear)
	levelOffset          = unsafe.Offsetof(layout.level)
)

// FunctionSelectIndex returns the function select register holding pin.
func FunctionSelectIndex(pin Pin) uint {
	return uint(pin) / pinsPerSelect
}

// FunctionSelectOffset returns the bit offset of pin's 3-bit field.
func FunctionSelectOffset(pin Pin) uint {
	return 3 * (uint(pin) - pinsPerSelect*FunctionSelectIndex(pin))
}

// BitIndex returns the set/clear/level register index and bit for pin.
func BitIndex(pin Pin) (reg uint, bit uint) {
	return uint(pin) / pinsPerBank, uint(pin) % pinsPerBank
}

func wordAt(base uintptr, index uint) uintptr {
	return base + uintptr(index)*4
}

// registerMap is the typed view over a bound region.
// Pins past the end of the register arrays are a caller contract violation.
type registerMap struct {
	mem Memory
}

func (rm *registerMap) functionSelect(index uint) uint32 {
	return rm.mem.Load32(wordAt(functionSelectOffset, index))
}

func (rm *registerMap) setFunctionSelect(index uint, value uint32) {
	rm.mem.Store32(wordAt(functionSelectOffset, index), value)
}

// strobeSet and strobeClear write to write-only registers, never read them.
func (rm *registerMap) strobeSet(index uint, bits uint32) {
	rm.mem.Store32(wordAt(setOffset, index), bits)
}

func (rm *registerMap) strobeClear(index uint, bits uint32) {
	rm.mem.Store32(wordAt(clearOffset, index), bits)
}

func (rm *registerMap) level(index uint) uint32 {
	return rm.mem.Load32(wordAt(levelOffset, index))
}
