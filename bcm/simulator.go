package bcm

import (
	"sync"

	"github.com/pkg/errors"
)

const blockWords = BlockSize / 4

// Simulator is an in-memory register block with the hardware's feedback:
// set/clear strobes latch output levels, and the level register reports the
// latch for pins in Output mode and the externally driven input otherwise.
//
// It is its own Mapper; one mapping is handed out at a time.
type Simulator struct {
	lock sync.Mutex

	words    [blockWords]uint32
	latch    [2]uint32
	external [2]uint32

	base     uintptr
	mapped   bool
	accesses int
}

func NewSimulator() *Simulator {
	return &Simulator{}
}

func (s *Simulator) Map(base uintptr, size uintptr) (Region, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.mapped {
		return nil, errors.Errorf("region 0x%08x already mapped", s.base)
	}
	if size > BlockSize {
		return nil, errors.Errorf("simulated block is %d bytes, %d requested", BlockSize, size)
	}

	s.base = base
	s.mapped = true
	return &simulatedRegion{sim: s}, nil
}

// Mapped reports whether a region is currently handed out.
func (s *Simulator) Mapped() bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.mapped
}

// Base returns the base address of the last mapping.
func (s *Simulator) Base() uintptr {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.base
}

// Accesses counts register loads and stores made through mapped regions.
func (s *Simulator) Accesses() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.accesses
}

// FunctionSelect returns the raw function select word at index.
func (s *Simulator) FunctionSelect(index uint) uint32 {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.words[wordAt(functionSelectOffset, index)/4]
}

// SetInput drives the external side of pin, as seen by pins in Input mode.
func (s *Simulator) SetInput(pin Pin, high bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	reg, bit := BitIndex(pin)
	if high {
		s.external[reg] |= 1 << bit
	} else {
		s.external[reg] &^= 1 << bit
	}
}

// OutputLatch returns the level last strobed for pin.
func (s *Simulator) OutputLatch(pin Pin) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	reg, bit := BitIndex(pin)
	return s.latch[reg]&(1<<bit) != 0
}

func (s *Simulator) outputMask(reg uint) (mask uint32) {
	for bit := uint(0); bit < pinsPerBank; bit++ {
		pin := reg*pinsPerBank + bit
		index := pin / pinsPerSelect
		if index >= uint(len(layout.functionSelect)) {
			break
		}
		shift := 3 * (pin % pinsPerSelect)
		if Mode(s.words[index]>>shift&modeMask) == Output {
			mask |= 1 << bit
		}
	}
	return
}

func (s *Simulator) load(offset uintptr) uint32 {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.accesses++
	switch {
	case offset >= setOffset && offset < setOffset+8,
		offset >= clearOffset && offset < clearOffset+8:
		// write only
		return 0
	case offset >= levelOffset && offset < levelOffset+8:
		reg := uint(offset-levelOffset) / 4
		mask := s.outputMask(reg)
		return s.latch[reg]&mask | s.external[reg]&^mask
	}
	return s.words[offset/4]
}

func (s *Simulator) store(offset uintptr, value uint32) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.accesses++
	switch {
	case offset >= setOffset && offset < setOffset+8:
		s.latch[(offset-setOffset)/4] |= value
	case offset >= clearOffset && offset < clearOffset+8:
		s.latch[(offset-clearOffset)/4] &^= value
	case offset >= levelOffset && offset < levelOffset+8:
		// read only
	default:
		s.words[offset/4] = value
	}
}

func (s *Simulator) release() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if !s.mapped {
		return errors.New("region not mapped")
	}
	s.mapped = false
	return nil
}

type simulatedRegion struct {
	sim      *Simulator
	released bool
}

func (sr *simulatedRegion) Load32(offset uintptr) uint32 {
	if sr.released {
		panic("bcm: simulated register access after release")
	}
	return sr.sim.load(offset)
}

func (sr *simulatedRegion) Store32(offset uintptr, value uint32) {
	if sr.released {
		panic("bcm: simulated register access after release")
	}
	sr.sim.store(offset, value)
}

func (sr *simulatedRegion) Size() uintptr {
	return BlockSize
}

func (sr *simulatedRegion) Release() error {
	if sr.released {
		return errors.New("region already released")
	}
	sr.released = true
	return sr.sim.release()
}
