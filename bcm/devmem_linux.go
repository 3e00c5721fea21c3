package bcm

import (
	"bytes"
	"encoding/binary"
	"os"
	"sync/atomic"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const (
	gpioMemPath = "/dev/gpiomem"
	memPath     = "/dev/mem"
	socRanges   = "/proc/device-tree/soc/ranges"

	gpioOffset = 0x200000
)

// DevMem maps the register block from /dev/gpiomem, falling back to /dev/mem
// at the physical base address when gpiomem is not available.
type DevMem struct {
	// Path forces a device file. /dev/gpiomem is always mapped at offset 0.
	Path string
}

func (dm DevMem) Map(base uintptr, size uintptr) (Region, error) {
	path := dm.Path
	if path == "" {
		path = gpioMemPath
		if _, err := os.Stat(gpioMemPath); os.IsNotExist(err) {
			path = memPath
		}
	}

	offset := int64(base)
	if path == gpioMemPath {
		offset = 0
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	// fd can be closed after memory mapping
	defer file.Close()

	pageSize := uintptr(os.Getpagesize())
	length := (size + pageSize - 1) &^ (pageSize - 1)

	mem, err := unix.Mmap(int(file.Fd()), offset, int(length), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, errors.Wrapf(err, "mmap %s at 0x%08x", path, offset)
	}

	return &mappedRegion{mem: mem, size: size}, nil
}

type mappedRegion struct {
	mem  []byte
	size uintptr
}

func (mr *mappedRegion) word(offset uintptr) *uint32 {
	return (*uint32)(unsafe.Pointer(&mr.mem[offset]))
}

// Load32 and Store32 go through sync/atomic so that the compiler keeps every access.
func (mr *mappedRegion) Load32(offset uintptr) uint32 {
	return atomic.LoadUint32(mr.word(offset))
}

func (mr *mappedRegion) Store32(offset uintptr, value uint32) {
	atomic.StoreUint32(mr.word(offset), value)
}

func (mr *mappedRegion) Size() uintptr {
	return mr.size
}

func (mr *mappedRegion) Release() error {
	return unix.Munmap(mr.mem)
}

// DetectBase reads the peripheral base from the device tree and returns the
// GPIO block address. It falls back to DefaultBase.
func DetectBase() uintptr {
	ranges, err := os.Open(socRanges)
	if err != nil {
		return DefaultBase
	}
	defer ranges.Close()

	b := make([]byte, 4)
	n, err := ranges.ReadAt(b, 4)
	if n != 4 || err != nil {
		return DefaultBase
	}

	var out uint32
	if err := binary.Read(bytes.NewReader(b), binary.BigEndian, &out); err != nil {
		return DefaultBase
	}

	return uintptr(out) + gpioOffset
}
