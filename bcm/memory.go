package bcm

// Memory is 32-bit word access to a mapped register block, addressed by byte offset.
type Memory interface {
	Load32(offset uintptr) uint32
	Store32(offset uintptr, value uint32)
}

// Region is a mapped register block. Release is called exactly once.
type Region interface {
	Memory
	Size() uintptr
	Release() error
}

// Mapper maps size bytes of physical memory starting at base.
type Mapper interface {
	Map(base uintptr, size uintptr) (Region, error)
}
