//go:build !linux

package bcm

import "github.com/pkg/errors"

type DevMem struct {
	Path string
}

func (dm DevMem) Map(base uintptr, size uintptr) (Region, error) {
	return nil, errors.New("physical memory mapping is only supported on linux")
}

func DetectBase() uintptr {
	return DefaultBase
}
