package bcm

import "github.com/pkg/errors"

var (
	// ErrUnmapped is returned by every operation while no register block is bound.
	ErrUnmapped = errors.New("gpio registers not mapped")
	// ErrInvalidMode reports a function select code other than Input or Output.
	ErrInvalidMode = errors.New("invalid pin mode")
	// ErrInvalidValue reports an output level other than 0 or 1.
	ErrInvalidValue = errors.New("invalid pin value")
	// ErrAddressMap reports a failure to reserve or map the physical register block.
	ErrAddressMap = errors.New("failed to map gpio registers")
)

// mapError keeps the mapper's own error in the chain while matching ErrAddressMap,
// so callers can test for both os.ErrPermission and ErrAddressMap.
type mapError struct {
	err error
}

func (me *mapError) Error() string {
	return ErrAddressMap.Error() + ": " + me.err.Error()
}

func (me *mapError) Unwrap() error {
	return me.err
}

func (me *mapError) Is(target error) bool {
	return target == ErrAddressMap
}

// AddressMapError reports err as an ErrAddressMap failure without hiding err.
func AddressMapError(err error) error {
	if err == nil {
		return nil
	}
	return &mapError{err: err}
}
