// Package bridge exposes pins as named text attributes ("gpio8" -> "1\n").
package bridge

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/hubertat/lolgpio/drivers"
)

const attributePrefix = "gpio"

var (
	ErrBadAttribute = errors.New("bad attribute name")
	ErrBadValue     = errors.New("bad attribute value")
)

// ParsePin extracts N from an attribute named gpio<N>.
func ParsePin(name string) (uint16, error) {
	if !strings.HasPrefix(name, attributePrefix) {
		return 0, errors.Wrapf(ErrBadAttribute, "%q has no %s prefix", name, attributePrefix)
	}

	digits := strings.TrimPrefix(name, attributePrefix)
	if len(digits) == 0 || strings.TrimLeft(digits, "0123456789") != "" {
		return 0, errors.Wrapf(ErrBadAttribute, "%q has no pin number", name)
	}

	pin, err := strconv.ParseUint(digits, 10, 16)
	if err != nil {
		return 0, errors.Wrapf(ErrBadAttribute, "%q: %v", name, err)
	}
	return uint16(pin), nil
}

// AttributeName is the inverse of ParsePin.
func AttributeName(pin uint16) string {
	return fmt.Sprintf("%s%d", attributePrefix, pin)
}

// ParseValue reads an integer from attribute text. Surrounding whitespace is
// ignored; range checking is left to the pin driver.
func ParseValue(text string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, errors.Wrapf(ErrBadValue, "%q", text)
	}
	return value, nil
}

// FormatLevel renders a pin level the way attribute reads return it.
func FormatLevel(level bool) string {
	if level {
		return "1\n"
	}
	return "0\n"
}

type Attributes struct {
	pins drivers.PinIO
}

func NewAttributes(pins drivers.PinIO) *Attributes {
	return &Attributes{pins: pins}
}

// Read returns "0\n" or "1\n" for the pin named by the attribute.
func (a *Attributes) Read(name string) (string, error) {
	pin, err := ParsePin(name)
	if err != nil {
		return "", err
	}

	level, err := a.pins.ReadPin(pin)
	if err != nil {
		return "", errors.Wrapf(err, "read %s", name)
	}
	return FormatLevel(level), nil
}

// Write parses text as an integer and drives the named pin with it.
func (a *Attributes) Write(name string, text string) error {
	pin, err := ParsePin(name)
	if err != nil {
		return err
	}

	value, err := ParseValue(text)
	if err != nil {
		return err
	}

	return errors.Wrapf(a.pins.WritePin(pin, value), "write %s", name)
}
