package bridge

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/hubertat/lolgpio/bcm"
	"github.com/hubertat/lolgpio/drivers"
)

func simulatedDriver(t testing.TB) *drivers.BcmIO {
	t.Helper()

	bd := &drivers.BcmIO{Simulate: true}
	if err := bd.Setup(context.Background(), []uint16{4}, []uint16{8, 11}); err != nil {
		t.Fatalf("Setup returned err: %v", err)
	}
	return bd
}

func TestParsePin(t *testing.T) {
	valid := map[string]uint16{"gpio0": 0, "gpio8": 8, "gpio11": 11, "gpio053": 53}
	for name, want := range valid {
		got, err := ParsePin(name)
		if err != nil {
			t.Errorf("ParsePin(%q) returned err: %v", name, err)
			continue
		}
		if got != want {
			t.Errorf("ParsePin(%q) got %d want %d", name, got, want)
		}
	}

	for _, name := range []string{"", "gpio", "gpi8", "GPIO8", "gpio-1", "gpio8a", "gpio 8", "gpio70000"} {
		if _, err := ParsePin(name); !errors.Is(err, ErrBadAttribute) {
			t.Errorf("ParsePin(%q) got %v want ErrBadAttribute", name, err)
		}
	}
}

func TestParseValue(t *testing.T) {
	for text, want := range map[string]int{"1": 1, "0\n": 0, " 1 ": 1, "2": 2, "-1": -1} {
		got, err := ParseValue(text)
		if err != nil {
			t.Errorf("ParseValue(%q) returned err: %v", text, err)
		}
		if got != want {
			t.Errorf("ParseValue(%q) got %d want %d", text, got, want)
		}
	}

	for _, text := range []string{"", "\n", "on", "1.0", "0x1"} {
		if _, err := ParseValue(text); !errors.Is(err, ErrBadValue) {
			t.Errorf("ParseValue(%q) got %v want ErrBadValue", text, err)
		}
	}
}

func TestAttributesReadWrite(t *testing.T) {
	attrs := NewAttributes(simulatedDriver(t))

	if err := attrs.Write("gpio8", "1"); err != nil {
		t.Fatalf("Write returned err: %v", err)
	}

	got, err := attrs.Read("gpio8")
	if err != nil {
		t.Fatalf("Read returned err: %v", err)
	}
	if got != "1\n" {
		t.Errorf("got %q want %q", got, "1\n")
	}

	got, _ = attrs.Read("gpio11")
	if got != "0\n" {
		t.Errorf("got %q want %q", got, "0\n")
	}

	attrs.Write("gpio8", "0\n")
	got, _ = attrs.Read("gpio8")
	if got != "0\n" {
		t.Errorf("got %q want %q", got, "0\n")
	}
}

func TestAttributesErrors(t *testing.T) {
	bd := simulatedDriver(t)
	attrs := NewAttributes(bd)

	if err := attrs.Write("gpio8", "high"); !errors.Is(err, ErrBadValue) {
		t.Errorf("got %v want ErrBadValue", err)
	}
	if err := attrs.Write("gpio8", "3"); !errors.Is(err, bcm.ErrInvalidValue) {
		t.Errorf("got %v want ErrInvalidValue", err)
	}
	if _, err := attrs.Read("led8"); !errors.Is(err, ErrBadAttribute) {
		t.Errorf("got %v want ErrBadAttribute", err)
	}

	bd.Close()
	if _, err := attrs.Read("gpio8"); !errors.Is(err, bcm.ErrUnmapped) {
		t.Errorf("got %v want ErrUnmapped", err)
	}
}
