package bcm

import (
	"testing"
	"unsafe"
)

func assertUints(t testing.TB, got, want uint) {
	t.Helper()

	if got != want {
		t.Errorf("got %d want %d", got, want)
	}
}

func TestFunctionSelectIndexAndOffset(t *testing.T) {
	tests := []struct {
		pin    Pin
		index  uint
		offset uint
	}{
		{0, 0, 0},
		{4, 0, 12},
		{9, 0, 27},
		{10, 1, 0},
		{11, 1, 3},
		{53, 5, 9},
	}

	for _, tt := range tests {
		assertUints(t, FunctionSelectIndex(tt.pin), tt.index)
		assertUints(t, FunctionSelectOffset(tt.pin), tt.offset)
	}
}

func TestBitIndex(t *testing.T) {
	reg, bit := BitIndex(8)
	assertUints(t, reg, 0)
	assertUints(t, bit, 8)

	reg, bit = BitIndex(35)
	assertUints(t, reg, 1)
	assertUints(t, bit, 3)

	reg, bit = BitIndex(31)
	assertUints(t, reg, 0)
	assertUints(t, bit, 31)
}

func TestRegisterLayoutMatchesHardware(t *testing.T) {
	offsets := map[string][2]uintptr{
		"function_select": {unsafe.Offsetof(layout.functionSelect), 0x00},
		"set":             {unsafe.Offsetof(layout.set), 0x1c},
		"clear":           {unsafe.Offsetof(layout.clear), 0x28},
		"level":           {unsafe.Offsetof(layout.level), 0x34},
		"event_detect":    {unsafe.Offsetof(layout.eventDetect), 0x40},
		"rising_edge":     {unsafe.Offsetof(layout.risingEdge), 0x4c},
		"falling_edge":    {unsafe.Offsetof(layout.fallingEdge), 0x58},
	}

	for name, o := range offsets {
		if o[0] != o[1] {
			t.Errorf("%s at 0x%02x want 0x%02x", name, o[0], o[1])
		}
	}

	if BlockSize != 100 {
		t.Errorf("block size %d want 100", BlockSize)
	}
}

func TestModeValid(t *testing.T) {
	if !Input.Valid() || !Output.Valid() {
		t.Error("input and output must be valid modes")
	}
	for _, m := range []Mode{2, 4, 7} {
		if m.Valid() {
			t.Errorf("mode %d reported valid", m)
		}
	}
}
