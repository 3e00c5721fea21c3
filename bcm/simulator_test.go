package bcm

import "testing"

func TestSimulatorInputLevel(t *testing.T) {
	ctrl, sim := boundController(t)
	ctrl.ConfigureMode(4, Input)

	sim.SetInput(4, true)
	got, _ := ctrl.ReadPin(4)
	assertBools(t, got, true)

	sim.SetInput(4, false)
	got, _ = ctrl.ReadPin(4)
	assertBools(t, got, false)
}

func TestSimulatorOutputHidesExternalLevel(t *testing.T) {
	ctrl, sim := boundController(t)
	sim.SetInput(35, true)

	ctrl.ConfigureMode(35, Output)
	ctrl.WritePin(35, 0)
	got, _ := ctrl.ReadPin(35)
	assertBools(t, got, false)

	ctrl.ConfigureMode(35, Input)
	got, _ = ctrl.ReadPin(35)
	assertBools(t, got, true)
}

func TestSimulatorStrobesAreWriteOnly(t *testing.T) {
	sim := NewSimulator()
	region, err := sim.Map(DefaultBase, BlockSize)
	if err != nil {
		t.Fatalf("Map returned err: %v", err)
	}

	region.Store32(setOffset, 0xff)
	if got := region.Load32(setOffset); got != 0 {
		t.Errorf("set register read back 0x%x", got)
	}
	region.Store32(levelOffset, 0xff)
	if got := region.Load32(levelOffset); got != 0 {
		t.Errorf("level register accepted write: 0x%x", got)
	}

	if err := region.Release(); err != nil {
		t.Fatalf("Release returned err: %v", err)
	}
	if err := region.Release(); err == nil {
		t.Error("second Release returned nil error")
	}
}

func TestSimulatorRejectsOversizedMap(t *testing.T) {
	sim := NewSimulator()
	if _, err := sim.Map(DefaultBase, BlockSize+4); err == nil {
		t.Error("got nil error mapping more than the block")
	}
}
