package lolgpio

import (
	"context"
	"testing"

	"github.com/pkg/errors"
)

func TestIndicatorSetOpen(t *testing.T) {
	lg := simulated()
	sim := initSimulated(t, lg)
	defer lg.Close()

	if err := lg.Indicator.SetOpen(true); err != nil {
		t.Fatalf("SetOpen returned err: %v", err)
	}
	assertBools(t, sim.OutputLatch(8), true)
	assertBools(t, sim.OutputLatch(11), false)
	assertBools(t, lg.Indicator.IsOpen(), true)

	lg.Indicator.SetOpen(false)
	assertBools(t, sim.OutputLatch(8), false)
	assertBools(t, sim.OutputLatch(11), true)
	assertBools(t, lg.Indicator.IsOpen(), false)
}

func TestIndicatorNotInitialized(t *testing.T) {
	ind := &Indicator{RedPin: 11, GreenPin: 8}
	if err := ind.SetOpen(true); err == nil {
		t.Error("got nil error from uninitialized indicator")
	}
}

type fakeOutput struct {
	state bool
	err   error
}

func (fo *fakeOutput) GetState() (bool, error) {
	return fo.state, nil
}

func (fo *fakeOutput) Set(state bool) error {
	if fo.err != nil {
		return fo.err
	}
	fo.state = state
	return nil
}

type statusRecorder struct {
	open []bool
}

func (sr *statusRecorder) StatusChanged(open bool) {
	sr.open = append(sr.open, open)
}

func TestIndicatorFollowsStatusPin(t *testing.T) {
	lg := simulated()
	sim := initSimulated(t, lg)
	defer lg.Close()

	rec := &statusRecorder{}
	lg.Indicator.AddListener(rec)

	sim.SetInput(4, false)
	lg.Watcher().Poll()
	assertBools(t, sim.OutputLatch(8), true)
	assertBools(t, sim.OutputLatch(11), false)
	assertBools(t, lg.Indicator.IsOpen(), true)

	sim.SetInput(4, true)
	lg.Watcher().Poll()
	assertBools(t, sim.OutputLatch(8), false)
	assertBools(t, sim.OutputLatch(11), true)
	assertBools(t, lg.Indicator.IsOpen(), false)

	lg.Watcher().Poll()
	if len(rec.open) != 2 || !rec.open[0] || rec.open[1] {
		t.Errorf("got status changes %v want [true false]", rec.open)
	}
}

func TestIndicatorOpenHigh(t *testing.T) {
	lg := simulated()
	lg.ApplyDefaults()
	lg.Indicator.OpenHigh = true
	sim := initSimulated(t, lg)
	defer lg.Close()

	sim.SetInput(4, true)
	lg.Watcher().Poll()
	assertBools(t, sim.OutputLatch(8), true)
	assertBools(t, sim.OutputLatch(11), false)
}

func TestIndicatorStatusPinMustBeInput(t *testing.T) {
	statusPin := uint16(17)
	lg := simulated()
	lg.Inputs = []uint16{4}
	lg.Outputs = []Output{{Pin: 8}, {Pin: 11}}
	lg.Indicator = &Indicator{RedPin: 11, GreenPin: 8, StatusPin: &statusPin}
	defer lg.Close()

	if err := lg.Init(context.Background()); err == nil {
		t.Error("got nil error for status pin not configured as input")
	}
}

func TestIndicatorRollsBackOnFailure(t *testing.T) {
	red := &fakeOutput{state: true}
	green := &fakeOutput{err: errors.New("bus fault")}
	rec := &statusRecorder{}
	ind := &Indicator{red: red, green: green}
	ind.AddListener(rec)

	if err := ind.SetOpen(true); err == nil {
		t.Fatal("got nil error from failing green led")
	}
	assertBools(t, red.state, true)
	assertBools(t, ind.IsOpen(), false)
	assertInts(t, len(rec.open), 0)

	green.err = nil
	if err := ind.SetOpen(true); err != nil {
		t.Fatalf("SetOpen returned err: %v", err)
	}
	assertBools(t, red.state, false)
	assertBools(t, green.state, true)
	assertInts(t, len(rec.open), 1)
}
