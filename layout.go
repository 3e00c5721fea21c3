package lolgpio

import (
	"fmt"
	"hash/fnv"
)

// Output is a configured output pin with the level it takes at startup and
// the level it is returned to before shutdown.
type Output struct {
	Pin            uint16
	Name           string
	Initial        int
	Safe           int
	DisableHomekit bool
}

func (o Output) GetName() string {
	if len(o.Name) > 0 {
		return o.Name
	}
	return fmt.Sprintf("gpio%d", o.Pin)
}

func (o Output) GetUniqueId() uint64 {
	hash := fnv.New64()
	hash.Write([]byte("Output_" + o.GetName()))
	return hash.Sum64()
}

// Default pin layout of the door opener board: the door contact on 4, relays on
// 7 and 9 (held high while running), green LED on 8 and red LED on 11.
var (
	defaultInputs  = []uint16{4}
	defaultOutputs = []Output{
		{Pin: 7, Initial: 1, Safe: 0},
		{Pin: 8, Name: "green"},
		{Pin: 9, Initial: 1, Safe: 0},
		{Pin: 11, Name: "red"},
	}
)

const (
	defaultRedPin    uint16 = 11
	defaultGreenPin  uint16 = 8
	defaultStatusPin uint16 = 4
)

// ApplyDefaults fills in the door opener layout when no pin is configured.
func (lg *LolGpio) ApplyDefaults() {
	if len(lg.Driver) == 0 {
		lg.Driver = defaultDriver
	}
	if len(lg.MqttPrefix) == 0 {
		lg.MqttPrefix = defaultMqttPrefix
	}

	if len(lg.Inputs) > 0 || len(lg.Outputs) > 0 {
		return
	}

	lg.Inputs = append([]uint16{}, defaultInputs...)
	lg.Outputs = append([]Output{}, defaultOutputs...)
	if lg.Indicator == nil {
		statusPin := defaultStatusPin
		lg.Indicator = &Indicator{RedPin: defaultRedPin, GreenPin: defaultGreenPin, StatusPin: &statusPin}
	}
}

func (lg *LolGpio) outputPins() (pins []uint16) {
	for _, out := range lg.Outputs {
		pins = append(pins, out.Pin)
	}
	return
}

func (lg *LolGpio) allPins() []uint16 {
	return append(append([]uint16{}, lg.Inputs...), lg.outputPins()...)
}
