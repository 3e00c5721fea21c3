// Package lolgpio runs a GPIO board: it binds the pin driver, applies the
// configured pin layout, serves pins as gpioN attributes over HTTP and MQTT,
// and returns outputs to their safe level before releasing the registers.
package lolgpio

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/hubertat/lolgpio/bridge"
	"github.com/hubertat/lolgpio/drivers"
	"github.com/hubertat/lolgpio/mqtt"
)

const defaultDriver = drivers.BcmDriverName
const defaultMqttPrefix = "lolgpio"

type LolGpio struct {
	Name string

	// Driver selects the io driver by name: "bcm" or "rpio".
	Driver string
	Bcm    *drivers.BcmIO
	Rpio   *drivers.RpioIO

	Inputs  []uint16
	Outputs []Output

	Indicator *Indicator

	HttpAddr  string
	HttpToken string

	MqttBroker string
	MqttPrefix string

	Influx *Recorder

	HkPin       string
	HkDirectory string
	HkAddress   string
	HkDebug     bool

	driver     drivers.IoDriver
	attrs      *bridge.Attributes
	server     *bridge.Server
	mqttClient *mqtt.MqttClient
	watcher    *Watcher
	logger     *log.Logger
}

func (lg *LolGpio) selectDriver() (drivers.IoDriver, error) {
	switch strings.ToLower(lg.Driver) {
	case drivers.BcmDriverName:
		if lg.Bcm == nil {
			lg.Bcm = &drivers.BcmIO{}
		}
		return lg.Bcm, nil
	case drivers.RpioDriverName:
		if lg.Rpio == nil {
			lg.Rpio = &drivers.RpioIO{}
		}
		return lg.Rpio, nil
	}

	return nil, errors.Wrapf(drivers.ErrUnknownDriver, "%q (known: %s)", lg.Driver, knownDrivers())
}

func knownDrivers() string {
	names := []string{}
	for name := range drivers.MapAllIoDrivers() {
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}

// Init binds the driver and applies the startup layout: inputs, outputs,
// initial output levels and the status indicator.
func (lg *LolGpio) Init(ctx context.Context) error {
	lg.logger = log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "lolgpio",
		Level:  log.GetLevel(),
	})
	lg.ApplyDefaults()

	driver, err := lg.selectDriver()
	if err != nil {
		return err
	}

	err = driver.Setup(ctx, lg.Inputs, lg.outputPins())
	if err != nil {
		return errors.Wrapf(err, "failed to setup %s driver", driver)
	}
	lg.driver = driver

	for _, out := range lg.Outputs {
		err = driver.WritePin(out.Pin, out.Initial)
		if err != nil {
			return errors.Wrapf(err, "failed to set initial level of %s", out.GetName())
		}
	}

	if lg.Indicator != nil {
		err = lg.Indicator.Init(driver)
		if err != nil {
			return errors.Wrap(err, "failed to init indicator")
		}
	}

	lg.attrs = bridge.NewAttributes(driver)
	lg.watcher = NewWatcher(driver, lg.allPins())
	lg.watcher.AddListener(logListener{logger: lg.logger})
	if lg.Indicator != nil && lg.Indicator.StatusPin != nil {
		lg.watcher.AddListener(lg.Indicator)
	}

	lg.logger.Info("pins ready", "driver", driver.String(), "inputs", lg.Inputs, "outputs", lg.outputPins())
	return nil
}

func (lg *LolGpio) IoDriver() drivers.IoDriver {
	return lg.driver
}

func (lg *LolGpio) Attributes() *bridge.Attributes {
	return lg.attrs
}

func (lg *LolGpio) Watcher() *Watcher {
	return lg.watcher
}

// status returns the indicator as a bridge.StatusSetter, nil when not configured.
func (lg *LolGpio) status() bridge.StatusSetter {
	if lg.Indicator == nil {
		return nil
	}
	return lg.Indicator
}

// StartHttp serves the attribute bridge on HttpAddr.
func (lg *LolGpio) StartHttp() error {
	if lg.driver == nil {
		return errors.New("http bridge needs an initialized driver")
	}
	if len(lg.HttpAddr) == 0 {
		return errors.New("HttpAddr not set")
	}

	lg.server = bridge.NewServer(lg.HttpAddr, lg.HttpToken, lg.driver, lg.status())
	lg.server.Start()
	return nil
}

func (lg *LolGpio) InitMqtt(ctx context.Context) error {
	if lg.driver == nil {
		return errors.New("mqtt bridge needs an initialized driver")
	}
	if len(lg.MqttBroker) == 0 {
		return errors.New("mqtt broker not set")
	}

	clientId := lg.Name
	if len(clientId) == 0 {
		clientId = defaultMqttPrefix
	}

	mc, err := mqtt.NewMqttClient(lg.MqttBroker, clientId)
	if err != nil {
		return errors.Wrap(err, "failed to create mqtt client")
	}

	attrs := bridge.NewMqttAttributes(lg.MqttPrefix, lg.attrs, mc)
	handlers := []mqtt.MqttHandler{attrs}
	var status *bridge.MqttStatus
	if lg.Indicator != nil {
		status = bridge.NewMqttStatus(lg.MqttPrefix, lg.Indicator, mc)
		handlers = append(handlers, status)
	}

	err = mc.Connect(ctx, handlers)
	if err != nil {
		return errors.Wrap(err, "failed to connect mqtt client")
	}

	lg.mqttClient = mc
	lg.watcher.AddListener(attrs)
	if status != nil {
		lg.Indicator.AddListener(status)
	}
	return nil
}

func (lg *LolGpio) InitRecorder() error {
	if lg.Influx == nil {
		return errors.New("influx recorder not configured")
	}
	if lg.watcher == nil {
		return errors.New("recorder needs an initialized driver")
	}

	err := lg.Influx.Open()
	if err != nil {
		return errors.Wrap(err, "failed to open influx recorder")
	}

	lg.watcher.AddListener(lg.Influx)
	return nil
}

// StartTicker polls all configured pins every interval until ctx is done.
func (lg *LolGpio) StartTicker(ctx context.Context, interval time.Duration) {
	lg.watcher.Run(ctx, interval)
}

// Close drives every output to its safe level and releases the driver.
// The driver is released even when safe levels cannot be applied.
func (lg *LolGpio) Close() (err error) {
	if lg.server != nil {
		if closeErr := lg.server.Close(); closeErr != nil {
			err = errors.Wrap(closeErr, "http bridge")
		}
	}

	if lg.mqttClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if closeErr := lg.mqttClient.Disconnect(ctx); closeErr != nil {
			err = wrapClose(err, closeErr, "mqtt")
		}
		cancel()
	}

	if lg.Influx != nil {
		lg.Influx.Close()
	}

	if lg.driver == nil {
		return
	}

	for _, out := range lg.Outputs {
		if writeErr := lg.driver.WritePin(out.Pin, out.Safe); writeErr != nil {
			err = wrapClose(err, writeErr, fmt.Sprintf("safe level of %s", out.GetName()))
		}
	}

	if closeErr := lg.driver.Close(); closeErr != nil {
		err = wrapClose(err, closeErr, "driver")
	}
	lg.driver = nil

	return
}

func wrapClose(err error, closeErr error, what string) error {
	if err == nil {
		return errors.Wrap(closeErr, what)
	}
	return errors.Wrapf(err, "%s: %v", what, closeErr)
}

func (lg *LolGpio) PrintIoStatus(writer io.Writer) {
	fmt.Fprintln(writer)
	fmt.Fprintln(writer, "=== active io driver ===")
	if lg.driver == nil {
		fmt.Fprintln(writer, "| none")
		return
	}

	fmt.Fprintf(writer, "| driver: %s\n", lg.driver)
	inputs, outputs := lg.driver.GetAllIo()
	fmt.Fprintf(writer, "| in pins: ")
	for _, inpin := range inputs {
		fmt.Fprintf(writer, "%s, ", bridge.AttributeName(inpin))
	}
	fmt.Fprintf(writer, "\n| out pins: ")
	for _, outpin := range outputs {
		fmt.Fprintf(writer, "%s, ", bridge.AttributeName(outpin))
	}
	fmt.Fprintln(writer)
	fmt.Fprintln(writer, "-----------------------------")
	fmt.Fprintln(writer)
}
