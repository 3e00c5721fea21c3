package lolgpio

import (
	"context"
	"fmt"

	dnslog "github.com/brutella/dnssd/log"
	"github.com/brutella/hap"
	"github.com/brutella/hap/accessory"
	hklog "github.com/brutella/hap/log"
	"github.com/pkg/errors"
)

const defaultHomeKitDirectory = "./homekit"
const homeKitBridgeName = "lolgpio"
const homeKitBridgeAuthor = "github.com/hubertat"

// homeKitSwitches maps output pins to HomeKit switches and keeps them in sync
// with polled levels.
type homeKitSwitches struct {
	switches map[uint16]*accessory.Switch
}

func (hs *homeKitSwitches) LevelChanged(pin uint16, level bool) {
	if sw, found := hs.switches[pin]; found {
		sw.Switch.On.SetValue(level)
	}
}

func (lg *LolGpio) getHkAccessories(firmwareVersion string) (acc []*accessory.A, switches *homeKitSwitches) {
	switches = &homeKitSwitches{switches: make(map[uint16]*accessory.Switch)}

	for _, out := range lg.Outputs {
		if out.DisableHomekit {
			continue
		}

		sw := accessory.NewSwitch(accessory.Info{
			Name:         out.GetName(),
			SerialNumber: fmt.Sprintf("output:%s:%02d", lg.Driver, out.Pin),
			Firmware:     firmwareVersion,
			Manufacturer: homeKitBridgeAuthor,
		})
		sw.Id = out.GetUniqueId()

		pin := out.Pin
		sw.Switch.On.OnValueRemoteUpdate(func(on bool) {
			value := 0
			if on {
				value = 1
			}
			if err := lg.driver.WritePin(pin, value); err != nil {
				lg.logger.Error("HomeKit write failed", "pin", pin, "err", err)
			}
		})

		switches.switches[pin] = sw
		acc = append(acc, sw.A)
	}

	return
}

// StartHomeKit serves the configured outputs as HomeKit switches until ctx is done.
func (lg *LolGpio) StartHomeKit(ctx context.Context, firmwareVersion string) error {
	if lg.driver == nil {
		return errors.New("HomeKit needs an initialized driver")
	}

	hkName := lg.Name
	if len(hkName) < 1 {
		hkName = homeKitBridgeName
	}
	bridge := accessory.NewBridge(accessory.Info{
		Name:         hkName,
		Manufacturer: homeKitBridgeAuthor,
		Firmware:     firmwareVersion,
	})

	var store hap.Store
	if len(lg.HkDirectory) > 1 {
		store = hap.NewFsStore(lg.HkDirectory)
	} else {
		store = hap.NewFsStore(defaultHomeKitDirectory)
	}

	accessories, switches := lg.getHkAccessories(firmwareVersion)
	hkServer, err := hap.NewServer(store, bridge.A, accessories...)
	if err != nil {
		return errors.Wrap(err, "failed to create HomeKit server")
	}
	hkServer.Pin = lg.HkPin
	if len(lg.HkAddress) > 0 {
		hkServer.Addr = lg.HkAddress
	}

	if lg.HkDebug {
		hklog.Debug.Enable()
		dnslog.Debug.Enable()
	}

	if lg.watcher != nil {
		lg.watcher.AddListener(switches)
	}

	return hkServer.ListenAndServe(ctx)
}
