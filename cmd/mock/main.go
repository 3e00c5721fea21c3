package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hubertat/lolgpio"
	"github.com/hubertat/lolgpio/bcm"
	"github.com/hubertat/lolgpio/drivers"
)

var (
	Version string
	Build   string
)

// Runs the default door opener layout on a simulated register block, should work on MacOs.
// The door contact on gpio4 toggles every few seconds, the status LEDs follow it.
func main() {
	log.SetLevel(log.DebugLevel)
	log.Info("lolgpio mock instance for testing purposes")

	syncDuration := 250 * time.Millisecond
	contactDuration := 5 * time.Second

	lg := &lolgpio.LolGpio{
		Name:     "lolgpio mock",
		Bcm:      &drivers.BcmIO{Simulate: true},
		HttpAddr: ":8080",
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := lg.Init(ctx)
	defer lg.Close()
	if err != nil {
		log.Fatal("failed to init", "err", err)
	}

	lg.PrintIoStatus(os.Stdout)

	if err := lg.StartHttp(); err != nil {
		log.Fatal("failed to start http bridge", "err", err)
	}

	go func() {
		sim := lg.Bcm.Simulator()
		ticker := time.NewTicker(contactDuration)
		defer ticker.Stop()

		closed := false
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				closed = !closed
				sim.SetInput(bcm.Pin(4), closed)
				log.Info("door contact toggled", "closed", closed)
			}
		}
	}()

	lg.StartTicker(ctx, syncDuration)
}
