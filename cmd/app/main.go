package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hubertat/servicemaker"

	"github.com/hubertat/lolgpio"
)

const defaultSyncInterval = "200ms"

var (
	Version string
	Build   string

	config       = flag.String("config", "config.json", "path of the configuration file")
	flagInstall  = flag.Bool("install", false, "Install service in os")
	syncInterval = flag.String("sync", defaultSyncInterval, "pin polling interval (time.Duration)")
	debug        = flag.Bool("debug", false, "enable debug logging")

	lolService = servicemaker.ServiceMaker{
		User:               "lolgpio",
		UserGroups:         []string{"gpio"},
		ServicePath:        "/etc/systemd/system/lolgpio.service",
		ServiceDescription: "lolgpio service: GPIO pins as gpioN attributes over HTTP, MQTT and HomeKit. github.com/hubertat/lolgpio",
		ExecDir:            "/srv/lolgpio",
		ExecName:           "lolgpio",
	}
)

func readConfig(path string) (*lolgpio.LolGpio, error) {
	lg := &lolgpio.LolGpio{}

	configFile, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer configFile.Close()

	cBuff, err := io.ReadAll(configFile)
	if err != nil {
		return nil, err
	}

	err = json.Unmarshal(cBuff, lg)
	return lg, err
}

func main() {
	flag.Parse()
	if *debug {
		log.SetLevel(log.DebugLevel)
	}
	log.Info("lolgpio started", "version", Version, "build", Build)

	if *flagInstall {
		err := lolService.InstallService()
		if err != nil {
			log.Fatal("failed to install service", "err", err)
		}
		log.Info("service installed!")
		return
	}

	syncDuration, err := time.ParseDuration(*syncInterval)
	if err != nil {
		log.Fatal("invalid sync interval", "sync", *syncInterval, "err", err)
	}

	lg, err := readConfig(*config)
	if err != nil {
		log.Fatal("can't read config file, will terminate", "config", *config, "err", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info("will init gpio driver...")
	err = lg.Init(ctx)
	if err != nil {
		// registers not mapped or layout rejected, nothing can run
		lg.Close()
		log.Fatal("failed to init gpio", "err", err)
	}
	defer func() {
		if err := lg.Close(); err != nil {
			log.Error("failed to close cleanly", "err", err)
		}
		log.Info("pins released")
	}()

	lg.PrintIoStatus(os.Stdout)

	if len(lg.HttpAddr) > 0 {
		if err := lg.StartHttp(); err != nil {
			log.Error("http bridge disabled", "err", err)
		}
	} else {
		log.Info("HttpAddr not configured, http bridge disabled")
	}

	if len(lg.MqttBroker) > 0 {
		if err := lg.InitMqtt(ctx); err != nil {
			log.Error("mqtt bridge disabled", "err", err)
		}
	} else {
		log.Info("MqttBroker not configured, mqtt disabled")
	}

	if lg.Influx != nil {
		if err := lg.InitRecorder(); err != nil {
			log.Error("influx recorder disabled", "err", err)
		}
	}

	if len(lg.HkPin) == 8 {
		log.Info("Starting with HomeKit server")
		go func() {
			if err := lg.StartHomeKit(ctx, Version); err != nil {
				log.Error("HomeKit server stopped", "err", err)
			}
		}()
	} else {
		log.Info("HomeKit not configured, disabled")
	}

	lg.StartTicker(ctx, syncDuration)
}
