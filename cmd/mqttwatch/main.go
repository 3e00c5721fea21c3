package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/eclipse/paho.golang/paho"

	"github.com/hubertat/lolgpio/mqtt"
)

const clientID = "lolgpio-watch"

var (
	broker = flag.String("broker", "mqtt://localhost:1883", "mqtt broker url")
	prefix = flag.String("prefix", "lolgpio", "lolgpio topic prefix")
)

// Handler logs every level published by a lolgpio instance.
type Handler struct {
	topic string
}

func (h *Handler) MqttSubscribeTopic() string {
	return h.topic
}

func (h *Handler) MqttHandle(pub *paho.Publish) {
	log.Info("pin state", "topic", pub.Topic, "payload", string(pub.Payload))
}

func main() {
	flag.Parse()
	log.SetLevel(log.DebugLevel)

	mc, err := mqtt.NewMqttClient(*broker, clientID)
	if err != nil {
		log.Fatal("failed to create mqtt client", "error", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err = mc.Connect(ctx, []mqtt.MqttHandler{&Handler{topic: *prefix + "/+"}})
	if err != nil {
		log.Fatal("failed to connect to mqtt broker", "error", err)
	}

	log.Info("mqtt client connected, watching", "prefix", *prefix)
	<-ctx.Done()
	mc.Disconnect(context.Background())
}
