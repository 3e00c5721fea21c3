package bridge

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/eclipse/paho.golang/paho"

	"github.com/hubertat/lolgpio/mqtt"
)

const setSuffix = "set"
const statusTopic = "status"

// MqttAttributes writes attributes received on <prefix>/gpioN/set and
// publishes levels on <prefix>/gpioN.
type MqttAttributes struct {
	Prefix string

	attrs     *Attributes
	publisher mqtt.Publisher
	logger    *log.Logger
}

func NewMqttAttributes(prefix string, attrs *Attributes, publisher mqtt.Publisher) *MqttAttributes {
	return &MqttAttributes{
		Prefix:    prefix,
		attrs:     attrs,
		publisher: publisher,
		logger: log.NewWithOptions(os.Stderr, log.Options{
			Prefix: "bridge mqtt",
			Level:  log.GetLevel(),
		}),
	}
}

func (ma *MqttAttributes) MqttSubscribeTopic() string {
	return strings.Join([]string{ma.Prefix, "+", setSuffix}, "/")
}

// attribute extracts gpioN out of <prefix>/gpioN/set.
func (ma *MqttAttributes) attribute(topic string) string {
	name := strings.TrimPrefix(topic, ma.Prefix+"/")
	return strings.TrimSuffix(name, "/"+setSuffix)
}

func (ma *MqttAttributes) MqttHandle(pub *paho.Publish) {
	name := ma.attribute(pub.Topic)
	if name == statusTopic {
		return
	}

	if err := ma.attrs.Write(name, string(pub.Payload)); err != nil {
		ma.logger.Warn("attribute write rejected", "topic", pub.Topic, "err", err)
		return
	}

	ma.PublishLevel(name)
}

// PublishLevel reads the named attribute and publishes it, without the trailing newline.
func (ma *MqttAttributes) PublishLevel(name string) {
	text, err := ma.attrs.Read(name)
	if err != nil {
		ma.logger.Warn("attribute read failed", "name", name, "err", err)
		return
	}

	ma.publish(name, text)
}

// LevelChanged publishes a level reported by a pin watcher.
func (ma *MqttAttributes) LevelChanged(pin uint16, level bool) {
	ma.publish(AttributeName(pin), FormatLevel(level))
}

func (ma *MqttAttributes) publish(name string, text string) {
	topic := ma.Prefix + "/" + name
	if err := ma.publisher.Publish(topic, []byte(strings.TrimSpace(text))); err != nil {
		ma.logger.Error("failed to publish level", "topic", topic, "err", err)
	}
}

// MqttStatus forwards <prefix>/status/set payloads to a StatusSetter and
// publishes status changes on <prefix>/status.
type MqttStatus struct {
	Prefix string

	status    StatusSetter
	publisher mqtt.Publisher
	logger    *log.Logger
}

func NewMqttStatus(prefix string, status StatusSetter, publisher mqtt.Publisher) *MqttStatus {
	return &MqttStatus{
		Prefix:    prefix,
		status:    status,
		publisher: publisher,
		logger: log.NewWithOptions(os.Stderr, log.Options{
			Prefix: "bridge mqtt",
			Level:  log.GetLevel(),
		}),
	}
}

func (ms *MqttStatus) MqttSubscribeTopic() string {
	return strings.Join([]string{ms.Prefix, statusTopic, setSuffix}, "/")
}

func (ms *MqttStatus) MqttHandle(pub *paho.Publish) {
	open, err := ParseStatus(string(pub.Payload))
	if err != nil {
		ms.logger.Warn("status rejected", "payload", string(pub.Payload), "err", err)
		return
	}
	if err := ms.status.SetOpen(open); err != nil {
		ms.logger.Error("failed to set status", "err", err)
	}
}

// StatusChanged publishes "open" or "closed" on <prefix>/status.
func (ms *MqttStatus) StatusChanged(open bool) {
	topic := ms.Prefix + "/" + statusTopic
	if err := ms.publisher.Publish(topic, []byte(FormatStatus(open))); err != nil {
		ms.logger.Error("failed to publish status", "topic", topic, "err", err)
	}
}
