package bridge

import (
	"testing"

	"github.com/eclipse/paho.golang/paho"
)

type mockPublisher struct {
	published map[string]string
}

func (mp *mockPublisher) Publish(topic string, payload []byte) error {
	if mp.published == nil {
		mp.published = make(map[string]string)
	}
	mp.published[topic] = string(payload)
	return nil
}

func TestMqttAttributes(t *testing.T) {
	bd := simulatedDriver(t)
	pub := &mockPublisher{}
	ma := NewMqttAttributes("lolgpio", NewAttributes(bd), pub)

	if got := ma.MqttSubscribeTopic(); got != "lolgpio/+/set" {
		t.Errorf("got topic %s", got)
	}

	ma.MqttHandle(&paho.Publish{Topic: "lolgpio/gpio8/set", Payload: []byte("1")})

	level, _ := bd.ReadPin(8)
	if !level {
		t.Error("gpio8 not driven high")
	}
	if got := pub.published["lolgpio/gpio8"]; got != "1" {
		t.Errorf("published %q want %q", got, "1")
	}

	ma.MqttHandle(&paho.Publish{Topic: "lolgpio/gpio8/set", Payload: []byte("high")})
	level, _ = bd.ReadPin(8)
	if !level {
		t.Error("rejected payload changed gpio8")
	}

	ma.MqttHandle(&paho.Publish{Topic: "lolgpio/status/set", Payload: []byte("0")})
	if len(pub.published) != 1 {
		t.Errorf("status message handled as attribute: %v", pub.published)
	}
}

func TestMqttStatus(t *testing.T) {
	status := &statusRecorder{}
	ms := NewMqttStatus("lolgpio", status, &mockPublisher{})

	if got := ms.MqttSubscribeTopic(); got != "lolgpio/status/set" {
		t.Errorf("got topic %s", got)
	}

	ms.MqttHandle(&paho.Publish{Topic: "lolgpio/status/set", Payload: []byte("open")})
	ms.MqttHandle(&paho.Publish{Topic: "lolgpio/status/set", Payload: []byte("maybe")})

	if len(status.open) != 1 || !status.open[0] {
		t.Errorf("got %v want [true]", status.open)
	}
}

func TestMqttAttributesLevelChanged(t *testing.T) {
	pub := &mockPublisher{}
	ma := NewMqttAttributes("door", NewAttributes(simulatedDriver(t)), pub)

	ma.LevelChanged(4, true)
	ma.LevelChanged(11, false)

	if got := pub.published["door/gpio4"]; got != "1" {
		t.Errorf("gpio4 published %q want %q", got, "1")
	}
	if got := pub.published["door/gpio11"]; got != "0" {
		t.Errorf("gpio11 published %q want %q", got, "0")
	}
}

func TestMqttStatusPublishesChanges(t *testing.T) {
	pub := &mockPublisher{}
	ms := NewMqttStatus("door", &statusRecorder{}, pub)

	ms.StatusChanged(false)
	if got := pub.published["door/status"]; got != "closed" {
		t.Errorf("published %q want %q", got, "closed")
	}

	ms.StatusChanged(true)
	if got := pub.published["door/status"]; got != "open" {
		t.Errorf("published %q want %q", got, "open")
	}
}
