package mqtt

import (
	"testing"

	"github.com/eclipse/paho.golang/paho"
)

type recordingHandler struct {
	topic    string
	received []string
}

func (rh *recordingHandler) MqttHandle(pub *paho.Publish) {
	rh.received = append(rh.received, pub.Topic)
}

func (rh *recordingHandler) MqttSubscribeTopic() string {
	return rh.topic
}

func TestTopicMatches(t *testing.T) {
	tests := []struct {
		filter string
		topic  string
		want   bool
	}{
		{"lolgpio/+/set", "lolgpio/gpio8/set", true},
		{"lolgpio/+/set", "lolgpio/gpio8", false},
		{"lolgpio/+/set", "lolgpio/gpio8/set/now", false},
		{"lolgpio/#", "lolgpio/status/set", true},
		{"lolgpio/status/set", "lolgpio/status/set", true},
		{"lolgpio/status/set", "other/status/set", false},
	}

	for _, tt := range tests {
		if got := TopicMatches(tt.filter, tt.topic); got != tt.want {
			t.Errorf("TopicMatches(%q, %q) got %v want %v", tt.filter, tt.topic, got, tt.want)
		}
	}
}

func TestDispatch(t *testing.T) {
	mc, err := NewMqttClient("mqtt://localhost:1883", "test")
	if err != nil {
		t.Fatalf("NewMqttClient returned err: %v", err)
	}

	pins := &recordingHandler{topic: "lolgpio/+/set"}
	status := &recordingHandler{topic: "lolgpio/status/set"}
	mc.handlers = []MqttHandler{pins, status}

	if !mc.dispatch(&paho.Publish{Topic: "lolgpio/gpio8/set"}) {
		t.Error("gpio8 message not handled")
	}
	if mc.dispatch(&paho.Publish{Topic: "lolgpio/gpio8"}) {
		t.Error("state message handled")
	}
	mc.dispatch(&paho.Publish{Topic: "lolgpio/status/set"})

	if len(pins.received) != 2 {
		t.Errorf("pin handler got %v", pins.received)
	}
	if len(status.received) != 1 {
		t.Errorf("status handler got %v", status.received)
	}
}

func TestPublishNotConnected(t *testing.T) {
	mc, _ := NewMqttClient("mqtt://localhost:1883", "test")
	if err := mc.Publish("lolgpio/gpio8", []byte("1")); err == nil {
		t.Error("got nil error publishing without connection")
	}
}
