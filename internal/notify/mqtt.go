// Package notify publishes refresh hints to online kiosks over MQTT so they
// re-poll immediately after an admin edits their group's playlist, instead
// of waiting out the poll interval. Entirely optional; kiosks that miss a
// message pick up the change on their next poll.
package notify

import (
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// Notifier publishes group refresh hints. The zero-value NopNotifier is used
// when MQTT is not configured.
type Notifier interface {
	GroupChanged(groupID int)
}

type NopNotifier struct{}

func (NopNotifier) GroupChanged(int) {}

type MQTTNotifier struct {
	client mqtt.Client
}

func NewMQTTNotifier(brokerURL, clientID string) (*MQTTNotifier, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.OnConnect = func(mqtt.Client) {
		log.Info().Str("broker", brokerURL).Msg("connected to MQTT broker")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Msg("MQTT connection lost")
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return &MQTTNotifier{client: client}, nil
}

// GroupChanged publishes a retained-free refresh message for the group.
// Delivery is best-effort; failures are logged, never propagated.
func (n *MQTTNotifier) GroupChanged(groupID int) {
	topic := fmt.Sprintf("kiosk/group/%d", groupID)
	token := n.client.Publish(topic, 0, false, "refresh")
	go func() {
		if token.Wait() && token.Error() != nil {
			log.Warn().Err(token.Error()).Str("topic", topic).Msg("failed to publish refresh")
		}
	}()
}

func (n *MQTTNotifier) Close() {
	n.client.Disconnect(250)
}
