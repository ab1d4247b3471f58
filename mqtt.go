package herkulexd

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/denisbrodbeck/machineid"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/mdouchement/logger"
)

const mqttTimeout = 5 * time.Second

// A MQTTPublisher publishes retained servo snapshots on `<topic>/<label>`.
type MQTTPublisher struct {
	client paho.Client
	topic  string
}

func NewMQTTPublisher(cfg MQTT, log logger.Logger) (*MQTTPublisher, error) {
	opts, err := mqttOptions(cfg)
	if err != nil {
		return nil, err
	}
	opts.SetOnConnectHandler(func(paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		log.WithError(err).Warnf("MQTT connection lost to %s", cfg.Broker)
	})

	p := &MQTTPublisher{
		client: paho.NewClient(opts),
		topic:  strings.Trim(cfg.Topic, "/"),
	}

	token := p.client.Connect()
	if !token.WaitTimeout(mqttTimeout) {
		return nil, fmt.Errorf("mqtt: connect %s: timeout", cfg.Broker)
	}
	if err = token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt: connect %s: %w", cfg.Broker, err)
	}

	return p, nil
}

func mqttOptions(cfg MQTT) (*paho.ClientOptions, error) {
	u, err := url.Parse(cfg.Broker)
	if err != nil {
		return nil, fmt.Errorf("mqtt: broker: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("mqtt: broker: %s: missing host", cfg.Broker)
	}

	scheme := u.Scheme
	if scheme == "" || scheme == "mqtt" {
		scheme = "tcp"
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID, err = machineid.ProtectedID("herkulexd")
		if err != nil {
			clientID = "herkulexd"
		}
		clientID = "herkulexd-" + clientID[:min(len(clientID), 12)]
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(scheme + "://" + u.Host).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			opts.SetPassword(pwd)
		}
	}

	return opts, nil
}

// Topic returns the topic where the servo snapshot is published.
func (p *MQTTPublisher) Topic(s Snapshot) string {
	label := s.Label
	if label == "" {
		label = fmt.Sprintf("servo%d", s.ID)
	}

	return p.topic + "/" + label
}

func (p *MQTTPublisher) Publish(s Snapshot) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}

	token := p.client.Publish(p.Topic(s), 0, true, payload)
	if !token.WaitTimeout(mqttTimeout) {
		return fmt.Errorf("mqtt: publish %s: timeout", p.Topic(s))
	}
	return token.Error()
}

func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(250)
	return nil
}
