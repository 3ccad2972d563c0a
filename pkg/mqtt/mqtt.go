package mqtt

import (
	"errors"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const DefaultTopic = "fallwatch/events"

var ErrNotConfigured = errors.New("mqtt broker not configured")

type Event struct {
	AnalysisID string    `json:"analysis_id"`
	Event      string    `json:"event"`
	Risk       string    `json:"risk"`
	Precaution string    `json:"precaution"`
	DetectedAt time.Time `json:"detected_at"`
}

type IPublisher interface {
	PublishEvent(event Event) error
	Close()
}

type publisher struct {
	client  paho.Client
	topic   string
	timeout time.Duration
	log     *logrus.Logger
}

func New(log *logrus.Logger) (IPublisher, error) {
	broker := os.Getenv("MQTT_BROKER")
	if broker == "" {
		return nil, ErrNotConfigured
	}
	topic := os.Getenv("MQTT_TOPIC")
	if topic == "" {
		topic = DefaultTopic
	}

	clientID := "fallwatch-" + uuid.New().String()
	log.Infof("Connecting to MQTT %s with client ID %s", broker, clientID)

	opts := paho.NewClientOptions().AddBroker(broker).SetClientID(clientID)
	opts.SetUsername(os.Getenv("MQTT_USERNAME"))
	opts.SetPassword(os.Getenv("MQTT_PASSWORD"))
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(5 * time.Second)
	opts.SetConnectTimeout(30 * time.Second)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(c paho.Client) {
		log.Info("Connected to MQTT")
	}
	opts.SetConnectionLostHandler(func(c paho.Client, err error) {
		log.Warnf("MQTT connection lost: %v", err)
	})

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(30 * time.Second) {
		return nil, fmt.Errorf("connect mqtt %s: timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect mqtt: %w", err)
	}

	return NewWithClient(client, topic, log), nil
}

func NewWithClient(client paho.Client, topic string, log *logrus.Logger) IPublisher {
	return &publisher{client: client, topic: topic, timeout: 10 * time.Second, log: log}
}

// PublishEvent sends event with QoS 1 and waits for the broker ack.
func (p *publisher) PublishEvent(event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	token := p.client.Publish(p.topic, 1, false, payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("publish to %s timed out", p.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}

	p.log.WithFields(logrus.Fields{
		"topic":       p.topic,
		"analysis_id": event.AnalysisID,
		"event":       event.Event,
	}).Debug("Published detection event")

	return nil
}

func (p *publisher) Close() {
	p.client.Disconnect(250)
}
