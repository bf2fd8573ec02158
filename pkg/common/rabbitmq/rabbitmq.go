package rabbitmq

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/heyfey/priosched/config"
	"github.com/streadway/amqp"
	"k8s.io/klog/v2"
)

// VerbType names the kind of scheduling action an event describes.
type VerbType string

const (
	VerbBind  VerbType = "bind"
	VerbEvict VerbType = "evict"
)

// Msg is the envelope published to the scheduler.events exchange for every
// applied plan action.
type Msg struct {
	Verb      VerbType  `json:"verb"`
	Pod       string    `json:"pod"`
	Node      string    `json:"node,omitempty"`
	Scheduler string    `json:"scheduler"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrDisabled is returned by ConnectRabbitMQ when no AMQP URL is configured.
var ErrDisabled = errors.New("rabbitmq: no endpoint configured")

// ConnectRabbitMQ dials the event bus broker at the URL read from
// SCHEDULER_AMQP_URL. It returns ErrDisabled rather than exiting the process
// if unset, since the event bus is an optional sink.
func ConnectRabbitMQ() (*amqp.Connection, error) {
	url := config.AMQPURL()
	if url == "" {
		return nil, ErrDisabled
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		klog.ErrorS(err, "Failed to connect to rabbit-mq", "url", url)
		return nil, err
	}
	klog.InfoS("Connected to rabbit-mq", "url", url)
	return conn, nil
}

// PublishEvent publishes msg to the fanout exchange named exchangeName,
// declaring it first if it does not already exist.
func PublishEvent(conn *amqp.Connection, exchangeName string, msg Msg) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	err = ch.ExchangeDeclare(
		exchangeName, // name
		"fanout",     // kind
		false,        // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return err
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return ch.Publish(
		exchangeName, // exchange
		"",           // routing key (ignored by fanout)
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   msg.Timestamp,
		})
}
