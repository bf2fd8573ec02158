package driver

import (
	"time"

	"github.com/heyfey/priosched/pkg/common/logger"
	"github.com/heyfey/priosched/pkg/common/rabbitmq"
	"github.com/heyfey/priosched/pkg/model"
	"github.com/streadway/amqp"
)

const eventsExchange = "scheduler.events"

// eventSink publishes applied actions to the event bus. A nil connection
// means the event bus is disabled; publish becomes a no-op.
type eventSink struct {
	conn *amqp.Connection
}

func newEventSink() eventSink {
	log := logger.GetLogger()
	defer logger.Flush()

	conn, err := rabbitmq.ConnectRabbitMQ()
	if err != nil {
		if err == rabbitmq.ErrDisabled {
			log.V(2).Info("Event bus disabled: no AMQP URL configured")
		} else {
			log.Error(err, "Event bus disabled: could not connect")
		}
		return eventSink{}
	}
	return eventSink{conn: conn}
}

func (e eventSink) publish(scheduler string, action model.Action, at time.Time) {
	if e.conn == nil {
		return
	}
	log := logger.GetLogger()
	defer logger.Flush()

	verb := rabbitmq.VerbBind
	if action.Kind == model.ActionEvict {
		verb = rabbitmq.VerbEvict
	}

	msg := rabbitmq.Msg{
		Verb:      verb,
		Pod:       action.Pod.String(),
		Node:      action.Node,
		Scheduler: scheduler,
		Timestamp: at,
	}
	if err := rabbitmq.PublishEvent(e.conn, eventsExchange, msg); err != nil {
		log.V(2).Info("Failed to publish event", "error", err, "msg", msg)
	}
}
