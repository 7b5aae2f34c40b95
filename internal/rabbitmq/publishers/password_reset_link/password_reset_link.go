package passwordresetlink

import (
	"context"
	c "forgotpassword/internal/core/domain/common"
	e "forgotpassword/internal/core/domain/errors"
	"forgotpassword/internal/core/domain/logging"
	"forgotpassword/internal/rabbitmq/schema"
	"net/url"

	"github.com/rabbitmq/amqp091-go"
)

type channel interface {
	PublishWithContext(
		ctx context.Context,
		exchange, key string,
		mandatory, immediate bool,
		msg amqp091.Publishing,
	) error
}

// RabbitMQ queues password reset links for the mailer. Messages go through
// the default exchange straight to the queue.
type RabbitMQ struct {
	log     logging.Logger
	channel channel
	queue   string
}

func NewRabbitMQ(log logging.Logger, channel channel, queue string) *RabbitMQ {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if channel == nil {
		panic(e.NewNilArgumentError("channel"))
	}
	if queue == "" {
		panic("queue name must not be empty")
	}
	return &RabbitMQ{log: log, channel: channel, queue: queue}
}

func (p *RabbitMQ) SendPasswordResetLink(
	ctx context.Context,
	email c.Email,
	link url.URL,
	displayName string,
) error {
	message := schema.PasswordResetLink{
		Email:       string(email),
		Link:        link.String(),
		DisplayName: displayName,
	}
	body, err := message.Marshal()
	if err != nil {
		return err
	}

	err = p.channel.PublishWithContext(ctx, "", p.queue, false, false, amqp091.Publishing{
		ContentType:  schema.ContentType,
		DeliveryMode: amqp091.Persistent,
		Body:         body,
	})
	if err != nil {
		p.log.Error(
			ctx,
			"Could not publish password reset link.",
			logging.Entry("queue", p.queue),
			logging.Entry("err", err),
		)
		return err
	}
	p.log.Info(ctx, "Password reset link has been queued.", logging.Entry("queue", p.queue))
	return nil
}
