package passwordresetlink

import (
	"context"
	common "forgotpassword/internal/core/domain/common"
	e "forgotpassword/internal/core/domain/errors"
	"forgotpassword/internal/core/domain/logging"
	"forgotpassword/internal/core/domain/user"
	"forgotpassword/internal/rabbitmq/schema"
	"net/url"

	"github.com/rabbitmq/amqp091-go"
)

type channel interface {
	Consume(
		queue, consumer string,
		autoAck, exclusive, noLocal, noWait bool,
		args amqp091.Table,
	) (<-chan amqp091.Delivery, error)
}

// Consumer delivers queued password reset links with the given sender.
// A link that fails to send is requeued once.
type Consumer struct {
	log     logging.Logger
	channel channel
	queue   string
	sender  user.PasswordResetLinkSender
}

func New(
	log logging.Logger,
	channel channel,
	queue string,
	sender user.PasswordResetLinkSender,
) *Consumer {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if channel == nil {
		panic(e.NewNilArgumentError("channel"))
	}
	if queue == "" {
		panic("queue name must not be empty")
	}
	if sender == nil {
		panic(e.NewNilArgumentError("sender"))
	}
	return &Consumer{log: log, channel: channel, queue: queue, sender: sender}
}

// Consume starts handling deliveries in the background. The returned channel
// is closed once the delivery stream ends.
func (c *Consumer) Consume() (<-chan struct{}, error) {
	deliveries, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		c.log.Error(context.Background(), "Could not start consuming.", logging.Entry("err", err))
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for delivery := range deliveries {
			c.handle(context.Background(), delivery)
		}
	}()
	return done, nil
}

func (c *Consumer) handle(ctx context.Context, delivery amqp091.Delivery) {
	message := schema.PasswordResetLink{}
	if err := message.Unmarshal(delivery.Body); err != nil {
		c.log.Error(ctx, "Could not unmarshal password reset link.", logging.Entry("err", err))
		c.ack(ctx, delivery)
		return
	}
	link, err := url.Parse(message.Link)
	if err != nil {
		c.log.Error(ctx, "Password reset link is not a valid URL.", logging.Entry("err", err))
		c.ack(ctx, delivery)
		return
	}

	err = c.sender.SendPasswordResetLink(ctx, common.Email(message.Email), *link, message.DisplayName)
	if err != nil {
		c.log.Error(
			ctx,
			"Could not send password reset link.",
			logging.Entry("redelivered", delivery.Redelivered),
			logging.Entry("err", err),
		)
		if err := delivery.Reject(!delivery.Redelivered); err != nil {
			c.log.Error(ctx, "Could not reject AMQP message.", logging.Entry("err", err))
		}
		return
	}
	c.log.Info(ctx, "Password reset link has been sent.")
	c.ack(ctx, delivery)
}

func (c *Consumer) ack(ctx context.Context, delivery amqp091.Delivery) {
	if err := delivery.Ack(false); err != nil {
		c.log.Error(ctx, "Could not ACK AMQP message.", logging.Entry("err", err))
	}
}
