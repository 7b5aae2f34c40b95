package rabbitmq

import (
	"context"
	"fmt"
	"forgotpassword/internal/core/domain/logging"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const reconnectDelay = 3 * time.Second

// Connection wraps amqp.Connection and redials it when the broker drops it.
type Connection struct {
	conn   atomic.Pointer[amqp.Connection]
	closed int32
	log    logging.Logger
}

func Dial(url string, log logging.Logger) (*Connection, error) {
	if log == nil {
		return nil, fmt.Errorf("log argument must not be nil")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	connection := &Connection{log: log}
	connection.conn.Store(conn)
	go connection.watch(url)
	return connection, nil
}

func (c *Connection) watch(url string) {
	ctx := context.Background()
	for {
		reason, ok := <-c.conn.Load().NotifyClose(make(chan *amqp.Error, 1))
		if !ok || reason == nil || c.IsClosed() {
			c.log.Info(ctx, "RabbitMQ connection closed.")
			return
		}

		c.log.Warning(ctx, "RabbitMQ connection lost.", logging.Entry("reason", reason.Error()))
		for {
			time.Sleep(reconnectDelay)
			conn, err := amqp.Dial(url)
			if err == nil {
				c.conn.Store(conn)
				c.log.Info(ctx, "RabbitMQ reconnect success.")
				break
			}
			c.log.Error(ctx, "RabbitMQ reconnect failed.", logging.Entry("err", err))
		}
	}
}

// IsClosed reports whether Close has been called.
func (c *Connection) IsClosed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

func (c *Connection) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return amqp.ErrClosed
	}
	return c.conn.Load().Close()
}

// Channel opens a channel that is recreated whenever it is closed by
// anything but Channel.Close.
func (c *Connection) Channel() (*Channel, error) {
	ch, err := c.conn.Load().Channel()
	if err != nil {
		return nil, err
	}

	channel := &Channel{log: c.log}
	channel.ch.Store(ch)
	go func() {
		ctx := context.Background()
		for {
			reason, ok := <-channel.ch.Load().NotifyClose(make(chan *amqp.Error, 1))
			if !ok || reason == nil || channel.IsClosed() {
				channel.Close()
				return
			}

			c.log.Warning(ctx, "RabbitMQ channel closed.", logging.Entry("reason", reason.Error()))
			for {
				time.Sleep(reconnectDelay)
				ch, err := c.conn.Load().Channel()
				if err == nil {
					c.log.Info(ctx, "RabbitMQ channel recreated.")
					channel.ch.Store(ch)
					break
				}
				c.log.Error(ctx, "Could not recreate RabbitMQ channel.", logging.Entry("err", err))
			}
		}
	}()
	return channel, nil
}

type Channel struct {
	ch     atomic.Pointer[amqp.Channel]
	closed int32
	log    logging.Logger
}

// IsClosed reports whether Close has been called.
func (ch *Channel) IsClosed() bool {
	return atomic.LoadInt32(&ch.closed) == 1
}

func (ch *Channel) Close() error {
	if !atomic.CompareAndSwapInt32(&ch.closed, 0, 1) {
		return amqp.ErrClosed
	}
	return ch.ch.Load().Close()
}

// DeclareQueue declares a durable queue bound to the default exchange.
func (ch *Channel) DeclareQueue(name string) error {
	_, err := ch.ch.Load().QueueDeclare(name, true, false, false, false, nil)
	return err
}

func (ch *Channel) PublishWithContext(
	ctx context.Context,
	exchange, key string,
	mandatory, immediate bool,
	msg amqp.Publishing,
) error {
	return ch.ch.Load().PublishWithContext(ctx, exchange, key, mandatory, immediate, msg)
}

// Consume keeps delivering messages across channel recreation until the
// channel is closed with Close.
func (ch *Channel) Consume(
	queue, consumer string,
	autoAck, exclusive, noLocal, noWait bool,
	args amqp.Table,
) (<-chan amqp.Delivery, error) {
	deliveries := make(chan amqp.Delivery)

	go func() {
		defer close(deliveries)
		ctx := context.Background()
		for {
			d, err := ch.ch.Load().Consume(queue, consumer, autoAck, exclusive, noLocal, noWait, args)
			if err != nil {
				if ch.IsClosed() {
					return
				}
				ch.log.Error(ctx, "Consume failed.", logging.Entry("err", err), logging.Entry("queue", queue))
				time.Sleep(reconnectDelay)
				continue
			}

			for msg := range d {
				deliveries <- msg
			}

			// The closed flag may be set slightly after the delivery channel ends.
			time.Sleep(reconnectDelay)
			if ch.IsClosed() {
				ch.log.Info(ctx, "Channel is closed, stop consuming.", logging.Entry("queue", queue))
				return
			}
		}
	}()

	return deliveries, nil
}
