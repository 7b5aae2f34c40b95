package passwordresetlink

import (
	"context"
	"errors"
	"forgotpassword/internal/core/domain/logging"
	"forgotpassword/internal/rabbitmq/schema"
	"net/url"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

type fakeChannel struct {
	published   []published
	returnError bool
}

func (c *fakeChannel) PublishWithContext(
	ctx context.Context,
	exchange, key string,
	mandatory, immediate bool,
	msg amqp091.Publishing,
) error {
	if c.returnError {
		return errors.New("channel is closed")
	}
	c.published = append(c.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func TestSendPasswordResetLinkPublishesMessage(t *testing.T) {
	ch := &fakeChannel{}
	publisher := NewRabbitMQ(logging.NewFakeLogger(), ch, "password-reset")
	link, err := url.Parse("https://app.example.com/reset-password?token=abc")
	require.NoError(t, err)

	err = publisher.SendPasswordResetLink(context.Background(), "user@example.com", *link, "Test")
	require.NoError(t, err)

	require.Len(t, ch.published, 1)
	p := ch.published[0]
	require.Equal(t, "", p.exchange)
	require.Equal(t, "password-reset", p.key)
	require.Equal(t, schema.ContentType, p.msg.ContentType)
	require.Equal(t, amqp091.Persistent, p.msg.DeliveryMode)

	message := schema.PasswordResetLink{}
	require.NoError(t, message.Unmarshal(p.msg.Body))
	require.Equal(t, schema.PasswordResetLink{
		Email:       "user@example.com",
		Link:        "https://app.example.com/reset-password?token=abc",
		DisplayName: "Test",
	}, message)
}

func TestSendPasswordResetLinkReturnsPublishError(t *testing.T) {
	log := logging.NewFakeLogger()
	publisher := NewRabbitMQ(log, &fakeChannel{returnError: true}, "password-reset")

	err := publisher.SendPasswordResetLink(context.Background(), "user@example.com", url.URL{}, "")
	require.Error(t, err)
	require.Equal(t, 1, log.CountLevel(logging.ERROR))
}
