package consumers

import (
	"context"
	"forgotpassword/internal/app/deps"
	dl "forgotpassword/internal/core/domain/logging"
	passwordresetlink "forgotpassword/internal/rabbitmq/consumers/password_reset_link"
)

func initPasswordResetLinkConsumer(deps *deps.MailerDeps) (<-chan struct{}, func()) {
	rabbitmqChannel, err := deps.Rabbitmq.Channel()
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ channel.", dl.Entry("err", err))
		panic(err)
	}

	queue := deps.Config.RabbitmqPasswordResetQueue
	if err := rabbitmqChannel.DeclareQueue(queue); err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ queue.", dl.Entry("err", err))
		panic(err)
	}

	consumer := passwordresetlink.New(deps.Logger, rabbitmqChannel, queue, deps.EmailSender)
	done, err := consumer.Consume()
	if err != nil {
		deps.Logger.Error(
			context.Background(),
			"Could not start RabbitMQ consuming.",
			dl.Entry("err", err),
			dl.Entry("queue", queue),
		)
		panic(err)
	}

	deps.Logger.Info(context.Background(), "Consumer has started.", dl.Entry("queue", queue))
	return done, func() { rabbitmqChannel.Close() }
}

// InitConsumers starts the mailer consumers. The returned channel is closed
// when a consumer stops receiving deliveries.
func InitConsumers(deps *deps.MailerDeps) (<-chan struct{}, func()) {
	done, shutdownPasswordResetLinkConsumer := initPasswordResetLinkConsumer(deps)

	return done, func() {
		shutdownPasswordResetLinkConsumer()
	}
}
