package deps

import (
	"context"
	"forgotpassword/internal/config"
	dl "forgotpassword/internal/core/domain/logging"
	"forgotpassword/internal/implementations/email"
	"forgotpassword/internal/implementations/logging"
	"forgotpassword/internal/rabbitmq"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// MailerDeps serve the process that drains the password reset link queue.
type MailerDeps struct {
	Config      *config.MailerConfig
	AwsConfig   aws.Config
	Logger      dl.Logger
	Rabbitmq    *rabbitmq.Connection
	EmailSender *email.EmailSender
}

func InitMailerDeps() (*MailerDeps, func()) {
	cfg, err := config.LoadMailer()
	if err != nil {
		panic(err)
	}
	logger := logging.NewZapLogger()
	deps := &MailerDeps{Config: cfg, Logger: logger}

	deps.AwsConfig = newAwsConfig(cfg.AwsRegion, cfg.AwsAccessKey, cfg.AwsSecretKey)
	deps.EmailSender = email.NewEmailSender(deps.AwsConfig, cfg.AwsEmailSender, cfg.AwsEmailPasswordResetTemplate)

	conn, err := rabbitmq.Dial(cfg.RabbitmqURL, logger)
	if err != nil {
		logger.Error(context.Background(), "Could not connect to RabbitMQ.", dl.Entry("err", err))
		panic("could not connect to RabbitMQ")
	}
	deps.Rabbitmq = conn

	return deps, func() {
		logger.Info(context.Background(), "Shutting down RabbitMQ connection.")
		conn.Close()
		logger.Info(context.Background(), "RabbitMQ connection shut down.")
		logger.Sync()
	}
}
