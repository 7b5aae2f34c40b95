package config

import (
	"errors"
	"net/url"
	"os"

	"github.com/caarlos0/env/v6"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	CredentialStorePostgres = "postgres"
	CredentialStoreRedis    = "redis"

	NotifierSES      = "ses"
	NotifierRabbitmq = "rabbitmq"
)

type Config struct {
	Env            string   `env:"ENV" envDefault:"prod"`
	IsTestMode     bool     `env:"TEST_MODE" envDefault:"false"`
	Port           uint16   `env:"PORT" envDefault:"8080"`
	Secret         string   `env:"SECRET,required"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	CredentialStore string `env:"CREDENTIAL_STORE" envDefault:"postgres"`
	PostgresqlURL   string `env:"POSTGRESQL_URL"`
	RedisURL        string `env:"REDIS_URL"`

	BcryptHasherCost                int     `env:"BCRYPT_HASHER_COST" envDefault:"10"`
	PasswordResetValidDurationHours int     `env:"PASSWORD_RESET_VALID_DURATION_HOURS" envDefault:"1"`
	PasswordResetBaseURL            url.URL `env:"PASSWORD_RESET_BASE_URL,required"`

	Notifier                      string `env:"NOTIFIER" envDefault:"ses"`
	AwsRegion                     string `env:"AWS_REGION"`
	AwsAccessKey                  string `env:"AWS_ACCESS_KEY"`
	AwsSecretKey                  string `env:"AWS_SECRET_KEY"`
	AwsEmailSender                string `env:"AWS_EMAIL_SENDER"`
	AwsEmailPasswordResetTemplate string `env:"AWS_EMAIL_PASSWORD_RESET_TEMPLATE"`

	RabbitmqURL                string `env:"RABBITMQ_URL"`
	RabbitmqPasswordResetQueue string `env:"RABBITMQ_PASSWORD_RESET_QUEUE" envDefault:"password-reset-links"`
}

// MailerConfig is what the queue consumer needs to deliver emails.
type MailerConfig struct {
	Env                           string `env:"ENV" envDefault:"prod"`
	AwsRegion                     string `env:"AWS_REGION,required"`
	AwsAccessKey                  string `env:"AWS_ACCESS_KEY,required"`
	AwsSecretKey                  string `env:"AWS_SECRET_KEY,required"`
	AwsEmailSender                string `env:"AWS_EMAIL_SENDER,required"`
	AwsEmailPasswordResetTemplate string `env:"AWS_EMAIL_PASSWORD_RESET_TEMPLATE,required"`
	RabbitmqURL                   string `env:"RABBITMQ_URL,required"`
	RabbitmqPasswordResetQueue    string `env:"RABBITMQ_PASSWORD_RESET_QUEUE" envDefault:"password-reset-links"`
}

// SesConfig is used by the tooling that manages SES email templates.
type SesConfig struct {
	AwsRegion                     string `env:"AWS_REGION,required"`
	AwsAccessKey                  string `env:"AWS_ACCESS_KEY,required"`
	AwsSecretKey                  string `env:"AWS_SECRET_KEY,required"`
	AwsEmailSender                string `env:"AWS_EMAIL_SENDER,required"`
	AwsEmailPasswordResetTemplate string `env:"AWS_EMAIL_PASSWORD_RESET_TEMPLATE,required"`
}

type MigrationsConfig struct {
	PostgresqlURL  string `env:"POSTGRESQL_URL"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"internal/db/migrations"`
}

func Load() (*Config, error) {
	loadDotEnv()
	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func LoadMailer() (*MailerConfig, error) {
	loadDotEnv()
	config := &MailerConfig{}
	if err := env.Parse(config); err != nil {
		return nil, err
	}
	return config, nil
}

func LoadSes() (*SesConfig, error) {
	loadDotEnv()
	config := &SesConfig{}
	if err := env.Parse(config); err != nil {
		return nil, err
	}
	return config, nil
}

func LoadMigrations() (*MigrationsConfig, error) {
	loadDotEnv()
	config := &MigrationsConfig{}
	if err := env.Parse(config); err != nil {
		return nil, err
	}
	return config, nil
}

// A missing .env file is fine, the environment may already be complete.
func loadDotEnv() {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Secret, validation.Required),
		validation.Field(&c.CredentialStore, validation.In(CredentialStorePostgres, CredentialStoreRedis)),
		validation.Field(
			&c.PostgresqlURL,
			validation.By(requiredIf(c.CredentialStore == CredentialStorePostgres)),
		),
		validation.Field(&c.RedisURL, validation.By(requiredIf(c.CredentialStore == CredentialStoreRedis))),
		validation.Field(
			&c.BcryptHasherCost,
			validation.Required,
			validation.Min(bcrypt.MinCost),
			validation.Max(bcrypt.MaxCost),
		),
		validation.Field(&c.PasswordResetValidDurationHours, validation.Required, validation.Min(1)),
		validation.Field(&c.PasswordResetBaseURL, validation.By(absoluteURL)),
		validation.Field(&c.Notifier, validation.In(NotifierSES, NotifierRabbitmq)),
		validation.Field(&c.AwsRegion, validation.By(requiredIf(c.Notifier == NotifierSES))),
		validation.Field(&c.AwsEmailSender, validation.By(requiredIf(c.Notifier == NotifierSES))),
		validation.Field(
			&c.AwsEmailPasswordResetTemplate,
			validation.By(requiredIf(c.Notifier == NotifierSES)),
		),
		validation.Field(&c.RabbitmqURL, validation.By(requiredIf(c.Notifier == NotifierRabbitmq))),
	)
}

func requiredIf(condition bool) validation.RuleFunc {
	return func(value interface{}) error {
		if !condition {
			return nil
		}
		return validation.Validate(value, validation.Required)
	}
}

func absoluteURL(value interface{}) error {
	u, ok := value.(url.URL)
	if !ok {
		return errors.New("must be a URL")
	}
	if u.Scheme == "" || u.Host == "" {
		return errors.New("must be an absolute URL")
	}
	return nil
}
