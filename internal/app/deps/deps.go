package deps

import (
	"context"
	"forgotpassword/internal/config"
	dl "forgotpassword/internal/core/domain/logging"
	duow "forgotpassword/internal/core/domain/unit_of_work"
	"forgotpassword/internal/core/domain/user"
	uow "forgotpassword/internal/db/unit_of_work"
	dbuser "forgotpassword/internal/db/user"
	"forgotpassword/internal/implementations/email"
	"forgotpassword/internal/implementations/logging"
	passwordhasher "forgotpassword/internal/implementations/password_hasher"
	passwordresetter "forgotpassword/internal/implementations/password_resetter"
	tokengenerator "forgotpassword/internal/implementations/token_generator"
	"forgotpassword/internal/rabbitmq"
	passwordresetlink "forgotpassword/internal/rabbitmq/publishers/password_reset_link"
	redisdb "forgotpassword/internal/redis"
	redisuser "forgotpassword/internal/redis/user"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/go-redis/redis/v9"
	"github.com/jackc/pgx/v4/pgxpool"
)

type Deps struct {
	Config    *config.Config
	AwsConfig aws.Config
	Logger    dl.Logger

	DB       *pgxpool.Pool
	Redis    *redis.Client
	Rabbitmq *rabbitmq.Connection

	Now func() time.Time

	UnitOfWork     duow.UnitOfWork
	UserRepository user.UserRepository

	PasswordHasher              user.PasswordHasher
	PasswordResetTokenGenerator user.PasswordResetTokenGenerator
	PasswordResetter            user.PasswordResetter
	PasswordResetLinkSender     user.PasswordResetLinkSender
}

func InitDeps() (*Deps, func()) {
	deps := &Deps{}

	deps.initConfig()
	closeLogger := deps.initLogger()

	deps.Now = func() time.Time { return time.Now().UTC() }
	closeStore := deps.initCredentialStore()
	closeNotifier := deps.initPasswordResetLinkSender()

	deps.PasswordHasher = passwordhasher.NewBcrypt(deps.Config.Secret, deps.Config.BcryptHasherCost)
	deps.PasswordResetTokenGenerator = tokengenerator.NewUUID()
	deps.PasswordResetter = passwordresetter.New(
		deps.PasswordResetTokenGenerator,
		deps.Config.PasswordResetValidDurationHours,
		deps.Now,
	)

	return deps, func() {
		closeAll(closeNotifier, closeStore)
		closeLogger()
	}
}

func closeAll(closeFuncs ...func()) {
	var wg sync.WaitGroup
	wg.Add(len(closeFuncs))
	for _, closeFunc := range closeFuncs {
		closeFunc := closeFunc
		go func() {
			defer wg.Done()
			closeFunc()
		}()
	}
	wg.Wait()
}

func (deps *Deps) initConfig() {
	config, err := config.Load()
	if err != nil {
		panic(err)
	}
	deps.Config = config
}

func (deps *Deps) initLogger() func() {
	logger := logging.NewZapLogger()
	deps.Logger = logger
	return func() { logger.Sync() }
}

func (deps *Deps) initCredentialStore() func() {
	switch deps.Config.CredentialStore {
	case config.CredentialStoreRedis:
		closeRedis := deps.initRedisClient()
		deps.UnitOfWork = redisuser.NewRedisUnitOfWork(deps.Redis, deps.Now)
		deps.UserRepository = redisuser.NewRedisRepository(deps.Redis, deps.Now)
		return closeRedis
	default:
		closePgxPool := deps.initPgxPool()
		deps.UnitOfWork = uow.NewPgxUnitOfWork(deps.DB)
		deps.UserRepository = dbuser.NewPgxRepository(deps.DB)
		return closePgxPool
	}
}

func (deps *Deps) initPasswordResetLinkSender() func() {
	switch deps.Config.Notifier {
	case config.NotifierRabbitmq:
		closeConn := deps.initRabbitmqConnection(deps.Config.RabbitmqURL)
		closePublisher := deps.initRabbitmqPasswordResetLinkPublisher()
		return func() {
			closePublisher()
			closeConn()
		}
	default:
		deps.AwsConfig = newAwsConfig(deps.Config.AwsRegion, deps.Config.AwsAccessKey, deps.Config.AwsSecretKey)
		deps.PasswordResetLinkSender = email.NewEmailSender(
			deps.AwsConfig,
			deps.Config.AwsEmailSender,
			deps.Config.AwsEmailPasswordResetTemplate,
		)
		return func() {}
	}
}

func newAwsConfig(region string, accessKey string, secretKey string) aws.Config {
	cfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithRegion(region),
		awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
		awsConfig.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(
				retry.AddWithMaxBackoffDelay(retry.NewStandard(), time.Second*5),
				3,
			)
		}),
	)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (deps *Deps) initPgxPool() func() {
	db, err := pgxpool.Connect(context.Background(), deps.Config.PostgresqlURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to DB.", dl.Entry("err", err))
		panic(err)
	}
	deps.DB = db
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down DB connection.")
		db.Close()
		deps.Logger.Info(context.Background(), "DB connection shut down.")
	}
}

func (deps *Deps) initRedisClient() func() {
	redisClient, err := redisdb.Connect(context.Background(), deps.Config.RedisURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to Redis.", dl.Entry("err", err))
		panic(err)
	}
	deps.Redis = redisClient
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down Redis client.")
		redisClient.Close()
		deps.Logger.Info(context.Background(), "Redis client shut down.")
	}
}

func (deps *Deps) initRabbitmqConnection(url string) func() {
	rabbitmqConnection, err := rabbitmq.Dial(url, deps.Logger)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to RabbitMQ.", dl.Entry("err", err))
		panic("could not connect to RabbitMQ")
	}
	deps.Rabbitmq = rabbitmqConnection
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down RabbitMQ connection.")
		rabbitmqConnection.Close()
		deps.Logger.Info(context.Background(), "RabbitMQ connection shut down.")
	}
}

func (deps *Deps) initRabbitmqPasswordResetLinkPublisher() func() {
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

	deps.PasswordResetLinkSender = passwordresetlink.NewRabbitMQ(deps.Logger, rabbitmqChannel, queue)

	return func() {
		deps.Logger.Info(context.Background(), "Shutting down password reset link publisher.")
		rabbitmqChannel.Close()
		deps.Logger.Info(context.Background(), "Password reset link publisher shut down.")
	}
}
