package redis

import (
	"context"
	"os"
	"testing"

	goredis "github.com/go-redis/redis/v9"
)

func Connect(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// CreateTestClient connects to TEST_REDIS_URL and empties the selected
// database. The test is skipped when the variable is not set.
func CreateTestClient(t testing.TB) *goredis.Client {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL must be set.")
	}
	client, err := Connect(context.Background(), url)
	if err != nil {
		panic("Could not connect to Redis.")
	}
	FlushTestDB(client)
	return client
}

func FlushTestDB(client *goredis.Client) {
	if err := client.FlushDB(context.Background()).Err(); err != nil {
		panic("Could not flush Redis database.")
	}
}
