package test_utils

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go/modules/redis"
)

// TestWithRedis starts a Redis container and returns it with its host:port address.
func TestWithRedis() (*redis.RedisContainer, string) {
	ctx := context.Background()

	container, err := redis.Run(ctx, "redis:7-alpine")
	if err != nil {
		log.Printf("Failed to start redis container: %v", err)
		os.Exit(1)
	}

	host, _ := container.Host(ctx)
	port, _ := container.MappedPort(ctx, "6379/tcp")
	addr := host + ":" + port.Port()

	log.Infof("Redis container started at %s", addr)
	return container, addr
}
