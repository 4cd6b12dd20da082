package redis_test

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisdb "admindash/pkg/db/redis"
)

type appConfig struct {
	host string
	port int
}

func (c appConfig) GetHost() string                  { return c.host }
func (c appConfig) GetPort() int                     { return c.port }
func (c appConfig) GetPassword() string              { return "" }
func (c appConfig) GetDB() int                       { return 0 }
func (c appConfig) GetPoolSize() int                 { return 3 }
func (c appConfig) GetConnectTimeout() time.Duration { return 0 }
func (c appConfig) GetIOTimeout() time.Duration      { return time.Second }

func TestNewConfigFromAppConfig(t *testing.T) {
	cfg := redisdb.NewConfigFromAppConfig(appConfig{host: "cache", port: 6380})

	assert.Equal(t, "cache:6380", cfg.Address())
	assert.Equal(t, 3, cfg.PoolSize)
	assert.Equal(t, redisdb.DefaultTimeout, cfg.DialTimeout)
	assert.Equal(t, time.Second, cfg.ReadTimeout)
}

func TestNewClient(t *testing.T) {
	s := miniredis.RunT(t)

	host, portStr, _ := strings.Cut(s.Addr(), ":")
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	cfg := redisdb.DefaultConfig()
	cfg.Host = host
	cfg.Port = port

	client, err := redisdb.NewClient(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewClientConnectionFailure(t *testing.T) {
	cfg := redisdb.DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 1
	cfg.DialTimeout = 200 * time.Millisecond

	client, err := redisdb.NewClient(context.Background(), cfg)

	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}
