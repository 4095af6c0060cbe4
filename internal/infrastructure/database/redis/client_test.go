package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MetaNetX-Resolver/internal/config"
	"github.com/turtacn/MetaNetX-Resolver/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/MetaNetX-Resolver/pkg/errors"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewClient(context.Background(), config.RedisConfig{Addr: mr.Addr(), KeyPrefix: "metanetx"}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestNewClient_Success(t *testing.T) {
	client, _ := newTestClient(t)
	assert.NoError(t, client.Ping(context.Background()))
}

func TestNewClient_ConnectionFailed(t *testing.T) {
	client, err := NewClient(context.Background(), config.RedisConfig{Addr: "localhost:99999"}, logging.NewNopLogger())
	assert.Error(t, err)
	assert.Nil(t, client)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeServiceUnavailable))
}

func TestClient_Key(t *testing.T) {
	client, _ := newTestClient(t)
	assert.Equal(t, "metanetx:lock:build", client.Key("lock", "build"))

	bare := &Client{}
	assert.Equal(t, "lock:build", bare.Key("lock", "build"))
}

func TestClient_Close(t *testing.T) {
	client, _ := newTestClient(t)
	assert.NoError(t, client.Close())
	assert.NoError(t, client.Close())

	assert.Equal(t, ErrClientClosed, client.Ping(context.Background()))
	assert.Equal(t, ErrClientClosed, client.Exists(context.Background(), "x").Err())
}

//Personal.AI order the ending
