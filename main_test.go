package main

import (
	"context"
	"testing"

	"retail_sales/internal/config"
	"retail_sales/internal/notify"
	"retail_sales/internal/sales"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewPublisher_LogWhenNoRedis(t *testing.T) {
	publisher, err := newPublisher(config.Config{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.IsType(t, &notify.LogPublisher{}, publisher)

	closePublisher(publisher, zaptest.NewLogger(t))
}

func TestClosePublisher_Redis(t *testing.T) {
	srv := miniredis.RunT(t)
	cfg := config.Config{Redis: config.RedisConfig{Addr: srv.Addr()}}

	publisher, err := newPublisher(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.IsType(t, &notify.RedisPublisher{}, publisher)

	closePublisher(publisher, zaptest.NewLogger(t))

	assert.Error(t, publisher.Publish(context.Background(), sales.Event{Type: sales.EventSaleCreated}))
}
