package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"retail_sales/internal/sales"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultChannel is used when no channel is configured.
const DefaultChannel = "sales.events"

// RedisPublisher publishes events as JSON on a Redis pub/sub channel.
type RedisPublisher struct {
	logger  *zap.Logger
	rdb     *goredis.Client
	channel string
}

// NewRedisPublisher connects to addr and pings it before returning.
func NewRedisPublisher(ctx context.Context, addr, channel string, logger *zap.Logger) (*RedisPublisher, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	if channel == "" {
		channel = DefaultChannel
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisPublisher{
		logger:  logger.With(zap.String("publisher", "redis"), zap.String("channel", channel)),
		rdb:     rdb,
		channel: channel,
	}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, event sales.Event) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal sale event: %w", err)
	}
	if err := p.rdb.Publish(ctx, p.channel, raw).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	p.logger.Debug("sale event published", zap.String("type", string(event.Type)), zap.String("sale_id", event.SaleID.String()))
	return nil
}

// Subscribe decodes events from the channel and hands them to onEvent until
// ctx is done. Malformed payloads are logged and skipped.
func (p *RedisPublisher) Subscribe(ctx context.Context, onEvent func(sales.Event)) error {
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}

	sub := p.rdb.Subscribe(ctx, p.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var event sales.Event
				if err := json.Unmarshal([]byte(m.Payload), &event); err != nil {
					p.logger.Warn("bad sale event payload", zap.Error(err))
					continue
				}
				onEvent(event)
			}
		}
	}()

	return nil
}

func (p *RedisPublisher) Close() error {
	if p == nil || p.rdb == nil {
		return nil
	}
	return p.rdb.Close()
}
