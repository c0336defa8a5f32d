// internal/cache/redis.go
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/jason-s-yu/dalmuti/internal/events"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultPrefix namespaces the pub/sub channels.
const DefaultPrefix = "dalmuti"

// Connect opens a Redis client and checks it with a PING.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

type message struct {
	channel string
	data    []byte
}

// RedisPublisher mirrors events onto Redis pub/sub so other processes can
// follow a room. Events are queued and published in order by Run; a full
// queue drops the event with a warning.
type RedisPublisher struct {
	rdb    *redis.Client
	prefix string
	queue  chan message
	logger *logrus.Logger
}

// NewRedisPublisher returns a publisher over rdb. Call Run to start it.
func NewRedisPublisher(rdb *redis.Client, prefix string, buffer int, logger *logrus.Logger) *RedisPublisher {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if buffer <= 0 {
		buffer = 256
	}
	return &RedisPublisher{
		rdb:    rdb,
		prefix: prefix,
		queue:  make(chan message, buffer),
		logger: logger,
	}
}

// RoomChannel is the channel carrying a room's broadcasts.
func (p *RedisPublisher) RoomChannel(roomID string) string {
	return fmt.Sprintf("%s:room:%s", p.prefix, roomID)
}

// PlayerChannel is the channel carrying one player's private events.
func (p *RedisPublisher) PlayerChannel(playerID string) string {
	return fmt.Sprintf("%s:player:%s", p.prefix, playerID)
}

func (p *RedisPublisher) Broadcast(roomID string, _ []string, ev events.Event) {
	p.enqueue(p.RoomChannel(roomID), ev)
}

func (p *RedisPublisher) Send(playerID string, ev events.Event) {
	p.enqueue(p.PlayerChannel(playerID), ev)
}

func (p *RedisPublisher) enqueue(channel string, ev events.Event) {
	data, err := events.Encode(ev)
	if err != nil {
		p.logger.WithField("channel", channel).Warn(err)
		return
	}
	select {
	case p.queue <- message{channel: channel, data: data}:
	default:
		p.logger.WithFields(logrus.Fields{
			"channel": channel,
			"event":   ev.Type,
		}).Warn("redis publish queue full, dropping event")
	}
}

// Run publishes queued events until ctx is cancelled.
func (p *RedisPublisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-p.queue:
			if err := p.publish(ctx, msg); err != nil {
				p.logger.Warn(err)
			}
		}
	}
}

func (p *RedisPublisher) publish(ctx context.Context, msg message) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := p.rdb.Publish(ctx, msg.channel, msg.data).Err(); err != nil {
		return fmt.Errorf("failed to publish to Redis channel '%s': %w", msg.channel, err)
	}
	return nil
}
