package events

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/tomz197/paddleball/internal/game"
)

// publishTimeout bounds one PUBLISH round trip.
const publishTimeout = 2 * time.Second

// queueSize is the number of encoded events buffered between engines and Redis.
const queueSize = 256

// channelPublisher is the one Redis call the publisher needs.
type channelPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

type redisClient struct {
	rdb *redis.Client
}

func (c redisClient) Publish(ctx context.Context, channel string, payload []byte) error {
	return c.rdb.Publish(ctx, channel, payload).Err()
}

// Connect establishes a connection to Redis and verifies it with PING.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Publisher is a game.Sink that forwards events to a Redis channel. Publish never
// blocks the engine: events are encoded, queued and sent by one goroutine; when the
// queue is full the event is dropped and counted.
type Publisher struct {
	out     channelPublisher
	channel string
	log     *log.Logger
	now     func() time.Time

	queue     chan []byte
	dropped   atomic.Int64
	mu        sync.RWMutex // Guards closed against concurrent Publish/Close
	closed    bool
	closeOnce sync.Once
	done      chan struct{}
}

var _ game.Sink = (*Publisher)(nil)

// NewPublisher starts a publisher on an already connected client. A nil logger
// discards.
func NewPublisher(rdb *redis.Client, channel string, logger *log.Logger) *Publisher {
	return newPublisher(redisClient{rdb: rdb}, channel, logger)
}

func newPublisher(out channelPublisher, channel string, logger *log.Logger) *Publisher {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	p := &Publisher{
		out:     out,
		channel: channel,
		log:     logger,
		now:     time.Now,
		queue:   make(chan []byte, queueSize),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

// Publish encodes and enqueues an event. Safe for concurrent use by many engines.
func (p *Publisher) Publish(ev game.Event) {
	payload, err := Encode(ev, p.now())
	if err != nil {
		p.log.Warn("event not published", "err", err)
		return
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	select {
	case p.queue <- payload:
	default:
		if n := p.dropped.Add(1); n == 1 || n%100 == 0 {
			p.log.Warn("event queue full, dropping", "dropped", n)
		}
	}
}

// Dropped returns the number of events lost to a full queue.
func (p *Publisher) Dropped() int64 {
	return p.dropped.Load()
}

func (p *Publisher) run() {
	defer close(p.done)
	for payload := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := p.out.Publish(ctx, p.channel, payload); err != nil {
			p.log.Error("publish event", "channel", p.channel, "err", err)
		}
		cancel()
	}
}

// Close stops accepting events and waits until the queue has drained.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.queue)
		p.mu.Unlock()
	})
	<-p.done
}
