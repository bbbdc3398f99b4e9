package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/metrics"
)

// ErrInvalidatorRunning is returned by Run when the invalidator is already subscribed.
var ErrInvalidatorRunning = errors.New("invalidator is already running")

// CacheAdmin is the administrative surface of the resolver.
type CacheAdmin interface {
	Invalidate(ctx context.Context, subdomain string) error
	ClearAll(ctx context.Context) error
	Stats(ctx context.Context) (CacheStats, error)
}

// InvalidationEvent is broadcast when tenant settings change.
// An empty Subdomain means every cached tenant is stale.
type InvalidationEvent struct {
	Subdomain string `json:"subdomain,omitempty"`
}

// Invalidator fans cache invalidations out to every service instance over
// Redis pub/sub, so a settings change on one node refreshes all of them.
type Invalidator struct {
	client  redis.UniversalClient
	channel string
	target  CacheAdmin
	logger  *slog.Logger

	mu        sync.Mutex
	running   bool
	ready     chan struct{}
	readyOnce sync.Once
}

// NewInvalidator creates an invalidator applying events from channel to target.
func NewInvalidator(client redis.UniversalClient, channel string, target CacheAdmin, log *slog.Logger) *Invalidator {
	if log == nil {
		log = logger.Discard()
	}
	return &Invalidator{
		client:  client,
		channel: channel,
		target:  target,
		logger:  log,
		ready:   make(chan struct{}),
	}
}

// Publish broadcasts an invalidation for subdomain; empty means all tenants.
func (i *Invalidator) Publish(ctx context.Context, subdomain string) error {
	payload, err := json.Marshal(InvalidationEvent{Subdomain: strings.ToLower(subdomain)})
	if err != nil {
		return err
	}
	return i.client.Publish(ctx, i.channel, payload).Err()
}

// Ready is closed by the first Run that obtains an active subscription
// and stays closed afterwards.
func (i *Invalidator) Ready() <-chan struct{} {
	return i.ready
}

// Run subscribes and applies events until ctx is done. Only one Run may be
// active at a time; once it returns, for example after a failed subscription,
// Run may be called again.
func (i *Invalidator) Run(ctx context.Context) error {
	i.mu.Lock()
	if i.running {
		i.mu.Unlock()
		return ErrInvalidatorRunning
	}
	i.running = true
	i.mu.Unlock()

	defer func() {
		i.mu.Lock()
		i.running = false
		i.mu.Unlock()
	}()

	sub := i.client.Subscribe(ctx, i.channel)
	defer sub.Close()

	// Wait for the subscription confirmation so no event published after Ready is missed.
	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	i.readyOnce.Do(func() { close(i.ready) })
	i.logger.InfoContext(ctx, "listening for tenant cache invalidations", slog.String("channel", i.channel))

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			i.apply(ctx, msg.Payload)
		}
	}
}

func (i *Invalidator) apply(ctx context.Context, payload string) {
	var ev InvalidationEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		i.logger.WarnContext(ctx, "ignoring malformed invalidation event", logger.Error(err))
		return
	}

	var err error
	if ev.Subdomain == "" {
		err = i.target.ClearAll(ctx)
		metrics.ObserveInvalidation("all", "pubsub")
	} else {
		err = i.target.Invalidate(ctx, ev.Subdomain)
		metrics.ObserveInvalidation("key", "pubsub")
	}
	if err != nil {
		i.logger.ErrorContext(ctx, "failed to apply invalidation event",
			logger.Subdomain(ev.Subdomain),
			logger.Error(err),
		)
	}
}
