package channel

import (
	"context"
	"sync"
	"time"

	"unimind-be/internal/pkg/logger"
	"unimind-be/internal/realtime"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Registry keeps at most one open channel per user. Opening a conversation
// with a new peer closes the previous one first, so exactly one subscription
// is active per user at a time.
type Registry struct {
	store  Store
	feed   *realtime.Feed
	logger logger.ILogger
	open   *cache.Cache

	// Serializes the get-then-set in Open: two concurrent first opens must not
	// both build a channel, the loser's feed subscription would leak.
	mu sync.Mutex
}

func NewRegistry(store Store, feed *realtime.Feed, log logger.ILogger) *Registry {
	// Idle conversations are evicted; eviction closes the channel.
	c := cache.New(30*time.Minute, 10*time.Minute)
	c.OnEvicted(func(_ string, v interface{}) {
		if ch, ok := v.(*Channel); ok {
			ch.Close()
		}
	})
	return &Registry{
		store:  store,
		feed:   feed,
		logger: log,
		open:   c,
	}
}

// Open returns the user's channel for the peer, closing any channel the user
// had open with a different peer.
func (r *Registry) Open(ctx context.Context, localUser, peer uuid.UUID) (*Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := localUser.String()

	if x, found := r.open.Get(key); found {
		existing := x.(*Channel)
		if existing.Peer() == peer {
			return existing, nil
		}
		// Cancel the prior subscription before starting a new one.
		r.open.Delete(key)
	}

	ch, err := Open(ctx, localUser, peer, r.store, r.feed, r.logger)
	if err != nil {
		return nil, err
	}
	r.open.Set(key, ch, cache.DefaultExpiration)
	return ch, nil
}

// Close drops the user's open channel, if any.
func (r *Registry) Close(localUser uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.open.Delete(localUser.String())
}
