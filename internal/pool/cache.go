package pool

import (
	"time"

	"github.com/maypok86/otter/v2"
)

// removedChannels tracks channels that just failed placement with a
// terminal NOTICE, so a stale in-flight join/placement retry does not
// immediately re-add one the dispatcher already reported as failed to
// the user.
type removedChannels struct {
	cache *otter.Cache[string, struct{}]
}

func newRemovedChannels(ttl time.Duration) *removedChannels {
	return &removedChannels{
		cache: otter.Must(&otter.Options[string, struct{}]{
			InitialCapacity:  64,
			ExpiryCalculator: otter.ExpiryWriting[string, struct{}](ttl),
		}),
	}
}

func (r *removedChannels) mark(channel string) {
	r.cache.Set(channel, struct{}{})
}

func (r *removedChannels) isRecentlyRemoved(channel string) bool {
	_, ok := r.cache.GetIfPresent(channel)
	return ok
}

func (r *removedChannels) clear(channel string) {
	r.cache.Invalidate(channel)
}
