package telegram

import (
	"github.com/dgraph-io/ristretto"
	tele "gopkg.in/telebot.v3"
)

// dedupeUpdatesMiddleware drops updates whose id was already seen. The
// platform may redeliver an update after a poll timeout; without this the
// same private message would be forwarded twice.
func dedupeUpdatesMiddleware() (tele.MiddlewareFunc, error) {
	const (
		numCounters = 1 << 14
		maxCost     = 1 << 20
		bufferItems = 64
	)

	cache, err := ristretto.NewCache(&ristretto.Config[int, struct{}]{
		NumCounters: numCounters,
		MaxCost:     maxCost,
		BufferItems: bufferItems,
	})
	if err != nil {
		return nil, err
	}

	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			updateID := c.Update().ID
			if updateID == 0 {
				return next(c)
			}

			if _, seen := cache.Get(updateID); seen {
				return nil // Already processed, skip the duplicate
			}

			cache.Set(updateID, struct{}{}, 1)

			return next(c)
		}
	}, nil
}
