package session

import (
	"context"
	"time"
)

// DefaultCheckInterval is how often Watch re-checks the session.
const DefaultCheckInterval = 30 * time.Second

// Watch re-checks the stored session every interval of wall-clock time until
// ctx is done. When a stored token is found expired or undecodable, onExpire
// is called; it is expected to clear the session, so each token triggers it
// once. Having no token at all is not an expiry.
func (m *Manager) Watch(ctx context.Context, interval time.Duration, onExpire func(ctx context.Context)) {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var fired string
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			token, err := m.Token(ctx)
			if err != nil || token == fired || m.tokenValid(token) {
				continue
			}
			fired = token
			m.logger.Info(ctx, "session expired")
			onExpire(ctx)
		}
	}
}
