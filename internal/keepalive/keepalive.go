// Package keepalive keeps free-tier hosts from idling the process out. A
// [Pinger] issues a low-frequency HTTP GET against the bot's own health
// endpoint; an [Activity] tracker records when the bot last did real work,
// purely for logging. Neither touches any translation state.
package keepalive

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// Activity records the timestamp of the last handled message. Reads and
// writes are lock-free; the value is advisory only.
type Activity struct {
	last atomic.Int64
}

// Record stores at as the last-activity timestamp.
func (a *Activity) Record(at time.Time) {
	a.last.Store(at.UnixNano())
}

// Last returns the last recorded timestamp, zero when nothing was recorded.
func (a *Activity) Last() time.Time {
	n := a.last.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// defaultInterval is how often the pinger fires when not configured.
const defaultInterval = 10 * time.Minute

// pingTimeout bounds a single self-ping request.
const pingTimeout = 10 * time.Second

// Pinger periodically GETs a URL to generate inbound traffic.
type Pinger struct {
	url      string
	interval time.Duration
	client   *http.Client
	activity *Activity
}

// NewPinger creates a [Pinger]. A non-positive interval uses the default of
// ten minutes; activity may be nil.
func NewPinger(url string, interval time.Duration, activity *Activity) *Pinger {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Pinger{
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: pingTimeout},
		activity: activity,
	}
}

// Start runs the ping loop until ctx is cancelled. It returns immediately
// when no URL is configured.
func (p *Pinger) Start(ctx context.Context) {
	if p.url == "" {
		return
	}
	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		slog.Info("keepalive pinger started", "url", p.url, "interval", p.interval)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := p.ping(ctx); err != nil {
					slog.Warn("keepalive ping failed", "err", err)
				}
			}
		}
	}()
}

// ping issues one GET. Any 2xx status counts as success.
func (p *Pinger) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("keepalive: build request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("keepalive: ping: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("keepalive: ping returned status %d", resp.StatusCode)
	}

	if p.activity != nil {
		if last := p.activity.Last(); !last.IsZero() {
			slog.Debug("keepalive ping ok", "idle", time.Since(last).Round(time.Second))
		}
	}
	return nil
}
