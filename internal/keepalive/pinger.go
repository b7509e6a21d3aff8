package keepalive

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultInterval matches the hosting platform's idle timeout with margin.
const DefaultInterval = 3 * time.Minute

// Pinger periodically GETs its own public URL so the host does not idle the
// service out.
type Pinger struct {
	url      string
	interval time.Duration
	client   *http.Client
	logger   *zap.Logger
}

func NewPinger(url string, interval time.Duration, logger *zap.Logger) *Pinger {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Pinger{
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

// Run pings until ctx is done.
func (p *Pinger) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.Ping(ctx); err != nil {
				p.logger.Warn("keep-alive ping failed", zap.String("url", p.url), zap.Error(err))
			}
		}
	}
}

// Ping issues one request and returns the transport error, if any.
func (p *Pinger) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	p.logger.Debug("keep-alive ping", zap.String("url", p.url), zap.Int("status", resp.StatusCode))
	return nil
}
