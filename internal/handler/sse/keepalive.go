package sse

import (
	"log/slog"
	"sync"
	"time"
)

// Pinger writes one keep-alive frame. An error means the client is gone.
type Pinger interface {
	WriteKeepAlive() error
}

// KeepAlive pings an open stream at a fixed interval so idle proxies keep it open.
type KeepAlive struct {
	interval time.Duration
	stop     chan struct{}
	once     sync.Once
}

func NewKeepAlive(interval time.Duration) *KeepAlive {
	return &KeepAlive{interval: interval, stop: make(chan struct{})}
}

// Run pings p until Stop is called or a ping fails. The returned channel
// closes when the loop exits.
func (k *KeepAlive) Run(p Pinger, logger *slog.Logger) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(k.interval)
		defer ticker.Stop()
		for {
			select {
			case <-k.stop:
				return
			case <-ticker.C:
				if err := p.WriteKeepAlive(); err != nil {
					logger.Warn("keep-alive ping failed", "error", err)
					return
				}
			}
		}
	}()
	return done
}

// Stop ends the loop. It may be called more than once.
func (k *KeepAlive) Stop() {
	k.once.Do(func() { close(k.stop) })
}
