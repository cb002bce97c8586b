package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/logger"
)

// Prober checks whether the backend answers.
type Prober interface {
	Health(ctx context.Context) error
}

// Monitor tracks backend reachability and fires callbacks on the
// offline→online edge. State can also be set directly, which lets the
// sync engine flip to offline the moment a submit fails instead of waiting
// for the next probe.
type Monitor struct {
	prober   Prober
	interval time.Duration
	logg     *logger.Logger

	mu        sync.Mutex
	online    bool
	callbacks []func(ctx context.Context)
}

func NewMonitor(prober Prober, interval time.Duration, logg *logger.Logger) *Monitor {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Monitor{
		prober:   prober,
		interval: interval,
		logg:     logg,
		online:   true,
	}
}

// Online reports the last known state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// OnReconnect registers a callback fired on every offline→online transition.
func (m *Monitor) OnReconnect(fn func(ctx context.Context)) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

// SetOnline records the state and fires callbacks on the rising edge only.
func (m *Monitor) SetOnline(ctx context.Context, online bool) {
	m.mu.Lock()
	wasOnline := m.online
	m.online = online
	var fire []func(ctx context.Context)
	if online && !wasOnline {
		fire = append(fire, m.callbacks...)
	}
	m.mu.Unlock()

	if m.logg != nil && online != wasOnline {
		state := "offline"
		if online {
			state = "online"
		}
		m.logg.Info(m.logg.WithField(ctx, "connectivity", state), "connectivity state changed")
	}

	for _, fn := range fire {
		fn(ctx)
	}
}

// Start probes the backend until ctx is cancelled.
func (m *Monitor) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.probe(ctx)
			}
		}
	}()
}

func (m *Monitor) probe(ctx context.Context) {
	if m.prober == nil {
		return
	}
	probeCtx, cancel := context.WithTimeout(ctx, m.interval)
	defer cancel()
	m.SetOnline(ctx, m.prober.Health(probeCtx) == nil)
}
