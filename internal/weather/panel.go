package weather

import (
	"context"
	"sync"
	"time"

	"github.com/bobby-s-dev/countries-explorer/internal/models"
	"go.uber.org/zap"
)

// NotFoundMessage is shown for every kind of fetch failure.
const NotFoundMessage = "Weather data can't found"

const LoadingMessage = "Loading weather information..."

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

type Fetcher interface {
	CurrentWeather(ctx context.Context, location string) (*models.WeatherSnapshot, error)
}

type PanelState struct {
	Capital  string                  `json:"capital,omitempty"`
	Status   Status                  `json:"status"`
	Snapshot *models.WeatherSnapshot `json:"snapshot,omitempty"`
	Message  string                  `json:"message,omitempty"`
}

// Panel holds the weather for one capital at a time. Each Load starts a new
// generation; results from earlier generations are dropped when they arrive.
type Panel struct {
	mu         sync.Mutex
	fetcher    Fetcher
	logger     *zap.Logger
	generation uint64
	cancel     context.CancelFunc
	state      PanelState
}

func NewPanel(fetcher Fetcher, logger *zap.Logger) *Panel {
	return &Panel{
		fetcher: fetcher,
		logger:  logger,
		state:   PanelState{Status: StatusIdle},
	}
}

func (p *Panel) State() PanelState {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.state
	if s.Snapshot != nil {
		snap := *s.Snapshot
		s.Snapshot = &snap
	}
	return s
}

// Load discards the current state and fetches weather for capital. The
// returned channel is closed when this generation's fetch settles, whether
// its result was applied or dropped.
func (p *Panel) Load(ctx context.Context, capital string) <-chan struct{} {
	done := make(chan struct{})
	ctx, cancel := context.WithCancel(ctx)

	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.generation++
	gen := p.generation
	p.cancel = cancel
	p.state = PanelState{Capital: capital, Status: StatusLoading, Message: LoadingMessage}
	p.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()

		start := time.Now()
		snap, err := p.fetcher.CurrentWeather(ctx, capital)

		p.mu.Lock()
		defer p.mu.Unlock()

		if gen != p.generation {
			p.logger.Debug("Dropping superseded weather result",
				zap.String("capital", capital),
				zap.Uint64("generation", gen))
			return
		}
		p.cancel = nil

		if err != nil {
			p.logger.Warn("Weather fetch failed",
				zap.String("capital", capital),
				zap.Error(err))
			p.state = PanelState{Capital: capital, Status: StatusFailed, Message: NotFoundMessage}
			return
		}

		p.state = PanelState{Capital: capital, Status: StatusReady, Snapshot: snap}
		p.logger.Debug("Weather fetched",
			zap.String("capital", capital),
			zap.Duration("duration", time.Since(start)))
	}()

	return done
}

// Reset drops the panel's state and abandons any fetch in flight.
func (p *Panel) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.generation++
	p.state = PanelState{Status: StatusIdle}
}
