package search

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bobby-s-dev/countries-explorer/internal/models"
	"go.uber.org/zap"
)

type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

var ErrInvalidSortOrder = errors.New("sort order must be asc or desc")

func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(s) {
	case Ascending, Descending:
		return SortOrder(s), nil
	default:
		return "", ErrInvalidSortOrder
	}
}

// Label is the text shown in the sort selector.
func (o SortOrder) Label() string {
	if o == Descending {
		return "Country Name (Z-A)"
	}
	return "Country Name (A-Z)"
}

// CountryQuerier runs the remote country search.
type CountryQuerier interface {
	SearchCountries(ctx context.Context, name string) ([]models.Country, error)
}

// State is the raw search state. Results is nil until a search completes.
type State struct {
	Query       string           `json:"query"`
	SortOrder   SortOrder        `json:"sort_order"`
	HasSearched bool             `json:"has_searched"`
	Results     []models.Country `json:"results"`
	IsLoading   bool             `json:"is_loading"`
	Error       string           `json:"error,omitempty"`
}

// Visible applies the derived view to this state.
func (s State) Visible() []models.Country {
	return Visible(s.Query, s.Results, s.HasSearched, s.SortOrder)
}

func (s State) SubmitEnabled() bool {
	return s.Query != ""
}

// SortSelectorVisible reports whether the sort selector is offered: only once
// a non-empty result set is on hand for a live query.
func (s State) SortSelectorVisible() bool {
	return s.Results != nil && len(s.Results) > 0 && s.HasSearched && s.Query != ""
}

// Notice returns the status line for the current state, or "" when cards
// are being shown. Loading wins over errors, errors over empty-result text.
func (s State) Notice(visible []models.Country) string {
	switch {
	case s.IsLoading:
		return MsgLoading
	case s.Error != "":
		return "Error: " + s.Error
	case len(visible) > 0 && s.Query != "":
		return ""
	case s.HasSearched:
		return MsgNoResults
	default:
		return MsgEnterSearch
	}
}

type Controller struct {
	mu      sync.Mutex
	state   State
	querier CountryQuerier
	logger  *zap.Logger
}

func NewController(querier CountryQuerier, logger *zap.Logger) *Controller {
	return &Controller{
		state:   State{SortOrder: Ascending},
		querier: querier,
		logger:  logger,
	}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	if s.Results != nil {
		s.Results = make([]models.Country, len(c.state.Results))
		copy(s.Results, c.state.Results)
	}
	return s
}

func (c *Controller) SetQuery(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Query = text
	if text == "" {
		c.state.HasSearched = false
	}
}

func (c *Controller) SetSortOrder(order SortOrder) error {
	if _, err := ParseSortOrder(string(order)); err != nil {
		return err
	}

	c.mu.Lock()
	c.state.SortOrder = order
	c.mu.Unlock()
	return nil
}

// Submit starts a remote search for the current query and returns a channel
// closed once the search settles. An empty query is a no-op and the returned
// channel is already closed.
//
// Overlapping submissions are not serialized: whichever response lands last
// is kept.
func (c *Controller) Submit(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	c.mu.Lock()
	if c.state.Query == "" {
		c.mu.Unlock()
		close(done)
		return done
	}
	name := normalizeQuery(c.state.Query)
	c.state.IsLoading = true
	c.state.HasSearched = true
	c.mu.Unlock()

	c.logger.Info("Searching countries", zap.String("name", name))

	go func() {
		defer close(done)

		start := time.Now()
		results, err := c.querier.SearchCountries(ctx, name)

		c.mu.Lock()
		defer c.mu.Unlock()

		c.state.IsLoading = false
		if err != nil {
			c.logger.Warn("Country search failed",
				zap.String("name", name),
				zap.Error(err))
			c.state.Error = err.Error()
			return
		}

		c.state.Error = ""
		c.state.Results = results
		c.logger.Debug("Country search completed",
			zap.String("name", name),
			zap.Int("results", len(results)),
			zap.Duration("duration", time.Since(start)))
	}()

	return done
}
