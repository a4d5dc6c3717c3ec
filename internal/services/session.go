package services

import (
	"context"
	"sync"

	"github.com/bobby-s-dev/countries-explorer/internal/models"
	"github.com/bobby-s-dev/countries-explorer/internal/search"
	"github.com/bobby-s-dev/countries-explorer/internal/weather"
	"go.uber.org/zap"
)

// Session is one user's explorer: a search controller plus the weather
// selection and panel for its cards.
type Session struct {
	ID string

	search *search.Controller
	panel  *weather.Panel

	mu        sync.Mutex
	selection weather.Selection
}

type Snapshot struct {
	ID                  string             `json:"id,omitempty"`
	Search              search.State       `json:"search"`
	Visible             []models.Country   `json:"visible"`
	SubmitEnabled       bool               `json:"submit_enabled"`
	SortSelectorVisible bool               `json:"sort_selector_visible"`
	Notice              string             `json:"notice,omitempty"`
	Weather             weather.Selection  `json:"weather"`
	Panel               weather.PanelState `json:"panel"`
}

func NewSession(id string, querier search.CountryQuerier, fetcher weather.Fetcher, logger *zap.Logger) *Session {
	if id != "" {
		logger = logger.With(zap.String("session", id))
	}
	return &Session{
		ID:     id,
		search: search.NewController(querier, logger),
		panel:  weather.NewPanel(fetcher, logger),
	}
}

func (s *Session) SetQuery(text string) {
	s.search.SetQuery(text)
}

func (s *Session) SetSortOrder(order search.SortOrder) error {
	return s.search.SetSortOrder(order)
}

// Submit hides any open weather panel, then submits the search. The panel is
// hidden even when the query is empty and nothing is fetched.
func (s *Session) Submit(ctx context.Context) <-chan struct{} {
	s.mu.Lock()
	s.selection.Hide()
	s.panel.Reset()
	s.mu.Unlock()

	return s.search.Submit(ctx)
}

// ToggleWeather applies the card toggle and starts a fetch when the panel
// opens or moves to another card. The returned channel is closed once that
// fetch settles, or immediately when nothing was fetched.
//
// The panel is started or reset under the session lock so it always follows
// the selection that was just made.
func (s *Session) ToggleWeather(ctx context.Context, capital, countryCode string) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasVisible := s.selection.Visible
	prevCode := s.selection.SelectedCountryCode
	s.selection.Toggle(capital, countryCode)

	switch {
	case !s.selection.Visible:
		s.panel.Reset()
	case !wasVisible || prevCode != countryCode:
		return s.panel.Load(ctx, s.selection.SelectedCapital)
	}

	done := make(chan struct{})
	close(done)
	return done
}

func (s *Session) Snapshot() Snapshot {
	st := s.search.State()
	visible := st.Visible()

	s.mu.Lock()
	sel := s.selection
	s.mu.Unlock()

	return Snapshot{
		ID:                  s.ID,
		Search:              st,
		Visible:             visible,
		SubmitEnabled:       st.SubmitEnabled(),
		SortSelectorVisible: st.SortSelectorVisible(),
		Notice:              st.Notice(visible),
		Weather:             sel,
		Panel:               s.panel.State(),
	}
}

// Close abandons any weather fetch in flight.
func (s *Session) Close() {
	s.panel.Reset()
}
