package weather

import "github.com/bobby-s-dev/countries-explorer/internal/models"

// Selection records which card's weather panel is open. Only one panel is
// visible at a time.
type Selection struct {
	SelectedCapital     string `json:"selected_capital"`
	SelectedCountryCode string `json:"selected_country_code"`
	Visible             bool   `json:"visible"`
}

// Toggle flips visibility when nothing is shown or when the same card is
// toggled again. Toggling a different card while a panel is open keeps the
// panel visible and moves it to the new card.
func (s *Selection) Toggle(capital, countryCode string) {
	if !s.Visible || countryCode == s.SelectedCountryCode {
		s.Visible = !s.Visible
	}
	s.SelectedCountryCode = countryCode
	s.SelectedCapital = capital
}

func (s *Selection) Hide() {
	s.Visible = false
}

// ShowsFor reports whether the panel renders under the card for c. Cards are
// matched on capital, as that is what the panel was fetched for.
func (s Selection) ShowsFor(c models.Country) bool {
	return s.Visible && c.Capital == s.SelectedCapital
}
