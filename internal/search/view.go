package search

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bobby-s-dev/countries-explorer/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	MsgLoading     = "Loading..."
	MsgNoResults   = "No countries found."
	MsgEnterSearch = "Please enter a country to search."
	MsgEnterName   = "Please enter country name"
)

// Visible derives the list shown to the user from raw search state. The
// server filter is a regex that can match more than a plain substring, so the
// results are filtered again locally before sorting.
func Visible(query string, results []models.Country, hasSearched bool, order SortOrder) []models.Country {
	if !hasSearched || query == "" {
		return []models.Country{}
	}

	needle := strings.ToLower(query)
	visible := make([]models.Country, 0, len(results))
	for _, country := range results {
		if strings.Contains(strings.ToLower(country.Name), needle) {
			visible = append(visible, country)
		}
	}

	// Collators keep scratch buffers and are not safe to share.
	col := collate.New(language.English)
	sort.SliceStable(visible, func(i, j int) bool {
		cmp := col.CompareString(visible[i].Name, visible[j].Name)
		if order == Descending {
			return cmp > 0
		}
		return cmp < 0
	})

	return visible
}

// normalizeQuery upper-cases the first rune only. Country names in the
// service start with an upper-case letter and its regex match is
// case-sensitive.
func normalizeQuery(query string) string {
	r, size := utf8.DecodeRuneInString(query)
	if r == utf8.RuneError {
		return query
	}
	return string(unicode.ToUpper(r)) + query[size:]
}
