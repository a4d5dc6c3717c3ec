package models

import "strings"

const notAvailable = "N/A"

type Continent struct {
	Name string `json:"name"`
}

type Language struct {
	Name string `json:"name"`
}

// Country is a search result as returned by the countries service. Absent
// capital and currency decode to the empty string, an absent continent to nil.
type Country struct {
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	Capital   string     `json:"capital"`
	Emoji     string     `json:"emoji"`
	Continent *Continent `json:"continent"`
	Languages []Language `json:"languages"`
	Currency  string     `json:"currency"`
}

func (c Country) CapitalOrNA() string {
	if c.Capital == "" {
		return notAvailable
	}
	return c.Capital
}

func (c Country) Region() string {
	if c.Continent == nil || c.Continent.Name == "" {
		return notAvailable
	}
	return c.Continent.Name
}

func (c Country) CurrencyOrNA() string {
	if c.Currency == "" {
		return notAvailable
	}
	return c.Currency
}

// LanguageList joins language names with ", ", or returns N/A for none.
func (c Country) LanguageList() string {
	if len(c.Languages) == 0 {
		return notAvailable
	}
	names := make([]string, 0, len(c.Languages))
	for _, lang := range c.Languages {
		names = append(names, lang.Name)
	}
	return strings.Join(names, ", ")
}
