package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bobby-s-dev/countries-explorer/internal/models"
	"github.com/machinebox/graphql"
	"go.uber.org/zap"
)

const searchCountriesQuery = `query SearchCountries($name: String!) {
  countries(filter: { name: { regex: $name } }) {
    code
    name
    capital
    emoji
    continent {
      name
    }
    languages {
      name
    }
    currency
  }
}`

// CountriesClient talks to the countries GraphQL service. One instance is
// shared by every search controller in the process.
type CountriesClient struct {
	*BaseClient
	graph *graphql.Client
}

type searchCountriesData struct {
	Countries []models.Country `json:"countries"`
}

func NewCountriesClient(endpoint string, config ClientConfig, logger *zap.Logger) *CountriesClient {
	base := NewBaseClient("countries", config, logger)
	return &CountriesClient{
		BaseClient: base,
		graph:      graphql.NewClient(endpoint, graphql.WithHTTPClient(base.HTTPClient())),
	}
}

// SearchCountries sends name as the regex filter of the SearchCountries query.
// The filter is matched case-sensitively by the service.
func (c *CountriesClient) SearchCountries(ctx context.Context, name string) ([]models.Country, error) {
	req := graphql.NewRequest(searchCountriesQuery)
	req.Var("name", name)

	var data searchCountriesData
	if err := c.graph.Run(ctx, req, &data); err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return nil, fmt.Errorf("failed to search countries: %w", urlErr.Err)
		}
		// Errors reported by the service come back as "graphql: <message>".
		if msg, ok := strings.CutPrefix(err.Error(), "graphql: "); ok {
			return nil, errors.New(msg)
		}
		return nil, fmt.Errorf("failed to search countries: %w", err)
	}

	if data.Countries == nil {
		return []models.Country{}, nil
	}
	return data.Countries, nil
}
