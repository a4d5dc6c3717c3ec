package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() ClientConfig {
	return ClientConfig{
		Threshold:      3,
		BreakerTimeout: time.Minute,
	}
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

func TestCountriesClient_SearchCountries(t *testing.T) {
	var got graphQLRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"countries":[
			{"code":"FR","name":"France","capital":"Paris","emoji":"🇫🇷","continent":{"name":"Europe"},"languages":[{"name":"French"}],"currency":"EUR"},
			{"code":"AQ","name":"Antarctica","capital":null,"emoji":"🇦🇶","continent":{"name":"Antarctica"},"languages":[],"currency":null}
		]}}`))
	}))
	defer srv.Close()

	c := NewCountriesClient(srv.URL, testConfig(), zap.NewNop())
	countries, err := c.SearchCountries(context.Background(), "Fran")
	require.NoError(t, err)

	assert.Equal(t, "Fran", got.Variables["name"])
	assert.Contains(t, got.Query, "countries(filter: { name: { regex: $name } })")

	require.Len(t, countries, 2)
	assert.Equal(t, "FR", countries[0].Code)
	assert.Equal(t, "Paris", countries[0].Capital)
	assert.Equal(t, "Europe", countries[0].Continent.Name)
	assert.Equal(t, "", countries[1].Capital)
	assert.Equal(t, "", countries[1].Currency)
	assert.Empty(t, countries[1].Languages)
}

func TestCountriesClient_EmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"countries":[]}}`))
	}))
	defer srv.Close()

	c := NewCountriesClient(srv.URL, testConfig(), zap.NewNop())
	countries, err := c.SearchCountries(context.Background(), "Xyz")
	require.NoError(t, err)
	assert.NotNil(t, countries)
	assert.Empty(t, countries)
}

func TestCountriesClient_GraphQLError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"message":"Invalid regular expression"}]}`))
	}))
	defer srv.Close()

	c := NewCountriesClient(srv.URL, testConfig(), zap.NewNop())
	_, err := c.SearchCountries(context.Background(), "(")
	require.Error(t, err)
	assert.Equal(t, "Invalid regular expression", err.Error())
}

func TestCountriesClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewCountriesClient(srv.URL, testConfig(), zap.NewNop())
	_, err := c.SearchCountries(context.Background(), "France")
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.Status)
}

func TestCountriesClient_BreakerOpens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewCountriesClient(srv.URL, testConfig(), zap.NewNop())
	for i := 0; i < 3; i++ {
		_, err := c.SearchCountries(context.Background(), "France")
		require.Error(t, err)
	}

	_, err := c.SearchCountries(context.Background(), "France")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, "open", c.BreakerState())
}

func TestWeatherAPIClient_CurrentWeather(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/current.json", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		assert.Equal(t, "Paris", r.URL.Query().Get("q"))
		w.Write([]byte(`{"location":{"name":"Paris","country":"France"},
			"current":{"temp_c":17.5,"condition":{"text":"Partly cloudy","icon":"//cdn.weatherapi.com/weather/64x64/day/116.png","code":1003}}}`))
	}))
	defer srv.Close()

	c := NewWeatherAPIClient(srv.URL, "secret", testConfig(), zap.NewNop())
	snap, err := c.CurrentWeather(context.Background(), "Paris")
	require.NoError(t, err)

	assert.Equal(t, "Paris", snap.LocationName)
	assert.Equal(t, 17.5, snap.TemperatureCelsius)
	assert.Equal(t, "Partly cloudy", snap.ConditionText)
	assert.Equal(t, "https://cdn.weatherapi.com/weather/64x64/day/116.png", snap.ConditionIconURL)
}

func TestWeatherAPIClient_EscapesLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Andorra la Vella", r.URL.Query().Get("q"))
		w.Write([]byte(`{"location":{"name":"Andorra la Vella"},"current":{"temp_c":4,"condition":{"text":"Snow","icon":"x.png"}}}`))
	}))
	defer srv.Close()

	c := NewWeatherAPIClient(srv.URL, "secret", testConfig(), zap.NewNop())
	snap, err := c.CurrentWeather(context.Background(), "Andorra la Vella")
	require.NoError(t, err)
	assert.Equal(t, "x.png", snap.ConditionIconURL)
}

func TestWeatherAPIClient_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"code":1006,"message":"No matching location found."}}`))
		}},
		{"malformed", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>`))
		}},
		{"incomplete", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"location":{"name":"Paris"}}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewWeatherAPIClient(srv.URL, "secret", testConfig(), zap.NewNop())
			snap, err := c.CurrentWeather(context.Background(), "Paris")
			assert.Error(t, err)
			assert.Nil(t, snap)
		})
	}
}

func TestWeatherAPIClient_RequiresKeyAndLocation(t *testing.T) {
	c := NewWeatherAPIClient("http://127.0.0.1:0", "", testConfig(), zap.NewNop())
	_, err := c.CurrentWeather(context.Background(), "Paris")
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	c = NewWeatherAPIClient("http://127.0.0.1:0", "secret", testConfig(), zap.NewNop())
	_, err = c.CurrentWeather(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrMissingLocation)
}

func TestBaseClient_BreakerOpensOnServerErrors(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	var observed []error
	cfg := testConfig()
	cfg.Observe = func(name string, err error) {
		assert.Equal(t, "upstream", name)
		observed = append(observed, err)
	}
	c := NewBaseClient("upstream", cfg, zap.NewNop())

	for i := 0; i < 3; i++ {
		_, err := c.Get(context.Background(), srv.URL)
		require.Error(t, err)
	}
	assert.Equal(t, "open", c.BreakerState())

	_, err := c.Get(context.Background(), srv.URL)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)

	mu.Lock()
	assert.Equal(t, 3, calls)
	mu.Unlock()
	assert.Len(t, observed, 4)
}

func TestBaseClient_ClientErrorsDoNotTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewBaseClient("upstream", testConfig(), zap.NewNop())
	for i := 0; i < 5; i++ {
		_, err := c.Get(context.Background(), srv.URL)
		require.Error(t, err)
	}
	assert.Equal(t, "closed", c.BreakerState())
}

func TestBaseClient_CancelledRequestsDoNotTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/slow" {
			<-r.Context().Done()
			return
		}
		w.Write([]byte(`ok`))
	}))
	defer srv.Close()

	c := NewBaseClient("weatherapi", testConfig(), zap.NewNop())

	for i := 0; i < 5; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		errs := make(chan error, 1)
		go func() {
			_, err := c.Get(ctx, srv.URL+"/slow")
			errs <- err
		}()

		time.Sleep(20 * time.Millisecond)
		cancel()
		assert.ErrorIs(t, <-errs, context.Canceled)
	}

	assert.Equal(t, "closed", c.BreakerState())

	data, err := c.Get(context.Background(), srv.URL+"/fast")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
}

func TestWeatherAPIClient_SupersededFetchesKeepBreakerClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "Rome" {
			<-r.Context().Done()
			return
		}
		w.Write([]byte(`{"location":{"name":"Rome"},"current":{"temp_c":21,"condition":{"text":"Sunny","icon":"//x/113.png"}}}`))
	}))
	defer srv.Close()

	c := NewWeatherAPIClient(srv.URL, "secret", testConfig(), zap.NewNop())

	var wg sync.WaitGroup
	for _, capital := range []string{"Paris", "Berlin", "Madrid"} {
		ctx, cancel := context.WithCancel(context.Background())
		wg.Add(1)
		go func(capital string) {
			defer wg.Done()
			_, err := c.CurrentWeather(ctx, capital)
			assert.Error(t, err)
		}(capital)
		time.Sleep(20 * time.Millisecond)
		cancel()
	}
	wg.Wait()

	assert.Equal(t, "closed", c.BreakerState())

	snap, err := c.CurrentWeather(context.Background(), "Rome")
	require.NoError(t, err)
	assert.Equal(t, "Rome", snap.LocationName)
}
