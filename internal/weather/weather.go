// Package weather wraps the OpenWeatherMap REST API as a tool server.
// Provides current conditions and a 24-hour forecast in a compact text form
// meant for an LLM planner to relay.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the OpenWeatherMap v2.5 API root.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

var (
	ErrNoAPIKey = errors.New("weather API key not configured, set OPENWEATHER_API_KEY")
	ErrBadUnits = errors.New("invalid units, must be metric, imperial, or kelvin")
)

// unitSymbols maps a units mode to its temperature symbol.
var unitSymbols = map[string]string{
	"metric":   "C",
	"imperial": "F",
	"kelvin":   "K",
}

// Client calls the OpenWeatherMap API.
type Client struct {
	baseURL string
	apiKey  string
	hc      *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.hc.Timeout = d }
}

// New creates a weather client. The API key may be empty; requests then
// fail with ErrNoAPIKey.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		hc:      &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type currentResponse struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
}

type forecastResponse struct {
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"city"`
	List []struct {
		DtTxt string `json:"dt_txt"`
		Main  struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	} `json:"list"`
}

// Current returns current conditions for a city, like
// "Liverpool, GB: 12.5°C, overcast clouds, 78% humidity".
func (c *Client) Current(ctx context.Context, city, units string) (string, error) {
	sym, err := c.checkRequest(units)
	if err != nil {
		return "", err
	}

	var data currentResponse
	if err := c.get(ctx, "/weather", city, units, &data); err != nil {
		return "", fmt.Errorf("fetching weather data: %w", err)
	}
	if len(data.Weather) == 0 {
		return "", fmt.Errorf("no weather conditions returned for %q", city)
	}

	location := fmt.Sprintf("%s, %s", data.Name, data.Sys.Country)
	return fmt.Sprintf("%s: %.1f°%s, %s, %d%% humidity",
		location, data.Main.Temp, sym, data.Weather[0].Description, data.Main.Humidity), nil
}

// Forecast returns the next 24 hours for a city in 3-hour intervals, one
// "HH:MM: 13.2°C, light rain" line per interval.
func (c *Client) Forecast(ctx context.Context, city, units string) (string, error) {
	sym, err := c.checkRequest(units)
	if err != nil {
		return "", err
	}

	var data forecastResponse
	if err := c.get(ctx, "/forecast", city, units, &data); err != nil {
		return "", fmt.Errorf("fetching forecast data: %w", err)
	}

	// next 24 hours, 3-hour intervals
	slots := data.List
	if len(slots) > 8 {
		slots = slots[:8]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "24-hour forecast for %s, %s:\n", data.City.Name, data.City.Country)
	for _, slot := range slots {
		hhmm := slot.DtTxt
		if len(hhmm) >= 16 {
			hhmm = hhmm[11:16]
		}
		desc := ""
		if len(slot.Weather) > 0 {
			desc = slot.Weather[0].Description
		}
		fmt.Fprintf(&b, "%s: %.1f°%s, %s\n", hhmm, slot.Main.Temp, sym, desc)
	}
	return strings.TrimSpace(b.String()), nil
}

func (c *Client) checkRequest(units string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}
	sym, ok := unitSymbols[units]
	if !ok {
		return "", fmt.Errorf("%q: %w", units, ErrBadUnits)
	}
	return sym, nil
}

func (c *Client) get(ctx context.Context, path, city, units string, out any) error {
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", units)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather API returned %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
