// Package trains wraps the Huxley2 proxy for UK National Rail departure
// boards as a tool server. No API key is required.
package trains

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// DefaultBaseURL is the public Huxley2 instance.
const DefaultBaseURL = "https://huxley2.azurewebsites.net"

// DefaultNumServices is how many services are returned when unspecified.
const DefaultNumServices = 5

// Client calls the Huxley2 API.
type Client struct {
	baseURL  string
	hc       *http.Client
	stations map[string]string
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

// WithStations merges extra station-name-to-CRS-code mappings over the
// built-in set. Keys are matched lowercase.
func WithStations(m map[string]string) Option {
	return func(c *Client) {
		for k, v := range m {
			c.stations[strings.ToLower(k)] = v
		}
	}
}

// New creates a trains client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		hc:       &http.Client{Timeout: 10 * time.Second},
		stations: defaultStations(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// defaultStations covers the common stations; config extends it.
func defaultStations() map[string]string {
	return map[string]string{
		"liverpool":             "LIV",
		"liverpool lime street": "LIV",
		"manchester":            "MAN",
		"manchester piccadilly": "MAN",
		"london euston":         "EUS",
		"euston":                "EUS",
		"kings cross":           "KGX",
		"london kings cross":    "KGX",
		"paddington":            "PAD",
		"birmingham":            "BHM",
		"birmingham new street": "BHM",
		"leeds":                 "LDS",
		"glasgow":               "GLC",
		"glasgow central":       "GLC",
		"edinburgh":             "EDB",
	}
}

type board struct {
	LocationName  string    `json:"locationName"`
	TrainServices []service `json:"trainServices"`
}

type service struct {
	Std         string `json:"std"`
	Etd         string `json:"etd"`
	Platform    string `json:"platform"`
	Operator    string `json:"operator"`
	Destination []struct {
		LocationName string `json:"locationName"`
	} `json:"destination"`
}

// Departures returns the live departure board for a station, optionally
// filtered by destination, one line per service:
// "14:15 to Manchester Piccadilly (Platform 7) - On time [Northern Rail]".
func (c *Client) Departures(ctx context.Context, station, destination string, numServices int) (string, error) {
	if numServices <= 0 {
		numServices = DefaultNumServices
	}

	q := url.Values{}
	q.Set("numServices", strconv.Itoa(numServices))
	if destination != "" {
		q.Set("filterCrs", c.stationCode(destination))
	}

	var data board
	path := "/departures/" + c.stationCode(station)
	if err := c.get(ctx, path, q, &data); err != nil {
		return "", fmt.Errorf("fetching train data: %w", err)
	}

	if len(data.TrainServices) == 0 {
		return fmt.Sprintf("No train services found from %s", station), nil
	}

	name := data.LocationName
	if name == "" {
		name = station
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Departures from %s:\n", name)
	for _, svc := range data.TrainServices {
		fmt.Fprintf(&b, "%s to %s (Platform %s) - %s [%s]\n",
			svc.Std, svc.destinationName(), svc.platform(), svc.status(), svc.operator())
	}
	return strings.TrimSpace(b.String()), nil
}

// Journey returns the next direct services between two stations, one
// "14:15 - On time [Northern Rail]" line per service.
func (c *Client) Journey(ctx context.Context, origin, destination string, numServices int) (string, error) {
	if numServices <= 0 {
		numServices = 3
	}

	q := url.Values{}
	q.Set("numServices", strconv.Itoa(numServices))

	var data board
	path := fmt.Sprintf("/departures/%s/to/%s", c.stationCode(origin), c.stationCode(destination))
	if err := c.get(ctx, path, q, &data); err != nil {
		return "", fmt.Errorf("fetching journey data: %w", err)
	}

	if len(data.TrainServices) == 0 {
		return fmt.Sprintf("No direct services found from %s to %s", origin, destination), nil
	}

	name := data.LocationName
	if name == "" {
		name = origin
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Next trains from %s to %s:\n", name, destination)
	for _, svc := range data.TrainServices {
		fmt.Fprintf(&b, "%s - %s [%s]\n", svc.Std, svc.status(), svc.operator())
	}
	return strings.TrimSpace(b.String()), nil
}

// stationCode resolves a station name to its 3-letter CRS code. Three
// uppercase letters pass through unchanged; unknown names fall back to the
// first three letters uppercased.
func (c *Client) stationCode(station string) string {
	if len(station) == 3 && isUpperAlpha(station) {
		return station
	}
	if code, ok := c.stations[strings.ToLower(station)]; ok {
		return code
	}
	upper := []rune(strings.ToUpper(station))
	if len(upper) > 3 {
		upper = upper[:3]
	}
	return string(upper)
}

func isUpperAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
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
		return fmt.Errorf("train API returned %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (s service) destinationName() string {
	if len(s.Destination) == 0 || s.Destination[0].LocationName == "" {
		return "Unknown"
	}
	return s.Destination[0].LocationName
}

func (s service) platform() string {
	if s.Platform == "" {
		return "TBC"
	}
	return s.Platform
}

func (s service) operator() string {
	if s.Operator == "" {
		return "Unknown"
	}
	return s.Operator
}

func (s service) status() string {
	if s.Etd == "" || s.Etd == s.Std || s.Etd == "On time" {
		return "On time"
	}
	return "Expected " + s.Etd
}
