package trains

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const boardJSON = `{
	"locationName": "Liverpool Lime Street",
	"trainServices": [
		{"std": "14:15", "etd": "On time", "platform": "7", "operator": "Northern Rail",
		 "destination": [{"locationName": "Manchester Piccadilly"}]},
		{"std": "14:45", "etd": "14:50", "platform": "", "operator": "TransPennine Express",
		 "destination": [{"locationName": "Manchester Piccadilly"}]}
	]
}`

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
}

func TestDepartures(t *testing.T) {
	var gotPath string
	var gotFilter string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFilter = r.URL.Query().Get("filterCrs")
		w.Write([]byte(boardJSON))
	})

	board, err := c.Departures(context.Background(), "Liverpool", "Manchester", 3)
	if err != nil {
		t.Fatalf("Departures() error = %v", err)
	}

	if gotPath != "/departures/LIV" {
		t.Errorf("path = %q, want /departures/LIV", gotPath)
	}
	if gotFilter != "MAN" {
		t.Errorf("filterCrs = %q, want MAN", gotFilter)
	}

	wantLines := []string{
		"Departures from Liverpool Lime Street:",
		"14:15 to Manchester Piccadilly (Platform 7) - On time [Northern Rail]",
		"14:45 to Manchester Piccadilly (Platform TBC) - Expected 14:50 [TransPennine Express]",
	}
	gotLines := strings.Split(board, "\n")
	if len(gotLines) != len(wantLines) {
		t.Fatalf("Departures() has %d lines, want %d:\n%s", len(gotLines), len(wantLines), board)
	}
	for i, want := range wantLines {
		if gotLines[i] != want {
			t.Errorf("line %d = %q, want %q", i, gotLines[i], want)
		}
	}
}

func TestDepartures_NoServices(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"locationName": "Liverpool Lime Street", "trainServices": null}`))
	})

	board, err := c.Departures(context.Background(), "Liverpool", "", 0)
	if err != nil {
		t.Fatalf("Departures() error = %v", err)
	}
	if want := "No train services found from Liverpool"; board != want {
		t.Errorf("Departures() = %q, want %q", board, want)
	}
}

func TestJourney(t *testing.T) {
	var gotPath string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(boardJSON))
	})

	services, err := c.Journey(context.Background(), "LIV", "MAN", 3)
	if err != nil {
		t.Fatalf("Journey() error = %v", err)
	}

	if gotPath != "/departures/LIV/to/MAN" {
		t.Errorf("path = %q, want /departures/LIV/to/MAN", gotPath)
	}

	wantLines := []string{
		"Next trains from Liverpool Lime Street to MAN:",
		"14:15 - On time [Northern Rail]",
		"14:45 - Expected 14:50 [TransPennine Express]",
	}
	gotLines := strings.Split(services, "\n")
	for i, want := range wantLines {
		if gotLines[i] != want {
			t.Errorf("line %d = %q, want %q", i, gotLines[i], want)
		}
	}
}

func TestStationCode(t *testing.T) {
	c := New(WithStations(map[string]string{"St Helens": "SNH"}))

	tests := []struct {
		in   string
		want string
	}{
		{"LIV", "LIV"},                   // codes pass through
		{"liv", "LIV"},                   // lowercase is a name, resolves via map... falls back
		{"Liverpool", "LIV"},             // built-in mapping
		{"Liverpool Lime Street", "LIV"}, // full name
		{"st helens", "SNH"},             // configured mapping, case-insensitive
		{"Okehampton", "OKE"},            // unknown: first three letters uppercased
		{"Rye", "RYE"},                   // short unknown name
		{"Àbergele", "ÀBE"},              // multibyte rune survives truncation
	}
	for _, tt := range tests {
		if got := c.stationCode(tt.in); got != tt.want {
			t.Errorf("stationCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDepartures_ServerError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	if _, err := c.Departures(context.Background(), "Liverpool", "", 0); err == nil {
		t.Error("Departures() expected error on 502 response")
	}
}
