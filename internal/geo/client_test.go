package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const romaJSON = `[
	{"place_id": 101, "name": "Roma", "display_name": "Roma, Lazio, Italia", "lat": "41.8933", "lon": "12.4829"},
	{"place_id": 102, "name": "Roma", "display_name": "Roma, Texas, Stati Uniti", "lat": "26.4034", "lon": "-99.0156"}
]`

func TestSearch(t *testing.T) {
	var gotUserAgent, gotFormat, gotQuery string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		gotFormat = r.URL.Query().Get("format")
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(romaJSON))
	}))
	defer srv.Close()

	client := New(srv.URL, "cambio-test", time.Second)

	places := client.Search(context.Background(), "Roma")
	if len(places) != 2 {
		t.Fatalf("Search() returned %d places, want 2", len(places))
	}
	if places[0].ID != 101 {
		t.Errorf("places[0].ID = %d, want 101", places[0].ID)
	}
	if places[0].DisplayName != "Roma, Lazio, Italia" {
		t.Errorf("places[0].DisplayName = %q, want %q", places[0].DisplayName, "Roma, Lazio, Italia")
	}
	if places[0].Lat != "41.8933" || places[0].Lon != "12.4829" {
		t.Errorf("places[0] coordinates = %s,%s, want 41.8933,12.4829", places[0].Lat, places[0].Lon)
	}

	if gotUserAgent != "cambio-test" {
		t.Errorf("User-Agent = %q, want %q", gotUserAgent, "cambio-test")
	}
	if gotFormat != "json" {
		t.Errorf("format param = %q, want %q", gotFormat, "json")
	}
	if gotQuery != "Roma" {
		t.Errorf("q param = %q, want %q", gotQuery, "Roma")
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	client := New(srv.URL, "cambio-test", time.Second)

	if places := client.Search(context.Background(), ""); places != nil {
		t.Errorf("Search(\"\") = %v, want nil", places)
	}
	if places := client.Search(context.Background(), "   "); places != nil {
		t.Errorf("Search(\"   \") = %v, want nil", places)
	}
	if n := hits.Load(); n != 0 {
		t.Errorf("server hits = %d, want 0", n)
	}
}

func TestSearchSwallowsErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := New(srv.URL, "cambio-test", time.Second)

			places := client.Search(context.Background(), "Milano")
			if len(places) != 0 {
				t.Errorf("Search() = %v, want empty on error", places)
			}
		})
	}
}

func TestSearchCachesResults(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(romaJSON))
	}))
	defer srv.Close()

	client := New(srv.URL, "cambio-test", time.Second)

	first := client.Search(context.Background(), "Roma")
	// Same query with different casing must hit the cache
	second := client.Search(context.Background(), "roma")

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("Search() lengths = %d, %d, want 2, 2", len(first), len(second))
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hits = %d, want 1", n)
	}
}

func TestSearchCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Slow response keeps the shared fetch pending past the select
		time.Sleep(100 * time.Millisecond)
		w.Write([]byte(romaJSON))
	}))
	defer srv.Close()

	client := New(srv.URL, "cambio-test", time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if places := client.Search(ctx, "Roma"); places != nil {
		t.Errorf("Search() with cancelled context = %v, want nil", places)
	}
}

func TestNewDefaults(t *testing.T) {
	client := New("", "", 0)

	if client.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", client.baseURL, DefaultBaseURL)
	}
	if client.userAgent != "cambio" {
		t.Errorf("userAgent = %q, want %q", client.userAgent, "cambio")
	}
	if client.httpClient.Timeout != defaultTimeout {
		t.Errorf("timeout = %v, want %v", client.httpClient.Timeout, defaultTimeout)
	}
}
