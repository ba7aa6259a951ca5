// Package geoip locates the player from their public IP address.
package geoip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/vinser/bounce/internal/daylight"
)

const DefaultURL = "http://ip-api.com/json/"

var (
	ErrStatus     = errors.New("geoip: non-200 response from API")
	ErrNoTimezone = errors.New("geoip: timezone not provided")
)

type response struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Timezone string  `json:"timezone"`
	City     string  `json:"city"`
	Country  string  `json:"country"`
}

// Client looks up the location once and caches it for TTL.
type Client struct {
	URL  string
	TTL  time.Duration
	HTTP *http.Client

	mu        sync.Mutex
	cache     *daylight.Location
	cacheTime time.Time
}

func New() *Client {
	return &Client{
		URL:  DefaultURL,
		TTL:  time.Hour,
		HTTP: &http.Client{Timeout: 5 * time.Second},
	}
}

// Locate returns the cached location or asks the API for a fresh one.
func (c *Client) Locate(ctx context.Context) (daylight.Location, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cache != nil && time.Since(c.cacheTime) <= c.TTL {
		return *c.cache, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return daylight.Location{}, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return daylight.Location{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return daylight.Location{}, ErrStatus
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return daylight.Location{}, fmt.Errorf("geoip: decode: %w", err)
	}
	if r.Timezone == "" {
		return daylight.Location{}, ErrNoTimezone
	}
	if _, err := time.LoadLocation(r.Timezone); err != nil {
		return daylight.Location{}, fmt.Errorf("geoip: %w", err)
	}

	loc := daylight.Location{Lat: r.Lat, Lon: r.Lon, Timezone: r.Timezone}
	c.cache = &loc
	c.cacheTime = time.Now()
	return loc, nil
}
