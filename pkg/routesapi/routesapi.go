// Package routesapi is a client for the Google Routes API v2 computeRoutes
// endpoint with a deterministic on-disk response cache.
package routesapi

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the production computeRoutes endpoint.
const DefaultBaseURL = "https://routes.googleapis.com/directions/v2:computeRoutes"

// fieldMask lists the route fields the scorer needs. routes.summary is not
// a valid v2 field and is rejected with INVALID_ARGUMENT.
var fieldMask = "routes.legs,routes.duration,routes.distanceMeters,routes.polyline,routes.description,routes.viewport,routes.warnings"

// LatLng is a geographic point in the request payload.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Waypoint is either a free-form address or explicit coordinates. When both
// are set the address wins, matching computeRoutes precedence.
type Waypoint struct {
	Address string
	LatLng  *LatLng
}

// Coords returns a coordinate waypoint.
func Coords(lat, lon float64) Waypoint {
	return Waypoint{LatLng: &LatLng{Latitude: lat, Longitude: lon}}
}

// Address returns an address waypoint.
func Address(addr string) Waypoint {
	return Waypoint{Address: addr}
}

// Request describes one computeRoutes call.
type Request struct {
	Origin        Waypoint
	Destination   Waypoint
	Intermediates []Waypoint
	TravelMode    string
}

// Client calls the Routes API with rate limiting and caches route arrays on
// disk keyed by a hash of the request payload.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cacheDir   string
	limiter    *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL overrides the computeRoutes endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithCacheDir enables the on-disk response cache.
func WithCacheDir(dir string) Option {
	return func(c *Client) { c.cacheDir = dir }
}

// WithQPS limits outbound request rate.
func WithQPS(qps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(qps), 1) }
}

// New returns a Client authenticated with the given API key.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Limit(5), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type location struct {
	LatLng LatLng `json:"latLng"`
}

type waypoint struct {
	Address  string    `json:"address,omitempty"`
	Location *location `json:"location,omitempty"`
}

func toWaypoint(w Waypoint) waypoint {
	if w.Address != "" {
		return waypoint{Address: w.Address}
	}
	var p LatLng
	if w.LatLng != nil {
		p = *w.LatLng
	}
	return waypoint{Location: &location{LatLng: p}}
}

type transitPreferences struct {
	RoutingPreference  string   `json:"routingPreference"`
	AllowedTravelModes []string `json:"allowedTravelModes"`
}

type computePayload struct {
	Origin                   waypoint            `json:"origin"`
	Destination              waypoint            `json:"destination"`
	Intermediates            []waypoint          `json:"intermediates,omitempty"`
	TravelMode               string              `json:"travelMode"`
	RoutingPreference        string              `json:"routingPreference,omitempty"`
	TransitPreferences       *transitPreferences `json:"transitPreferences,omitempty"`
	PolylineQuality          string              `json:"polylineQuality"`
	ComputeAlternativeRoutes bool                `json:"computeAlternativeRoutes"`
}

func buildPayload(req Request) computePayload {
	p := computePayload{
		Origin:                   toWaypoint(req.Origin),
		Destination:              toWaypoint(req.Destination),
		TravelMode:               req.TravelMode,
		PolylineQuality:          "HIGH_QUALITY",
		ComputeAlternativeRoutes: true,
	}
	for _, im := range req.Intermediates {
		p.Intermediates = append(p.Intermediates, toWaypoint(im))
	}
	switch req.TravelMode {
	case "DRIVE", "TWO_WHEELER":
		p.RoutingPreference = "TRAFFIC_AWARE"
	case "TRANSIT":
		p.TransitPreferences = &transitPreferences{
			RoutingPreference:  "LESS_WALKING",
			AllowedTravelModes: []string{"TRAIN", "BUS", "SUBWAY", "LIGHT_RAIL"},
		}
	}
	return p
}

// ComputeRoutes returns the raw route objects for the request, serving from
// the disk cache when a previous identical request was made.
func (c *Client) ComputeRoutes(ctx context.Context, req Request) ([]json.RawMessage, error) {
	payload := buildPayload(req)
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "routesapi: marshal payload")
	}

	cachePath := c.cachePath(body)
	if routes, ok := c.readCache(cachePath); ok {
		zap.L().Debug("routes cache hit", zap.String("file", filepath.Base(cachePath)))
		return routes, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "routesapi: rate limit")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "routesapi: build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", c.apiKey)
	httpReq.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "routesapi: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "routesapi: read body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("routesapi: status %d: %s", resp.StatusCode, truncate(respBody, 200))
	}

	var parsed struct {
		Routes []json.RawMessage `json:"routes"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, eris.Wrap(err, "routesapi: parse response")
	}

	c.writeCache(cachePath, parsed.Routes)
	return parsed.Routes, nil
}

func (c *Client) cachePath(payload []byte) string {
	if c.cacheDir == "" {
		return ""
	}
	sum := sha256.Sum256(payload)
	return filepath.Join(c.cacheDir, fmt.Sprintf("%x.json", sum))
}

func (c *Client) readCache(path string) ([]json.RawMessage, bool) {
	if path == "" {
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var routes []json.RawMessage
	if err := json.Unmarshal(data, &routes); err != nil {
		zap.L().Warn("discarding corrupt routes cache entry", zap.String("file", filepath.Base(path)), zap.Error(err))
		return nil, false
	}
	return routes, true
}

func (c *Client) writeCache(path string, routes []json.RawMessage) {
	if path == "" {
		return
	}
	data, err := json.Marshal(routes)
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		zap.L().Warn("cannot create routes cache dir", zap.Error(err))
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		zap.L().Warn("cannot write routes cache entry", zap.Error(err))
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
