// Package weathergov wraps the data.gov.sg real-time weather APIs: rainfall
// station readings and the two-hour area forecast.
package weathergov

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/shadepath/shadepath/internal/rain"
)

// Client calls the data.gov.sg real-time APIs. The API key is optional;
// anonymous requests are rate limited but accepted.
type Client struct {
	httpClient  *http.Client
	rainfallURL string
	forecastURL string
	apiKey      string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAPIKey attaches an X-Api-Key header to every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// New returns a Client for the given rainfall and forecast endpoints.
func New(rainfallURL, forecastURL string, opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		rainfallURL: rainfallURL,
		forecastURL: forecastURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// rainfallResponse mirrors the v2 real-time rainfall API payload.
type rainfallResponse struct {
	Data struct {
		Stations []struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Location struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"location"`
		} `json:"stations"`
		Readings []struct {
			Timestamp string `json:"timestamp"`
			Data      []struct {
				StationID string  `json:"stationId"`
				Value     float64 `json:"value"`
			} `json:"data"`
		} `json:"readings"`
	} `json:"data"`
}

// Rainfall fetches the latest rainfall readings and joins them with station
// locations. Stations without a reading in the latest batch are omitted.
func (c *Client) Rainfall(ctx context.Context) ([]rain.Station, error) {
	body, err := c.get(ctx, c.rainfallURL)
	if err != nil {
		return nil, err
	}

	var resp rainfallResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "weathergov: parse rainfall response")
	}
	if len(resp.Data.Readings) == 0 {
		return nil, eris.New("weathergov: rainfall response has no readings")
	}

	values := make(map[string]float64)
	for _, reading := range resp.Data.Readings[0].Data {
		values[reading.StationID] = reading.Value
	}

	stations := make([]rain.Station, 0, len(resp.Data.Stations))
	for _, st := range resp.Data.Stations {
		value, ok := values[st.ID]
		if !ok {
			continue
		}
		stations = append(stations, rain.Station{
			ID:         st.ID,
			Lat:        st.Location.Latitude,
			Lon:        st.Location.Longitude,
			RainfallMM: value,
		})
	}
	zap.L().Debug("fetched rainfall readings", zap.Int("stations", len(stations)))
	return stations, nil
}

// AreaForecast is one area's two-hour forecast with its distance from the
// query point in degrees.
type AreaForecast struct {
	City        string  `json:"city"`
	Distance    float64 `json:"distance"`
	Description string  `json:"description"`
}

// forecastResponse mirrors the v2 two-hour forecast API payload.
type forecastResponse struct {
	Data struct {
		AreaMetadata []struct {
			Name          string `json:"name"`
			LabelLocation struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"label_location"`
		} `json:"area_metadata"`
		Items []struct {
			Forecasts []struct {
				Area     string `json:"area"`
				Forecast string `json:"forecast"`
			} `json:"forecasts"`
		} `json:"items"`
	} `json:"data"`
}

// NearbyForecasts returns the limit closest areas to the given point, each
// with its current two-hour forecast.
func (c *Client) NearbyForecasts(ctx context.Context, lat, lon float64, limit int) ([]AreaForecast, error) {
	body, err := c.get(ctx, c.forecastURL)
	if err != nil {
		return nil, err
	}

	var resp forecastResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "weathergov: parse forecast response")
	}
	if len(resp.Data.Items) == 0 {
		return nil, eris.New("weathergov: forecast response has no items")
	}

	byArea := make(map[string]string)
	for _, f := range resp.Data.Items[0].Forecasts {
		byArea[f.Area] = f.Forecast
	}

	forecasts := make([]AreaForecast, 0, len(resp.Data.AreaMetadata))
	for _, area := range resp.Data.AreaMetadata {
		description, ok := byArea[area.Name]
		if !ok {
			description = "Unknown"
		}
		forecasts = append(forecasts, AreaForecast{
			City:        area.Name,
			Distance:    math.Hypot(lat-area.LabelLocation.Latitude, lon-area.LabelLocation.Longitude),
			Description: description,
		})
	}
	sort.Slice(forecasts, func(i, j int) bool { return forecasts[i].Distance < forecasts[j].Distance })
	if limit > 0 && len(forecasts) > limit {
		forecasts = forecasts[:limit]
	}
	return forecasts, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "weathergov: build request")
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "weathergov: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("weathergov: status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "weathergov: read body")
	}
	return body, nil
}
