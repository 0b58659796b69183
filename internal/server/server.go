// Package server exposes the route scoring pipeline and the community report
// store over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shadepath/shadepath/internal/rain"
	"github.com/shadepath/shadepath/internal/route"
	"github.com/shadepath/shadepath/internal/score"
	"github.com/shadepath/shadepath/internal/shadow"
	"github.com/shadepath/shadepath/internal/solar"
	"github.com/shadepath/shadepath/internal/store"
	"github.com/shadepath/shadepath/pkg/routesapi"
	"github.com/shadepath/shadepath/pkg/weathergov"
)

// RoutesClient fetches route alternatives.
type RoutesClient interface {
	ComputeRoutes(ctx context.Context, req routesapi.Request) ([]json.RawMessage, error)
}

// BuildingsClient fetches building footprints around a point.
type BuildingsClient interface {
	BuildingsAround(lat, lon, radiusM float64) ([]shadow.Building, error)
}

// WeatherClient fetches rainfall readings and area forecasts.
type WeatherClient interface {
	Rainfall(ctx context.Context) ([]rain.Station, error)
	NearbyForecasts(ctx context.Context, lat, lon float64, limit int) ([]weathergov.AreaForecast, error)
}

// SunFunc returns the sun's position for a time and location.
type SunFunc func(t time.Time, lat, lon float64) solar.Angles

// Server holds the handler dependencies.
type Server struct {
	routes    RoutesClient
	buildings BuildingsClient
	weather   WeatherClient
	sunAt     SunFunc
	store     store.Store
	scorer    *score.Scorer
	projector *shadow.Projector
	osmRadius float64
}

// New assembles a Server from its dependencies.
func New(
	routes RoutesClient,
	buildings BuildingsClient,
	weather WeatherClient,
	sunAt SunFunc,
	st store.Store,
	scorer *score.Scorer,
	projector *shadow.Projector,
	osmRadiusM float64,
) *Server {
	return &Server{
		routes:    routes,
		buildings: buildings,
		weather:   weather,
		sunAt:     sunAt,
		store:     st,
		scorer:    scorer,
		projector: projector,
		osmRadius: osmRadiusM,
	}
}

// Handler builds the chi router with CORS open for browser clients.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Sun Routing API is online"})
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/routes", s.handleRoutes)

	r.Route("/reports", func(r chi.Router) {
		r.Get("/", s.handleListReports)
		r.Post("/", s.handleCreateReport)
		r.Post("/{id}/confirm", s.handleConfirmReport)
		r.Post("/{id}/deny", s.handleDenyReport)
	})

	r.Route("/accessibility", func(r chi.Router) {
		r.Get("/", s.handleListAccessibility)
		r.Post("/", s.handleCreateAccessibility)
	})

	r.Get("/weather/nearby", s.handleWeatherNearby)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// waypointInput accepts either a plain address string or a coordinate object.
type waypointInput struct {
	Address   string
	Latitude  float64
	Longitude float64
	hasCoords bool
}

func (wp *waypointInput) UnmarshalJSON(data []byte) error {
	var addr string
	if err := json.Unmarshal(data, &addr); err == nil {
		wp.Address = addr
		return nil
	}
	var obj struct {
		Address   string   `json:"address"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	wp.Address = obj.Address
	if obj.Latitude != nil && obj.Longitude != nil {
		wp.Latitude = *obj.Latitude
		wp.Longitude = *obj.Longitude
		wp.hasCoords = true
	}
	return nil
}

func (wp waypointInput) empty() bool {
	return wp.Address == "" && !wp.hasCoords
}

func (wp waypointInput) toRoutesAPI() routesapi.Waypoint {
	if wp.Address != "" {
		return routesapi.Address(wp.Address)
	}
	return routesapi.Coords(wp.Latitude, wp.Longitude)
}

// routeRequest mirrors the public POST /routes body.
type routeRequest struct {
	Origin      waypointInput `json:"origin"`
	Destination waypointInput `json:"destination"`
	TravelMode  string        `json:"travel_mode"`
	StartTime   *time.Time    `json:"start_time"`
	PreferShade *bool         `json:"prefer_shade"`
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	var req routeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Origin.empty() || req.Destination.empty() {
		writeError(w, http.StatusBadRequest, "origin and destination are required")
		return
	}
	if req.TravelMode == "" {
		req.TravelMode = "WALK"
	}
	preferShade := req.PreferShade == nil || *req.PreferShade

	ctx := r.Context()
	raw, err := s.routes.ComputeRoutes(ctx, routesapi.Request{
		Origin:      req.Origin.toRoutesAPI(),
		Destination: req.Destination.toRoutesAPI(),
		TravelMode:  req.TravelMode,
	})
	if err != nil {
		zap.L().Error("compute routes", zap.Error(err))
		writeError(w, http.StatusBadGateway, "route service unavailable")
		return
	}
	if len(raw) == 0 {
		writeJSON(w, http.StatusOK, []score.ScoredRoute{})
		return
	}

	routes, err := route.FromRoutesAPI(raw, req.TravelMode)
	if err != nil {
		zap.L().Error("parse routes", zap.Error(err))
		writeError(w, http.StatusBadGateway, "route service returned malformed routes")
		return
	}

	if !preferShade {
		writeJSON(w, http.StatusOK, s.scorer.Score(routes, nil, nil))
		return
	}

	start := routes[0].Start
	startTime := time.Now().UTC()
	if req.StartTime != nil {
		startTime = req.StartTime.UTC()
	}

	// Collaborator outages must not block routing: a failed building or
	// rainfall fetch degrades to unshadowed or dry scoring.
	var (
		buildings []shadow.Building
		stations  []rain.Station
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fetched, err := s.buildings.BuildingsAround(start.Lat, start.Lon, s.osmRadius)
		if err != nil {
			zap.L().Warn("building fetch failed, scoring without shadows", zap.Error(err))
			return nil
		}
		buildings = fetched
		return nil
	})
	g.Go(func() error {
		fetched, err := s.weather.Rainfall(gctx)
		if err != nil {
			zap.L().Warn("rainfall fetch failed, treating as dry", zap.Error(err))
			return nil
		}
		stations = fetched
		return nil
	})
	_ = g.Wait()

	sun := s.sunAt(startTime, start.Lat, start.Lon)
	shadows := s.projector.Project(buildings, sun)

	zap.L().Info("scoring routes",
		zap.Int("routes", len(routes)),
		zap.Int("buildings", len(buildings)),
		zap.Int("stations", len(stations)),
		zap.Float64("sun_altitude_deg", sun.AltitudeDeg))

	writeJSON(w, http.StatusOK, s.scorer.Score(routes, shadows, stations))
}
