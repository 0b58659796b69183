package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/shadepath/shadepath/internal/config"
	"github.com/shadepath/shadepath/internal/rain"
	"github.com/shadepath/shadepath/internal/score"
	"github.com/shadepath/shadepath/internal/shadow"
	"github.com/shadepath/shadepath/internal/shelter"
	"github.com/shadepath/shadepath/internal/store"
	"github.com/shadepath/shadepath/pkg/osm"
	"github.com/shadepath/shadepath/pkg/routesapi"
	"github.com/shadepath/shadepath/pkg/weathergov"
)

// appEnv bundles the wired clients and engines shared by the commands.
type appEnv struct {
	Routes    *routesapi.Client
	Buildings *osm.Client
	Weather   *weathergov.Client
	Shelters  *shelter.Index
	Scorer    *score.Scorer
	Projector *shadow.Projector
	Store     *store.SQLiteStore
}

func (e *appEnv) Close() {
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			zap.L().Warn("close store", zap.Error(err))
		}
	}
}

// initEnv wires all pipeline dependencies from configuration. The shelter
// shapefile is optional; without it routes are scored on shadows alone.
func initEnv(ctx context.Context, cfg *config.Config) (*appEnv, error) {
	// A broken or missing dataset degrades to a no-op index rather than
	// blocking routing.
	var features []shelter.Feature
	if cfg.Shelter.ShapefilePath != "" {
		loaded, err := shelter.LoadShapefile(cfg.Shelter.ShapefilePath)
		if err != nil {
			zap.L().Warn("cannot load shelter shapefile, shelter overlay disabled",
				zap.String("path", cfg.Shelter.ShapefilePath), zap.Error(err))
		} else {
			features = loaded
		}
	} else {
		zap.L().Warn("no shelter shapefile configured, shelter overlay disabled")
	}
	shelters := shelter.NewIndex(features)

	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}

	detector := rain.NewDetector(cfg.Scoring.RainProximityM, cfg.Scoring.AlwaysWetStations)
	scorer := score.New(shelters, detector, score.Config{
		ShelterBufferM: cfg.Scoring.ShelterBufferM,
	})
	projector := shadow.NewProjector(shadow.Config{
		DefaultHeightM: cfg.Scoring.DefaultBuildingHeightM,
		MetersPerLevel: cfg.Scoring.MetersPerLevel,
	})

	var weatherOpts []weathergov.Option
	if cfg.Weather.APIKey != "" {
		weatherOpts = append(weatherOpts, weathergov.WithAPIKey(cfg.Weather.APIKey))
	}

	routeOpts := []routesapi.Option{routesapi.WithCacheDir(cfg.Google.CacheDir)}
	if cfg.Google.BaseURL != "" {
		routeOpts = append(routeOpts, routesapi.WithBaseURL(cfg.Google.BaseURL))
	}
	if cfg.Google.RateLimitQPS > 0 {
		routeOpts = append(routeOpts, routesapi.WithQPS(cfg.Google.RateLimitQPS))
	}

	return &appEnv{
		Routes: routesapi.New(cfg.Google.APIKey, routeOpts...),
		Buildings: osm.New(cfg.OSM.Endpoint),
		Weather:   weathergov.New(cfg.Weather.RainfallURL, cfg.Weather.ForecastURL, weatherOpts...),
		Shelters:  shelters,
		Scorer:    scorer,
		Projector: projector,
		Store:     st,
	}, nil
}
