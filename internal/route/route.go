// Package route defines the typed route candidate records consumed by the
// scoring engine, plus the adapter that populates them from the Google Routes
// API v2 response shape. The adapter is the only place that touches the loose
// JSON structure; everything downstream works with explicit fields.
package route

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/shadepath/shadepath/internal/geo"
)

// Step is one navigation instruction within a leg.
type Step struct {
	EncodedPolyline string
	DistanceM       float64
	TravelMode      string
	Instruction     string
	DistanceText    string
}

// IsWalking reports whether the step is traversed on foot.
func (s Step) IsWalking() bool {
	return strings.EqualFold(s.TravelMode, "WALK")
}

// Leg is an ordered sequence of steps between two waypoints.
type Leg struct {
	Steps []Step
}

// Route is one route candidate.
type Route struct {
	Summary   string
	Duration  string
	DistanceM float64
	Start     geo.GeoCoord
	Legs      []Leg
	// Raw preserves the original response element for callers that render it.
	Raw json.RawMessage
}

// apiRoute mirrors the subset of the Routes API v2 route object the engine
// needs.
type apiRoute struct {
	Description    string `json:"description"`
	Summary        string `json:"summary"`
	Duration       string `json:"duration"`
	DistanceMeters float64 `json:"distanceMeters"`
	Legs           []struct {
		StartLocation struct {
			LatLng struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"latLng"`
		} `json:"startLocation"`
		Steps []struct {
			DistanceMeters float64 `json:"distanceMeters"`
			TravelMode     string  `json:"travelMode"`
			Polyline       struct {
				EncodedPolyline string `json:"encodedPolyline"`
			} `json:"polyline"`
			NavigationInstruction struct {
				Instructions string `json:"instructions"`
			} `json:"navigationInstruction"`
			LocalizedValues struct {
				Distance struct {
					Text string `json:"text"`
				} `json:"distance"`
			} `json:"localizedValues"`
		} `json:"steps"`
	} `json:"legs"`
}

// FromRoutesAPI adapts raw Routes API v2 route elements into typed records.
// It fails only when a route body cannot be decomposed into legs and steps at
// all; field-level gaps get defaults instead.
func FromRoutesAPI(raw []json.RawMessage, defaultTravelMode string) ([]Route, error) {
	routes := make([]Route, 0, len(raw))
	for i, body := range raw {
		var ar apiRoute
		if err := json.Unmarshal(body, &ar); err != nil {
			return nil, eris.Wrapf(err, "route: decode route %d", i)
		}
		if len(ar.Legs) == 0 {
			return nil, eris.Errorf("route: route %d has no legs", i)
		}

		r := Route{
			Summary:   ar.Summary,
			Duration:  ar.Duration,
			DistanceM: ar.DistanceMeters,
			Start: geo.GeoCoord{
				Lat: ar.Legs[0].StartLocation.LatLng.Latitude,
				Lon: ar.Legs[0].StartLocation.LatLng.Longitude,
			},
			Raw: body,
		}
		if r.Summary == "" {
			r.Summary = ar.Description
		}
		if r.Summary == "" {
			r.Summary = fmt.Sprintf("Route %d", i+1)
		}

		for _, leg := range ar.Legs {
			l := Leg{Steps: make([]Step, 0, len(leg.Steps))}
			for _, st := range leg.Steps {
				mode := st.TravelMode
				if mode == "" {
					mode = defaultTravelMode
				}
				distText := st.LocalizedValues.Distance.Text
				if distText == "" {
					distText = fmt.Sprintf("%.0f m", st.DistanceMeters)
				}
				instruction := st.NavigationInstruction.Instructions
				if instruction == "" {
					instruction = "Continue"
				}
				l.Steps = append(l.Steps, Step{
					EncodedPolyline: st.Polyline.EncodedPolyline,
					DistanceM:       st.DistanceMeters,
					TravelMode:      mode,
					Instruction:     instruction,
					DistanceText:    distText,
				})
			}
			r.Legs = append(r.Legs, l)
		}
		routes = append(routes, r)
	}
	return routes, nil
}
