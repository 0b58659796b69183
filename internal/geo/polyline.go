package geo

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-polyline"
)

// DecodePolyline decodes a Google encoded polyline into a geographic line.
func DecodePolyline(encoded string) (GeoLine, error) {
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return GeoLine{}, eris.Wrap(err, "geo: decode polyline")
	}
	out := make([]GeoCoord, 0, len(coords))
	for _, c := range coords {
		out = append(out, GeoCoord{Lat: c[0], Lon: c[1]})
	}
	return NewGeoLine(out), nil
}

// EncodePolyline encodes a geographic line as a Google encoded polyline.
func EncodePolyline(line GeoLine) string {
	coords := make([][]float64, 0, line.NumPoints())
	for _, c := range line.Coords() {
		coords = append(coords, []float64{c.Lat, c.Lon})
	}
	return string(polyline.EncodeCoords(coords))
}
