// Package geocode contains the client for the BAN-style address search API
// used to resolve free-text addresses and power the autocomplete field.
package geocode

// Coordinate is a resolved address: one geographic point plus the canonical
// label the geocoder associates with it.
type Coordinate struct {
	Latitude  float64
	Longitude float64
	Label     string
}

// Suggestion is one autocomplete candidate.
type Suggestion struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// featureCollection mirrors the GeoJSON envelope returned by the search API.
// Coordinates arrive as [longitude, latitude].
type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	Geometry struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		ID    string `json:"id"`
		Label string `json:"label"`
	} `json:"properties"`
}
