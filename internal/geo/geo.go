// Package geo resolves configured city names into coordinates through the
// Google Geocoding API.
package geo

import (
	"fmt"

	"github.com/kelvins/geocoder"
	"github.com/shreyainlabcoat/Gotham/internal/air"
)

// geocode is a seam for tests.
var geocode = geocoder.Geocoding

// SetAPIKey configures the Google Geocoding API key used for lookups.
func SetAPIKey(key string) {
	geocoder.ApiKey = key
}

// LookupCity resolves a city (optionally qualified with a country) to its
// coordinates.
func LookupCity(city, country string) (air.Coordinates, error) {
	if city == "" {
		return air.Coordinates{}, fmt.Errorf("city is required")
	}
	if geocoder.ApiKey == "" {
		return air.Coordinates{}, fmt.Errorf("geocoder api key is not configured")
	}

	location, err := geocode(geocoder.Address{
		City:    city,
		Country: country,
	})
	if err != nil {
		return air.Coordinates{}, fmt.Errorf("geocode %q: %w", city, err)
	}

	return air.Coordinates{Lat: location.Latitude, Lon: location.Longitude}, nil
}
