package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultGeocodingBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"
	geocodeTimeout          = 5 * time.Second
)

var (
	ErrGeocoderDisabled    = errors.New("geocoding is not configured")
	ErrAddressNotFound     = errors.New("address not found")
	ErrGeocoderUnavailable = errors.New("geocoding service unavailable")
)

// Geocoder resolves Swiss postal addresses through the Google Geocoding API.
type Geocoder struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewGeocoder(apiKey, baseURL string) *Geocoder {
	if baseURL == "" {
		baseURL = DefaultGeocodingBaseURL
	}
	return &Geocoder{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: geocodeTimeout},
	}
}

func (g *Geocoder) Enabled() bool {
	return g != nil && g.apiKey != ""
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// FullAddress formats the query sent to the geocoder.
func FullAddress(street, postalCode, city string) string {
	return fmt.Sprintf("%s, %s %s, Switzerland",
		strings.TrimSpace(street), strings.TrimSpace(postalCode), strings.TrimSpace(city))
}

// Geocode returns the coordinates of the first match for the address.
func (g *Geocoder) Geocode(ctx context.Context, street, postalCode, city string) (lat, lng float64, err error) {
	if !g.Enabled() {
		return 0, 0, ErrGeocoderDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, geocodeTimeout)
	defer cancel()

	q := url.Values{}
	q.Set("address", FullAddress(street, postalCode, city))
	q.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return 0, 0, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrGeocoderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("%w: status %d", ErrGeocoderUnavailable, resp.StatusCode)
	}

	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrGeocoderUnavailable, err)
	}
	if body.Status != "OK" || len(body.Results) == 0 {
		return 0, 0, ErrAddressNotFound
	}

	loc := body.Results[0].Geometry.Location
	return loc.Lat, loc.Lng, nil
}
