package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/AnshRaj112/therapeutes-vaud/internal/models"
	"github.com/AnshRaj112/therapeutes-vaud/internal/repository"
)

const (
	DefaultPlaceholderPhoto = "https://via.placeholder.com/150"
	// Lausanne city centre
	DefaultLatitude  = 46.5197
	DefaultLongitude = 6.6323

	directoryCacheNamespace = "directory"
	rateOnRequest           = "On request"
)

// DirectoryEntry is the public view of an approved therapist.
type DirectoryEntry struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	PractitionerType string    `json:"practitionerType"`
	City             string    `json:"city"`
	Rate             string    `json:"rate"`
	RateIndividual   *float64  `json:"rateIndividual"`
	RateCouple       *float64  `json:"rateCouple"`
	Photo            string    `json:"photo"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	Phone            string    `json:"phone"`
	Description      string    `json:"description"`
	Street           string    `json:"street"`
	PostalCode       string    `json:"postalCode"`
	Specializations  []string  `json:"specializations"`
	Languages        []string  `json:"languages"`
}

type DirectoryDefaults struct {
	PlaceholderPhoto string
	Latitude         float64
	Longitude        float64
}

// DirectoryService serves the public search view.
type DirectoryService struct {
	store    *repository.Store
	cache    *Cache
	defaults DirectoryDefaults
}

func NewDirectoryService(store *repository.Store, cache *Cache, defaults DirectoryDefaults) *DirectoryService {
	if defaults.PlaceholderPhoto == "" {
		defaults.PlaceholderPhoto = DefaultPlaceholderPhoto
	}
	if defaults.Latitude == 0 && defaults.Longitude == 0 {
		defaults.Latitude, defaults.Longitude = DefaultLatitude, DefaultLongitude
	}
	return &DirectoryService{store: store, cache: cache, defaults: defaults}
}

// List returns every approved therapist. Results are cached until the next
// verification or profile change.
func (s *DirectoryService) List(ctx context.Context) ([]DirectoryEntry, error) {
	gen, err := s.cache.Generation(ctx, directoryCacheNamespace)
	if err != nil {
		log.WithError(err).Warn("directory cache generation read failed")
		return s.load(ctx)
	}

	var entries []DirectoryEntry
	if hit, err := s.cache.Get(ctx, directoryCacheKey(gen), &entries); err != nil {
		log.WithError(err).Warn("directory cache read failed")
	} else if hit {
		return entries, nil
	}

	entries, err = s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.fill(ctx, gen, entries)
	return entries, nil
}

func (s *DirectoryService) load(ctx context.Context) ([]DirectoryEntry, error) {
	accounts, err := s.store.ListApproved(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]DirectoryEntry, 0, len(accounts))
	for _, a := range accounts {
		entries = append(entries, s.toEntry(a))
	}
	return entries, nil
}

// fill caches entries under the generation they were loaded in.
func (s *DirectoryService) fill(ctx context.Context, gen int64, entries []DirectoryEntry) {
	if err := s.cache.Set(ctx, directoryCacheKey(gen), entries); err != nil {
		log.WithError(err).Warn("directory cache write failed")
	}
}

func directoryCacheKey(gen int64) string {
	return fmt.Sprintf("%s:approved:%d", directoryCacheNamespace, gen)
}

// Get returns one approved therapist, or repository.ErrNotFound.
func (s *DirectoryService) Get(ctx context.Context, id uuid.UUID) (DirectoryEntry, error) {
	a, err := s.store.GetApproved(ctx, id)
	if err != nil {
		return DirectoryEntry{}, err
	}
	return s.toEntry(a), nil
}

func (s *DirectoryService) toEntry(a *models.Account) DirectoryEntry {
	e := DirectoryEntry{
		ID:              a.ID,
		Name:            a.Name,
		Phone:           a.Phone,
		Photo:           s.defaults.PlaceholderPhoto,
		Latitude:        s.defaults.Latitude,
		Longitude:       s.defaults.Longitude,
		Rate:            rateOnRequest,
		Specializations: []string{},
		Languages:       []string{},
	}
	p := a.Profile
	if p == nil {
		return e
	}

	e.PractitionerType = string(p.PractitionerType)
	e.City = p.City
	e.Description = p.Description
	e.Street = p.Street
	e.PostalCode = p.PostalCode
	e.RateIndividual = p.RateIndividual
	e.RateCouple = p.RateCouple
	e.Rate = FormatRate(p.RateIndividual)
	if p.PhotoURL != "" {
		e.Photo = p.PhotoURL
	}
	if p.Latitude != nil && p.Longitude != nil {
		e.Latitude, e.Longitude = *p.Latitude, *p.Longitude
	}
	if p.Specializations != nil {
		e.Specializations = p.Specializations
	}
	if p.Languages != nil {
		e.Languages = p.Languages
	}
	return e
}

// FormatRate renders a CHF session rate for display.
func FormatRate(rate *float64) string {
	if rate == nil {
		return rateOnRequest
	}
	return fmt.Sprintf("%s CHF", strconv.FormatFloat(*rate, 'f', -1, 64))
}

func invalidateDirectory(ctx context.Context, cache *Cache) {
	if err := cache.Bump(ctx, directoryCacheNamespace); err != nil {
		log.WithError(err).Warn("directory cache invalidation failed")
	}
}
