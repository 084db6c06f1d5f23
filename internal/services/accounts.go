package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/AnshRaj112/therapeutes-vaud/internal/models"
	"github.com/AnshRaj112/therapeutes-vaud/internal/repository"
	"github.com/AnshRaj112/therapeutes-vaud/pkg/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotApproved        = errors.New("account pending verification")
	ErrWrongRole          = errors.New("account role not allowed here")
)

// ProfileInput is the practice data submitted at signup or by an admin edit.
type ProfileInput struct {
	PractitionerType   string
	Specializations    []string
	Languages          []string
	YearsExperience    *int
	Description        string
	Street             string
	PostalCode         string
	City               string
	Latitude           *float64
	Longitude          *float64
	RateIndividual     *float64
	RateCouple         *float64
	PhotoURL           string
	ProfessionalNumber string
}

type RegistrationInput struct {
	Email            string
	Password         string
	Name             string
	Phone            string
	SubscriptionTier string
	Profile          ProfileInput
}

// AccountUpdate is an admin overwrite of every account field. A nil Profile
// leaves the profile row as it is.
type AccountUpdate struct {
	Email              string
	Name               string
	Phone              string
	Role               string
	SubscriptionTier   string
	VerificationStatus string
	Profile            *ProfileInput
}

// AccountService covers registration, login and account edits.
type AccountService struct {
	store    *repository.Store
	sessions *SessionStore
	cache    *Cache
	photoURL func(string) bool
}

// NewAccountService wires the store. ownsPhoto reports whether a URL was
// produced by the media store; nil rejects every URL.
func NewAccountService(store *repository.Store, sessions *SessionStore, cache *Cache, ownsPhoto func(string) bool) *AccountService {
	return &AccountService{store: store, sessions: sessions, cache: cache, photoURL: ownsPhoto}
}

// Register validates the signup form and stores a pending therapist account.
func (s *AccountService) Register(ctx context.Context, in RegistrationInput) (*models.Account, error) {
	if err := models.ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := models.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, &models.ValidationError{Field: "name", Message: "Name is required"}
	}
	if err := models.ValidatePhone(in.Phone); err != nil {
		return nil, err
	}
	tier, err := models.ParseSubscriptionTier(in.SubscriptionTier)
	if err != nil {
		return nil, err
	}
	profile, err := buildProfile(in.Profile)
	if err != nil {
		return nil, err
	}
	if profile.PhotoURL != "" && !s.ownsPhoto(profile.PhotoURL) {
		return nil, &models.ValidationError{Field: "photoUrl", Message: "Photo must be uploaded first"}
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	a := &models.Account{
		Email:            in.Email,
		PasswordHash:     hash,
		Name:             name,
		Phone:            strings.TrimSpace(in.Phone),
		Role:             models.RoleTherapist,
		SubscriptionTier: tier,
		Profile:          profile,
	}
	a.SetStatus(models.StatusPending)

	if err := s.store.CreateAccount(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// buildProfile validates a profile submission.
func buildProfile(in ProfileInput) (*models.Profile, error) {
	ptype, err := models.ParsePractitionerType(in.PractitionerType)
	if err != nil {
		return nil, err
	}
	if err := models.ValidateTags("specializations", in.Specializations, models.Specializations); err != nil {
		return nil, err
	}
	if err := models.ValidateTags("languages", in.Languages, models.Languages); err != nil {
		return nil, err
	}
	if err := models.ValidatePostalCode(in.PostalCode); err != nil {
		return nil, err
	}
	if in.YearsExperience != nil && (*in.YearsExperience < 0 || *in.YearsExperience > 80) {
		return nil, &models.ValidationError{Field: "yearsExperience", Message: "Years of experience is out of range"}
	}
	if err := checkRange("latitude", in.Latitude, -90, 90); err != nil {
		return nil, err
	}
	if err := checkRange("longitude", in.Longitude, -180, 180); err != nil {
		return nil, err
	}
	if err := checkRange("rateIndividual", in.RateIndividual, 0, math.MaxFloat64); err != nil {
		return nil, err
	}
	if err := checkRange("rateCouple", in.RateCouple, 0, math.MaxFloat64); err != nil {
		return nil, err
	}

	return &models.Profile{
		PractitionerType:   ptype,
		Specializations:    in.Specializations,
		Languages:          in.Languages,
		YearsExperience:    in.YearsExperience,
		Description:        strings.TrimSpace(in.Description),
		Street:             strings.TrimSpace(in.Street),
		PostalCode:         strings.TrimSpace(in.PostalCode),
		City:               strings.TrimSpace(in.City),
		Latitude:           in.Latitude,
		Longitude:          in.Longitude,
		RateIndividual:     in.RateIndividual,
		RateCouple:         in.RateCouple,
		PhotoURL:           strings.TrimSpace(in.PhotoURL),
		ProfessionalNumber: strings.TrimSpace(in.ProfessionalNumber),
	}, nil
}

func checkRange(field string, v *float64, min, max float64) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || *v < min || *v > max {
		return &models.ValidationError{Field: field, Message: fmt.Sprintf("%s is out of range", field)}
	}
	return nil
}

// Login authenticates a therapist. The password is checked before the
// approval state so a wrong password never reveals whether an account exists
// or is pending.
func (s *AccountService) Login(ctx context.Context, email, password string) (*models.Account, error) {
	a, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if a.Role == models.RoleAdmin {
		return nil, ErrWrongRole
	}
	if !a.IsApproved() {
		return nil, ErrNotApproved
	}
	return a, nil
}

// AdminLogin authenticates an admin account.
func (s *AccountService) AdminLogin(ctx context.Context, email, password string) (*models.Account, error) {
	a, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if a.Role != models.RoleAdmin {
		return nil, ErrWrongRole
	}
	return a, nil
}

// OpenSession issues a session for an authenticated account, then re-reads
// the account. A reject that commits between authentication and session
// creation is caught here; one that commits later ends the session itself.
func (s *AccountService) OpenSession(ctx context.Context, a *models.Account) (*Session, error) {
	sess, err := s.sessions.Create(ctx, a.ID, a.Role)
	if err != nil {
		return nil, err
	}

	current, err := s.store.GetAccount(ctx, a.ID)
	var denied error
	switch {
	case errors.Is(err, repository.ErrNotFound):
		denied = ErrInvalidCredentials
	case err != nil:
		denied = err
	case current.Role != a.Role:
		denied = ErrWrongRole
	case current.Role == models.RoleTherapist && !current.IsApproved():
		denied = ErrNotApproved
	}
	if denied == nil {
		return sess, nil
	}
	if err := s.sessions.Invalidate(ctx, sess.Token); err != nil {
		log.WithError(err).WithField("account", a.ID).Warn("failed to drop session after status change")
	}
	return nil, denied
}

func (s *AccountService) authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	a, err := s.store.GetAccountByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	ok, err := utils.VerifyPassword(password, a.PasswordHash)
	if err != nil && !errors.Is(err, utils.ErrInvalidHash) {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}

func (s *AccountService) Get(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return s.store.GetAccount(ctx, id)
}

func (s *AccountService) ListTherapists(ctx context.Context, status models.VerificationStatus) ([]*models.Account, error) {
	return s.store.ListTherapists(ctx, status)
}

func (s *AccountService) CountByStatus(ctx context.Context) (map[models.VerificationStatus]int, error) {
	return s.store.CountByStatus(ctx)
}

// Update applies an admin overwrite of the account and its profile.
func (s *AccountService) Update(ctx context.Context, id uuid.UUID, in AccountUpdate) (*models.Account, error) {
	current, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := models.ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, &models.ValidationError{Field: "name", Message: "Name is required"}
	}
	if in.Phone != "" {
		if err := models.ValidatePhone(in.Phone); err != nil {
			return nil, err
		}
	}
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	tier, err := models.ParseSubscriptionTier(in.SubscriptionTier)
	if err != nil {
		return nil, err
	}
	status, err := models.ParseVerificationStatus(in.VerificationStatus)
	if err != nil {
		return nil, err
	}

	updated := *current
	updated.Email = in.Email
	updated.Name = name
	updated.Phone = strings.TrimSpace(in.Phone)
	updated.Role = role
	updated.SubscriptionTier = tier
	updated.SetStatus(status)
	updated.Profile = nil
	if in.Profile != nil {
		if updated.Profile, err = buildProfile(*in.Profile); err != nil {
			return nil, err
		}
	}

	if err := s.store.UpdateAccount(ctx, &updated); err != nil {
		return nil, err
	}
	// sessions carry the role and were issued under the old status
	if role != current.Role || (current.IsApproved() && !updated.IsApproved()) {
		if err := s.sessions.InvalidateAccount(ctx, id); err != nil {
			return nil, fmt.Errorf("invalidate sessions: %w", err)
		}
	}
	s.invalidateDirectory(ctx)
	return s.store.GetAccount(ctx, id)
}

// UpdateOwn applies an owner's edit of the self-editable fields.
func (s *AccountService) UpdateOwn(ctx context.Context, id uuid.UUID, upd models.OwnProfileUpdate) (*models.Account, error) {
	if upd.Phone != nil {
		if err := models.ValidatePhone(*upd.Phone); err != nil {
			return nil, err
		}
		trimmed := strings.TrimSpace(*upd.Phone)
		upd.Phone = &trimmed
	}
	if upd.PhotoURL != nil && *upd.PhotoURL != "" && !s.ownsPhoto(*upd.PhotoURL) {
		return nil, &models.ValidationError{Field: "photoUrl", Message: "Photo must be uploaded first"}
	}

	if err := s.store.UpdateOwnProfile(ctx, id, upd); err != nil {
		return nil, err
	}
	s.invalidateDirectory(ctx)
	return s.store.GetAccount(ctx, id)
}

func (s *AccountService) ownsPhoto(url string) bool {
	return s.photoURL != nil && s.photoURL(url)
}

func (s *AccountService) invalidateDirectory(ctx context.Context) {
	invalidateDirectory(ctx, s.cache)
}
