package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AnshRaj112/therapeutes-vaud/internal/models"
)

// CreateAccount inserts the account and its profile in one transaction. ID
// and timestamps are filled in when zero.
func (s *Store) CreateAccount(ctx context.Context, a *models.Account) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = a.CreatedAt
	a.Email = models.NormalizeEmail(a.Email)
	a.SetStatus(a.VerificationStatus)

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, s.q(`INSERT INTO accounts
			(id, created_at, updated_at, email, password_hash, name, phone, role, subscription_tier, verified, verification_status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`),
			a.ID, a.CreatedAt, a.UpdatedAt, a.Email, a.PasswordHash, a.Name, a.Phone,
			string(a.Role), string(a.SubscriptionTier), a.Verified, string(a.VerificationStatus))
		if err != nil {
			return err
		}
		if a.Profile == nil {
			return nil
		}
		a.Profile.AccountID = a.ID
		return s.upsertProfile(ctx, tx, a.Profile)
	})
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (s *Store) upsertProfile(ctx context.Context, tx *sql.Tx, p *models.Profile) error {
	_, err := tx.ExecContext(ctx, s.q(`INSERT INTO profiles
		(account_id, practitioner_type, specializations, languages, years_experience, description,
		 street, postal_code, city, latitude, longitude, rate_individual, rate_couple, photo_url, professional_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (account_id) DO UPDATE SET
			practitioner_type = EXCLUDED.practitioner_type,
			specializations = EXCLUDED.specializations,
			languages = EXCLUDED.languages,
			years_experience = EXCLUDED.years_experience,
			description = EXCLUDED.description,
			street = EXCLUDED.street,
			postal_code = EXCLUDED.postal_code,
			city = EXCLUDED.city,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			rate_individual = EXCLUDED.rate_individual,
			rate_couple = EXCLUDED.rate_couple,
			photo_url = EXCLUDED.photo_url,
			professional_number = EXCLUDED.professional_number`),
		p.AccountID, string(p.PractitionerType),
		models.EncodeTags(p.Specializations), models.EncodeTags(p.Languages),
		nullInt(p.YearsExperience), p.Description,
		p.Street, p.PostalCode, p.City,
		nullFloat(p.Latitude), nullFloat(p.Longitude),
		nullFloat(p.RateIndividual), nullFloat(p.RateCouple),
		p.PhotoURL, p.ProfessionalNumber)
	return err
}

func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return s.getOne(ctx, accountSelect+` WHERE a.id = $1`, id)
}

// GetAccountByEmail looks an account up by its normalised address.
func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.getOne(ctx, accountSelect+` WHERE a.email = $1`, models.NormalizeEmail(email))
}

// GetApproved returns a therapist account only when it is published.
func (s *Store) GetApproved(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return s.getOne(ctx, accountSelect+` WHERE a.id = $1 AND a.role = $2 AND a.verification_status = $3`,
		id, string(models.RoleTherapist), string(models.StatusApproved))
}

func (s *Store) getOne(ctx context.Context, query string, args ...any) (*models.Account, error) {
	a, err := scanAccount(s.db.QueryRowContext(ctx, s.q(query), args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// ListTherapists returns therapist accounts newest first. An empty status
// returns every status.
func (s *Store) ListTherapists(ctx context.Context, status models.VerificationStatus) ([]*models.Account, error) {
	query := accountSelect + ` WHERE a.role = $1`
	args := []any{string(models.RoleTherapist)}
	if status != "" {
		query += ` AND a.verification_status = $2`
		args = append(args, string(status))
	}
	query += ` ORDER BY a.created_at DESC`

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list therapists: %w", err)
	}
	return scanAccounts(rows)
}

// ListApproved returns every published therapist, in no particular order.
func (s *Store) ListApproved(ctx context.Context) ([]*models.Account, error) {
	rows, err := s.db.QueryContext(ctx, s.q(accountSelect+` WHERE a.role = $1 AND a.verification_status = $2`),
		string(models.RoleTherapist), string(models.StatusApproved))
	if err != nil {
		return nil, fmt.Errorf("list approved: %w", err)
	}
	return scanAccounts(rows)
}

// CountByStatus counts therapist accounts per verification status. Every
// status is present in the result.
func (s *Store) CountByStatus(ctx context.Context) (map[models.VerificationStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT verification_status, COUNT(*) FROM accounts
		WHERE role = $1 GROUP BY verification_status`), string(models.RoleTherapist))
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.VerificationStatus]int, len(models.Statuses))
	for _, st := range models.Statuses {
		counts[st] = 0
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[models.VerificationStatus(status)] = n
	}
	return counts, rows.Err()
}

// ApplyVerification moves an account through the verification state machine
// and returns the resulting status. Only therapist accounts are verified;
// any other id is ErrNotFound. The read and write share a transaction with
// the row locked where the driver supports it.
func (s *Store) ApplyVerification(ctx context.Context, id uuid.UUID, action models.Action) (models.VerificationStatus, error) {
	var next models.VerificationStatus
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var current string
		err := tx.QueryRowContext(ctx, s.q(`SELECT verification_status FROM accounts WHERE id = $1 AND role = $2`+s.db.ForUpdate()),
			id, string(models.RoleTherapist)).
			Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		next, err = models.NextStatus(models.VerificationStatus(current), action)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, s.q(`UPDATE accounts SET verification_status = $1, verified = $2, updated_at = $3 WHERE id = $4`),
			string(next), next == models.StatusApproved, time.Now().UTC(), id)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, models.ErrInvalidTransition) {
			return "", err
		}
		return "", fmt.Errorf("apply verification: %w", err)
	}
	return next, nil
}

// UpdateAccount overwrites every account column and, when a.Profile is set,
// every profile column.
func (s *Store) UpdateAccount(ctx context.Context, a *models.Account) error {
	a.Email = models.NormalizeEmail(a.Email)
	a.SetStatus(a.VerificationStatus)
	a.UpdatedAt = time.Now().UTC()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.q(`UPDATE accounts SET
			email = $1, name = $2, phone = $3, role = $4, subscription_tier = $5,
			verified = $6, verification_status = $7, updated_at = $8
			WHERE id = $9`),
			a.Email, a.Name, a.Phone, string(a.Role), string(a.SubscriptionTier),
			a.Verified, string(a.VerificationStatus), a.UpdatedAt, a.ID)
		if err != nil {
			return err
		}
		if err := checkAffected(res); err != nil {
			return err
		}
		if a.Profile == nil {
			return nil
		}
		a.Profile.AccountID = a.ID
		return s.upsertProfile(ctx, tx, a.Profile)
	})
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return ErrDuplicateEmail
	case errors.Is(err, ErrNotFound):
		return err
	}
	return fmt.Errorf("update account: %w", err)
}

// ErrNoProfile is returned when profile fields are edited on an account
// without a profile.
var ErrNoProfile = &models.ValidationError{Field: "profile", Message: "Profile fields are not editable for this account"}

// UpdateOwnProfile applies the owner-editable fields that are set in upd.
func (s *Store) UpdateOwnProfile(ctx context.Context, id uuid.UUID, upd models.OwnProfileUpdate) error {
	now := time.Now().UTC()
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		accountSets, accountArgs := []string{"updated_at = $1"}, []any{now}
		if upd.Phone != nil {
			accountArgs = append(accountArgs, *upd.Phone)
			accountSets = append(accountSets, fmt.Sprintf("phone = $%d", len(accountArgs)))
		}
		accountArgs = append(accountArgs, id)
		res, err := tx.ExecContext(ctx, s.q(fmt.Sprintf(`UPDATE accounts SET %s WHERE id = $%d`,
			strings.Join(accountSets, ", "), len(accountArgs))), accountArgs...)
		if err != nil {
			return err
		}
		if err := checkAffected(res); err != nil {
			return err
		}

		var profileSets []string
		var profileArgs []any
		if upd.Description != nil {
			profileArgs = append(profileArgs, *upd.Description)
			profileSets = append(profileSets, fmt.Sprintf("description = $%d", len(profileArgs)))
		}
		if upd.PhotoURL != nil {
			profileArgs = append(profileArgs, *upd.PhotoURL)
			profileSets = append(profileSets, fmt.Sprintf("photo_url = $%d", len(profileArgs)))
		}
		if len(profileSets) == 0 {
			return nil
		}
		profileArgs = append(profileArgs, id)
		res, err = tx.ExecContext(ctx, s.q(fmt.Sprintf(`UPDATE profiles SET %s WHERE account_id = $%d`,
			strings.Join(profileSets, ", "), len(profileArgs))), profileArgs...)
		if err != nil {
			return err
		}
		// admins have no profile row to edit
		if err := checkAffected(res); errors.Is(err, ErrNotFound) {
			return ErrNoProfile
		} else if err != nil {
			return err
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrNotFound) && !models.IsValidationError(err) {
		return fmt.Errorf("update own profile: %w", err)
	}
	return err
}

// UpsertAdmin creates an admin account or promotes the existing account with
// that email, resetting its password. It reports whether a row was created.
func (s *Store) UpsertAdmin(ctx context.Context, email, name, passwordHash string) (uuid.UUID, bool, error) {
	existing, err := s.GetAccountByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrNotFound):
		a := &models.Account{
			Email:            email,
			PasswordHash:     passwordHash,
			Name:             name,
			Role:             models.RoleAdmin,
			SubscriptionTier: models.TierFree,
		}
		a.SetStatus(models.StatusApproved)
		if err := s.CreateAccount(ctx, a); err != nil {
			return uuid.Nil, false, err
		}
		return a.ID, true, nil
	case err != nil:
		return uuid.Nil, false, err
	}

	_, err = s.db.ExecContext(ctx, s.q(`UPDATE accounts SET role = $1, password_hash = $2, verified = $3,
		verification_status = $4, updated_at = $5 WHERE id = $6`),
		string(models.RoleAdmin), passwordHash, true, string(models.StatusApproved), time.Now().UTC(), existing.ID)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("promote admin: %w", err)
	}
	return existing.ID, false, nil
}
