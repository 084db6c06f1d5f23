package repository

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/AnshRaj112/therapeutes-vaud/internal/models"
)

const accountSelect = `SELECT a.id, a.created_at, a.updated_at, a.email, a.password_hash, a.name, a.phone,
	a.role, a.subscription_tier, a.verified, a.verification_status,
	p.account_id, p.practitioner_type, p.specializations, p.languages, p.years_experience, p.description,
	p.street, p.postal_code, p.city, p.latitude, p.longitude, p.rate_individual, p.rate_couple,
	p.photo_url, p.professional_number
FROM accounts a LEFT JOIN profiles p ON p.account_id = a.id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var (
		a       models.Account
		role    string
		tier    string
		status  string
		pid     uuid.NullUUID
		ptype   sql.NullString
		specs   sql.NullString
		langs   sql.NullString
		years   sql.NullInt64
		desc    sql.NullString
		street  sql.NullString
		postal  sql.NullString
		city    sql.NullString
		lat     sql.NullFloat64
		lng     sql.NullFloat64
		rateInd sql.NullFloat64
		rateCpl sql.NullFloat64
		photo   sql.NullString
		number  sql.NullString
	)
	err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt, &a.Email, &a.PasswordHash, &a.Name, &a.Phone,
		&role, &tier, &a.Verified, &status,
		&pid, &ptype, &specs, &langs, &years, &desc,
		&street, &postal, &city, &lat, &lng, &rateInd, &rateCpl,
		&photo, &number)
	if err != nil {
		return nil, err
	}
	a.Role = models.Role(role)
	a.SubscriptionTier = models.SubscriptionTier(tier)
	a.VerificationStatus = models.VerificationStatus(status)

	if pid.Valid {
		a.Profile = &models.Profile{
			AccountID:          pid.UUID,
			PractitionerType:   models.PractitionerType(ptype.String),
			Specializations:    models.DecodeTags(specs.String),
			Languages:          models.DecodeTags(langs.String),
			YearsExperience:    intPtr(years),
			Description:        desc.String,
			Street:             street.String,
			PostalCode:         postal.String,
			City:               city.String,
			Latitude:           floatPtr(lat),
			Longitude:          floatPtr(lng),
			RateIndividual:     floatPtr(rateInd),
			RateCouple:         floatPtr(rateCpl),
			PhotoURL:           photo.String,
			ProfessionalNumber: number.String,
		}
	}
	return &a, nil
}

func scanAccounts(rows *sql.Rows) ([]*models.Account, error) {
	defer rows.Close()
	accounts := []*models.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

func nullFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
