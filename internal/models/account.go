package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleTherapist Role = "therapist"
)

// ParseRole accepts the two known roles, case-insensitively.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleTherapist:
		return RoleTherapist, nil
	}
	return "", &ValidationError{Field: "role", Message: "Role must be admin or therapist"}
}

type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "free"
	TierPremium SubscriptionTier = "premium"
)

// ParseSubscriptionTier normalises the tier chosen at signup. The signup form
// historically posted "gratuit" for the free plan; it is stored as free.
func ParseSubscriptionTier(s string) (SubscriptionTier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "free", "gratuit":
		return TierFree, nil
	case "premium":
		return TierPremium, nil
	}
	return "", &ValidationError{Field: "subscriptionTier", Message: "Subscription tier must be free or premium"}
}

// Account is a registered person, therapist or admin.
type Account struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`

	Role             Role             `json:"role"`
	SubscriptionTier SubscriptionTier `json:"subscriptionTier"`

	// Verified mirrors VerificationStatus == approved; use SetStatus to change both.
	Verified           bool               `json:"verified"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`

	Profile *Profile `json:"profile"`
}

// SetStatus writes the verification status and keeps Verified in sync with it.
func (a *Account) SetStatus(s VerificationStatus) {
	a.VerificationStatus = s
	a.Verified = s == StatusApproved
}

// IsApproved reports whether the account may log in and be listed publicly.
func (a *Account) IsApproved() bool {
	return a.VerificationStatus == StatusApproved
}

// NormalizeEmail lower-cases and trims an address so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
