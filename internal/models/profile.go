package models

import (
	"strings"

	"github.com/google/uuid"
)

type PractitionerType string

const (
	Psychologist    PractitionerType = "psychologist"
	Psychotherapist PractitionerType = "psychotherapist"
	Psychiatrist    PractitionerType = "psychiatrist"
	Osteopath       PractitionerType = "osteopath"
	Naturopath      PractitionerType = "naturopath"
)

// practitionerAliases maps the French values posted by the signup form.
var practitionerAliases = map[string]PractitionerType{
	"psychologist":     Psychologist,
	"psychologue":      Psychologist,
	"psychotherapist":  Psychotherapist,
	"psychotherapeute": Psychotherapist,
	"psychothérapeute": Psychotherapist,
	"psychiatrist":     Psychiatrist,
	"psychiatre":       Psychiatrist,
	"osteopath":        Osteopath,
	"osteopathe":       Osteopath,
	"ostéopathe":       Osteopath,
	"naturopath":       Naturopath,
	"naturopathe":      Naturopath,
}

func ParsePractitionerType(s string) (PractitionerType, error) {
	if t, ok := practitionerAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t, nil
	}
	return "", &ValidationError{Field: "practitionerType", Message: "Unknown practitioner type"}
}

// Profile holds the public practice details of one therapist account.
type Profile struct {
	AccountID uuid.UUID `json:"-"`

	PractitionerType PractitionerType `json:"practitionerType"`
	Specializations  []string         `json:"specializations"`
	Languages        []string         `json:"languages"`
	YearsExperience  *int             `json:"yearsExperience"`
	Description      string           `json:"description"`

	Street     string   `json:"street"`
	PostalCode string   `json:"postalCode"`
	City       string   `json:"city"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`

	// Session rates in CHF.
	RateIndividual *float64 `json:"rateIndividual"`
	RateCouple     *float64 `json:"rateCouple"`

	PhotoURL string `json:"photoUrl"`

	// Swiss RCC / GLN registry number.
	ProfessionalNumber string `json:"professionalNumber"`
}

// OwnProfileUpdate carries the fields an owner may change on their own record.
// A nil pointer leaves the stored value untouched.
type OwnProfileUpdate struct {
	Phone       *string
	Description *string
	PhotoURL    *string
}

// SelfEditableFields lists, by JSON name, the fields accepted by the owner
// update endpoint. OwnProfileUpdate must stay in step with it.
var SelfEditableFields = []string{"phone", "description", "photoUrl"}

// IsSelfEditable reports whether field may be changed by the account owner.
func IsSelfEditable(field string) bool {
	for _, f := range SelfEditableFields {
		if f == field {
			return true
		}
	}
	return false
}
