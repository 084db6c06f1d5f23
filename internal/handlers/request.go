package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/AnshRaj112/therapeutes-vaud/internal/services"
)

const maxJSONBody = 1 << 20

// optionalFloat accepts a JSON number, a numeric string or null. Blank
// strings leave it unset.
type optionalFloat struct {
	Value *float64
}

func (f *optionalFloat) UnmarshalJSON(b []byte) error {
	raw, blank, err := numericText(b)
	if err != nil || blank {
		return err
	}
	v, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", raw)
	}
	f.Value = &v
	return nil
}

// optionalInt is optionalFloat for whole numbers.
type optionalInt struct {
	Value *int
}

func (i *optionalInt) UnmarshalJSON(b []byte) error {
	raw, blank, err := numericText(b)
	if err != nil || blank {
		return err
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid integer %q", raw)
	}
	i.Value = &v
	return nil
}

func numericText(b []byte) (raw string, blank bool, err error) {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return "", true, nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", false, err
		}
		s = strings.TrimSpace(s)
		return s, s == "", nil
	}
	return string(b), false, nil
}

// tagList accepts ["a","b"] or a comma separated "a, b".
type tagList []string

func (t *tagList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		var out []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		*t = out
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*t = list
	return nil
}

// profileRequest is the practice part of the signup and admin edit bodies.
type profileRequest struct {
	PractitionerType   string        `json:"practitionerType"`
	Specializations    tagList       `json:"specializations"`
	Languages          tagList       `json:"languages"`
	YearsExperience    optionalInt   `json:"yearsExperience"`
	Description        string        `json:"description"`
	Street             string        `json:"street"`
	PostalCode         string        `json:"postalCode"`
	City               string        `json:"city"`
	Latitude           optionalFloat `json:"latitude"`
	Longitude          optionalFloat `json:"longitude"`
	RateIndividual     optionalFloat `json:"rateIndividual"`
	RateCouple         optionalFloat `json:"rateCouple"`
	PhotoURL           string        `json:"photoUrl"`
	ProfessionalNumber string        `json:"professionalNumber"`
}

func (p profileRequest) input() services.ProfileInput {
	return services.ProfileInput{
		PractitionerType:   p.PractitionerType,
		Specializations:    p.Specializations,
		Languages:          p.Languages,
		YearsExperience:    p.YearsExperience.Value,
		Description:        p.Description,
		Street:             p.Street,
		PostalCode:         p.PostalCode,
		City:               p.City,
		Latitude:           p.Latitude.Value,
		Longitude:          p.Longitude.Value,
		RateIndividual:     p.RateIndividual.Value,
		RateCouple:         p.RateCouple.Value,
		PhotoURL:           p.PhotoURL,
		ProfessionalNumber: p.ProfessionalNumber,
	}
}

// decodeJSON reads a bounded JSON body into dst, answering 400 itself on
// failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// accountID parses the {id} URL parameter, answering 404 itself when it is
// not a UUID.
func accountID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "Account not found")
		return uuid.Nil, false
	}
	return id, true
}
