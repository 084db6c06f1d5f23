package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/therapeutes-vaud/internal/models"
)

func TestRegisterStoresPendingProfile(t *testing.T) {
	app := newTestApp(t)
	id := app.register("lea@example.ch")

	account, err := app.store.GetAccount(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, account.VerificationStatus)
	assert.False(t, account.Verified)
	assert.Equal(t, models.RoleTherapist, account.Role)
	assert.Equal(t, models.TierPremium, account.SubscriptionTier)

	require.NotNil(t, account.Profile)
	p := account.Profile
	assert.Equal(t, models.Psychotherapist, p.PractitionerType)
	assert.Equal(t, []string{"Anxiété", "Trauma"}, p.Specializations)
	assert.Equal(t, []string{"Français", "Allemand"}, p.Languages)
	require.NotNil(t, p.YearsExperience)
	assert.Equal(t, 15, *p.YearsExperience)
	require.NotNil(t, p.RateIndividual)
	assert.Equal(t, 160.0, *p.RateIndividual)
	require.NotNil(t, p.RateCouple)
	assert.Equal(t, 190.0, *p.RateCouple)
	assert.Nil(t, p.Latitude)
	assert.Nil(t, p.Longitude)
}

func TestRegisterValidation(t *testing.T) {
	app := newTestApp(t)

	cases := map[string]func(map[string]any){
		"bad email":          func(f map[string]any) { f["email"] = "not-an-email" },
		"short password":     func(f map[string]any) { f["password"] = "abc" },
		"missing name":       func(f map[string]any) { f["name"] = "  " },
		"unknown specialty":  func(f map[string]any) { f["specializations"] = []string{"Astrologie"} },
		"duplicate language": func(f map[string]any) { f["languages"] = "Français, Français" },
		"bad postal code":    func(f map[string]any) { f["postalCode"] = "10034" },
		"non numeric rate":   func(f map[string]any) { f["rateIndividual"] = "cent" },
		"bad practitioner":   func(f map[string]any) { f["practitionerType"] = "chaman" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			form := signupForm("lea@example.ch")
			mutate(form)
			rec := app.do(http.MethodPost, "/api/accounts", form, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, false, decode(t, rec)["success"])
		})
	}

	counts, err := app.store.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Zero(t, counts[models.StatusPending])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app := newTestApp(t)
	app.register("lea@example.ch")

	rec := app.do(http.MethodPost, "/api/accounts", signupForm("LEA@example.ch"), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "This email is already in use", decode(t, rec)["message"])
}

func TestRegisterIgnoresPhotoURL(t *testing.T) {
	app := newTestApp(t)
	form := signupForm("lea@example.ch")
	form["photoUrl"] = "https://evil.example.com/x.jpg"
	rec := app.do(http.MethodPost, "/api/accounts", form, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	account, err := app.store.GetAccountByEmail(context.Background(), "lea@example.ch")
	require.NoError(t, err)
	assert.Empty(t, account.Profile.PhotoURL)
}

func TestGetAccountOwnerOnly(t *testing.T) {
	app := newTestApp(t)
	lea := app.register("lea@example.ch")
	marc := app.register("marc@example.ch")
	app.approve(lea)
	app.approve(marc)
	token := app.loginToken("lea@example.ch")

	rec := app.do(http.MethodGet, "/api/accounts/"+lea.String(), nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.ElementsMatch(t, []any{"phone", "description", "photoUrl"}, body["editableFields"])

	rec = app.do(http.MethodGet, "/api/accounts/"+marc.String(), nil, token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(http.MethodGet, "/api/accounts/"+marc.String(), nil, app.adminToken())
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(http.MethodGet, "/api/accounts/"+lea.String(), nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateOwnAccount(t *testing.T) {
	app := newTestApp(t)
	id := app.register("lea@example.ch")
	app.approve(id)
	token := app.loginToken("lea@example.ch")
	path := "/api/accounts/" + id.String()

	rec := app.do(http.MethodPut, path, map[string]any{"phone": "+41 79 000 00 00", "description": "Nouvelle approche"}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	account, err := app.store.GetAccount(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "+41 79 000 00 00", account.Phone)
	assert.Equal(t, "Nouvelle approche", account.Profile.Description)
	assert.Equal(t, "Lausanne", account.Profile.City)
}

func TestUpdateOwnAccountRejectsOtherFields(t *testing.T) {
	app := newTestApp(t)
	id := app.register("lea@example.ch")
	app.approve(id)
	token := app.loginToken("lea@example.ch")
	path := "/api/accounts/" + id.String()

	for _, body := range []map[string]any{
		{"verificationStatus": "approved"},
		{"description": "ok", "rateIndividual": 10},
		{"email": "other@example.ch"},
		{},
		{"photoUrl": "https://evil.example.com/x.jpg"},
	} {
		rec := app.do(http.MethodPut, path, body, token)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "%v: %s", body, rec.Body.String())
	}

	account, err := app.store.GetAccount(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Approche systémique", account.Profile.Description)
	assert.Equal(t, "lea@example.ch", account.Email)
}

func TestUpdateOwnAccountWithoutProfile(t *testing.T) {
	app := newTestApp(t)
	token := app.adminToken()
	admin, err := app.store.GetAccountByEmail(context.Background(), adminEmail)
	require.NoError(t, err)

	rec := app.do(http.MethodPut, "/api/accounts/"+admin.ID.String(), map[string]any{"phone": "+41 21 555 55 55", "description": "x"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Profile fields are not editable for this account", decode(t, rec)["message"])

	after, err := app.store.GetAccount(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.Equal(t, admin.Phone, after.Phone)
}

func TestUpdateOtherAccountForbidden(t *testing.T) {
	app := newTestApp(t)
	lea := app.register("lea@example.ch")
	marc := app.register("marc@example.ch")
	app.approve(lea)

	rec := app.do(http.MethodPut, "/api/accounts/"+marc.String(), map[string]any{"phone": "1"}, app.loginToken("lea@example.ch"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
