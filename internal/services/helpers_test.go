package services

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/therapeutes-vaud/internal/database"
	"github.com/AnshRaj112/therapeutes-vaud/internal/repository"
)

type testEnv struct {
	mr       *miniredis.Miniredis
	rdb      *redis.Client
	store    *repository.Store
	sessions *SessionStore
	cache    *Cache
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	store := repository.NewStore(db)
	t.Cleanup(func() { store.Close() })

	return &testEnv{
		mr:       mr,
		rdb:      rdb,
		store:    store,
		sessions: NewSessionStore(rdb, 0),
		cache:    NewCache(rdb, 0),
	}
}

func ptr[T any](v T) *T { return &v }

func validRegistration(email string) RegistrationInput {
	return RegistrationInput{
		Email:            email,
		Password:         "s3cret-pass",
		Name:             "Claire Martin",
		Phone:            "+41 21 123 45 67",
		SubscriptionTier: "gratuit",
		Profile: ProfileInput{
			PractitionerType: "psychologue",
			Specializations:  []string{"Burnout", "Couple"},
			Languages:        []string{"Français", "Anglais"},
			YearsExperience:  ptr(8),
			Description:      "TCC et pleine conscience",
			Street:           "Avenue de la Gare 10",
			PostalCode:       "1003",
			City:             "Lausanne",
			RateIndividual:   ptr(140.0),
		},
	}
}
