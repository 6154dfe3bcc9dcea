package auth

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/izgubljeno/internal/apperr"
	"github.com/erazemk/izgubljeno/internal/db"
	"github.com/erazemk/izgubljeno/internal/store"
)

func newTestService(t *testing.T) (*Service, *sql.DB) {
	t.Helper()
	database := db.NewTestDB(t)
	return &Service{
		DB:          database,
		Secret:      "test-secret",
		TokenExpiry: time.Hour,
		HashCost:    bcrypt.MinCost,
	}, database
}

func validRegistration() RegisterInput {
	return RegisterInput{
		StudentID: "S1",
		Username:  "jdoe",
		Email:     "j@x.edu",
		Password:  "secret1",
		FullName:  "J Doe",
	}
}

func TestRegisterThenLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)
	assert.NotEqual(t, "secret1", reg.User.PasswordHash)
	assert.True(t, CheckPassword(reg.User.PasswordHash, "secret1"))

	for _, identifier := range []string{"jdoe", "S1", "j@x.edu"} {
		sess, err := svc.Login(ctx, LoginInput{Identifier: identifier, Password: "secret1"})
		require.NoError(t, err, identifier)
		assert.Equal(t, reg.User.ID, sess.User.ID)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)

	in := validRegistration()
	in.Email = "not-an-email"
	in.Password = "abc"

	_, err := svc.Register(context.Background(), in)
	require.Error(t, err)

	e := apperr.From(err)
	assert.Equal(t, apperr.KindValidation, e.Kind)
	assert.Len(t, e.Fields, 2)
}

func TestRegisterConflict(t *testing.T) {
	svc, database := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	dups := []func(*RegisterInput){
		func(in *RegisterInput) { in.Username, in.Email = "other", "o@x.edu" },
		func(in *RegisterInput) { in.StudentID, in.Email = "S2", "o@x.edu" },
		func(in *RegisterInput) { in.StudentID, in.Username = "S2", "other" },
	}
	for _, mutate := range dups {
		in := validRegistration()
		mutate(&in)
		_, err := svc.Register(ctx, in)
		require.Error(t, err)
		assert.Equal(t, apperr.KindConflict, apperr.From(err).Kind)
	}

	var count int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestLoginFailuresLookAlike(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, LoginInput{Identifier: "jdoe", Password: "nope"})
	_, unknownUser := svc.Login(ctx, LoginInput{Identifier: "ghost", Password: "secret1"})

	require.Error(t, wrongPassword)
	require.Error(t, unknownUser)
	assert.Equal(t, apperr.KindAuth, apperr.From(wrongPassword).Kind)
	assert.Equal(t, apperr.From(wrongPassword).Message, apperr.From(unknownUser).Message)
}

func TestVerify(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	user, claims, err := svc.Verify(ctx, reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, user.ID)
	assert.Equal(t, "jdoe", user.Username)
	assert.Equal(t, reg.User.ID, claims.UserID)

	_, _, err = svc.Verify(ctx, "garbage")
	assert.Equal(t, apperr.KindAuth, apperr.From(err).Kind)
}

func TestVerifyMissingUser(t *testing.T) {
	svc, _ := newTestService(t)

	token, err := GenerateToken(svc.Secret, 404, time.Hour)
	require.NoError(t, err)

	_, _, err = svc.Verify(context.Background(), token)
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuth, apperr.From(err).Kind)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, database := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	_, claims, err := svc.Verify(ctx, reg.Token)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, claims))

	revoked, err := store.IsTokenRevoked(ctx, database, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, _, err = svc.Verify(ctx, reg.Token)
	assert.Equal(t, apperr.KindAuth, apperr.From(err).Kind)
}

func TestLogoutPrunesExpiredRevocations(t *testing.T) {
	svc, database := newTestService(t)
	ctx := context.Background()

	require.NoError(t, store.RevokeToken(ctx, database, "stale", time.Now().Add(-time.Hour)))

	reg, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)
	_, claims, err := svc.Verify(ctx, reg.Token)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, claims))

	revoked, err := store.IsTokenRevoked(ctx, database, "stale")
	require.NoError(t, err)
	assert.False(t, revoked)
}
