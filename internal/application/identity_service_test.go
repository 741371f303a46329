package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/project-tracker/internal/domain/apperror"
	"github.com/oksasatya/project-tracker/pkg/helpers"
)

func newIdentity(users *memoryUserRepo) *IdentityService {
	return NewIdentityService(users, helpers.NewJWTManager("test-secret", time.Hour), nil)
}

func TestSignupReturnsTokenAndSanitizedUser(t *testing.T) {
	ctx := context.Background()
	users := newMemoryUserRepo()
	svc := newIdentity(users)

	res, err := svc.Signup(ctx, SignupInput{Email: "john@example.com", Password: "password123", Name: "John Doe"})
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "john@example.com", res.User.Email)
	assert.Equal(t, "John Doe", res.User.Name)
	assert.NotEmpty(t, res.User.ID)

	body, err := json.Marshal(res)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "password")
	assert.NotContains(t, string(body), "$2a$")
	assert.Contains(t, string(body), `"access_token"`)

	stored, err := users.GetByEmail(ctx, "john@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.PasswordHash)
	assert.True(t, helpers.CompareHashAndPassword(stored.PasswordHash, "password123"))

	claims, err := helpers.NewJWTManager("test-secret", time.Hour).ParseAccessToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID())
	assert.Equal(t, "john@example.com", claims.Email)
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	ctx := context.Background()
	users := newMemoryUserRepo()
	svc := newIdentity(users)

	_, err := svc.Signup(ctx, SignupInput{Email: "dup@example.com", Password: "password123", Name: "First"})
	require.NoError(t, err)

	res, err := svc.Signup(ctx, SignupInput{Email: "dup@example.com", Password: "password456", Name: "Second"})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, apperror.Conflict, apperror.KindOf(err))
	assert.Equal(t, 1, users.count())
}

func TestSignupRejectsBadInput(t *testing.T) {
	svc := newIdentity(newMemoryUserRepo())
	cases := []SignupInput{
		{Email: "not-an-email", Password: "password123", Name: "X"},
		{Email: "x@example.com", Password: "", Name: "X"},
		{Email: "x@example.com", Password: "password123", Name: "  "},
	}
	for _, in := range cases {
		_, err := svc.Signup(context.Background(), in)
		assert.Equal(t, apperror.Validation, apperror.KindOf(err), "%+v", in)
	}
}

func TestSignupPasswordOverBcryptLimitIsValidationError(t *testing.T) {
	users := newMemoryUserRepo()
	_, err := newIdentity(users).Signup(context.Background(), SignupInput{
		Email:    "long@example.com",
		Password: strings.Repeat("a", 80),
		Name:     "Long",
	})
	require.Error(t, err)
	assert.Equal(t, apperror.Validation, apperror.KindOf(err))
	assert.Equal(t, 0, users.count())
}

func TestSignupPropagatesStoreFailure(t *testing.T) {
	users := newMemoryUserRepo()
	users.err = errStoreDown
	_, err := newIdentity(users).Signup(context.Background(), SignupInput{Email: "x@example.com", Password: "password123", Name: "X"})
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, apperror.Internal, apperror.KindOf(err))
}

func TestSigninSucceedsWithCorrectPassword(t *testing.T) {
	ctx := context.Background()
	svc := newIdentity(newMemoryUserRepo())
	signup, err := svc.Signup(ctx, SignupInput{Email: "jane@example.com", Password: "password123", Name: "Jane"})
	require.NoError(t, err)

	res, err := svc.Signin(ctx, "jane@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, signup.User, res.User)
}

func TestSigninFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	tokens := &countingTokens{}
	users := newMemoryUserRepo()
	svc := NewIdentityService(users, tokens, nil)
	_, err := svc.Signup(ctx, SignupInput{Email: "jane@example.com", Password: "password123", Name: "Jane"})
	require.NoError(t, err)
	issued := tokens.n

	_, wrongPwd := svc.Signin(ctx, "jane@example.com", "wrong-password")
	_, unknown := svc.Signin(ctx, "ghost@example.com", "password123")

	for _, err := range []error{wrongPwd, unknown} {
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperror.ErrUnauthorized))
		assert.Equal(t, ErrInvalidCredentials.Error(), err.Error())
	}
	assert.Equal(t, issued, tokens.n, "no token may be generated for failed sign-in")
}

func TestValidateCredentials(t *testing.T) {
	ctx := context.Background()
	users := newMemoryUserRepo()
	svc := newIdentity(users)
	_, err := svc.Signup(ctx, SignupInput{Email: "jane@example.com", Password: "password123", Name: "Jane"})
	require.NoError(t, err)

	u, err := svc.ValidateCredentials(ctx, "jane@example.com", "password123")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Jane", u.Name)

	u, err = svc.ValidateCredentials(ctx, "jane@example.com", "nope")
	assert.NoError(t, err)
	assert.Nil(t, u)

	u, err = svc.ValidateCredentials(ctx, "ghost@example.com", "password123")
	assert.NoError(t, err)
	assert.Nil(t, u)

	users.err = errStoreDown
	_, err = svc.ValidateCredentials(ctx, "jane@example.com", "password123")
	assert.ErrorIs(t, err, errStoreDown)
}

func TestSigninTokenFailurePropagates(t *testing.T) {
	ctx := context.Background()
	users := newMemoryUserRepo()
	_, err := NewIdentityService(users, staticTokens{}, nil).
		Signup(ctx, SignupInput{Email: "jane@example.com", Password: "password123", Name: "Jane"})
	require.NoError(t, err)

	boom := errors.New("signing key unavailable")
	_, err = NewIdentityService(users, staticTokens{err: boom}, nil).Signin(ctx, "jane@example.com", "password123")
	assert.ErrorIs(t, err, boom)
}

type countingTokens struct{ n int }

func (c *countingTokens) GenerateAccessToken(userID, email string) (string, time.Time, error) {
	c.n++
	return "t", time.Now().Add(time.Hour), nil
}
