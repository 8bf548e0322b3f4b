package services

import (
	"context"
	"testing"
	"time"

	"hostel-meals/models"
	"hostel-meals/store"
	"hostel-meals/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccounts(t *testing.T) (*Accounts, *TokenService, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	tokens := NewTokenService([]byte("secret"), "hostel-meals", time.Hour)
	return NewAccounts(st, tokens), tokens, st
}

func TestSignupAndLogin(t *testing.T) {
	accounts, tokens, st := newAccounts(t)
	ctx := context.Background()

	_, err := accounts.Signup(ctx, SignupInput{Name: "Rahim", Email: "rahim@x.com", Password: "hunter22"})
	require.NoError(t, err)

	user, err := st.FindUserByEmail(ctx, "rahim@x.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, models.BadgeBronze, user.Badge)
	assert.NotEqual(t, "hunter22", user.Password)

	_, err = accounts.Signup(ctx, SignupInput{Name: "Again", Email: "rahim@x.com", Password: "x"})
	requireKind(t, err, utils.KindConflict, "User already exists")

	token, err := accounts.Login(ctx, "rahim@x.com", "hunter22")
	require.NoError(t, err)
	p, err := tokens.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "rahim@x.com", p.Email)

	_, err = accounts.Login(ctx, "rahim@x.com", "wrong")
	requireKind(t, err, utils.KindUnauthenticated, "Invalid email or password")
	_, err = accounts.Login(ctx, "ghost@x.com", "hunter22")
	requireKind(t, err, utils.KindUnauthenticated, "Invalid email or password")
}

func TestRolesAndBadges(t *testing.T) {
	accounts, _, st := newAccounts(t)
	ctx := context.Background()

	id, err := accounts.Signup(ctx, SignupInput{Name: "Karim", Email: "karim@x.com", Password: "pw"})
	require.NoError(t, err)

	role, err := accounts.Role(ctx, "karim@x.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, role)

	role, err = accounts.Role(ctx, "ghost@x.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, role)

	require.NoError(t, accounts.SetRole(ctx, id.Hex(), models.RoleAdmin))
	role, err = accounts.Role(ctx, "karim@x.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role)

	err = accounts.SetRole(ctx, id.Hex(), "root")
	requireKind(t, err, utils.KindValidation, "")

	require.NoError(t, accounts.SetBadge(ctx, "karim@x.com", "Gold"))
	user, err := st.FindUserByEmail(ctx, "karim@x.com")
	require.NoError(t, err)
	assert.Equal(t, models.BadgeGold, user.Badge)

	err = accounts.SetBadge(ctx, "ghost@x.com", "gold")
	requireKind(t, err, utils.KindNotFound, "User not found")

	found, err := accounts.Search(ctx, "KAR")
	require.NoError(t, err)
	require.Len(t, found, 1)

	_, err = accounts.Search(ctx, " ")
	requireKind(t, err, utils.KindValidation, "Search query required")
}
