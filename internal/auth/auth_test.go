package auth

import (
	"testing"

	"advisory-backend/internal/config"
	"advisory-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashAndVerify(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, VerifyPassword(hash, "correct horse battery staple"))
	assert.False(t, VerifyPassword(hash, "wrong password"))
	assert.False(t, VerifyPassword("not-a-hash", "anything"))
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "unit-test-secret"
	cfg.JWT.ExpirationHours = 1
	cfg.JWT.Issuer = "advisory-backend"
	return cfg
}

func TestJWTRoundTrip(t *testing.T) {
	mgr := NewJWTManager(testConfig())

	teamID := 2
	user := &models.User{
		ID:       7,
		Email:    "ops@example.co.ke",
		Role:     "member",
		TeamID:   &teamID,
		IsActive: true,
	}

	token, err := mgr.GenerateToken(user)
	require.NoError(t, err)

	claims, err := mgr.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, "ops@example.co.ke", claims.Email)
	assert.Equal(t, "member", claims.Role)
	require.NotNil(t, claims.TeamID)
	assert.Equal(t, 2, *claims.TeamID)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	mgr := NewJWTManager(testConfig())

	user := &models.User{ID: 1, Email: "a@b.c", Role: "admin", IsActive: true}
	token, err := mgr.GenerateToken(user)
	require.NoError(t, err)

	otherCfg := testConfig()
	otherCfg.JWT.Secret = "different-secret"
	other := NewJWTManager(otherCfg)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTRejectsGarbage(t *testing.T) {
	mgr := NewJWTManager(testConfig())
	_, err := mgr.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestAdminGuardDisabledPassesEverything(t *testing.T) {
	guard := NewAdminGuard("")
	assert.False(t, guard.Enabled())
	assert.True(t, guard.Verify(""))
	assert.True(t, guard.Verify("000000"))
}

func TestAdminGuardRejectsBadCode(t *testing.T) {
	guard := NewAdminGuard("JBSWY3DPEHPK3PXP")
	assert.True(t, guard.Enabled())
	assert.False(t, guard.Verify("000000"))
	assert.False(t, guard.Verify(""))
}
