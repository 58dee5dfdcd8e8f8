// internal/models/user_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndCheckPassword(t *testing.T) {
	user := &User{Username: "farmer_joe"}

	require.NoError(t, user.SetPassword("password123"))
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "password123", user.PasswordHash)

	assert.NoError(t, user.CheckPassword("password123"))
	assert.Error(t, user.CheckPassword("wrong-password"))
}

func TestStartingWalletBalance(t *testing.T) {
	assert.Equal(t, 50000.0, StartingWalletBalance(RoleDistributor))
	assert.Equal(t, 20000.0, StartingWalletBalance(RoleShopkeeper))
	assert.Equal(t, 0.0, StartingWalletBalance(RoleFarmer))
	assert.Equal(t, 0.0, StartingWalletBalance(RoleTransporter))
	assert.Equal(t, 0.0, StartingWalletBalance(RoleConsumer))
}

func TestValidRole(t *testing.T) {
	for _, role := range []UserRole{RoleFarmer, RoleDistributor, RoleTransporter, RoleShopkeeper, RoleConsumer} {
		assert.True(t, ValidRole(role))
	}

	assert.False(t, ValidRole("ADMIN"))
	assert.False(t, ValidRole(""))
	assert.False(t, ValidRole("farmer"))
}
