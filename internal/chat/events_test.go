package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	model "github.com/Barkat-Ullah/seed-lift-backend/internal/models"
)

func TestIsValidChatPair(t *testing.T) {
	// Les rôles différents peuvent discuter, dans les deux sens
	assert.True(t, IsValidChatPair(model.RoleSeeder, model.RoleFounder))
	assert.True(t, IsValidChatPair(model.RoleFounder, model.RoleSeeder))
	assert.True(t, IsValidChatPair(model.RoleSeeder, model.RoleAdmin))
	assert.True(t, IsValidChatPair(model.RoleAdmin, model.RoleSeeder))
	assert.True(t, IsValidChatPair(model.RoleFounder, model.RoleAdmin))
	assert.True(t, IsValidChatPair(model.RoleAdmin, model.RoleFounder))
}

func TestIsValidChatPairSameRoleRejected(t *testing.T) {
	assert.False(t, IsValidChatPair(model.RoleSeeder, model.RoleSeeder))
	assert.False(t, IsValidChatPair(model.RoleFounder, model.RoleFounder))
	assert.False(t, IsValidChatPair(model.RoleAdmin, model.RoleAdmin))
}

func TestIsValidChatPairUnknownRole(t *testing.T) {
	assert.False(t, IsValidChatPair(model.UserRole("GUEST"), model.RoleSeeder))
}
