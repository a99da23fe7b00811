package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const adminToken = "super-secret-token"

func TestAuthenticateAdminWrongToken(t *testing.T) {
	admin := AuthenticateAdmin(42, 13, "spam", adminToken)
	require.Nil(t, admin)
}

func TestAuthenticateAdminCorrectToken(t *testing.T) {
	admin := AuthenticateAdmin(42, 13, adminToken, adminToken)
	require.NotNil(t, admin)
	require.Equal(t, UserID(42), admin.UserID)
	require.Equal(t, ChatID(13), admin.TargetChatID)
	require.NotNil(t, admin.TargetChat)
	require.Equal(t, ChatID(13), admin.TargetChat.ChatID)
	require.False(t, admin.CreatedAt.IsZero())
}

func TestAdminEqualityKeyedOnUserID(t *testing.T) {
	first := AuthenticateAdmin(42, 13, adminToken, adminToken)
	second := AuthenticateAdmin(42, 99, adminToken, adminToken)
	third := AuthenticateAdmin(7, 13, adminToken, adminToken)

	require.True(t, first.Equal(second))
	require.False(t, first.Equal(third))
	require.False(t, first.Equal(nil))
}
