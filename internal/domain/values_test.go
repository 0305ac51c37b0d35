package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionID_Unique(t *testing.T) {
	a := NewSessionID()
	b := NewSessionID()
	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a.String())
}

func TestParseSessionID(t *testing.T) {
	id, err := ParseSessionID("abc-123")
	require.NoError(t, err)
	assert.Equal(t, "abc-123", id.String())

	_, err = ParseSessionID("")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestParseRole(t *testing.T) {
	for _, s := range []string{"user", "assistant", "system"} {
		role, err := ParseRole(s)
		require.NoError(t, err)
		assert.Equal(t, s, string(role))
	}

	_, err := ParseRole("admin")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"pending", "running", "completed", "failed", "cancelled", "stopped"} {
		status, err := ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, s, string(status))
	}

	_, err := ParseStatus("paused")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestValidEventType(t *testing.T) {
	assert.True(t, ValidEventType(EventMessageRecv))
	assert.True(t, ValidEventType(EventShellExecuted))
	assert.False(t, ValidEventType("bogus"))
	assert.False(t, ValidEventType(""))
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Field: "content", Reason: "too long"}
	assert.Equal(t, "invalid content: too long", err.Error())
}

func TestConflictError(t *testing.T) {
	err := &ConflictError{SessionID: "s1", Expected: 2, Found: 5}
	assert.True(t, IsConflict(err))
	assert.False(t, IsConflict(ErrNotFound))
	assert.Contains(t, err.Error(), "s1")
}
