package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	session := &Session{CreatedAt: now, ExpiresAt: now.Add(time.Hour)}

	assert.False(t, session.Expired(now))
	assert.False(t, session.Expired(now.Add(59*time.Minute)))
	// Expiry instant counts as expired.
	assert.True(t, session.Expired(now.Add(time.Hour)))
	assert.True(t, session.Expired(now.Add(2*time.Hour)))
}

func TestRoleHelpers(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
	assert.True(t, (&Session{UserRole: RoleAdmin}).IsAdmin())
	assert.False(t, (&Session{UserRole: RoleUser}).IsAdmin())
}
