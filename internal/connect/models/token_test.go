package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenResponseExpiryTime(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	t.Run("positive expires_in yields an absolute expiry", func(t *testing.T) {
		tok := &TokenResponse{AccessToken: "at", ExpiresIn: 3600}
		expiry := tok.ExpiryTime(now)
		if assert.NotNil(t, expiry) {
			assert.Equal(t, now.Add(time.Hour), *expiry)
		}
	})

	t.Run("missing expires_in yields nil", func(t *testing.T) {
		tok := &TokenResponse{AccessToken: "at"}
		assert.Nil(t, tok.ExpiryTime(now))
	})

	t.Run("negative expires_in yields nil", func(t *testing.T) {
		tok := &TokenResponse{AccessToken: "at", ExpiresIn: -1}
		assert.Nil(t, tok.ExpiryTime(now))
	})
}
