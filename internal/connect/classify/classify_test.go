package classify

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"allad/internal/connect/models"
)

func TestClassify_Totality(t *testing.T) {
	inputs := []error{
		nil,
		errors.New("boom"),
		fmt.Errorf("wrapped: %w", errors.New("inner")),
		&APIError{},
		&APIError{StatusCode: 999},
		context.DeadlineExceeded,
	}
	for _, in := range inputs {
		out := Classify(in, models.PlatformGoogle)
		require.NotNil(t, out)
		assert.NotEmpty(t, out.Code)
		assert.NotEmpty(t, out.UserMessage)
		assert.Equal(t, models.PlatformGoogle, out.Platform)
	}
}

func TestClassify_PlatformRulesPrecedeGeneric(t *testing.T) {
	// Facebook 190 carries no matching generic HTTP status; the platform rule
	// must fire and carry the Meta-specific message.
	out := Classify(&APIError{StatusCode: 400, ProviderCode: "190"}, models.PlatformFacebook)
	assert.Equal(t, CodeAuthError, out.Code)
	assert.False(t, out.Retryable)
	assert.Equal(t, platformMessages[models.PlatformFacebook][CodeAuthError], out.UserMessage)

	// The same provider code on another platform falls through to the generic
	// 400 mapping.
	other := Classify(&APIError{StatusCode: 400, ProviderCode: "190"}, models.PlatformNaver)
	assert.Equal(t, CodeDataError, other.Code)
}

func TestClassify_RetryabilityConsistency(t *testing.T) {
	for _, platform := range models.AllPlatforms {
		rate := Classify(&APIError{StatusCode: 429}, platform)
		assert.True(t, rate.Retryable, "429 on %s must be retryable", platform)
		assert.Equal(t, CodeRateLimit, rate.Code)

		missing := Classify(&APIError{StatusCode: 404}, platform)
		assert.False(t, missing.Retryable, "404 on %s must not be retryable", platform)
		assert.Equal(t, CodeNotFound, missing.Code)
	}
}

func TestClassify_CoupangOverridesGeneric401(t *testing.T) {
	generic := Classify(&APIError{StatusCode: 401}, models.PlatformNaver)
	assert.Equal(t, CodeAuthError, generic.Code)
	assert.True(t, generic.Retryable)

	coupang := Classify(&APIError{StatusCode: 401}, models.PlatformCoupang)
	assert.Equal(t, CodeAuthError, coupang.Code)
	assert.False(t, coupang.Retryable)
}

func TestClassify_StatusFallback(t *testing.T) {
	tests := []struct {
		status    int
		code      Code
		retryable bool
	}{
		{400, CodeDataError, false},
		{401, CodeAuthError, true},
		{403, CodePermissionError, false},
		{404, CodeNotFound, false},
		{429, CodeRateLimit, true},
		{500, CodeConnectionError, true},
		{503, CodeConnectionError, true},
	}
	for _, tt := range tests {
		out := Classify(&APIError{StatusCode: tt.status}, models.PlatformAmazon)
		assert.Equal(t, tt.code, out.Code, "status %d", tt.status)
		assert.Equal(t, tt.retryable, out.Retryable, "status %d", tt.status)
	}
}

func TestClassify_TikTokCodes(t *testing.T) {
	auth := Classify(&APIError{StatusCode: 200, ProviderCode: "40100"}, models.PlatformTikTok)
	assert.Equal(t, CodeAuthError, auth.Code)
	assert.False(t, auth.Retryable)

	for _, code := range []string{"50001", "50002"} {
		transient := Classify(&APIError{StatusCode: 200, ProviderCode: code}, models.PlatformTikTok)
		assert.Equal(t, CodeConnectionError, transient.Code)
		assert.True(t, transient.Retryable)
	}
}

func TestClassify_RetryAfterPropagates(t *testing.T) {
	out := Classify(&APIError{StatusCode: 429, RetryAfter: 42}, models.PlatformGoogle)
	assert.Equal(t, 42, out.RetryAfterSeconds)
}

func TestClassify_NetworkSniffing(t *testing.T) {
	for _, msg := range []string{"dial tcp: i/o timeout", "network is unreachable", "failed to fetch"} {
		out := Classify(errors.New(msg), models.PlatformKakao)
		assert.Equal(t, CodeNetworkError, out.Code, msg)
		assert.True(t, out.Retryable)
	}
}

func TestClassify_PassthroughClassified(t *testing.T) {
	orig := Classify(&APIError{StatusCode: 429}, models.PlatformGoogle)
	again := Classify(fmt.Errorf("fetch campaigns: %w", orig), models.PlatformGoogle)
	assert.Same(t, orig, again)
}

func TestUserErrorMessage(t *testing.T) {
	classified := Classify(&APIError{StatusCode: 401, ProviderCode: "190"}, models.PlatformFacebook)
	assert.Equal(t, classified.UserMessage, UserErrorMessage(classified, models.PlatformFacebook, "campaign sync"))

	synthesized := UserErrorMessage(&APIError{StatusCode: 503}, models.PlatformNaver, "budget update")
	assert.Equal(t, "naver error (CONNECTION_ERROR) during budget update. Please try again.", synthesized)

	fallback := UserErrorMessage(errors.New("???"), models.PlatformNaver, "budget update")
	assert.Equal(t, "Something went wrong during budget update. Please try again.", fallback)
}
