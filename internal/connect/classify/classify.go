// Package classify normalizes heterogeneous ad-platform failures into a flat,
// platform-aware taxonomy. Platform-specific rules are consulted before the
// generic HTTP-status fallback, and classification is total: any input yields
// a well-formed PlatformError.
package classify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"allad/internal/connect/models"
)

// Code is a normalized platform error category.
type Code string

const (
	CodeAuthError       Code = "AUTH_ERROR"
	CodeTokenExpired    Code = "TOKEN_EXPIRED"
	CodeRateLimit       Code = "RATE_LIMIT"
	CodePermissionError Code = "PERMISSION_ERROR"
	CodeInvalidAccount  Code = "INVALID_ACCOUNT"
	CodeConnectionError Code = "CONNECTION_ERROR"
	CodeConfigError     Code = "CONFIG_ERROR"
	CodeDataError       Code = "DATA_ERROR"
	CodeNetworkError    Code = "NETWORK_ERROR"
	CodeNotFound        Code = "NOT_FOUND"
	CodeUnknown         Code = "UNKNOWN_ERROR"
)

// PlatformError is the normalized result of classifying a raw platform
// failure. Callers surface UserMessage verbatim and never construct
// user-facing text from raw provider errors.
type PlatformError struct {
	Platform          models.Platform
	Code              Code
	Retryable         bool
	UserMessage       string
	RetryAfterSeconds int
	Err               error
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("%s: %s", e.Platform, e.Code)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

// APIError is the raw shape produced by outbound HTTP calls to platform APIs:
// the HTTP status plus the provider's own error code and message, when the
// response body carried one.
type APIError struct {
	StatusCode   int
	ProviderCode string
	Message      string
	RetryAfter   int
}

func (e *APIError) Error() string {
	if e.ProviderCode != "" {
		return fmt.Sprintf("platform api error: status=%d code=%s %s", e.StatusCode, e.ProviderCode, e.Message)
	}
	return fmt.Sprintf("platform api error: status=%d %s", e.StatusCode, e.Message)
}

// Classify maps a raw error to a PlatformError. It never panics and never
// returns nil: unknown shapes classify as UNKNOWN_ERROR, non-retryable.
func Classify(err error, platform models.Platform) *PlatformError {
	if err == nil {
		return unknown(platform, nil)
	}

	// Already classified: pass through untouched.
	var pe *PlatformError
	if errors.As(err, &pe) {
		return pe
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if out := classifyPlatform(platform, apiErr); out != nil {
			out.Err = err
			return out
		}
		if out := classifyStatus(platform, apiErr); out != nil {
			out.Err = err
			return out
		}
		return unknown(platform, err)
	}

	if isNetworkError(err) {
		return &PlatformError{
			Platform:    platform,
			Code:        CodeNetworkError,
			Retryable:   true,
			UserMessage: message(platform, CodeNetworkError),
			Err:         err,
		}
	}

	return unknown(platform, err)
}

// UserErrorMessage resolves a user-facing message for an error encountered
// during the described action. Already-classified errors return their
// UserMessage verbatim.
func UserErrorMessage(err error, platform models.Platform, action string) string {
	var pe *PlatformError
	if errors.As(err, &pe) {
		return pe.UserMessage
	}
	classified := Classify(err, platform)
	if classified.Code == CodeUnknown {
		return fmt.Sprintf("Something went wrong during %s. Please try again.", action)
	}
	return fmt.Sprintf("%s error (%s) during %s. Please try again.", platform, classified.Code, action)
}

// classifyPlatform applies platform-specific rules. Returns nil when no rule
// matches so the generic status mapping takes over.
func classifyPlatform(platform models.Platform, apiErr *APIError) *PlatformError {
	switch platform {
	case models.PlatformFacebook:
		switch apiErr.ProviderCode {
		case "190":
			// Invalid or expired access token.
			return &PlatformError{
				Platform:    platform,
				Code:        CodeAuthError,
				Retryable:   false,
				UserMessage: message(platform, CodeAuthError),
			}
		case "4", "17", "32", "613":
			return &PlatformError{
				Platform:          platform,
				Code:              CodeRateLimit,
				Retryable:         true,
				UserMessage:       message(platform, CodeRateLimit),
				RetryAfterSeconds: apiErr.RetryAfter,
			}
		}
	case models.PlatformGoogle:
		if apiErr.StatusCode == 401 || apiErr.StatusCode == 403 {
			return &PlatformError{
				Platform:    platform,
				Code:        CodeAuthError,
				Retryable:   false,
				UserMessage: message(platform, CodeAuthError),
			}
		}
	case models.PlatformTikTok:
		switch apiErr.ProviderCode {
		case "40100":
			return &PlatformError{
				Platform:    platform,
				Code:        CodeAuthError,
				Retryable:   false,
				UserMessage: message(platform, CodeAuthError),
			}
		case "50001", "50002":
			return &PlatformError{
				Platform:    platform,
				Code:        CodeConnectionError,
				Retryable:   true,
				UserMessage: message(platform, CodeConnectionError),
			}
		}
	case models.PlatformKakao:
		if apiErr.ProviderCode == "-401" {
			return &PlatformError{
				Platform:    platform,
				Code:        CodeTokenExpired,
				Retryable:   false,
				UserMessage: message(platform, CodeTokenExpired),
			}
		}
	case models.PlatformCoupang:
		// Coupang uses static HMAC-style credentials; a 401 means the keys
		// themselves are wrong, so retrying cannot help.
		if apiErr.StatusCode == 401 {
			return &PlatformError{
				Platform:    platform,
				Code:        CodeAuthError,
				Retryable:   false,
				UserMessage: message(platform, CodeAuthError),
			}
		}
	}
	return nil
}

// classifyStatus is the generic HTTP-status fallback shared by all platforms.
func classifyStatus(platform models.Platform, apiErr *APIError) *PlatformError {
	switch {
	case apiErr.StatusCode == 401:
		return &PlatformError{
			Platform:    platform,
			Code:        CodeAuthError,
			Retryable:   true,
			UserMessage: genericMessage(CodeAuthError),
		}
	case apiErr.StatusCode == 403:
		return &PlatformError{
			Platform:    platform,
			Code:        CodePermissionError,
			Retryable:   false,
			UserMessage: genericMessage(CodePermissionError),
		}
	case apiErr.StatusCode == 404:
		return &PlatformError{
			Platform:    platform,
			Code:        CodeNotFound,
			Retryable:   false,
			UserMessage: genericMessage(CodeNotFound),
		}
	case apiErr.StatusCode == 429:
		return &PlatformError{
			Platform:          platform,
			Code:              CodeRateLimit,
			Retryable:         true,
			UserMessage:       genericMessage(CodeRateLimit),
			RetryAfterSeconds: apiErr.RetryAfter,
		}
	case apiErr.StatusCode == 400:
		return &PlatformError{
			Platform:    platform,
			Code:        CodeDataError,
			Retryable:   false,
			UserMessage: genericMessage(CodeDataError),
		}
	case apiErr.StatusCode >= 500:
		return &PlatformError{
			Platform:    platform,
			Code:        CodeConnectionError,
			Retryable:   true,
			UserMessage: genericMessage(CodeConnectionError),
		}
	}
	return nil
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, needle := range []string{"timeout", "network", "fetch", "connection refused", "no such host"} {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}

func unknown(platform models.Platform, err error) *PlatformError {
	return &PlatformError{
		Platform:    platform,
		Code:        CodeUnknown,
		Retryable:   false,
		UserMessage: genericMessage(CodeUnknown),
		Err:         err,
	}
}
