package classify

import "allad/internal/connect/models"

// User-facing messages resolve through these tables so taxonomy codes stay
// language-neutral. Shipping a second locale means swapping the tables, not
// touching classification rules.

var genericMessages = map[Code]string{
	CodeAuthError:       "Your account session is no longer valid. Please reconnect the account.",
	CodeTokenExpired:    "Your account session has expired. Please reconnect the account.",
	CodeRateLimit:       "The platform is limiting requests right now. Please try again in a few minutes.",
	CodePermissionError: "Your account does not have permission for this operation.",
	CodeInvalidAccount:  "The connected account could not be found on the platform.",
	CodeConnectionError: "The platform is temporarily unavailable. Please try again.",
	CodeConfigError:     "This platform connection is not configured. Please contact support.",
	CodeDataError:       "The platform rejected the request data.",
	CodeNetworkError:    "A network error occurred while contacting the platform. Please try again.",
	CodeNotFound:        "The requested resource was not found on the platform.",
	CodeUnknown:         "An unexpected error occurred. Please try again.",
}

// platformMessages overrides the generic text where the reconnect path or
// failure meaning differs per platform.
var platformMessages = map[models.Platform]map[Code]string{
	models.PlatformFacebook: {
		CodeAuthError: "Your Meta access token is invalid or expired. Please reconnect your Meta ad account.",
		CodeRateLimit: "Meta is throttling API calls for this ad account. Please wait a few minutes.",
	},
	models.PlatformGoogle: {
		CodeAuthError: "Google Ads authorization has expired. Please reconnect your Google Ads account.",
	},
	models.PlatformTikTok: {
		CodeAuthError:       "TikTok authorization has expired. Please reconnect your TikTok for Business account.",
		CodeConnectionError: "TikTok Ads API is temporarily unavailable. Please try again.",
	},
	models.PlatformKakao: {
		CodeTokenExpired: "Kakao Moment authorization has expired. Please reconnect your Kakao account.",
	},
	models.PlatformCoupang: {
		CodeAuthError: "Coupang API keys were rejected. Please re-enter your Coupang credentials.",
	},
}

func message(platform models.Platform, code Code) string {
	if byCode, ok := platformMessages[platform]; ok {
		if msg, ok := byCode[code]; ok {
			return msg
		}
	}
	return genericMessage(code)
}

func genericMessage(code Code) string {
	if msg, ok := genericMessages[code]; ok {
		return msg
	}
	return genericMessages[CodeUnknown]
}
