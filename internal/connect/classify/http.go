package classify

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// ParseResponse builds an APIError from a non-2xx provider response. It
// understands the three error body shapes the platforms use: a Graph-style
// error object, a flat OAuth error string, and a flat numeric code.
func ParseResponse(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil {
			apiErr.RetryAfter = secs
		}
	}

	var envelope struct {
		Error            json.RawMessage `json:"error"`
		ErrorDescription string          `json:"error_description"`
		Code             json.RawMessage `json:"code"`
		Message          string          `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		apiErr.Message = truncate(string(body), 200)
		return apiErr
	}

	apiErr.Message = envelope.ErrorDescription
	if apiErr.Message == "" {
		apiErr.Message = envelope.Message
	}

	if len(envelope.Error) > 0 {
		var errStr string
		if json.Unmarshal(envelope.Error, &errStr) == nil {
			apiErr.ProviderCode = errStr
			return apiErr
		}
		var errObj struct {
			Code    json.RawMessage `json:"code"`
			Message string          `json:"message"`
		}
		if json.Unmarshal(envelope.Error, &errObj) == nil {
			apiErr.ProviderCode = rawCode(errObj.Code)
			if apiErr.Message == "" {
				apiErr.Message = errObj.Message
			}
			return apiErr
		}
	}

	apiErr.ProviderCode = rawCode(envelope.Code)
	return apiErr
}

func rawCode(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var num json.Number
	if json.Unmarshal(raw, &num) == nil {
		return num.String()
	}
	var str string
	if json.Unmarshal(raw, &str) == nil {
		return str
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
