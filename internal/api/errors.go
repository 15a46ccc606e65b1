package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Error is an error response from the backend.
//
// Detail carries the server-provided message verbatim when one was present,
// otherwise a generic fallback. RetryAfter is non-zero only for rate-limit
// responses that included a retry hint.
type Error struct {
	Status     int
	Detail     string
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsRateLimited reports whether err is a 429 response.
func IsRateLimited(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusTooManyRequests
}

// retrySecondsRe matches the "wait N seconds" hint the backend embeds in rate
// limit detail messages.
var retrySecondsRe = regexp.MustCompile(`wait (\d+) seconds`)

// errorFromResponse builds an *Error from a non-2xx response body.
//
// The backend reports errors as {"detail": "..."} for plain failures and as
// {"detail": [{"loc": ..., "msg": ...}, ...]} for validation failures; the
// latter is flattened into a single human-readable message.
func errorFromResponse(status int, body []byte, header http.Header) *Error {
	apiErr := &Error{Status: status, Detail: flattenDetail(body)}

	if status == http.StatusTooManyRequests {
		if raw := header.Get("Retry-After"); raw != "" {
			if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
				apiErr.RetryAfter = time.Duration(secs) * time.Second
			}
		}
		if apiErr.RetryAfter == 0 {
			if m := retrySecondsRe.FindStringSubmatch(apiErr.Detail); m != nil {
				if secs, err := strconv.Atoi(m[1]); err == nil {
					apiErr.RetryAfter = time.Duration(secs) * time.Second
				}
			}
		}
	}

	return apiErr
}

// flattenDetail extracts a single display string from an error body.
func flattenDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var plain struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &plain); err == nil && plain.Detail != "" {
		return plain.Detail
	}

	var validation struct {
		Detail []struct {
			Msg string `json:"msg"`
		} `json:"detail"`
	}
	if err := json.Unmarshal(body, &validation); err == nil && len(validation.Detail) > 0 {
		msgs := make([]string, 0, len(validation.Detail))
		for _, item := range validation.Detail {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, ", ")
		}
	}

	return ""
}
