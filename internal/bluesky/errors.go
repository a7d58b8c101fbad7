package bluesky

import (
	"errors"
	"strings"

	apperrors "github.com/skyreach/outreach-server-go/internal/errors"
)

// normalizeError maps an upstream failure to a structured AppError. The
// classification matches text fragments from the platform's error messages,
// so it is best effort: unmatched cases become a generic BLUESKY_ERROR.
// TODO: switch to the typed `error` field of the XRPC body once the chat
// endpoints report stable codes for blocked conversations.
func normalizeError(context string, err error) *apperrors.AppError {
	var reqErr *requestError
	if !errors.As(err, &reqErr) {
		return apperrors.Bluesky(context + ": " + err.Error()).WithCause(err)
	}

	msg := reqErr.Message

	switch {
	case strings.Contains(msg, "InvalidAuth"),
		strings.Contains(msg, "AuthenticationRequired"),
		strings.Contains(msg, "AuthFactorTokenRequired"):
		return apperrors.New(apperrors.ErrCodeInvalidCredentials,
			"Invalid credentials. Check the app password.").
			WithHTTPStatus(reqErr.Status).WithCause(err)

	case strings.Contains(msg, "RateLimitExceeded"),
		strings.Contains(msg, "RateLimit"),
		reqErr.Status == 429:
		return apperrors.UpstreamRateLimited().
			WithHTTPStatus(reqErr.Status).WithCause(err)

	case strings.Contains(msg, "Unable to resolve handle"),
		strings.Contains(msg, "Profile not found"),
		strings.Contains(msg, "Actor not found"),
		strings.Contains(msg, "NotFound"):
		return apperrors.New(apperrors.ErrCodeTargetNotFound, context+": target not found").
			WithHTTPStatus(reqErr.Status).WithCause(err)

	case strings.Contains(msg, "Lexicon not found"),
		strings.Contains(msg, "recipient has disabled"),
		strings.Contains(msg, "convo not found"):
		return apperrors.ChatUnavailable().
			WithHTTPStatus(reqErr.Status).WithCause(err)
	}

	return apperrors.Bluesky(context + ": " + msg).
		WithHTTPStatus(reqErr.Status).WithCause(err)
}
