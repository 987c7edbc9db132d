package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// ValidationErrorType categorizes validation failures.
type ValidationErrorType int

const (
	// ErrTypeInvalidKey indicates the API key is invalid or revoked.
	ErrTypeInvalidKey ValidationErrorType = iota
	// ErrTypeNetworkError indicates a connectivity or server-side issue.
	ErrTypeNetworkError
	// ErrTypeQuotaExceeded indicates the API quota has been exceeded.
	ErrTypeQuotaExceeded
	// ErrTypeUnknown indicates an unclassified failure.
	ErrTypeUnknown
)

func (t ValidationErrorType) String() string {
	switch t {
	case ErrTypeInvalidKey:
		return "invalid_key"
	case ErrTypeNetworkError:
		return "network_error"
	case ErrTypeQuotaExceeded:
		return "quota_exceeded"
	default:
		return "unknown"
	}
}

// ValidationError represents a specific type of API key validation failure.
type ValidationError struct {
	Type    ValidationErrorType
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidateAPIKey makes a one-token request against model and classifies any
// failure. It lets a scheduled job fail fast on a revoked key before the
// daily run.
func ValidateAPIKey(ctx context.Context, client *genai.Client, model string) error {
	log.Debug().Str("model", model).Msg("Validating API key with Gemini API")

	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, model, genai.Text("hi"), &genai.GenerateContentConfig{
		MaxOutputTokens: 1,
	})
	elapsed := time.Since(start)

	if err != nil {
		valErr := classifyError(err)
		log.Error().
			Err(err).
			Stringer("result", valErr.Type).
			Dur("duration", elapsed).
			Msg("API key validation failed")
		return valErr
	}

	if resp == nil || len(resp.Candidates) == 0 {
		log.Warn().Dur("duration", elapsed).Msg("API key validation returned empty response")
		return &ValidationError{
			Type:    ErrTypeUnknown,
			Message: "API returned empty response",
		}
	}

	log.Info().Dur("duration", elapsed).Msg("API key validated successfully")
	return nil
}

// classifyError maps an API or transport error to a ValidationError.
func classifyError(err error) *ValidationError {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return classifyAPIError(apiErr, err)
	}

	errLower := strings.ToLower(err.Error())
	switch {
	case containsAny(errLower, "api key not valid", "invalid api key", "api_key_invalid", "permission denied"):
		return &ValidationError{
			Type:    ErrTypeInvalidKey,
			Message: "API key is invalid or has been revoked",
			Err:     err,
		}

	case containsAny(errLower, "quota", "resource exhausted", "rate limit"):
		return &ValidationError{
			Type:    ErrTypeQuotaExceeded,
			Message: "API quota exceeded or rate limited",
			Err:     err,
		}

	case containsAny(errLower, "connection", "network", "timeout", "dial", "no such host", "unreachable"):
		return &ValidationError{
			Type:    ErrTypeNetworkError,
			Message: "Network error - check your internet connection",
			Err:     err,
		}

	default:
		return &ValidationError{
			Type:    ErrTypeUnknown,
			Message: "Failed to validate API key",
			Err:     err,
		}
	}
}

func classifyAPIError(apiErr *genai.APIError, err error) *ValidationError {
	switch apiErr.Code {
	case 400, 401, 403:
		return &ValidationError{
			Type:    ErrTypeInvalidKey,
			Message: "API key is invalid, expired, or lacks permissions",
			Err:     err,
		}
	case 429:
		return &ValidationError{
			Type:    ErrTypeQuotaExceeded,
			Message: "API rate limit exceeded - try again later",
			Err:     err,
		}
	case 500, 502, 503, 504:
		return &ValidationError{
			Type:    ErrTypeNetworkError,
			Message: "Gemini API server error - try again later",
			Err:     err,
		}
	default:
		return &ValidationError{
			Type:    ErrTypeUnknown,
			Message: apiErr.Message,
			Err:     err,
		}
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
