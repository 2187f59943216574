package relay

import (
	"context"
	"errors"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"io.winapps.snapquip/internal/config"
)

const messagesPath = "v1/messages"

// Relay forwards analysis requests to the upstream messages API, attaching
// the server-held credential the browser must never see.
type Relay struct {
	client anthropic.Client
	apiKey string
}

// New creates a relay for the configured upstream. Extra request options are
// appended after the defaults, so tests can swap the HTTP client.
func New(cfg *config.Config, opts ...option.RequestOption) *Relay {
	base := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHeader("anthropic-version", cfg.APIVersion),
		option.WithHeader("Content-Type", "application/json"),
		// A single upstream attempt per request
		option.WithMaxRetries(0),
	}

	return &Relay{
		client: anthropic.NewClient(append(base, opts...)...),
		apiKey: cfg.APIKey,
	}
}

// Forward sends body verbatim to the upstream messages endpoint and returns
// the upstream response body untouched. Every failure comes back as an
// *UpstreamError.
func (r *Relay) Forward(ctx context.Context, body []byte) ([]byte, error) {
	var raw []byte
	err := r.client.Post(ctx, messagesPath, body, &raw)
	if err == nil {
		return raw, nil
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return nil, newStatusError(apiErr)
	}
	return nil, &UpstreamError{Err: err}
}

// Credential reports presence and shape of the configured key
func (r *Relay) Credential() CredentialCheck {
	return CredentialReport(r.apiKey)
}

// CredentialCheck describes the configured key without revealing it
type CredentialCheck struct {
	Exists                  bool
	KeyLength               int
	StartsWithCorrectPrefix bool
}

// CredentialReport inspects key against the expected upstream key prefix
func CredentialReport(key string) CredentialCheck {
	return CredentialCheck{
		Exists:                  key != "",
		KeyLength:               len(key),
		StartsWithCorrectPrefix: strings.HasPrefix(key, config.ExpectedKeyPrefix),
	}
}

// Fields returns the check as zap key/value pairs
func (c CredentialCheck) Fields() []interface{} {
	return []interface{}{
		"exists", c.Exists,
		"key_length", c.KeyLength,
		"starts_with_correct_prefix", c.StartsWithCorrectPrefix,
	}
}

// Format is "correct" when the key carries the expected prefix
func (c CredentialCheck) Format() string {
	if c.StartsWithCorrectPrefix {
		return "correct"
	}
	return "incorrect"
}
