// Where: internal/adapter/config.go
// What: Adapter configuration surface and validation.
// Why: Resolve credential mode and base URL once, before anything is declared.
package adapter

import (
	"errors"
	"fmt"
	"net/url"
)

// DefaultBaseURL is the provider's public endpoint, used when the
// configuration does not override it.
const DefaultBaseURL = "https://app.amberflo.io"

var (
	// ErrNoCredential is returned when neither a direct API key nor a
	// secret reference is configured.
	ErrNoCredential = errors.New("adapter: no credential configured")
	// ErrAmbiguousCredential is returned when both credential modes are
	// configured at once.
	ErrAmbiguousCredential = errors.New("adapter: both direct key and secret reference configured")
	// ErrIncompleteSecretRef is returned when only one half of the
	// {secret name, field id} pair is present.
	ErrIncompleteSecretRef = errors.New("adapter: secret reference requires both name and field id")
)

// Config is the construction-time input for the metering adapter.
// Exactly one credential mode must be active: either APIKey (direct mode)
// or the APIKeySecretName/APIKeySecretID pair (reference mode).
type Config struct {
	// APIKey holds the provider key inline. Direct mode only; the value
	// ends up in the function's static configuration, so reference mode
	// is preferred for anything beyond local experiments.
	APIKey string `yaml:"apiKey,omitempty"`

	// APIKeySecretName names the secret in the credential store.
	APIKeySecretName string `yaml:"apiKeySecretName,omitempty"`

	// APIKeySecretID names the field inside that secret holding the key.
	APIKeySecretID string `yaml:"apiKeySecretId,omitempty"`

	// BaseURL overrides the provider endpoint. Optional; must be an
	// absolute URL when present.
	BaseURL string `yaml:"baseUrl,omitempty"`

	// Layers overrides the platform instrumentation layers attached to
	// the function. Optional; defaults cover tracing and outbound HTTP.
	Layers []LayerOverride `yaml:"layers,omitempty"`
}

// LayerOverride replaces a default platform layer reference by name.
type LayerOverride struct {
	Name       string `yaml:"name"`
	VersionARN string `yaml:"versionArn"`
}

// SecretReferenceMode reports whether the credential is resolved through
// the credential store rather than supplied inline.
func (c Config) SecretReferenceMode() bool {
	return c.APIKeySecretName != "" || c.APIKeySecretID != ""
}

// Validate checks that exactly one credential mode is active and that the
// base URL, if present, is well formed.
func (c Config) Validate() error {
	switch {
	case c.APIKey == "" && !c.SecretReferenceMode():
		return ErrNoCredential
	case c.APIKey != "" && c.SecretReferenceMode():
		return ErrAmbiguousCredential
	case c.SecretReferenceMode() && (c.APIKeySecretName == "" || c.APIKeySecretID == ""):
		return ErrIncompleteSecretRef
	}

	if c.BaseURL != "" {
		parsed, err := url.Parse(c.BaseURL)
		if err != nil {
			return fmt.Errorf("adapter: parse base url: %w", err)
		}
		if !parsed.IsAbs() || parsed.Host == "" {
			return fmt.Errorf("adapter: base url must be absolute: %s", c.BaseURL)
		}
	}
	return nil
}

// ResolvedBaseURL returns the configured base URL verbatim, or the
// provider default when absent. No normalization beyond validation.
func (c Config) ResolvedBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return DefaultBaseURL
}
