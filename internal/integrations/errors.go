package integrations

import "fmt"

// Provider names as they appear in sync reports and logs.
const (
	ProviderGitHub    = "github"
	ProviderTwitter   = "twitter"
	ProviderPlausible = "plausible"
)

// ConfigError reports missing or malformed per-project credentials. It is
// raised before any HTTP call is attempted and surfaced verbatim.
type ConfigError struct {
	Provider string
	Reason   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Reason)
}

// ProviderError reports a non-2xx or malformed response from an upstream
// API, carrying the upstream HTTP status when one was received.
type ProviderError struct {
	Provider   string
	StatusCode int
	Reason     string
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API error: %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s API error: %s", e.Provider, e.Reason)
}
