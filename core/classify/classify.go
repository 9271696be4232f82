// Package classify maps raw error text from the generation endpoint to a
// fixed taxonomy with human-readable causes and recommendations.
package classify

import (
	"net/http"
	"strings"
)

// Category is the machine-readable classification of an API failure.
type Category string

const (
	Authorization     Category = "authorization"
	RateLimiting      Category = "rate_limiting"
	TokenLimit        Category = "token_limit"
	ProviderError     Category = "provider_error"
	ProviderRateLimit Category = "provider_rate_limit"
	MalformedRequest  Category = "malformed_request"
	ServerError       Category = "server_error"
	NetworkRestriction Category = "network_restriction"
	Unclassified      Category = "unclassified"
)

// Severity ranks how actionable a failure is for the user.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
)

// Diagnosis carries the classification plus guidance a UI can render
// without knowing anything about the endpoint.
type Diagnosis struct {
	Category        Category `json:"category"`
	Causes          []string `json:"causes"`
	Recommendations []string `json:"recommendations"`
	Severity        Severity `json:"severity"`
}

// Transient reports whether the orchestrator should mark the candidate
// exhausted and advance to the next one instead of aborting.
func (c Category) Transient() bool {
	switch c {
	case RateLimiting, ProviderError, ProviderRateLimit, Authorization, NetworkRestriction:
		return true
	}
	return false
}

var rateKeywords = []string{"rate limit", "rate_limit", "429", "too many requests", "quota"}

// providerKeywords mark failures reported by the upstream model provider
// rather than the endpoint itself. A body that merely mentions the word
// "provider" is not one of them.
var providerKeywords = []string{"provider returned error", "provider error", "upstream error", "model_not_available", "no available provider"}

// Classify inspects the response body and HTTP status. Check order matters:
// categories overlap, and a provider error that also mentions rate limiting
// must land on ProviderRateLimit before the generic ProviderError branch
// commits.
func Classify(body string, status int) Diagnosis {
	text := strings.ToLower(body)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden ||
		containsAny(text, "invalid api key", "invalid_api_key", "unauthorized", "authentication", "invalid token", "forbidden"):
		return Diagnosis{
			Category: Authorization,
			Causes: []string{
				"The credential was rejected by the generation endpoint",
				"The credential may be expired, revoked, or mistyped",
			},
			Recommendations: []string{
				"Verify the credential in the configuration file",
				"Generate a fresh credential from the provider dashboard",
			},
			Severity: SeverityCritical,
		}

	case (status == http.StatusTooManyRequests || containsAny(text, rateKeywords...)) &&
		!containsAny(text, providerKeywords...):
		return Diagnosis{
			Category: RateLimiting,
			Causes: []string{
				"The credential hit its request or token quota",
				"Too many imports were attempted in a short window",
			},
			Recommendations: []string{
				"Wait a minute before retrying",
				"Configure an additional credential so the import can rotate",
			},
			Severity: SeverityHigh,
		}

	case containsAny(text, "maximum context length", "context_length_exceeded", "token limit", "max_tokens", "too many tokens"):
		return Diagnosis{
			Category: TokenLimit,
			Causes: []string{
				"The pasted timetable is too large for the selected model",
			},
			Recommendations: []string{
				"Paste a single week rather than a full term",
				"Select a model with a larger context window",
			},
			Severity: SeverityMedium,
		}

	case containsAny(text, providerKeywords...):
		if containsAny(text, rateKeywords...) {
			return Diagnosis{
				Category: ProviderRateLimit,
				Causes: []string{
					"The upstream model provider is rate limiting, not this credential",
				},
				Recommendations: []string{
					"Try a different model from the candidate list",
					"Retry after a short wait",
				},
				Severity: SeverityHigh,
			}
		}
		return Diagnosis{
			Category: ProviderError,
			Causes: []string{
				"The upstream model provider failed to serve the request",
				"The selected model may be temporarily unavailable",
			},
			Recommendations: []string{
				"Try a different model from the candidate list",
			},
			Severity: SeverityHigh,
		}

	case status == http.StatusBadRequest ||
		containsAny(text, "invalid request", "malformed", "invalid_request_error", "unsupported parameter"):
		return Diagnosis{
			Category: MalformedRequest,
			Causes: []string{
				"The request body was rejected as invalid",
				"This is a client-side defect; another candidate cannot fix it",
			},
			Recommendations: []string{
				"Report this failure; retrying will not help",
			},
			Severity: SeverityCritical,
		}

	case status >= http.StatusInternalServerError ||
		containsAny(text, "internal server error", "internal error", "502", "503", "bad gateway", "service unavailable"):
		return Diagnosis{
			Category: ServerError,
			Causes: []string{
				"The generation endpoint had an internal failure",
			},
			Recommendations: []string{
				"Retry the import after a short wait",
			},
			Severity: SeverityHigh,
		}

	case containsAny(text, "connection refused", "connection reset", "timeout", "deadline exceeded", "no such host", "network is unreachable", "tls handshake", "blocked", "proxy"):
		return Diagnosis{
			Category: NetworkRestriction,
			Causes: []string{
				"The endpoint could not be reached from this network",
				"A firewall or proxy may be blocking the request",
			},
			Recommendations: []string{
				"Try a different network",
				"Check proxy and firewall settings",
			},
			Severity: SeverityHigh,
		}
	}

	return Diagnosis{
		Category: Unclassified,
		Causes: []string{
			"The failure did not match any known pattern",
		},
		Recommendations: []string{
			"Inspect the raw response text in the logs",
		},
		Severity: SeverityMedium,
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
