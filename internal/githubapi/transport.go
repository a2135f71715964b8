package githubapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds a single collaborator request.
const DefaultTimeout = 30 * time.Second

// NewHTTPClient returns the HTTP client shared by the API client and the blob fetcher.
// A non-empty token is attached as a bearer token through an oauth2 transport.
func NewHTTPClient(ctx context.Context, token string, timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	trimmedToken := strings.TrimSpace(token)
	if trimmedToken == "" {
		return &http.Client{Timeout: timeout}
	}
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: trimmedToken})
	authenticatedClient := oauth2.NewClient(ctx, tokenSource)
	authenticatedClient.Timeout = timeout
	return authenticatedClient
}

// NewLimiter paces collaborator requests. Zero or negative rates disable pacing.
func NewLimiter(requestsPerSecond float64) *rate.Limiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
}

func waitForLimiter(ctx context.Context, limiter *rate.Limiter, operation string) error {
	if limiter == nil {
		return nil
	}
	if waitError := limiter.Wait(ctx); waitError != nil {
		return classifyError(ctx, waitError, operation)
	}
	return nil
}
