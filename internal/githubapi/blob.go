package githubapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultRawBaseURL serves raw file contents by owner, repository, branch and path.
	DefaultRawBaseURL = "https://raw.githubusercontent.com"

	headerUserAgent       = "User-Agent"
	operationFetchBlob    = "fetch blob"
	errorBuildBlobRequest = "build blob request: %w"
	errorReadBlobBody     = "read blob body"
	pathSegmentSeparator  = "/"
)

type httpClient interface {
	Do(request *http.Request) (*http.Response, error)
}

// BlobFetcher downloads raw file contents from the raw-content host.
type BlobFetcher struct {
	client    httpClient
	rawBase   string
	userAgent string
	limiter   *rate.Limiter
}

// NewBlobFetcher builds a fetcher against the public raw host. A nil client gets a default timeout client.
func NewBlobFetcher(client httpClient) BlobFetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return BlobFetcher{
		client:    client,
		rawBase:   DefaultRawBaseURL,
		userAgent: DefaultUserAgent,
	}
}

func (fetcher BlobFetcher) WithRawBase(base string) BlobFetcher {
	if strings.TrimSpace(base) == "" {
		return fetcher
	}
	fetcher.rawBase = strings.TrimRight(strings.TrimSpace(base), pathSegmentSeparator)
	return fetcher
}

func (fetcher BlobFetcher) WithUserAgent(agent string) BlobFetcher {
	if agent == "" {
		return fetcher
	}
	fetcher.userAgent = agent
	return fetcher
}

func (fetcher BlobFetcher) WithTimeout(duration time.Duration) BlobFetcher {
	if duration <= 0 {
		return fetcher
	}
	if clientWithTimeout, ok := fetcher.client.(*http.Client); ok {
		clientWithTimeout.Timeout = duration
	}
	return fetcher
}

// WithLimiter shares request pacing with the API client.
func (fetcher BlobFetcher) WithLimiter(limiter *rate.Limiter) BlobFetcher {
	fetcher.limiter = limiter
	return fetcher
}

// FetchBlob returns the raw text of filePath at branch. Non-OK responses yield a StatusError.
func (fetcher BlobFetcher) FetchBlob(ctx context.Context, owner string, repository string, branch string, filePath string) (string, error) {
	if waitError := waitForLimiter(ctx, fetcher.limiter, operationFetchBlob); waitError != nil {
		return "", waitError
	}
	request, requestError := fetcher.buildRequest(ctx, fetcher.blobURL(owner, repository, branch, filePath))
	if requestError != nil {
		return "", requestError
	}
	response, responseError := fetcher.client.Do(request)
	if responseError != nil {
		return "", classifyError(ctx, responseError, operationFetchBlob)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf(operationErrorFormat, operationFetchBlob, &StatusError{StatusCode: response.StatusCode, URL: request.URL.String()})
	}
	body, readError := io.ReadAll(response.Body)
	if readError != nil {
		return "", classifyError(ctx, readError, errorReadBlobBody)
	}
	return string(body), nil
}

func (fetcher BlobFetcher) blobURL(owner string, repository string, branch string, filePath string) string {
	segments := []string{fetcher.rawBase, url.PathEscape(owner), url.PathEscape(repository), url.PathEscape(branch)}
	for _, pathSegment := range strings.Split(filePath, pathSegmentSeparator) {
		segments = append(segments, url.PathEscape(pathSegment))
	}
	return strings.Join(segments, pathSegmentSeparator)
}

func (fetcher BlobFetcher) buildRequest(ctx context.Context, target string) (*http.Request, error) {
	request, requestError := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if requestError != nil {
		return nil, fmt.Errorf(errorBuildBlobRequest, requestError)
	}
	request.Header.Set(headerUserAgent, fetcher.userAgent)
	return request, nil
}
