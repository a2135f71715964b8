package githubapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/repoflat/internal/types"
)

func TestFetchBlobReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/octo/demo/main/dir/my file.go", request.URL.Path)
		assert.Equal(t, "repoflat-test", request.Header.Get("User-Agent"))
		_, _ = responseWriter.Write([]byte("package dir\n"))
	}))
	defer server.Close()

	fetcher := NewBlobFetcher(server.Client()).WithRawBase(server.URL + "/").WithUserAgent("repoflat-test")
	content, fetchError := fetcher.FetchBlob(context.Background(), testOwner, testRepository, "main", "dir/my file.go")
	require.NoError(t, fetchError)
	assert.Equal(t, "package dir\n", content)
}

func TestFetchBlobReportsNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		responseWriter.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	fetcher := NewBlobFetcher(server.Client()).WithRawBase(server.URL)
	_, fetchError := fetcher.FetchBlob(context.Background(), testOwner, testRepository, "main", "a.go")
	require.Error(t, fetchError)
	assert.Equal(t, http.StatusForbidden, StatusCode(fetchError))
	assert.False(t, types.IsCancellation(fetchError))
}

func TestFetchBlobClassifiesTransportFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	serverURL := server.URL
	server.Close()

	fetcher := NewBlobFetcher(nil).WithRawBase(serverURL)
	_, fetchError := fetcher.FetchBlob(context.Background(), testOwner, testRepository, "main", "a.go")
	require.Error(t, fetchError)
	assert.True(t, errors.Is(fetchError, types.ErrNetworkFailure))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, cancelledError := fetcher.FetchBlob(ctx, testOwner, testRepository, "main", "a.go")
	require.Error(t, cancelledError)
	assert.True(t, errors.Is(cancelledError, types.ErrOperationCancelled))
}
