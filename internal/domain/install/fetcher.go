// Package install fetches tool artifacts and their sidecars into the local
// marketplace layout.
package install

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/oauth2"
)

const defaultFetchTimeout = 30 * time.Second

// Fetcher performs HTTP GETs against raw-content URLs with bounded
// exponential-backoff retries. 4xx responses are permanent failures; network
// errors and 5xx responses are retried up to the attempt ceiling.
type Fetcher struct {
	client        *http.Client
	maxRetries    uint64
	retryInterval time.Duration
}

// NewFetcher builds a fetcher around the given client. maxRetries counts
// retries after the first attempt.
func NewFetcher(client *http.Client, maxRetries uint64) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &Fetcher{
		client:        client,
		maxRetries:    maxRetries,
		retryInterval: 500 * time.Millisecond,
	}
}

// NewHTTPClient returns the client used for all marketplace traffic. When a
// GitHub token is configured the client authenticates via a static oauth2
// token source, which also raises the contents-API rate limit.
func NewHTTPClient(ctx context.Context, token string) *http.Client {
	if token == "" {
		return &http.Client{Timeout: defaultFetchTimeout}
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := oauth2.NewClient(ctx, src)
	client.Timeout = defaultFetchTimeout
	return client
}

// Client exposes the underlying HTTP client for collaborators that share the
// same authentication (the contents-API lister).
func (f *Fetcher) Client() *http.Client {
	return f.client
}

// Fetch downloads url and returns the response body.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			body, err = io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			return nil
		case resp.StatusCode >= 500:
			return fmt.Errorf("GET %s: server returned %d", url, resp.StatusCode)
		default:
			return backoff.Permanent(fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode))
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = f.retryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, f.maxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return body, nil
}
