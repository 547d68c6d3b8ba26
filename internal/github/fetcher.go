package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrInvalidURL means the repository URL does not match host/owner/repo.
	ErrInvalidURL = errors.New("invalid repository url")

	// ErrReadmeNotFound means neither the primary nor the fallback branch has
	// a README.md.
	ErrReadmeNotFound = errors.New("readme not found")
)

// branches are tried in order; the first successful fetch wins.
var branches = [2]string{"main", "master"}

// Fetcher retrieves README documents from a raw content host.
type Fetcher struct {
	httpClient *http.Client
	baseURL    string
}

// NewFetcher creates a Fetcher against the given raw content base URL
// (normally https://raw.githubusercontent.com).
func NewFetcher(baseURL string) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// ParseRepoURL extracts owner and repo from a repository URL: the first two
// path segments after the host. Anything else is ErrInvalidURL.
func ParseRepoURL(repoURL string) (owner, repo string, err error) {
	u, err := url.Parse(repoURL)
	if err != nil {
		return "", "", ErrInvalidURL
	}
	if u.Host == "" {
		return "", "", ErrInvalidURL
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 || segments[0] == "" || segments[1] == "" {
		return "", "", ErrInvalidURL
	}

	return segments[0], segments[1], nil
}

// FetchReadme retrieves the README.md of a repository, trying the main branch
// first and falling back to master. The URL is parsed before any network
// call; a malformed URL never reaches the wire.
func (f *Fetcher) FetchReadme(ctx context.Context, repoURL string) (string, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return "", err
	}

	for _, branch := range branches {
		content, err := f.fetchBranch(ctx, owner, repo, branch)
		if err == nil {
			return content, nil
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("fetch readme: %w", ctx.Err())
		}
	}

	return "", ErrReadmeNotFound
}

func (f *Fetcher) fetchBranch(ctx context.Context, owner, repo, branch string) (string, error) {
	url := fmt.Sprintf("%s/%s/%s/%s/README.md", f.baseURL, owner, repo, branch)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create readme request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read readme body: %w", err)
	}

	return string(body), nil
}
