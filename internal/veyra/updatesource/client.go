// Package updatesource is an HTTP client satisfying updatewatch's
// ReleaseOracle and Applier interfaces against an external release/update
// manager — the "update-manager subprocess glue" spec.md names as an
// external collaborator never implemented inside this module. This client
// only talks to that collaborator over HTTP; it never replaces the running
// binary itself.
package updatesource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/veyra-ai/veyra/common/trace"
	"github.com/veyra-ai/veyra/internal/veyra/skills/updatewatch"
)

const maxResponseBytes = 1 << 20 // 1 MiB cap on any response body read.

// Client is an HTTP client for a single update-manager endpoint, used as
// both updatewatch.ReleaseOracle and updatewatch.Applier.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New builds a Client targeting baseURL (e.g. "https://updates.example.com").
// token, if non-empty, is sent as a bearer token on every request.
func New(baseURL, token string) *Client {
	return &Client{baseURL: baseURL, token: token, httpClient: &http.Client{}}
}

type releaseResponse struct {
	Version string `json:"version"`
	Notes   string `json:"notes"`
	URL     string `json:"url"`
}

// LatestRelease implements updatewatch.ReleaseOracle via GET /latest.
func (c *Client) LatestRelease(ctx context.Context) (updatewatch.Release, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var resp releaseResponse
	if err := c.get(ctx, "/latest", &resp); err != nil {
		return updatewatch.Release{}, fmt.Errorf("updatesource: latest release: %w", err)
	}
	return updatewatch.Release{Version: resp.Version, Notes: resp.Notes, URL: resp.URL}, nil
}

type applyRequest struct {
	Version string `json:"version"`
	URL     string `json:"url"`
}

// Apply implements updatewatch.Applier via POST /apply, delegating the
// actual process replacement to whatever external manager answers on the
// other end.
func (c *Client) Apply(ctx context.Context, release updatewatch.Release) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	return c.post(ctx, "/apply", applyRequest{Version: release.Version, URL: release.URL})
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	c.setCommonHeaders(req)
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setCommonHeaders(req)
	return c.do(req, nil)
}

func (c *Client) setCommonHeaders(req *http.Request) {
	if traceID := trace.FromContext(req.Context()); traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	limited := io.LimitReader(resp.Body, maxResponseBytes)
	bodyBytes, err := io.ReadAll(limited)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("updatesource %s %s -> %d %s", req.Method, req.URL.Path, resp.StatusCode, resp.Status)
	}
	if out != nil && len(bodyBytes) > 0 {
		if err := json.Unmarshal(bodyBytes, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
