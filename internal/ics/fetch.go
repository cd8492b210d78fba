package ics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Source identifies one subscribed ICS feed.
type Source struct {
	ID   string
	Name string
	URL  string
}

// maxFeedBytes bounds how much of a feed body is read; anything larger is a
// misconfigured subscription, not a calendar.
const maxFeedBytes = 8 << 20

// Fetcher downloads ICS feed bodies.
type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a Fetcher with a bounded request timeout. A nil client
// gets a default one.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Fetcher{client: client}
}

// Fetch retrieves the raw ICS payload for a source.
func (f *Fetcher) Fetch(ctx context.Context, src Source) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("ics: build request for %s: %w", src.ID, err)
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ics: fetch %s: %w", src.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ics: fetch %s: unexpected status %d", src.ID, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("ics: read %s: %w", src.ID, err)
	}
	return body, nil
}
